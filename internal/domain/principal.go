package domain

// AuthMethod describes how a caller authenticated with the API.
type AuthMethod string

const (
	AuthMethodJWT         AuthMethod = "jwt"
	AuthMethodDevelopment AuthMethod = "development"
)

// Principal captures normalized caller identity. Records are owned by
// Username, which is what every query filters on.
type Principal struct {
	Subject    string
	Issuer     string
	Username   string
	Email      string
	Name       string
	AuthMethod AuthMethod
	Scopes     []string
}

// HasScope checks if the principal possesses a scope.
func (p Principal) HasScope(scope string) bool {
	for _, s := range p.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
