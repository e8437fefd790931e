package auth

import (
	"context"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/config"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/platformerrors"
)

const principalContextKey = "auth_principal"

// Validator validates JWTs using JWKS and resolves the record owner.
type Validator struct {
	cfg     *config.Config
	log     zerolog.Logger
	keyfunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
}

// NewValidator initializes JWKS fetching when auth is enabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	if !cfg.AuthEnabled {
		return &Validator{cfg: cfg, log: log}, nil
	}

	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Msg("jwks refresh error")
		},
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, options)
	if err != nil {
		return nil, err
	}

	return &Validator{
		cfg:     cfg,
		log:     log,
		keyfunc: jwks.Keyfunc,
		jwks:    jwks,
	}, nil
}

// NewValidatorWithKeyfunc builds an enabled validator around a fixed key
// source.
func NewValidatorWithKeyfunc(cfg *config.Config, log zerolog.Logger, kf jwt.Keyfunc) *Validator {
	return &Validator{cfg: cfg, log: log, keyfunc: kf}
}

// Close stops the JWKS background refresh.
func (v *Validator) Close() {
	if v != nil && v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// Middleware enforces JWT auth when enabled. With auth disabled every request
// runs as the configured development user.
func (v *Validator) Middleware() gin.HandlerFunc {
	if v == nil || !v.cfg.AuthEnabled {
		username := "anonymous"
		if v != nil && strings.TrimSpace(v.cfg.AuthDevUsername) != "" {
			username = strings.TrimSpace(v.cfg.AuthDevUsername)
		}
		return func(c *gin.Context) {
			c.Set(principalContextKey, domain.Principal{
				Subject:    username,
				Username:   username,
				AuthMethod: domain.AuthMethodDevelopment,
			})
			c.Next()
		}
	}

	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			platformerrors.WriteUnauthorized(c, "missing bearer token")
			return
		}

		opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"})}
		if v.cfg.AuthAudience != "" {
			opts = append(opts, jwt.WithAudience(v.cfg.AuthAudience))
		}
		if v.cfg.AuthIssuer != "" {
			opts = append(opts, jwt.WithIssuer(v.cfg.AuthIssuer))
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, v.keyfunc, opts...)
		if err != nil || !token.Valid {
			v.log.Debug().Err(err).Msg("rejected bearer token")
			platformerrors.WriteUnauthorized(c, "invalid token")
			return
		}

		principal := v.principalFromClaims(claims)
		if principal.Username == "" {
			platformerrors.WriteUnauthorized(c, "token has no username claim")
			return
		}

		c.Set(principalContextKey, principal)
		c.Next()
	}
}

func (v *Validator) principalFromClaims(claims jwt.MapClaims) domain.Principal {
	p := domain.Principal{AuthMethod: domain.AuthMethodJWT}
	p.Subject, _ = claims.GetSubject()
	p.Issuer, _ = claims.GetIssuer()
	p.Email = stringClaim(claims, "email")
	p.Name = stringClaim(claims, "name")
	if scope := stringClaim(claims, "scope"); scope != "" {
		p.Scopes = strings.Fields(scope)
	}

	claim := v.cfg.AuthUsernameClaim
	if claim == "" {
		claim = "preferred_username"
	}
	p.Username = stringClaim(claims, claim)
	if p.Username == "" {
		p.Username = p.Subject
	}
	return p
}

// PrincipalFromContext returns the caller resolved by Middleware.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	value, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := value.(domain.Principal)
	return p, ok
}

func stringClaim(claims jwt.MapClaims, name string) string {
	value, ok := claims[name].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
