package sanitize

import (
	"net/http"
	"strings"
)

const maskedValue = "***"

var sensitiveHeaders = map[string]struct{}{
	"authorization":             {},
	"proxy-authorization":       {},
	"cookie":                    {},
	"set-cookie":                {},
	"api-key":                   {},
	"x-api-key":                 {},
	"ocp-apim-subscription-key": {},
}

// IsSensitiveHeader reports whether a header carries credentials.
func IsSensitiveHeader(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if _, ok := sensitiveHeaders[lower]; ok {
		return true
	}
	return strings.HasSuffix(lower, "-token") || strings.HasSuffix(lower, "-secret")
}

// MaskHeaders returns a flattened copy of h that is safe to log. Bearer and
// Basic schemes stay visible so auth problems remain diagnosable.
func MaskHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		joined := strings.Join(values, ", ")
		if IsSensitiveHeader(name) {
			joined = maskCredential(joined)
		}
		out[http.CanonicalHeaderKey(name)] = joined
	}
	return out
}

func maskCredential(value string) string {
	if value == "" {
		return ""
	}
	scheme, _, found := strings.Cut(value, " ")
	if found {
		switch strings.ToLower(scheme) {
		case "bearer", "basic":
			return scheme + " " + maskedValue
		}
	}
	return maskedValue
}
