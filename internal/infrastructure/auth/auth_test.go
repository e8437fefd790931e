package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/config"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(v *Validator) *gin.Engine {
	r := gin.New()
	r.Use(v.Middleware())
	r.GET("/whoami", func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": p.Username, "method": p.AuthMethod})
	})
	return r
}

func TestMiddlewareDisabledUsesDevUser(t *testing.T) {
	v := &Validator{cfg: &config.Config{AuthDevUsername: "manu"}, log: zerolog.Nop()}

	w := httptest.NewRecorder()
	newRouter(v).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"manu","method":"development"}`, w.Body.String())
}

func TestMiddlewareValidatesTokens(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cfg := &config.Config{
		AuthEnabled:       true,
		AuthIssuer:        "https://issuer.example.com",
		AuthAudience:      "assistant",
		AuthUsernameClaim: "preferred_username",
	}
	v := NewValidatorWithKeyfunc(cfg, zerolog.Nop(), func(*jwt.Token) (any, error) {
		return &key.PublicKey, nil
	})
	router := newRouter(v)

	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub":                "user-1",
			"iss":                cfg.AuthIssuer,
			"aud":                cfg.AuthAudience,
			"exp":                time.Now().Add(time.Hour).Unix(),
			"preferred_username": "alice",
		}
	}

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + sign(base()), status: http.StatusOK, body: `{"username":"alice","method":"jwt"}`},
		{name: "wrong issuer", header: "Bearer " + sign(func() jwt.MapClaims { c := base(); c["iss"] = "other"; return c }()), status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + sign(func() jwt.MapClaims { c := base(); c["exp"] = time.Now().Add(-time.Hour).Unix(); return c }()), status: http.StatusUnauthorized},
		{name: "falls back to subject", header: "Bearer " + sign(func() jwt.MapClaims { c := base(); delete(c, "preferred_username"); return c }()), status: http.StatusOK, body: `{"username":"user-1","method":"jwt"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				assert.JSONEq(t, tc.body, w.Body.String())
			}
		})
	}
}

func TestPrincipalFromContextMissing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := PrincipalFromContext(c)
	assert.False(t, ok)

	c.Set(principalContextKey, domain.Principal{Username: "bob"})
	p, ok := PrincipalFromContext(c)
	assert.True(t, ok)
	assert.Equal(t, "bob", p.Username)
}

func TestPrincipalHasScope(t *testing.T) {
	p := domain.Principal{Username: "bob", Scopes: []string{"openid", "images:write"}}
	assert.True(t, p.HasScope("images:write"))
	assert.False(t, p.HasScope("admin"))
}
