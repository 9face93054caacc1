package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/pkg/config"
)

func newAuthRouter(cfg config.JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestContextMiddleware(), AuthMiddleware(cfg))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, RequesterUUID(c))
	})
	return r
}

func signToken(t *testing.T, secret, issuer, userUUID string) string {
	t.Helper()
	claims := Claims{
		UserUUID: userUUID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthMiddlewareBearerToken(t *testing.T) {
	r := newAuthRouter(config.JWTConfig{Secret: "s3cret", Issuer: "videogen"})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "s3cret", "videogen", "user-1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthMiddlewareRejectsBadSignature(t *testing.T) {
	r := newAuthRouter(config.JWTConfig{Secret: "s3cret"})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other", "", "user-1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareHeaderFallback(t *testing.T) {
	r := newAuthRouter(config.JWTConfig{})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-UUID", "user-2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "user-2", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareIgnoresHeaderWhenSecretConfigured(t *testing.T) {
	r := newAuthRouter(config.JWTConfig{Secret: "s3cret", Issuer: "videogen"})

	cases := []struct {
		name   string
		header map[string]string
	}{
		{name: "header only", header: map[string]string{"X-User-UUID": "victim-user"}},
		{name: "basic auth", header: map[string]string{"Authorization": "Basic dXNlcjpwdw==", "X-User-UUID": "victim-user"}},
		{name: "no identity", header: map[string]string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.NotContains(t, w.Body.String(), "victim-user")
		})
	}

	// 令牌里的身份优先于请求头
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "s3cret", "videogen", "user-1"))
	req.Header.Set("X-User-UUID", "victim-user")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}
