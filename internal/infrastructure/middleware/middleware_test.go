package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sif-shopify-layer/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signSessionToken(t *testing.T, secret, aud, dest string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Dest: dest,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{aud},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func sessionShopEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(domain.GetSessionShopFromContext(r.Context())))
	})
}

func TestSessionTokenMiddleware(t *testing.T) {
	verifier := NewSessionTokenVerifier("api-key", "api-secret")
	valid := signSessionToken(t, "api-secret", "api-key", "https://demo.myshopify.com", time.Now().Add(time.Minute))

	tests := []struct {
		name     string
		required bool
		header   string
		wantCode int
		wantBody string
	}{
		{name: "valid token sets shop", header: "Bearer " + valid, wantCode: http.StatusOK, wantBody: "demo.myshopify.com"},
		{name: "no token passes when optional", wantCode: http.StatusOK, wantBody: ""},
		{name: "no token rejected when required", required: true, wantCode: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + signSessionToken(t, "other", "api-key", "https://demo.myshopify.com", time.Now().Add(time.Minute)), wantCode: http.StatusUnauthorized},
		{name: "wrong audience", header: "Bearer " + signSessionToken(t, "api-secret", "other-app", "https://demo.myshopify.com", time.Now().Add(time.Minute)), wantCode: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signSessionToken(t, "api-secret", "api-key", "https://demo.myshopify.com", time.Now().Add(-time.Minute)), wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := SessionTokenMiddleware(verifier, tt.required, zerolog.Nop())(sessionShopEcho())
			req := httptest.NewRequest(http.MethodGet, "/api/accounts/active", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestSessionClaims_Shop(t *testing.T) {
	shop, err := (&SessionClaims{Dest: "https://demo.myshopify.com"}).Shop()
	require.NoError(t, err)
	assert.Equal(t, "demo.myshopify.com", shop)

	_, err = (&SessionClaims{Dest: "demo"}).Shop()
	assert.Error(t, err)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	h := SecurityHeadersMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-ancestors https://admin.shopify.com")
}
