package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sif-shopify-layer/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// SessionClaims are the claims of an embedded-admin session token
type SessionClaims struct {
	Dest string `json:"dest"`
	jwt.RegisteredClaims
}

// Shop returns the shop domain the token was issued for
func (c *SessionClaims) Shop() (string, error) {
	u, err := url.Parse(c.Dest)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid dest claim %q", c.Dest)
	}
	return u.Host, nil
}

// SessionTokenVerifier validates session tokens signed with the app secret
type SessionTokenVerifier struct {
	apiKey    string
	apiSecret []byte
}

// NewSessionTokenVerifier creates a verifier for tokens issued to apiKey
func NewSessionTokenVerifier(apiKey, apiSecret string) *SessionTokenVerifier {
	return &SessionTokenVerifier{apiKey: apiKey, apiSecret: []byte(apiSecret)}
}

// Verify parses the token and returns the shop it was issued for
func (v *SessionTokenVerifier) Verify(token string) (string, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.apiSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(v.apiKey),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	return claims.Shop()
}

// SessionTokenMiddleware puts the shop of a valid bearer session token into the
// request context. Without a token the request passes through unless required.
func SessionTokenMiddleware(verifier *SessionTokenVerifier, required bool, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				if required {
					writeUnauthorized(w, errors.New("missing session token"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			shop, err := verifier.Verify(token)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Rejected session token")
				writeUnauthorized(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(domain.WithSessionShop(r.Context(), shop)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
