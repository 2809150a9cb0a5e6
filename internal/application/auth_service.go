package application

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OAuthStateTTL bounds the time between the install redirect and its callback
const OAuthStateTTL = 10 * time.Minute

var shopDomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*\.myshopify\.com$`)

// ValidShopDomain reports whether shop is a *.myshopify.com domain
func ValidShopDomain(shop string) bool {
	return shopDomainPattern.MatchString(shop)
}

// CallbackResult is the outcome of a completed install
type CallbackResult struct {
	Store *domain.Store
	Host  string
}

// AuthService runs the app install handshake
type AuthService struct {
	oauth  ports.OAuthProvider
	states ports.StateStore
	stores *StoreService
	logger zerolog.Logger
	appURL string
	scopes []string
}

// NewAuthService creates a new auth service
func NewAuthService(
	oauth ports.OAuthProvider,
	states ports.StateStore,
	stores *StoreService,
	logger zerolog.Logger,
	appURL string,
	scopes []string,
) *AuthService {
	return &AuthService{
		oauth:  oauth,
		states: states,
		stores: stores,
		logger: logger,
		appURL: strings.TrimRight(appURL, "/"),
		scopes: scopes,
	}
}

// RedirectURI is where the platform sends the merchant after consent
func (s *AuthService) RedirectURI() string {
	return s.appURL + "/auth/callback"
}

// Begin stores a fresh state nonce for shop and returns the consent URL
func (s *AuthService) Begin(ctx context.Context, shop string) (string, error) {
	if !ValidShopDomain(shop) {
		return "", domain.InvalidInputError("missing or invalid shop param")
	}
	state := uuid.NewString()
	if err := s.states.Save(ctx, state, shop, OAuthStateTTL); err != nil {
		return "", fmt.Errorf("failed to save oauth state: %w", err)
	}

	authURL := s.oauth.AuthorizeURL(shop, state, s.RedirectURI(), s.scopes)
	s.logger.Info().Str("shop", shop).Strs("scopes", s.scopes).Msg("Generated OAuth authorization URL")
	return authURL, nil
}

// Callback verifies the consent redirect, exchanges the code and installs the store
func (s *AuthService) Callback(ctx context.Context, u *url.URL) (*CallbackResult, error) {
	q := u.Query()
	shop, code, state := q.Get("shop"), q.Get("code"), q.Get("state")
	if shop == "" || code == "" || state == "" {
		return nil, domain.InvalidInputError("missing required params")
	}

	boundShop, err := s.states.Consume(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to load oauth state: %w", err)
	}
	if boundShop == "" || boundShop != shop {
		return nil, domain.InvalidInputError("invalid OAuth state")
	}
	if !s.oauth.VerifyCallback(u) {
		return nil, domain.InvalidInputError("invalid HMAC")
	}

	token, err := s.oauth.ExchangeToken(ctx, shop, code)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to exchange token")
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	store, err := s.stores.Install(ctx, shop, token, s.scopes)
	if err != nil {
		return nil, err
	}
	return &CallbackResult{Store: store, Host: q.Get("host")}, nil
}

// ReturnURL is the app page the merchant lands on after the handshake.
// A non-nil err adds a short error indicator.
func (s *AuthService) ReturnURL(shop, host string, err error) string {
	q := url.Values{}
	if shop != "" {
		q.Set("shop", shop)
	}
	if host != "" {
		q.Set("host", host)
	}
	if err != nil {
		msg := err.Error()
		if r := []rune(msg); len(r) > 200 {
			msg = string(r[:200])
		}
		q.Set("error", "shopify_auth_failed")
		q.Set("error_message", msg)
	}
	return s.appURL + "/?" + q.Encode()
}
