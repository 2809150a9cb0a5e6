package testutil

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"sif-shopify-layer/internal/domain"
)

// Metrics records the counters services emit
type Metrics struct {
	mu          sync.Mutex
	Placements  []string
	AssetWrites []string
	TagChanges  []string
	RateLimits  []string
	CacheHits   int
	CacheMisses int
}

func (m *Metrics) PlacementCompleted(feature domain.Feature, operation, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Placements = append(m.Placements, string(feature)+":"+operation+":"+status)
}

func (m *Metrics) AssetWritten(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AssetWrites = append(m.AssetWrites, operation)
}

func (m *Metrics) ScriptTagChanged(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TagChanges = append(m.TagChanges, operation)
}

func (m *Metrics) RateLimited(route string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RateLimits = append(m.RateLimits, route)
}

func (m *Metrics) ConfigLookup(cacheHit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cacheHit {
		m.CacheHits++
	} else {
		m.CacheMisses++
	}
}

// PlainEncryption stores tokens with a visible prefix instead of encrypting them
type PlainEncryption struct{}

func (PlainEncryption) Encrypt(plaintext string) (string, error) {
	return "enc:" + plaintext, nil
}

func (PlainEncryption) Decrypt(ciphertext string) (string, error) {
	return strings.TrimPrefix(ciphertext, "enc:"), nil
}

// OAuth is a ports.OAuthProvider with switchable verification results
type OAuth struct {
	CallbackValid bool
	WebhookValid  bool
	Token         string
	ExchangeErr   error
	Exchanged     []string
}

func (o *OAuth) AuthorizeURL(shop, state, redirectURI string, scopes []string) string {
	q := url.Values{}
	q.Set("client_id", "test-key")
	q.Set("scope", strings.Join(scopes, ","))
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	return "https://" + shop + "/admin/oauth/authorize?" + q.Encode()
}

func (o *OAuth) VerifyCallback(u *url.URL) bool {
	return o.CallbackValid
}

func (o *OAuth) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	o.Exchanged = append(o.Exchanged, shop+":"+code)
	if o.ExchangeErr != nil {
		return "", o.ExchangeErr
	}
	return o.Token, nil
}

func (o *OAuth) VerifyWebhook(r *http.Request) bool {
	return o.WebhookValid
}
