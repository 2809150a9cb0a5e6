// Package testutil holds in-memory fakes of the ports for service and handler tests.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"sif-shopify-layer/internal/domain"
)

// Operations FailOn can target
const (
	OpGetAsset       = "get"
	OpPutAsset       = "put"
	OpDeleteAsset    = "delete"
	OpListAssets     = "list_assets"
	OpListThemes     = "list_themes"
	OpListScriptTags = "list_tags"
	OpCreateTag      = "create_tag"
	OpDeleteTag      = "delete_tag"
)

// FakeStorefront is an in-memory ports.StorefrontClient for a single store
type FakeStorefront struct {
	mu         sync.Mutex
	shop       domain.ShopInfo
	themes     []domain.Theme
	assets     map[uint64]map[string]string
	scriptTags []domain.ScriptTag
	products   []domain.Product
	webhooks   []string
	nextTagID  uint64
	failures   map[string]error
	calls      []string
}

// NewFakeStorefront creates a storefront with a single main theme
func NewFakeStorefront(mainThemeID uint64) *FakeStorefront {
	return &FakeStorefront{
		shop:      domain.ShopInfo{ID: 1, Name: "Test Shop", Email: "owner@example.com"},
		themes:    []domain.Theme{{ID: mainThemeID, Name: "Dawn", Role: domain.ThemeRoleMain}},
		assets:    map[uint64]map[string]string{mainThemeID: {}},
		nextTagID: 1000,
		failures:  make(map[string]error),
	}
}

// AddTheme registers another theme
func (f *FakeStorefront) AddTheme(id uint64, role string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.themes = append(f.themes, domain.Theme{ID: id, Name: "theme-" + strconv.FormatUint(id, 10), Role: role})
	if f.assets[id] == nil {
		f.assets[id] = map[string]string{}
	}
}

// SetAsset stores an asset without recording a call
func (f *FakeStorefront) SetAsset(themeID uint64, key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assets[themeID] == nil {
		f.assets[themeID] = map[string]string{}
	}
	f.assets[themeID][key] = value
}

// Asset returns the stored asset
func (f *FakeStorefront) Asset(themeID uint64, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.assets[themeID][key]
	return v, ok
}

// AddScriptTag registers a script tag and returns its id
func (f *FakeStorefront) AddScriptTag(src string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTagID++
	f.scriptTags = append(f.scriptTags, domain.ScriptTag{ID: f.nextTagID, Src: src, Event: "onload", DisplayScope: "online_store"})
	return f.nextTagID
}

// ScriptTags returns the registered script tags
func (f *FakeStorefront) ScriptTags() []domain.ScriptTag {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ScriptTag(nil), f.scriptTags...)
}

// SetProducts replaces the product catalogue
func (f *FakeStorefront) SetProducts(products ...domain.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = products
}

// Webhooks returns the registered webhook topics
func (f *FakeStorefront) Webhooks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.webhooks...)
}

// FailOn makes op fail for key with err. Use "" as key to fail every call of op.
func (f *FakeStorefront) FailOn(op, key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op+":"+key] = err
}

// Calls returns the remote calls made so far, as "op key"
func (f *FakeStorefront) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount counts the calls of op
func (f *FakeStorefront) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(op) && c[:len(op)] == op && (len(c) == len(op) || c[len(op)] == ' ') {
			n++
		}
	}
	return n
}

// ResetCalls forgets recorded calls
func (f *FakeStorefront) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// record must be called with mu held
func (f *FakeStorefront) record(op, key string) error {
	if key == "" {
		f.calls = append(f.calls, op)
	} else {
		f.calls = append(f.calls, op+" "+key)
	}
	if err, ok := f.failures[op+":"+key]; ok {
		return err
	}
	if err, ok := f.failures[op+":"]; ok {
		return err
	}
	return nil
}

func (f *FakeStorefront) GetShop(ctx context.Context, shop string, accessToken string) (*domain.ShopInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info := f.shop
	info.Domain = shop
	return &info, nil
}

func (f *FakeStorefront) ListProducts(ctx context.Context, shop string, accessToken string, limit int) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit < len(f.products) {
		return append([]domain.Product(nil), f.products[:limit]...), nil
	}
	return append([]domain.Product(nil), f.products...), nil
}

func (f *FakeStorefront) ListThemes(ctx context.Context, shop string, accessToken string) ([]domain.Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpListThemes, ""); err != nil {
		return nil, err
	}
	return append([]domain.Theme(nil), f.themes...), nil
}

func (f *FakeStorefront) ListAssetKeys(ctx context.Context, shop string, accessToken string, themeID uint64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpListAssets, ""); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(f.assets[themeID]))
	for k := range f.assets[themeID] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FakeStorefront) GetAsset(ctx context.Context, shop string, accessToken string, themeID uint64, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpGetAsset, key); err != nil {
		return "", err
	}
	v, ok := f.assets[themeID][key]
	if !ok {
		return "", &domain.RemoteError{Op: "GET asset " + key, Status: http.StatusNotFound, Body: "Not Found"}
	}
	return v, nil
}

func (f *FakeStorefront) PutAsset(ctx context.Context, shop string, accessToken string, themeID uint64, key string, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpPutAsset, key); err != nil {
		return err
	}
	if f.assets[themeID] == nil {
		f.assets[themeID] = map[string]string{}
	}
	f.assets[themeID][key] = value
	return nil
}

func (f *FakeStorefront) DeleteAsset(ctx context.Context, shop string, accessToken string, themeID uint64, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpDeleteAsset, key); err != nil {
		return err
	}
	delete(f.assets[themeID], key)
	return nil
}

func (f *FakeStorefront) ListScriptTags(ctx context.Context, shop string, accessToken string) ([]domain.ScriptTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpListScriptTags, ""); err != nil {
		return nil, err
	}
	return append([]domain.ScriptTag(nil), f.scriptTags...), nil
}

func (f *FakeStorefront) CreateScriptTag(ctx context.Context, shop string, accessToken string, tag domain.ScriptTag) (*domain.ScriptTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpCreateTag, ""); err != nil {
		return nil, err
	}
	f.nextTagID++
	tag.ID = f.nextTagID
	f.scriptTags = append(f.scriptTags, tag)
	return &tag, nil
}

func (f *FakeStorefront) DeleteScriptTag(ctx context.Context, shop string, accessToken string, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(OpDeleteTag, strconv.FormatUint(id, 10)); err != nil {
		return err
	}
	for i, t := range f.scriptTags {
		if t.ID == id {
			f.scriptTags = append(f.scriptTags[:i], f.scriptTags[i+1:]...)
			break
		}
	}
	return nil
}

func (f *FakeStorefront) CreateWebhook(ctx context.Context, shop string, accessToken string, topic string, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.webhooks = append(f.webhooks, fmt.Sprintf("%s %s", topic, address))
	return nil
}
