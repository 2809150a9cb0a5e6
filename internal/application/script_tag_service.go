package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

// EmbedScriptPath is the app endpoint script tags point at
const EmbedScriptPath = "/api/embed/script"

// Limits applied to customization values packed into script-tag URLs.
const (
	maxTextLen   = 40
	maxColorLen  = 32
	maxRadius    = 64
	tagEvent     = "onload"
	tagDisplayOn = "online_store"
)

// StyleOverrides are optional widget styling values. Nil means not provided.
type StyleOverrides struct {
	ButtonText   *string `json:"btn_text,omitempty"`
	ButtonBg     *string `json:"btn_bg,omitempty"`
	ButtonColor  *string `json:"btn_color,omitempty"`
	ButtonRadius *int    `json:"btn_radius,omitempty"`
	OverlayText  *string `json:"overlay_text,omitempty"`
	OverlayBg    *string `json:"overlay_bg,omitempty"`
	OverlayColor *string `json:"overlay_color,omitempty"`
}

// InstallScriptTagInput describes the script tag to install
type InstallScriptTagInput struct {
	Shop       string
	InstanceID string
	Placements domain.Placements
	Styles     StyleOverrides
}

// ScriptTagResult reports a script-tag install or uninstall
type ScriptTagResult struct {
	OK        bool                      `json:"ok"`
	ScriptTag *domain.ScriptTag         `json:"script_tag,omitempty"`
	Deleted   []uint64                  `json:"deleted"`
	Failed    []domain.PlacementFailure `json:"failed,omitempty"`
}

// ScriptTagStatus describes the installed tag of an instance
type ScriptTagStatus struct {
	Installed   bool   `json:"installed"`
	ScriptTagID uint64 `json:"script_tag_id,omitempty"`
	Src         string `json:"src,omitempty"`
	domain.Placements
	StyleOverrides
}

// ScriptTagService keeps at most one app script tag registered per store
type ScriptTagService struct {
	stores     *StoreService
	client     ports.StorefrontClient
	placements ports.PlacementRepository
	metrics    ports.Metrics
	logger     zerolog.Logger
	embedURL   string
	embedHost  string
	embedPath  string
}

// NewScriptTagService creates a script-tag service for an app served at appURL
func NewScriptTagService(
	stores *StoreService,
	client ports.StorefrontClient,
	placements ports.PlacementRepository,
	metrics ports.Metrics,
	logger zerolog.Logger,
	appURL string,
) *ScriptTagService {
	embedURL := strings.TrimRight(appURL, "/") + EmbedScriptPath
	embedPath := EmbedScriptPath
	var embedHost string
	if u, err := url.Parse(embedURL); err == nil {
		embedHost = u.Host
		embedPath = u.Path
	}
	return &ScriptTagService{
		stores:     stores,
		client:     client,
		placements: placements,
		metrics:    metrics,
		logger:     logger,
		embedURL:   embedURL,
		embedHost:  embedHost,
		embedPath:  embedPath,
	}
}

// Install replaces every app-owned tag of the store with one tag for the instance.
// Deleting the old tags is best-effort.
func (s *ScriptTagService) Install(ctx context.Context, in InstallScriptTagInput) (*ScriptTagResult, error) {
	if in.InstanceID == "" {
		return nil, domain.InvalidInputError("instance_id is required")
	}
	token, err := s.stores.AccessToken(ctx, in.Shop)
	if err != nil {
		return nil, err
	}
	tags, err := s.client.ListScriptTags(ctx, in.Shop, token)
	if err != nil {
		return nil, fmt.Errorf("failed to list script tags: %w", err)
	}

	result := &ScriptTagResult{Deleted: []uint64{}}
	seen := make(map[uint64]bool)
	for _, tag := range tags {
		if seen[tag.ID] {
			continue
		}
		// Every app tag is replaced: other instances must go, and a tag for the
		// same instance is a stale duplicate.
		if _, ok := s.ownedTag(tag, in.Shop); !ok {
			continue
		}
		seen[tag.ID] = true
		err := s.client.DeleteScriptTag(ctx, in.Shop, token, tag.ID)
		s.metrics.ScriptTagChanged("delete", err)
		if err != nil {
			s.logger.Warn().Err(err).Str("shop", in.Shop).Uint64("scriptTagId", tag.ID).Msg("Failed to delete stale script tag")
			continue
		}
		result.Deleted = append(result.Deleted, tag.ID)
	}

	created, err := s.client.CreateScriptTag(ctx, in.Shop, token, domain.ScriptTag{
		Src:          s.BuildSrc(in.InstanceID, in.Placements, in.Styles),
		Event:        tagEvent,
		DisplayScope: tagDisplayOn,
	})
	s.metrics.ScriptTagChanged("create", err)
	if err != nil {
		return nil, fmt.Errorf("failed to create script tag: %w", err)
	}
	result.OK = true
	result.ScriptTag = created

	s.record(ctx, in.Shop, in.InstanceID, in.Placements)
	s.logger.Info().
		Str("shop", in.Shop).
		Str("instanceId", in.InstanceID).
		Uint64("scriptTagId", created.ID).
		Int("deleted", len(result.Deleted)).
		Msg("Script tag installed")
	return result, nil
}

// Uninstall deletes every app-owned tag when all is set, else the tags of one instance
func (s *ScriptTagService) Uninstall(ctx context.Context, shop, instanceID string, all bool) (*ScriptTagResult, error) {
	if !all && instanceID == "" {
		return nil, domain.InvalidInputError("instance_id is required")
	}
	token, err := s.stores.AccessToken(ctx, shop)
	if err != nil {
		return nil, err
	}
	tags, err := s.client.ListScriptTags(ctx, shop, token)
	if err != nil {
		return nil, fmt.Errorf("failed to list script tags: %w", err)
	}

	result := &ScriptTagResult{Deleted: []uint64{}}
	for _, tag := range tags {
		q, ok := s.ownedTag(tag, shop)
		if !ok || (!all && q.Get("instance_id") != instanceID) {
			continue
		}
		err := s.client.DeleteScriptTag(ctx, shop, token, tag.ID)
		s.metrics.ScriptTagChanged("delete", err)
		if err != nil {
			result.Failed = append(result.Failed, domain.PlacementFailure{Key: strconv.FormatUint(tag.ID, 10), Reason: err.Error()})
			continue
		}
		result.Deleted = append(result.Deleted, tag.ID)
	}
	result.OK = len(result.Failed) == 0

	if len(result.Deleted) > 0 {
		s.record(ctx, shop, instanceID, domain.Placements{})
	}
	s.logger.Info().Str("shop", shop).Str("instanceId", instanceID).Bool("all", all).Int("deleted", len(result.Deleted)).Msg("Script tags removed")
	return result, nil
}

// Status returns the installed tag of an instance with the placements and styling packed in its URL
func (s *ScriptTagService) Status(ctx context.Context, shop, instanceID string) (*ScriptTagStatus, error) {
	if instanceID == "" {
		return nil, domain.InvalidInputError("instance_id is required")
	}
	store, err := s.stores.GetStore(ctx, shop)
	if errors.Is(err, domain.ErrStoreNotFound) {
		return &ScriptTagStatus{}, nil
	}
	if err != nil {
		return nil, err
	}
	tags, err := s.client.ListScriptTags(ctx, shop, store.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list script tags: %w", err)
	}
	for _, tag := range tags {
		q, ok := s.ownedTag(tag, shop)
		if !ok || q.Get("instance_id") != instanceID {
			continue
		}
		status := ParseScriptTagSrc(q)
		status.Installed = true
		status.ScriptTagID = tag.ID
		status.Src = tag.Src
		return status, nil
	}
	return &ScriptTagStatus{}, nil
}

// BuildSrc packs the instance, placements and non-default styling into the embed URL.
// instance_id always comes first.
func (s *ScriptTagService) BuildSrc(instanceID string, p domain.Placements, st StyleOverrides) string {
	var q orderedQuery
	q.add("instance_id", instanceID)

	flags := ""
	if p.ProductButton {
		flags += "b"
	}
	if p.ProductImage {
		flags += "i"
	}
	q.add("p", flags)

	q.add("bt", nonDefault(st.ButtonText, domain.DefaultButtonText, maxTextLen))
	q.add("bb", nonDefault(st.ButtonBg, domain.DefaultButtonBg, maxColorLen))
	q.add("bc", nonDefault(st.ButtonColor, domain.DefaultButtonColor, maxColorLen))
	if st.ButtonRadius != nil && *st.ButtonRadius != domain.DefaultButtonRadius {
		q.add("br", strconv.Itoa(min(max(*st.ButtonRadius, 0), maxRadius)))
	}
	q.add("ot", nonDefault(st.OverlayText, domain.DefaultOverlayText, maxTextLen))
	q.add("ob", nonDefault(st.OverlayBg, domain.DefaultOverlayBg, maxColorLen))
	q.add("oc", nonDefault(st.OverlayColor, domain.DefaultOverlayColor, maxColorLen))

	return s.embedURL + "?" + q.encode()
}

// ParseScriptTagSrc reads placements and styling from a tag query, accepting
// both the compact keys and the long keys of earlier releases.
func ParseScriptTagSrc(q url.Values) *ScriptTagStatus {
	flags := q.Get("p")
	status := &ScriptTagStatus{
		Placements: domain.Placements{
			ProductButton: q.Get("product_button") == "1" || strings.Contains(flags, "b"),
			ProductImage:  q.Get("product_image_button") == "1" || strings.Contains(flags, "i"),
		},
	}
	status.ButtonText = firstParam(q, "btn_text", "bt")
	status.ButtonBg = firstParam(q, "btn_bg", "bb")
	status.ButtonColor = firstParam(q, "btn_color", "bc")
	if r := firstParam(q, "btn_radius", "br"); r != nil {
		if n, err := strconv.Atoi(*r); err == nil {
			status.ButtonRadius = &n
		}
	}
	status.OverlayText = firstParam(q, "overlay_text", "ot")
	status.OverlayBg = firstParam(q, "overlay_bg", "ob")
	status.OverlayColor = firstParam(q, "overlay_color", "oc")
	return status
}

// ownedTag returns the tag's query when it points at this app's embed endpoint
// for shop. Tags on another host or carrying another shop are left alone.
func (s *ScriptTagService) ownedTag(tag domain.ScriptTag, shop string) (url.Values, bool) {
	u, err := url.Parse(tag.Src)
	if err != nil || !strings.EqualFold(u.Host, s.embedHost) || u.Path != s.embedPath {
		return nil, false
	}
	q := u.Query()
	if tagShop := q.Get("shop"); tagShop != "" && tagShop != shop {
		return nil, false
	}
	return q, true
}

func (s *ScriptTagService) record(ctx context.Context, shop, instanceID string, p domain.Placements) {
	for feature, active := range map[domain.Feature]bool{
		domain.FeatureButton:  p.ProductButton,
		domain.FeatureOverlay: p.ProductImage,
	} {
		err := s.placements.SavePlacement(ctx, &domain.Placement{
			StoreDomain: shop,
			Feature:     feature,
			Method:      domain.PlacementScriptTag,
			InstanceID:  instanceID,
			Active:      active,
			UpdatedAt:   time.Now(),
		})
		if err != nil {
			s.logger.Error().Err(err).Str("shop", shop).Str("feature", string(feature)).Msg("Failed to save placement")
		}
	}
}

func nonDefault(v *string, def string, limit int) string {
	if v == nil || *v == "" || *v == def {
		return ""
	}
	r := []rune(*v)
	if len(r) > limit {
		r = r[:limit]
	}
	return string(r)
}

func firstParam(q url.Values, keys ...string) *string {
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			return &v
		}
	}
	return nil
}

// orderedQuery encodes parameters in insertion order, skipping empty values
type orderedQuery struct {
	parts []string
}

func (q *orderedQuery) add(key, value string) {
	if value == "" {
		return
	}
	q.parts = append(q.parts, url.QueryEscape(key)+"="+url.QueryEscape(value))
}

func (q *orderedQuery) encode() string {
	return strings.Join(q.parts, "&")
}
