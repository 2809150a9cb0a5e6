package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/domain/themeasset"
	"sif-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

// PlacementService places widget features into a store's live theme and removes
// them again. Every file is its own remote write: a failure is recorded in the
// result and the remaining files are still processed.
type PlacementService struct {
	stores     *StoreService
	client     ports.StorefrontClient
	placements ports.PlacementRepository
	metrics    ports.Metrics
	logger     zerolog.Logger
}

// NewPlacementService creates a new placement service
func NewPlacementService(
	stores *StoreService,
	client ports.StorefrontClient,
	placements ports.PlacementRepository,
	metrics ports.Metrics,
	logger zerolog.Logger,
) *PlacementService {
	return &PlacementService{
		stores:     stores,
		client:     client,
		placements: placements,
		metrics:    metrics,
		logger:     logger,
	}
}

// EnableOverlayInput selects the instance and styling of an overlay placement
type EnableOverlayInput struct {
	Shop       string
	ThemeID    uint64
	InstanceID string
	Overlay    *domain.OverlayConfig
}

// DisableOverlayInput selects the theme to clean
type DisableOverlayInput struct {
	Shop    string
	ThemeID uint64
}

// ButtonBlockInput places the button app block into the product template
type ButtonBlockInput struct {
	Shop       string
	ThemeID    uint64
	InstanceID string
	Label      string
}

// ButtonBlockResult reports the template the app block went into
type ButtonBlockResult struct {
	*domain.PlacementResult
	ProductTemplate string `json:"product_template"`
	BlockID         string `json:"block_id"`
}

// RemovePlacementsInput selects which features to strip from a theme
type RemovePlacementsInput struct {
	Shop          string
	ThemeID       uint64
	RemoveButton  bool
	RemoveOverlay bool
}

// RemovePlacementsResult adds scan statistics to the placement result
type RemovePlacementsResult struct {
	*domain.PlacementResult
	Scanned      int `json:"scanned"`
	UpdatedCount int `json:"updated_count"`
}

type themeTarget struct {
	shop    string
	token   string
	themeID uint64
}

// EnableOverlay writes the shared overlay snippet, injects its render directive
// into the product media snippet, then into the first product section that takes it.
func (s *PlacementService) EnableOverlay(ctx context.Context, in EnableOverlayInput) (*domain.PlacementResult, error) {
	if in.InstanceID == "" {
		return nil, domain.InvalidInputError("instance_id is required")
	}
	t, err := s.target(ctx, in.Shop, in.ThemeID)
	if err != nil {
		return nil, err
	}
	result := domain.NewPlacementResult(t.themeID)

	snippet, err := themeasset.RenderOverlaySnippet(in.InstanceID, in.Overlay)
	if err != nil {
		return nil, fmt.Errorf("failed to render overlay snippet: %w", err)
	}
	s.upsertSnippet(ctx, t, themeasset.OverlaySnippetKey, snippet, result)

	directive := themeasset.OverlayFor(in.InstanceID)
	s.injectFile(ctx, t, themeasset.ProductMediaSnippetKey, themeasset.ProductMediaPatcher(), directive, result)

	listed := s.listAssetKeys(ctx, t)
	visited := map[string]bool{themeasset.ProductMediaSnippetKey: true}
	sectionPatcher := themeasset.ProductSectionPatcher()
	for _, key := range themeasset.ProductSectionCandidates(listed) {
		visited[key] = true
		if s.injectFile(ctx, t, key, sectionPatcher, directive, result) {
			break
		}
	}

	// blocks of a previous instance can sit in files this run did not write
	for _, key := range themeasset.OverlayCleanupKeys(listed) {
		if visited[key] {
			continue
		}
		s.rewriteFile(ctx, t, key, result, func(content string) string {
			return themeasset.RemoveStaleBlocks(content, directive.Kind, directive.InstanceID)
		})
	}

	result.Finish()
	s.record(ctx, t, domain.FeatureOverlay, domain.PlacementThemeSnippet, in.InstanceID, true, result)
	s.metrics.PlacementCompleted(domain.FeatureOverlay, "enable", result.Status)
	s.logger.Info().
		Str("shop", in.Shop).
		Uint64("themeId", t.themeID).
		Str("instanceId", in.InstanceID).
		Strs("updated", result.Updated).
		Int("failed", len(result.Failed)).
		Msg("Overlay enabled")
	return result, nil
}

// DisableOverlay removes overlay markers and bare directives from every file an
// overlay placement may have touched, then deletes the shared snippet.
func (s *PlacementService) DisableOverlay(ctx context.Context, in DisableOverlayInput) (*domain.PlacementResult, error) {
	t, err := s.target(ctx, in.Shop, in.ThemeID)
	if err != nil {
		return nil, err
	}
	result := domain.NewPlacementResult(t.themeID)

	listed := s.listAssetKeys(ctx, t)
	for _, key := range themeasset.OverlayCleanupKeys(listed) {
		s.removeFromFile(ctx, t, key, result, themeasset.KindOverlay)
	}
	s.deleteBestEffort(ctx, t, themeasset.OverlaySnippetKey, listed, result)

	result.Finish()
	s.record(ctx, t, domain.FeatureOverlay, domain.PlacementThemeSnippet, "", false, result)
	s.metrics.PlacementCompleted(domain.FeatureOverlay, "disable", result.Status)
	s.logger.Info().
		Str("shop", in.Shop).
		Uint64("themeId", t.themeID).
		Strs("updated", result.Updated).
		Int("failed", len(result.Failed)).
		Msg("Overlay disabled")
	return result, nil
}

// InsertButtonBlock adds the button app block to the theme's product template
func (s *PlacementService) InsertButtonBlock(ctx context.Context, in ButtonBlockInput) (*ButtonBlockResult, error) {
	t, err := s.target(ctx, in.Shop, in.ThemeID)
	if err != nil {
		return nil, err
	}
	key := themeasset.ProductTemplateKey(s.listAssetKeys(ctx, t))
	out := &ButtonBlockResult{
		PlacementResult: domain.NewPlacementResult(t.themeID),
		ProductTemplate: key,
		BlockID:         themeasset.AppBlockID,
	}

	raw, _, err := s.readAsset(ctx, t, key)
	if err != nil {
		out.Fail(key, err.Error())
	} else if next, changed, err := themeasset.InsertAppBlock(raw, in.InstanceID, in.Label); err != nil {
		out.Fail(key, err.Error())
	} else if changed {
		if err := s.writeAsset(ctx, t, key, next); err != nil {
			out.Fail(key, err.Error())
		} else {
			out.Record(key+domain.AnnotationAppBlock, domain.PlacementStep{
				Key: key, Action: domain.ActionInsertBlock, Compensation: domain.ActionRemoveBlock,
			})
		}
	}

	out.Finish()
	s.record(ctx, t, domain.FeatureButton, domain.PlacementAppBlock, in.InstanceID, out.OK, out.PlacementResult)
	s.metrics.PlacementCompleted(domain.FeatureButton, "insert_block", out.Status)
	return out, nil
}

// RemovePlacements strips the requested features from a wide set of theme files,
// including directives written by earlier releases, and deletes the app's snippets.
func (s *PlacementService) RemovePlacements(ctx context.Context, in RemovePlacementsInput) (*RemovePlacementsResult, error) {
	var kinds []themeasset.Kind
	if in.RemoveButton {
		kinds = append(kinds, themeasset.KindButton)
	}
	if in.RemoveOverlay {
		kinds = append(kinds, themeasset.KindOverlay)
	}
	if len(kinds) == 0 {
		return nil, domain.InvalidInputError("nothing to remove")
	}

	t, err := s.target(ctx, in.Shop, in.ThemeID)
	if err != nil {
		return nil, err
	}
	result := domain.NewPlacementResult(t.themeID)
	listed := s.listAssetKeys(ctx, t)

	keys := themeasset.ThemeRemoveKeys(listed)
	for _, key := range keys {
		s.removeFromFile(ctx, t, key, result, kinds...)
	}

	if in.RemoveButton {
		for _, key := range listed {
			if themeasset.IsProductTemplate(key) {
				s.removeButtonBlock(ctx, t, key, result)
			}
		}
		for _, key := range themeasset.LegacyButtonSnippetKeys {
			s.deleteBestEffort(ctx, t, key, listed, result)
		}
	}
	if in.RemoveOverlay {
		s.deleteBestEffort(ctx, t, themeasset.OverlaySnippetKey, listed, result)
	}

	result.Finish()
	if in.RemoveButton {
		s.record(ctx, t, domain.FeatureButton, domain.PlacementAppBlock, "", false, result)
	}
	if in.RemoveOverlay {
		s.record(ctx, t, domain.FeatureOverlay, domain.PlacementThemeSnippet, "", false, result)
	}
	s.metrics.PlacementCompleted(domain.FeatureOverlay, "remove", result.Status)

	return &RemovePlacementsResult{
		PlacementResult: result,
		Scanned:         len(keys),
		UpdatedCount:    len(result.Updated),
	}, nil
}

// ListPlacements returns the recorded placements of a store
func (s *PlacementService) ListPlacements(ctx context.Context, shop string) ([]*domain.Placement, error) {
	return s.placements.ListPlacements(ctx, shop)
}

// OverlayTheme returns the theme of the last overlay snippet placement, or 0
func (s *PlacementService) OverlayTheme(ctx context.Context, shop string) uint64 {
	p, err := s.placements.GetPlacement(ctx, shop, domain.FeatureOverlay, domain.PlacementThemeSnippet)
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Failed to load overlay placement")
		return 0
	}
	if p == nil {
		return 0
	}
	return p.ThemeID
}

func (s *PlacementService) target(ctx context.Context, shop string, themeID uint64) (*themeTarget, error) {
	token, err := s.stores.AccessToken(ctx, shop)
	if err != nil {
		return nil, err
	}
	themes, err := s.client.ListThemes(ctx, shop, token)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	id, ok := domain.ResolveTheme(themes, themeID)
	if !ok {
		return nil, domain.ErrNoMainTheme
	}
	return &themeTarget{shop: shop, token: token, themeID: id}, nil
}

func (s *PlacementService) listAssetKeys(ctx context.Context, t *themeTarget) []string {
	keys, err := s.client.ListAssetKeys(ctx, t.shop, t.token, t.themeID)
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", t.shop).Uint64("themeId", t.themeID).Msg("Failed to list theme assets, using curated files only")
		return nil
	}
	return keys
}

// readAsset returns ok=false without an error when the asset does not exist
func (s *PlacementService) readAsset(ctx context.Context, t *themeTarget, key string) (string, bool, error) {
	value, err := s.client.GetAsset(ctx, t.shop, t.token, t.themeID, key)
	if errors.Is(err, domain.ErrAssetNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *PlacementService) writeAsset(ctx context.Context, t *themeTarget, key, value string) error {
	err := s.client.PutAsset(ctx, t.shop, t.token, t.themeID, key, value)
	s.metrics.AssetWritten("put", err)
	return err
}

func (s *PlacementService) upsertSnippet(ctx context.Context, t *themeTarget, key, value string, result *domain.PlacementResult) {
	existing, _, err := s.readAsset(ctx, t, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", t.shop).Str("key", key).Msg("Failed to read snippet, rewriting it")
	}
	if err == nil && existing == value {
		return
	}
	if err := s.writeAsset(ctx, t, key, value); err != nil {
		result.Fail(key, err.Error())
		return
	}
	result.Record(key, domain.PlacementStep{Key: key, Action: domain.ActionUpsertSnippet, Compensation: domain.ActionDeleteSnippet})
}

// injectFile reports whether the file carries the directive afterwards
func (s *PlacementService) injectFile(ctx context.Context, t *themeTarget, key string, p *themeasset.Patcher, d themeasset.Directive, result *domain.PlacementResult) bool {
	content, ok, err := s.readAsset(ctx, t, key)
	if err != nil {
		result.Fail(key, err.Error())
		return false
	}
	if !ok || content == "" {
		return false
	}

	res := p.Inject(content, d)
	if res.Outcome == themeasset.NoAnchor {
		return false
	}
	if res.Text == content {
		return true
	}
	if err := s.writeAsset(ctx, t, key, res.Text); err != nil {
		result.Fail(key, err.Error())
		return false
	}
	result.Record(key+domain.AnnotationOverlay, domain.PlacementStep{
		Key: key, Action: domain.ActionInject, Compensation: domain.ActionRemove + ":" + string(d.Kind),
	})
	return true
}

func (s *PlacementService) removeFromFile(ctx context.Context, t *themeTarget, key string, result *domain.PlacementResult, kinds ...themeasset.Kind) {
	s.rewriteFile(ctx, t, key, result, func(content string) string {
		for _, k := range kinds {
			content, _ = themeasset.Remove(content, k)
		}
		return content
	})
}

// rewriteFile applies a removal to an existing file and writes it back when it changed
func (s *PlacementService) rewriteFile(ctx context.Context, t *themeTarget, key string, result *domain.PlacementResult, edit func(string) string) {
	content, ok, err := s.readAsset(ctx, t, key)
	if err != nil {
		result.Fail(key, err.Error())
		return
	}
	if !ok || content == "" {
		return
	}

	next := edit(content)
	if next == content {
		return
	}
	if err := s.writeAsset(ctx, t, key, next); err != nil {
		result.Fail(key, err.Error())
		return
	}
	result.Record(key, domain.PlacementStep{Key: key, Action: domain.ActionRemove, Compensation: domain.ActionInject})
}

func (s *PlacementService) removeButtonBlock(ctx context.Context, t *themeTarget, key string, result *domain.PlacementResult) {
	raw, ok, err := s.readAsset(ctx, t, key)
	if err != nil {
		result.Fail(key, err.Error())
		return
	}
	if !ok {
		return
	}
	next, changed, err := themeasset.RemoveAppBlock(raw)
	if err != nil {
		result.Fail(key, err.Error())
		return
	}
	if !changed {
		return
	}
	if err := s.writeAsset(ctx, t, key, next); err != nil {
		result.Fail(key, err.Error())
		return
	}
	result.Record(key+domain.AnnotationRemoved, domain.PlacementStep{
		Key: key, Action: domain.ActionRemoveBlock, Compensation: domain.ActionInsertBlock,
	})
}

// deleteBestEffort deletes an app-owned asset; failures are logged, never reported.
// Assets that do not exist are skipped so only real deletions are recorded.
func (s *PlacementService) deleteBestEffort(ctx context.Context, t *themeTarget, key string, listed []string, result *domain.PlacementResult) {
	if !s.assetExists(ctx, t, key, listed) {
		return
	}
	err := s.client.DeleteAsset(ctx, t.shop, t.token, t.themeID, key)
	s.metrics.AssetWritten("delete", err)
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", t.shop).Str("key", key).Msg("Failed to delete snippet")
		return
	}
	result.Record(key+domain.AnnotationDeleted, domain.PlacementStep{Key: key, Action: domain.ActionDeleteSnippet})
}

// assetExists checks the listed keys, or reads the asset when the listing failed
func (s *PlacementService) assetExists(ctx context.Context, t *themeTarget, key string, listed []string) bool {
	if listed != nil {
		return slices.Contains(listed, key)
	}
	_, ok, err := s.readAsset(ctx, t, key)
	if err != nil {
		// unknown; attempt the delete anyway
		return true
	}
	return ok
}

func (s *PlacementService) record(ctx context.Context, t *themeTarget, feature domain.Feature, method domain.PlacementMethod, instanceID string, active bool, result *domain.PlacementResult) {
	keys := make([]string, 0, len(result.Steps))
	for _, step := range result.Steps {
		keys = append(keys, step.Key)
	}
	placement := &domain.Placement{
		StoreDomain: t.shop,
		Feature:     feature,
		Method:      method,
		ThemeID:     t.themeID,
		InstanceID:  instanceID,
		Active:      active,
		AssetKeys:   keys,
		UpdatedAt:   time.Now(),
	}
	if err := s.placements.SavePlacement(ctx, placement); err != nil {
		s.logger.Error().Err(err).Str("shop", t.shop).Str("feature", string(feature)).Msg("Failed to save placement")
	}
}
