package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

// UIState is the admin UI's view of an account's link to a store.
// The flat btn_* and overlay_* fields mirror the structured configs for older clients.
type UIState struct {
	SelectedInstanceID  *string               `json:"selected_instance_id"`
	EnableProductButton bool                  `json:"enable_product_button"`
	EnableProductImage  bool                  `json:"enable_product_image"`
	ButtonConfig        *domain.ButtonConfig  `json:"button_config"`
	OverlayConfig       *domain.OverlayConfig `json:"overlay_config"`
	ButtonText          *string               `json:"btn_text"`
	ButtonBg            *string               `json:"btn_bg"`
	ButtonColor         *string               `json:"btn_color"`
	ButtonRadius        *int                  `json:"btn_radius"`
	OverlayText         *string               `json:"overlay_text"`
	OverlayBg           *string               `json:"overlay_bg"`
	OverlayColor        *string               `json:"overlay_color"`
}

// SaveUIStateResult tells whether the link was created or updated, and whether
// the previous instance's overlay was cleaned up
type SaveUIStateResult struct {
	Created  bool `json:"created,omitempty"`
	Updated  bool `json:"updated,omitempty"`
	Switched bool `json:"switched,omitempty"`
}

// ActiveAccount reports which account a store is connected to
type ActiveAccount struct {
	Connected bool   `json:"connected"`
	AccountID string `json:"account_id,omitempty"`
}

// AccountService manages account links, instance selection and UI state
type AccountService struct {
	stores     ports.StoreRepository
	links      ports.AccountLinkRepository
	instances  ports.InstanceRepository
	config     *ConfigService
	placements *PlacementService
	scriptTags *ScriptTagService
	logger     zerolog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	stores ports.StoreRepository,
	links ports.AccountLinkRepository,
	instances ports.InstanceRepository,
	config *ConfigService,
	placements *PlacementService,
	scriptTags *ScriptTagService,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		stores:     stores,
		links:      links,
		instances:  instances,
		config:     config,
		placements: placements,
		scriptTags: scriptTags,
		logger:     logger,
	}
}

// Connect makes the account the store's only active link and drops script tags
// installed for the previous account. Tag removal is best-effort.
func (s *AccountService) Connect(ctx context.Context, shop, accountID string) error {
	if err := s.requireStore(ctx, shop); err != nil {
		return err
	}

	if err := s.links.DeactivateAll(ctx, shop); err != nil {
		return fmt.Errorf("failed to deactivate links: %w", err)
	}

	link, err := s.links.GetByStoreAndAccount(ctx, shop, accountID)
	if err != nil {
		return fmt.Errorf("failed to get link: %w", err)
	}
	if link == nil {
		link = &domain.AccountStoreLink{AccountID: accountID, StoreDomain: shop, CreatedAt: time.Now()}
	}
	link.IsActive = true
	link.UpdatedAt = time.Now()
	if err := s.links.Upsert(ctx, link); err != nil {
		return fmt.Errorf("failed to save link: %w", err)
	}
	s.config.Invalidate(ctx, shop)

	if _, err := s.scriptTags.Uninstall(ctx, shop, "", true); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Failed to reset script tags")
	}

	s.logger.Info().Str("shop", shop).Str("accountId", accountID).Msg("Account connected")
	return nil
}

// Active returns the account the store is currently connected to
func (s *AccountService) Active(ctx context.Context, shop string) (*ActiveAccount, error) {
	store, err := s.stores.GetStore(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	if store == nil {
		return &ActiveAccount{}, nil
	}
	link, err := s.links.GetActive(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to get active link: %w", err)
	}
	if link == nil || link.AccountID == "" {
		return &ActiveAccount{}, nil
	}
	return &ActiveAccount{Connected: true, AccountID: link.AccountID}, nil
}

// ListInstances returns the account's instances, newest first
func (s *AccountService) ListInstances(ctx context.Context, accountID string) ([]*domain.Instance, error) {
	instances, err := s.instances.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	sort.SliceStable(instances, func(i, j int) bool {
		return instances[i].CreatedAt.After(instances[j].CreatedAt)
	})
	return instances, nil
}

// GetUIState returns the account's link, else the store's active link.
// Nil means the store is not installed or has no link.
func (s *AccountService) GetUIState(ctx context.Context, shop, accountID string) (*UIState, error) {
	store, err := s.stores.GetStore(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	if store == nil {
		return nil, nil
	}

	link, err := s.links.GetByStoreAndAccount(ctx, shop, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	if link == nil {
		if link, err = s.links.GetActive(ctx, shop); err != nil {
			return nil, fmt.Errorf("failed to get active link: %w", err)
		}
	}
	if link == nil {
		return nil, nil
	}
	return uiStateFromLink(link), nil
}

// SaveUIState applies the update to the account's link, creating an active link
// when none exists. Selecting a different instance removes the previous
// instance's overlay from the theme and re-places it for the new instance when
// the overlay is enabled. Theme cleanup never fails the save.
func (s *AccountService) SaveUIState(ctx context.Context, shop, accountID string, update domain.LinkUpdate) (*SaveUIStateResult, error) {
	if err := s.requireStore(ctx, shop); err != nil {
		return nil, err
	}

	previous, err := s.links.GetByStoreAndAccount(ctx, shop, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	result := &SaveUIStateResult{}
	switch {
	case previous != nil && update.IsEmpty():
		result.Updated = true
	case previous != nil:
		updated, err := s.links.Update(ctx, shop, accountID, update)
		if err != nil {
			return nil, fmt.Errorf("failed to update link: %w", err)
		}
		result.Updated = updated
	}

	if !result.Updated {
		link := &domain.AccountStoreLink{
			AccountID:   accountID,
			StoreDomain: shop,
			IsActive:    true,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		update.Apply(link)
		if err := s.links.Upsert(ctx, link); err != nil {
			return nil, fmt.Errorf("failed to save link: %w", err)
		}
		result.Created = true
	}
	s.config.Invalidate(ctx, shop)

	if previous != nil && update.SelectedInstanceID != nil &&
		previous.SelectedInstanceID != "" && previous.SelectedInstanceID != *update.SelectedInstanceID {
		current := *previous
		update.Apply(&current)
		s.switchInstance(ctx, shop, previous.SelectedInstanceID, &current)
		result.Switched = true
	}

	s.logger.Info().
		Str("shop", shop).
		Str("accountId", accountID).
		Bool("created", result.Created).
		Bool("switched", result.Switched).
		Msg("UI state saved")
	return result, nil
}

func (s *AccountService) switchInstance(ctx context.Context, shop, previousInstance string, link *domain.AccountStoreLink) {
	themeID := s.placements.OverlayTheme(ctx, shop)
	if _, err := s.placements.DisableOverlay(ctx, DisableOverlayInput{Shop: shop, ThemeID: themeID}); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Str("instanceId", previousInstance).Msg("Failed to remove previous overlay")
	}
	if !link.EnableOverlay || link.SelectedInstanceID == "" {
		return
	}
	_, err := s.placements.EnableOverlay(ctx, EnableOverlayInput{
		Shop:       shop,
		ThemeID:    themeID,
		InstanceID: link.SelectedInstanceID,
		Overlay:    link.Overlay,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Str("instanceId", link.SelectedInstanceID).Msg("Failed to place overlay for new instance")
	}
}

func (s *AccountService) requireStore(ctx context.Context, shop string) error {
	store, err := s.stores.GetStore(ctx, shop)
	if err != nil {
		return fmt.Errorf("failed to get store: %w", err)
	}
	if store == nil {
		return domain.ErrStoreNotFound
	}
	return nil
}

func uiStateFromLink(link *domain.AccountStoreLink) *UIState {
	state := &UIState{
		EnableProductButton: link.EnableButton,
		EnableProductImage:  link.EnableOverlay,
		ButtonConfig:        link.Button,
		OverlayConfig:       link.Overlay,
	}
	if link.SelectedInstanceID != "" {
		id := link.SelectedInstanceID
		state.SelectedInstanceID = &id
	}
	if b := link.Button; b != nil {
		state.ButtonText, state.ButtonBg, state.ButtonColor = &b.Text, &b.Bg, &b.Color
		state.ButtonRadius = &b.Radius
	}
	if o := link.Overlay; o != nil {
		state.OverlayText, state.OverlayBg, state.OverlayColor = &o.Text, &o.Bg, &o.Color
	}
	return state
}
