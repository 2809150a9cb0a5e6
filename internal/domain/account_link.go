package domain

import "time"

// Default widget styling, also used to keep script-tag URLs short.
const (
	DefaultButtonText      = "SeeItFirst"
	DefaultButtonBg        = "#111"
	DefaultButtonColor     = "#fff"
	DefaultButtonRadius    = 6
	DefaultOverlayText     = "SeeItFirst"
	DefaultOverlayBg       = "rgba(0,0,0,0.6)"
	DefaultOverlayColor    = "#fff"
	DefaultOverlayPosition = "bottom-right"
	DefaultAppBlockLabel   = "See it first"
)

// AccountStoreLink binds an account to a store. At most one link per store is active.
type AccountStoreLink struct {
	ID                 string
	AccountID          string
	StoreDomain        string
	SelectedInstanceID string
	IsActive           bool
	EnableButton       bool
	EnableOverlay      bool
	Button             *ButtonConfig
	Overlay            *OverlayConfig
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ButtonConfig styles the product-page button
type ButtonConfig struct {
	Text   string `json:"text" bson:"text"`
	Bg     string `json:"bg" bson:"bg"`
	Color  string `json:"color" bson:"color"`
	Radius int    `json:"radius" bson:"radius"`
}

// OverlayConfig styles the product-image overlay
type OverlayConfig struct {
	Text     string `json:"text" bson:"text"`
	Bg       string `json:"bg" bson:"bg"`
	Color    string `json:"color" bson:"color"`
	Position string `json:"position,omitempty" bson:"position,omitempty"`
}

// LegacyButtonFields are the flat btn_* columns written before structured configs existed
type LegacyButtonFields struct {
	Text   *string
	Bg     *string
	Color  *string
	Radius *int
}

// LegacyOverlayFields are the flat overlay_* columns
type LegacyOverlayFields struct {
	Text     *string
	Bg       *string
	Color    *string
	Position *string
}

// DefaultButtonConfig returns the stock button styling
func DefaultButtonConfig() ButtonConfig {
	return ButtonConfig{Text: DefaultButtonText, Bg: DefaultButtonBg, Color: DefaultButtonColor, Radius: DefaultButtonRadius}
}

// DefaultOverlayConfig returns the stock overlay styling
func DefaultOverlayConfig() OverlayConfig {
	return OverlayConfig{Text: DefaultOverlayText, Bg: DefaultOverlayBg, Color: DefaultOverlayColor, Position: DefaultOverlayPosition}
}

func (l LegacyButtonFields) empty() bool {
	return l.Text == nil && l.Bg == nil && l.Color == nil && l.Radius == nil
}

func (l LegacyOverlayFields) empty() bool {
	return l.Text == nil && l.Bg == nil && l.Color == nil && l.Position == nil
}

// ResolveButtonConfig prefers the structured config and falls back to legacy flat
// fields layered over the defaults. Returns nil when neither is set.
func ResolveButtonConfig(structured *ButtonConfig, legacy LegacyButtonFields) *ButtonConfig {
	if structured != nil {
		c := *structured
		return &c
	}
	if legacy.empty() {
		return nil
	}
	c := DefaultButtonConfig()
	if legacy.Text != nil {
		c.Text = *legacy.Text
	}
	if legacy.Bg != nil {
		c.Bg = *legacy.Bg
	}
	if legacy.Color != nil {
		c.Color = *legacy.Color
	}
	if legacy.Radius != nil {
		c.Radius = *legacy.Radius
	}
	return &c
}

// ResolveOverlayConfig is the overlay counterpart of ResolveButtonConfig
func ResolveOverlayConfig(structured *OverlayConfig, legacy LegacyOverlayFields) *OverlayConfig {
	if structured != nil {
		c := *structured
		return &c
	}
	if legacy.empty() {
		return nil
	}
	c := DefaultOverlayConfig()
	if legacy.Text != nil {
		c.Text = *legacy.Text
	}
	if legacy.Bg != nil {
		c.Bg = *legacy.Bg
	}
	if legacy.Color != nil {
		c.Color = *legacy.Color
	}
	if legacy.Position != nil {
		c.Position = *legacy.Position
	}
	return &c
}

// LinkUpdate carries the fields of a link that a configuration write touches.
// Nil pointers leave the stored value untouched.
type LinkUpdate struct {
	SelectedInstanceID *string
	EnableButton       *bool
	EnableOverlay      *bool
	Button             *ButtonConfig
	Overlay            *OverlayConfig
}

// IsEmpty reports whether the update changes nothing
func (u LinkUpdate) IsEmpty() bool {
	return u.SelectedInstanceID == nil && u.EnableButton == nil && u.EnableOverlay == nil &&
		u.Button == nil && u.Overlay == nil
}

// Apply copies the set fields of the update onto the link
func (u LinkUpdate) Apply(link *AccountStoreLink) {
	if u.SelectedInstanceID != nil {
		link.SelectedInstanceID = *u.SelectedInstanceID
	}
	if u.EnableButton != nil {
		link.EnableButton = *u.EnableButton
	}
	if u.EnableOverlay != nil {
		link.EnableOverlay = *u.EnableOverlay
	}
	if u.Button != nil {
		c := *u.Button
		link.Button = &c
	}
	if u.Overlay != nil {
		c := *u.Overlay
		link.Overlay = &c
	}
}

// EffectiveConfig is what the storefront widget reads at runtime
type EffectiveConfig struct {
	EnableButton  bool           `json:"enableButton"`
	EnableOverlay bool           `json:"enableOverlay"`
	Button        *ButtonConfig  `json:"button"`
	Overlay       *OverlayConfig `json:"overlay"`
}

// EffectiveConfigFromLink flattens a link into the widget configuration
func EffectiveConfigFromLink(link *AccountStoreLink) *EffectiveConfig {
	if link == nil {
		return nil
	}
	return &EffectiveConfig{
		EnableButton:  link.EnableButton,
		EnableOverlay: link.EnableOverlay,
		Button:        link.Button,
		Overlay:       link.Overlay,
	}
}
