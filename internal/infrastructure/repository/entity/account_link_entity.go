package entity

import (
	"time"

	"sif-shopify-layer/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoAccountLinkDoc represents an account↔store link in MongoDB. Documents
// written by older releases carry flat btn_* and overlay_* fields instead of
// the structured configs; both are read, only the structured form is written.
type MongoAccountLinkDoc struct {
	ID                 primitive.ObjectID    `bson:"_id,omitempty"`
	AccountID          string                `bson:"accountId"`
	StoreDomain        string                `bson:"storeDomain"`
	SelectedInstanceID string                `bson:"selectedInstanceId"`
	IsActive           bool                  `bson:"isActive"`
	EnableButton       bool                  `bson:"enableProductButton"`
	EnableOverlay      bool                  `bson:"enableProductImage"`
	Button             *domain.ButtonConfig  `bson:"buttonConfig,omitempty"`
	Overlay            *domain.OverlayConfig `bson:"overlayConfig,omitempty"`
	CreatedAt          time.Time             `bson:"createdAt"`
	UpdatedAt          time.Time             `bson:"updatedAt"`

	LegacyButtonText   *string `bson:"btn_text,omitempty"`
	LegacyButtonBg     *string `bson:"btn_bg,omitempty"`
	LegacyButtonColor  *string `bson:"btn_color,omitempty"`
	LegacyButtonRadius *int    `bson:"btn_radius,omitempty"`
	LegacyOverlayText  *string `bson:"overlay_text,omitempty"`
	LegacyOverlayBg    *string `bson:"overlay_bg,omitempty"`
	LegacyOverlayColor *string `bson:"overlay_color,omitempty"`
}

// ToDomain converts the MongoDB document to a domain entity, folding legacy
// flat fields into the structured configs
func (d *MongoAccountLinkDoc) ToDomain() *domain.AccountStoreLink {
	return &domain.AccountStoreLink{
		ID:                 d.ID.Hex(),
		AccountID:          d.AccountID,
		StoreDomain:        d.StoreDomain,
		SelectedInstanceID: d.SelectedInstanceID,
		IsActive:           d.IsActive,
		EnableButton:       d.EnableButton,
		EnableOverlay:      d.EnableOverlay,
		Button: domain.ResolveButtonConfig(d.Button, domain.LegacyButtonFields{
			Text:   d.LegacyButtonText,
			Bg:     d.LegacyButtonBg,
			Color:  d.LegacyButtonColor,
			Radius: d.LegacyButtonRadius,
		}),
		Overlay: domain.ResolveOverlayConfig(d.Overlay, domain.LegacyOverlayFields{
			Text:  d.LegacyOverlayText,
			Bg:    d.LegacyOverlayBg,
			Color: d.LegacyOverlayColor,
		}),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoAccountLinkDocFromDomain converts a domain entity to a MongoDB document
func MongoAccountLinkDocFromDomain(link *domain.AccountStoreLink) *MongoAccountLinkDoc {
	return &MongoAccountLinkDoc{
		AccountID:          link.AccountID,
		StoreDomain:        link.StoreDomain,
		SelectedInstanceID: link.SelectedInstanceID,
		IsActive:           link.IsActive,
		EnableButton:       link.EnableButton,
		EnableOverlay:      link.EnableOverlay,
		Button:             link.Button,
		Overlay:            link.Overlay,
		CreatedAt:          link.CreatedAt,
		UpdatedAt:          link.UpdatedAt,
	}
}
