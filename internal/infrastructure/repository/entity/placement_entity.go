package entity

import (
	"time"

	"sif-shopify-layer/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoPlacementDoc is the last placement of a feature on a store
type MongoPlacementDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	StoreDomain string             `bson:"storeDomain"`
	Feature     string             `bson:"feature"`
	Method      string             `bson:"method"`
	ThemeID     int64              `bson:"themeId"`
	InstanceID  string             `bson:"instanceId,omitempty"`
	Active      bool               `bson:"active"`
	AssetKeys   []string           `bson:"assetKeys,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoPlacementDoc) ToDomain() *domain.Placement {
	return &domain.Placement{
		ID:          d.ID.Hex(),
		StoreDomain: d.StoreDomain,
		Feature:     domain.Feature(d.Feature),
		Method:      domain.PlacementMethod(d.Method),
		ThemeID:     uint64(d.ThemeID),
		InstanceID:  d.InstanceID,
		Active:      d.Active,
		AssetKeys:   d.AssetKeys,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoPlacementDocFromDomain converts a domain entity to a MongoDB document
func MongoPlacementDocFromDomain(p *domain.Placement) *MongoPlacementDoc {
	return &MongoPlacementDoc{
		StoreDomain: p.StoreDomain,
		Feature:     string(p.Feature),
		Method:      string(p.Method),
		ThemeID:     int64(p.ThemeID),
		InstanceID:  p.InstanceID,
		Active:      p.Active,
		AssetKeys:   p.AssetKeys,
		UpdatedAt:   p.UpdatedAt,
	}
}

// MongoInstanceDoc is an instance defined by the upstream product
type MongoInstanceDoc struct {
	ID          string    `bson:"_id"`
	AccountID   string    `bson:"accountId"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoInstanceDoc) ToDomain() *domain.Instance {
	return &domain.Instance{
		ID:          d.ID,
		AccountID:   d.AccountID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}
