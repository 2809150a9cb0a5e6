package domain

import "time"

// Feature is a widget surface the app can place on the storefront
type Feature string

const (
	FeatureButton  Feature = "button"
	FeatureOverlay Feature = "overlay"
)

// PlacementMethod records how a feature reached the storefront
type PlacementMethod string

const (
	PlacementThemeSnippet PlacementMethod = "theme_snippet"
	PlacementAppBlock     PlacementMethod = "app_block"
	PlacementScriptTag    PlacementMethod = "script_tag"
)

// Annotations appended to updated asset keys
const (
	AnnotationOverlay  = " #overlay"
	AnnotationDeleted  = " #deleted"
	AnnotationAppBlock = " #app_block_inserted"
	AnnotationRemoved  = " #app_block_removed"
)

// Placement is the persisted record of the last placement operation for a store and feature
type Placement struct {
	ID          string          `json:"id"`
	StoreDomain string          `json:"shop"`
	Feature     Feature         `json:"feature"`
	Method      PlacementMethod `json:"method"`
	ThemeID     uint64          `json:"theme_id,omitempty"`
	InstanceID  string          `json:"instance_id,omitempty"`
	Active      bool            `json:"active"`
	AssetKeys   []string        `json:"asset_keys,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PlacementFailure is a single asset that could not be processed
type PlacementFailure struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// PlacementStep is one remote mutation of a placement operation together with
// the action that undoes it. Steps are never rolled back automatically.
type PlacementStep struct {
	Key          string `json:"key"`
	Action       string `json:"action"`
	Compensation string `json:"compensation,omitempty"`
}

// Step actions
const (
	ActionInject        = "inject"
	ActionRemove        = "remove"
	ActionUpsertSnippet = "upsert_snippet"
	ActionDeleteSnippet = "delete_snippet"
	ActionInsertBlock   = "insert_app_block"
	ActionRemoveBlock   = "remove_app_block"
)

// PlacementResult is returned by every placement operation
type PlacementResult struct {
	OK      bool               `json:"ok"`
	Status  string             `json:"status"`
	ThemeID uint64             `json:"theme_id"`
	Updated []string           `json:"updated"`
	Failed  []PlacementFailure `json:"failed"`
	Steps   []PlacementStep    `json:"steps,omitempty"`
}

// NewPlacementResult starts an empty result for a theme
func NewPlacementResult(themeID uint64) *PlacementResult {
	return &PlacementResult{ThemeID: themeID, Updated: []string{}, Failed: []PlacementFailure{}}
}

// Fail records a failed asset
func (r *PlacementResult) Fail(key, reason string) {
	r.Failed = append(r.Failed, PlacementFailure{Key: key, Reason: reason})
}

// Record records a successful remote mutation
func (r *PlacementResult) Record(updatedKey string, step PlacementStep) {
	r.Updated = append(r.Updated, updatedKey)
	r.Steps = append(r.Steps, step)
}

// Finish computes the ok flag and status
func (r *PlacementResult) Finish() *PlacementResult {
	r.OK = len(r.Failed) == 0
	r.Status = "ok"
	if !r.OK {
		r.Status = "partial"
	}
	return r
}

// Placements selects which surfaces a script tag enables
type Placements struct {
	ProductButton bool `json:"product_button"`
	ProductImage  bool `json:"product_image_button"`
}
