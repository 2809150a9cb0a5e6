package domain

import "time"

// Store represents a merchant shop that installed the app
type Store struct {
	ID          string
	Domain      string
	AccessToken string // Encrypted at rest
	Name        string
	Email       string
	Scopes      []string
	InstalledAt time.Time
	UpdatedAt   time.Time
}

// ShopInfo is the subset of the platform's shop resource used during installation
type ShopInfo struct {
	ID     uint64
	Name   string
	Email  string
	Domain string
}

// Product is a storefront product as listed to the admin UI
type Product struct {
	ID     uint64 `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
	Status string `json:"status"`
	Image  string `json:"image,omitempty"`
}

// Instance is a unit of configured widget content owned by an account.
// Instances are defined upstream and only read here.
type Instance struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
