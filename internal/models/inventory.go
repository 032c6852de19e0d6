package models

import "time"

// CatalogProduct is a product row read from a branch point-of-sale database.
// It is never persisted locally; the Processed flag is filled in when merging
// with the extended inventory table.
type CatalogProduct struct {
	Barcode     string     `json:"barcode"`
	Description string     `json:"description"`
	PriceDate   *time.Time `json:"priceDate,omitempty"`
	FamilyName  string     `json:"familyName,omitempty"`
	Processed   bool       `gorm:"-" json:"processed"`
}

// ExtendedInventoryItem is the locally-owned record adding trazability
// metadata (expiration, temperature, promotion) to a catalog product.
// Rows are never hard-deleted: IsActive=false marks a logical delete, and
// historical inactive rows for the same barcode are expected.
type ExtendedInventoryItem struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	BranchCode     string     `gorm:"index" json:"branchCode"`
	Barcode        string     `gorm:"index;not null" json:"barcode"`
	Description    string     `gorm:"not null" json:"description"`
	PriceDate      *time.Time `json:"priceDate,omitempty"`
	ExpirationDate time.Time  `gorm:"not null;index" json:"expirationDate"`
	Temperature    *string    `json:"temperature,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	IsPromotion    bool       `gorm:"default:false" json:"isPromotion"`
	IsActive       bool       `gorm:"default:true;index" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for ExtendedInventoryItem model
func (ExtendedInventoryItem) TableName() string {
	return "extended_inventory_items"
}

// DaysRemaining returns whole days until expiration relative to now.
// Negative values mean the item is already expired. Both sides are taken
// as UTC calendar days, matching how expiration dates are stored.
func (i ExtendedInventoryItem) DaysRemaining(now time.Time) int {
	exp := i.ExpirationDate.UTC()
	expiry := time.Date(exp.Year(), exp.Month(), exp.Day(), 0, 0, 0, 0, time.UTC)
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(expiry.Sub(today).Hours() / 24)
}
