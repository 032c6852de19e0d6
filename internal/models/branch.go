package models

import "time"

// Branch represents a retail location with its own point-of-sale database.
// CatalogPassword is stored AES-GCM encrypted; use utils.EncryptCredential /
// utils.DecryptCredential around it.
type Branch struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Code            string `gorm:"uniqueIndex;not null" json:"code"`
	Name            string `gorm:"not null" json:"name"`
	Active          bool   `gorm:"default:true" json:"active"`
	CatalogHost     string `gorm:"not null" json:"catalogHost"`
	CatalogPort     int    `gorm:"default:3306" json:"catalogPort"`
	CatalogUser     string `json:"catalogUser"`
	CatalogPassword string `json:"-"`
	CatalogDatabase string `json:"catalogDatabase"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Branch model
func (Branch) TableName() string {
	return "branches"
}
