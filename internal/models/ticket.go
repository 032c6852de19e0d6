package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ticket statuses
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusClosed     = "closed"
)

// Ticket is a support/incident ticket raised against a branch
type Ticket struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Reference   string         `gorm:"uniqueIndex;not null" json:"reference"`
	BranchCode  string         `gorm:"index" json:"branchCode"`
	Subject     string         `gorm:"not null" json:"subject"`
	Description string         `json:"description"`
	Status      string         `gorm:"default:'open';index" json:"status"`
	Priority    string         `gorm:"default:'normal'" json:"priority"`
	CreatedBy   string         `json:"createdBy"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for Ticket model
func (Ticket) TableName() string {
	return "tickets"
}
