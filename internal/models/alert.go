package models

import (
	"time"

	"gorm.io/datatypes"
)

// Outage error kinds
const (
	ErrorKindNetwork  = "NETWORK"
	ErrorKindDatabase = "DATABASE"
	ErrorKindBoth     = "BOTH"
	ErrorKindUnknown  = "UNKNOWN"
)

// BranchMonitorState is the persisted per-branch outage record. A row exists
// only while a branch is unhealthy; it is deleted when the branch recovers.
// Persisting it means a monitor restart does not reset outage timers.
type BranchMonitorState struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	BranchCode          string     `gorm:"uniqueIndex;not null" json:"branchCode"`
	ErrorKind           string     `gorm:"not null" json:"errorKind"`
	ProblemStartedAt    time.Time  `gorm:"not null" json:"problemStartedAt"`
	LastCriticalAlertAt *time.Time `json:"lastCriticalAlertAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for BranchMonitorState model
func (BranchMonitorState) TableName() string {
	return "branch_monitor_states"
}

// AlertLog records every notification the dispatcher attempted, including
// failed sends (Success=false with the provider error in Payload).
type AlertLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	BranchCode string         `gorm:"index" json:"branchCode"`
	Kind       string         `gorm:"not null" json:"kind"` // critical, recovery, digest
	Channel    string         `gorm:"not null" json:"channel"`
	Success    bool           `json:"success"`
	Payload    datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for AlertLog model
func (AlertLog) TableName() string {
	return "alert_logs"
}
