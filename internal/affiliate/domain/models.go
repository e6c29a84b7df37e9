// Package domain contains persistence models for affiliates.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Status represents the affiliate account lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusSuspended Status = "suspended"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusSuspended:
		return true
	default:
		return false
	}
}

// Affiliate represents a referring partner. Rows are never hard-deleted; the
// status column is the soft lifecycle.
type Affiliate struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID      `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	Email     string            `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Name      string            `gorm:"type:text;not null" json:"name"`
	BankInfo  datatypes.JSONMap `gorm:"type:jsonb" json:"bank_info,omitempty"`
	Status    Status            `gorm:"type:text;not null;default:'pending'" json:"status"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Affiliate) TableName() string { return "affiliates" }

// BankDetails is the structured shape persisted into the bank_info column.
type BankDetails struct {
	AccountHolder string `json:"account_holder"`
	IBAN          string `json:"iban"`
	BIC           string `json:"bic"`
	BankName      string `json:"bank_name"`
}

// Overview is the admin listing row: one affiliate joined with its referral
// link and commission aggregates.
type Overview struct {
	ID               snowflake.ID    `json:"id"`
	Email            string          `json:"email"`
	Name             string          `json:"name"`
	Status           Status          `json:"status"`
	Code             string          `json:"code"`
	Clicks           int64           `json:"clicks"`
	ProspectCount    int64           `json:"prospect_count"`
	TotalCommission  decimal.Decimal `json:"total_commission"`
	UnpaidCommission decimal.Decimal `json:"unpaid_commission"`
	CreatedAt        time.Time       `json:"created_at"`
}
