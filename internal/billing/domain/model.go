package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CommissionRate is the flat share of every invoice credited to the
// referring affiliate.
var CommissionRate = decimal.NewFromFloat(0.20)

// Invoice records a billed amount for a converted prospect. PaidAt is set
// when the invoice is issued; issuing implies the money moved.
type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id,string"`
	ProspectID    snowflake.ID    `gorm:"index" json:"prospect_id,string"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`
	InvoiceNumber string          `json:"invoice_number"`
	FileURL       *string         `json:"file_url,omitempty"`
	FileName      *string         `json:"file_name,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// Commission is the affiliate's cut of one invoice. Paid flips exactly once.
type Commission struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id,string"`
	AffiliateID snowflake.ID    `gorm:"index" json:"affiliate_id,string"`
	InvoiceID   snowflake.ID    `gorm:"index" json:"invoice_id,string"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`
	Paid        bool            `json:"paid"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (Commission) TableName() string {
	return "commissions"
}

// InvoiceDetail joins an invoice with its prospect for listings.
type InvoiceDetail struct {
	Invoice
	ProspectName    string `json:"prospect_name"`
	ProspectCompany string `json:"prospect_company"`
}

// CommissionDetail joins a commission with the invoice and prospect it came
// from.
type CommissionDetail struct {
	Commission
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceAmount decimal.Decimal `json:"invoice_amount"`
	ProspectName  string          `json:"prospect_name"`
	AffiliateName string          `json:"affiliate_name"`
}

// Totals aggregates commission amounts for one affiliate.
type Totals struct {
	Total  decimal.Decimal `json:"total"`
	Unpaid decimal.Decimal `json:"unpaid"`
	Paid   decimal.Decimal `json:"paid"`
}
