package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type IssueInvoiceRequest struct {
	ProspectID    string
	Amount        decimal.Decimal
	InvoiceNumber string
	FileURL       string
	FileName      string
}

// IssueInvoiceResult returns both rows written by one issuance.
type IssueInvoiceResult struct {
	Invoice    Invoice    `json:"invoice"`
	Commission Commission `json:"commission"`
}

type Service interface {
	// IssueInvoice writes the invoice, its commission and the prospect's
	// client status in one transaction. Nothing persists on any failure.
	IssueInvoice(ctx context.Context, req IssueInvoiceRequest) (IssueInvoiceResult, error)
	// MarkCommissionPaid is idempotent; repeats keep the first paid
	// timestamp.
	MarkCommissionPaid(ctx context.Context, id string) (Commission, error)
	ListInvoices(ctx context.Context) ([]InvoiceDetail, error)
	ListCommissions(ctx context.Context) ([]CommissionDetail, error)
	ListCommissionsByAffiliate(ctx context.Context, affiliateID snowflake.ID) ([]CommissionDetail, error)
	CommissionTotals(ctx context.Context, affiliateID snowflake.ID) (Totals, error)
}

var (
	ErrInvalidAmount         = errors.New("invalid_invoice_amount")
	ErrProspectNotFound      = errors.New("prospect_not_found")
	ErrNoAffiliateAttributed = errors.New("prospect_has_no_affiliate")
	ErrCommissionNotFound    = errors.New("commission_not_found")
	ErrInvalidCommissionID   = errors.New("invalid_commission_id")
	ErrInvalidProspectID     = errors.New("invalid_prospect_id")
)
