package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	prospectdomain "github.com/smallbiznis/referra/internal/prospect/domain"
	"gorm.io/gorm"
)

type Repository interface {
	// FindProspectForUpdate locks the prospect row for the length of the
	// surrounding transaction.
	FindProspectForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*prospectdomain.Prospect, error)
	InsertInvoice(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	InsertCommission(ctx context.Context, db *gorm.DB, commission *Commission) error
	FindCommissionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Commission, error)
	// MarkCommissionPaid returns the rows touched; zero means the row was
	// missing or already paid.
	MarkCommissionPaid(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	ListInvoices(ctx context.Context, db *gorm.DB) ([]InvoiceDetail, error)
	ListCommissions(ctx context.Context, db *gorm.DB, affiliateID *snowflake.ID) ([]CommissionDetail, error)
	CommissionTotals(ctx context.Context, db *gorm.DB, affiliateID snowflake.ID) (Totals, error)
}
