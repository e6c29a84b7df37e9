package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referra/internal/billing/domain"
	prospectdomain "github.com/smallbiznis/referra/internal/prospect/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindProspectForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*prospectdomain.Prospect, error) {
	var prospect prospectdomain.Prospect
	err := forUpdate(tx.WithContext(ctx)).
		Where("id = ?", id).
		First(&prospect).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prospect, nil
}

func (r *repo) InsertInvoice(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) InsertCommission(ctx context.Context, db *gorm.DB, commission *domain.Commission) error {
	return db.WithContext(ctx).Create(commission).Error
}

func (r *repo) FindCommissionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Commission, error) {
	var commission domain.Commission
	err := db.WithContext(ctx).Where("id = ?", id).First(&commission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// MarkCommissionPaid only touches unpaid rows, so repeats keep the original
// paid timestamp.
func (r *repo) MarkCommissionPaid(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(
		"UPDATE commissions SET paid = ?, paid_at = ? WHERE id = ? AND paid = ?",
		true, time.Now().UTC(), id, false,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) ListInvoices(ctx context.Context, db *gorm.DB) ([]domain.InvoiceDetail, error) {
	var rows []domain.InvoiceDetail
	err := db.WithContext(ctx).
		Table("invoices i").
		Select("i.*, p.name AS prospect_name, p.company AS prospect_company").
		Joins("JOIN prospects p ON p.id = i.prospect_id").
		Order("i.created_at DESC, i.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ListCommissions(ctx context.Context, db *gorm.DB, affiliateID *snowflake.ID) ([]domain.CommissionDetail, error) {
	stmt := db.WithContext(ctx).
		Table("commissions c").
		Select(`c.*, i.invoice_number, i.amount AS invoice_amount,
			p.name AS prospect_name, a.name AS affiliate_name`).
		Joins("JOIN invoices i ON i.id = c.invoice_id").
		Joins("JOIN prospects p ON p.id = i.prospect_id").
		Joins("JOIN affiliates a ON a.id = c.affiliate_id").
		Order("c.created_at DESC, c.id DESC")
	if affiliateID != nil {
		stmt = stmt.Where("c.affiliate_id = ?", *affiliateID)
	}

	var rows []domain.CommissionDetail
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) CommissionTotals(ctx context.Context, db *gorm.DB, affiliateID snowflake.ID) (domain.Totals, error) {
	var totals domain.Totals
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) AS total,
		        COALESCE(SUM(CASE WHEN paid THEN 0 ELSE amount END), 0) AS unpaid,
		        COALESCE(SUM(CASE WHEN paid THEN amount ELSE 0 END), 0) AS paid
		 FROM commissions WHERE affiliate_id = ?`, affiliateID,
	).Scan(&totals).Error
	if err != nil {
		return domain.Totals{}, err
	}
	return totals, nil
}

// sqlite has no row locks; its write transactions already serialize.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
