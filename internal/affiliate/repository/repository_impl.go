package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referra/internal/affiliate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, affiliate *domain.Affiliate) error {
	return db.WithContext(ctx).Create(affiliate).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Affiliate, error) {
	var affiliate domain.Affiliate
	err := db.WithContext(ctx).Where("id = ?", id).First(&affiliate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &affiliate, nil
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Affiliate, error) {
	var affiliate domain.Affiliate
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&affiliate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &affiliate, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, affiliate *domain.Affiliate) error {
	return db.WithContext(ctx).
		Model(&domain.Affiliate{}).
		Where("id = ?", affiliate.ID).
		Updates(map[string]any{
			"status":     affiliate.Status,
			"bank_info":  affiliate.BankInfo,
			"updated_at": affiliate.UpdatedAt,
		}).Error
}

func (r *repo) ListOverview(ctx context.Context, db *gorm.DB) ([]domain.Overview, error) {
	var rows []domain.Overview
	err := db.WithContext(ctx).Raw(
		`SELECT a.id, a.email, a.name, a.status, a.created_at,
		        COALESCE(rl.code, '') AS code,
		        COALESCE(rl.clicks, 0) AS clicks,
		        (SELECT COUNT(*) FROM prospects p WHERE p.affiliate_id = a.id) AS prospect_count,
		        COALESCE((SELECT SUM(c.amount) FROM commissions c WHERE c.affiliate_id = a.id), 0) AS total_commission,
		        COALESCE((SELECT SUM(c.amount) FROM commissions c WHERE c.affiliate_id = a.id AND NOT c.paid), 0) AS unpaid_commission
		 FROM affiliates a
		 LEFT JOIN referral_links rl ON rl.affiliate_id = a.id
		 ORDER BY a.created_at DESC, a.id DESC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
