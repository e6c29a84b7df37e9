package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referra/internal/referral/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, link *domain.ReferralLink) error {
	return db.WithContext(ctx).Create(link).Error
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.ReferralLink, error) {
	var link domain.ReferralLink
	err := db.WithContext(ctx).Where("code = ?", code).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *repo) FindByAffiliateID(ctx context.Context, db *gorm.DB, affiliateID snowflake.ID) (*domain.ReferralLink, error) {
	var link domain.ReferralLink
	err := db.WithContext(ctx).Where("affiliate_id = ?", affiliateID).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// IncrementClicks is a single UPDATE so concurrent clicks never lose
// increments.
func (r *repo) IncrementClicks(ctx context.Context, db *gorm.DB, code string) (int64, error) {
	result := db.WithContext(ctx).Exec(
		"UPDATE referral_links SET clicks = clicks + 1 WHERE code = ?", code,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
