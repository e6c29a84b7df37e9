package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, link *ReferralLink) error
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*ReferralLink, error)
	FindByAffiliateID(ctx context.Context, db *gorm.DB, affiliateID snowflake.ID) (*ReferralLink, error)
	// IncrementClicks returns the number of rows touched, zero when code is
	// unknown.
	IncrementClicks(ctx context.Context, db *gorm.DB, code string) (int64, error)
}
