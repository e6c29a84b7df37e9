package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, affiliate *Affiliate) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Affiliate, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Affiliate, error)
	Update(ctx context.Context, db *gorm.DB, affiliate *Affiliate) error
	ListOverview(ctx context.Context, db *gorm.DB) ([]Overview, error)
}
