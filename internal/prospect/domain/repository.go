package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referra/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, prospect *Prospect) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Prospect, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, prospect *Prospect) error
	List(ctx context.Context, db *gorm.DB, affiliateID *snowflake.ID, page pagination.Pagination) ([]*Detail, *pagination.PageInfo, error)
}
