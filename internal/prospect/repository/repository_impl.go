package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referra/internal/prospect/domain"
	"github.com/smallbiznis/referra/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, prospect *domain.Prospect) error {
	return db.WithContext(ctx).Create(prospect).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Prospect, error) {
	var prospect domain.Prospect
	err := db.WithContext(ctx).Where("id = ?", id).First(&prospect).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prospect, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, prospect *domain.Prospect) error {
	return db.WithContext(ctx).
		Model(&domain.Prospect{}).
		Where("id = ?", prospect.ID).
		Updates(map[string]any{
			"status":     prospect.Status,
			"updated_at": prospect.UpdatedAt,
		}).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, affiliateID *snowflake.ID, page pagination.Pagination) ([]*domain.Detail, *pagination.PageInfo, error) {
	stmt := db.WithContext(ctx).
		Table("prospects p").
		Select("p.*, COALESCE(a.name, '') AS affiliate_name").
		Joins("LEFT JOIN affiliates a ON a.id = p.affiliate_id").
		Order("p.created_at DESC, p.id DESC")
	if affiliateID != nil {
		stmt = stmt.Where("p.affiliate_id = ?", *affiliateID)
	}
	stmt = pagination.ApplyColumn(stmt, page, "p.created_at")

	var rows []*domain.Detail
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, nil, err
	}

	limit := pagination.Limit(page)
	pageInfo := pagination.BuildCursorPageInfo(rows, limit, func(d *domain.Detail) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        d.ID.String(),
			CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		return token
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, pageInfo, nil
}
