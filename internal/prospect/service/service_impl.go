package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referra/internal/prospect/domain"
	"github.com/smallbiznis/referra/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("prospect.service"),
		repo: p.Repo,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Prospect, error) {
	parsed, err := parseID(id)
	if err != nil {
		return domain.Prospect{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Prospect{}, err
	}
	if item == nil {
		return domain.Prospect{}, domain.ErrNotFound
	}
	return *item, nil
}

// UpdateStatus allows any transition between known statuses, including
// moving a prospect back out of client.
func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.Prospect, error) {
	if !req.Status.Valid() {
		return domain.Prospect{}, domain.ErrInvalidStatus
	}

	parsed, err := parseID(req.ID)
	if err != nil {
		return domain.Prospect{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Prospect{}, err
	}
	if item == nil {
		return domain.Prospect{}, domain.ErrNotFound
	}

	item.Status = req.Status
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, s.db, item); err != nil {
		return domain.Prospect{}, err
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]*domain.Detail, *pagination.PageInfo, error) {
	var affiliateID *snowflake.ID
	if strings.TrimSpace(req.AffiliateID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(req.AffiliateID))
		if err != nil {
			return nil, nil, domain.ErrInvalidID
		}
		affiliateID = &parsed
	}
	return s.repo.List(ctx, s.db, affiliateID, req.Page)
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
