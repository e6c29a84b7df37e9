package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/referra/pkg/db/pagination"
)

type UpdateStatusRequest struct {
	ID     string
	Status Status
}

type ListRequest struct {
	// AffiliateID filters to a single affiliate when non empty.
	AffiliateID string
	Page        pagination.Pagination
}

type Service interface {
	GetByID(ctx context.Context, id string) (Prospect, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (Prospect, error)
	List(ctx context.Context, req ListRequest) ([]*Detail, *pagination.PageInfo, error)
}

var (
	ErrNotFound      = errors.New("prospect_not_found")
	ErrInvalidID     = errors.New("invalid_prospect_id")
	ErrInvalidStatus = errors.New("invalid_prospect_status")
)
