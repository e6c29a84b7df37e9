package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type SetStatusRequest struct {
	ID     string
	Status Status
}

type UpdateBankInfoRequest struct {
	ID      string
	Details BankDetails
}

type Service interface {
	GetByID(ctx context.Context, id string) (Affiliate, error)
	GetByUserID(ctx context.Context, userID snowflake.ID) (Affiliate, error)
	SetStatus(ctx context.Context, req SetStatusRequest) (Affiliate, error)
	UpdateBankInfo(ctx context.Context, req UpdateBankInfoRequest) (Affiliate, error)
	ListOverview(ctx context.Context) ([]Overview, error)
}

var (
	ErrNotFound           = errors.New("affiliate_not_found")
	ErrInvalidID          = errors.New("invalid_affiliate_id")
	ErrInvalidStatus      = errors.New("invalid_affiliate_status")
	ErrInvalidBankDetails = errors.New("invalid_bank_details")
)
