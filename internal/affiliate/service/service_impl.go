package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referra/internal/affiliate/domain"
	"github.com/smallbiznis/referra/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Email email.Provider
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	email email.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("affiliate.service"),
		repo:  p.Repo,
		email: p.Email,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Affiliate, error) {
	parsed, err := parseID(id)
	if err != nil {
		return domain.Affiliate{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Affiliate{}, err
	}
	if item == nil {
		return domain.Affiliate{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) GetByUserID(ctx context.Context, userID snowflake.ID) (domain.Affiliate, error) {
	item, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.Affiliate{}, err
	}
	if item == nil {
		return domain.Affiliate{}, domain.ErrNotFound
	}
	return *item, nil
}

// SetStatus records the new status. Any transition is allowed; the gate only
// records, enforcement happens at request time in the session layer.
func (s *Service) SetStatus(ctx context.Context, req domain.SetStatusRequest) (domain.Affiliate, error) {
	if !req.Status.Valid() {
		return domain.Affiliate{}, domain.ErrInvalidStatus
	}

	parsed, err := parseID(req.ID)
	if err != nil {
		return domain.Affiliate{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Affiliate{}, err
	}
	if item == nil {
		return domain.Affiliate{}, domain.ErrNotFound
	}

	previous := item.Status
	item.Status = req.Status
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Affiliate{}, err
	}

	if previous != domain.StatusApproved && req.Status == domain.StatusApproved {
		s.notifyApproved(ctx, *item)
	}

	return *item, nil
}

func (s *Service) UpdateBankInfo(ctx context.Context, req domain.UpdateBankInfoRequest) (domain.Affiliate, error) {
	parsed, err := parseID(req.ID)
	if err != nil {
		return domain.Affiliate{}, err
	}

	details := req.Details
	details.AccountHolder = strings.TrimSpace(details.AccountHolder)
	details.IBAN = strings.ToUpper(strings.ReplaceAll(details.IBAN, " ", ""))
	details.BIC = strings.ToUpper(strings.TrimSpace(details.BIC))
	details.BankName = strings.TrimSpace(details.BankName)
	if details.AccountHolder == "" || details.IBAN == "" {
		return domain.Affiliate{}, domain.ErrInvalidBankDetails
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Affiliate{}, err
	}
	if item == nil {
		return domain.Affiliate{}, domain.ErrNotFound
	}

	item.BankInfo = datatypes.JSONMap{
		"account_holder": details.AccountHolder,
		"iban":           details.IBAN,
		"bic":            details.BIC,
		"bank_name":      details.BankName,
	}
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Affiliate{}, err
	}

	return *item, nil
}

func (s *Service) ListOverview(ctx context.Context) ([]domain.Overview, error) {
	return s.repo.ListOverview(ctx, s.db)
}

// notifyApproved is best effort; a failed email never rolls back the status.
func (s *Service) notifyApproved(ctx context.Context, affiliate domain.Affiliate) {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your affiliate account has been approved. Your referral link is now active.</p>",
		affiliate.Name,
	)
	if err := s.email.Send(ctx, []string{affiliate.Email}, "Your affiliate account is approved", body); err != nil {
		s.log.Warn("send approval email",
			zap.String("affiliate_id", affiliate.ID.String()),
			zap.Error(err),
		)
	}
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
