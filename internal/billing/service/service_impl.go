package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referra/internal/billing/domain"
	prospectdomain "github.com/smallbiznis/referra/internal/prospect/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	ProspectRepo prospectdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	prospectRepo prospectdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("billing.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		prospectRepo: p.ProspectRepo,
	}
}

// IssueInvoice runs the whole issuance in one transaction: lock the
// prospect, write the invoice, derive and write the commission, promote the
// prospect to client. Any failure rolls everything back.
func (s *Service) IssueInvoice(ctx context.Context, req domain.IssueInvoiceRequest) (domain.IssueInvoiceResult, error) {
	prospectID, err := snowflake.ParseString(strings.TrimSpace(req.ProspectID))
	if err != nil || prospectID == 0 {
		return domain.IssueInvoiceResult{}, domain.ErrInvalidProspectID
	}
	if !req.Amount.IsPositive() || !req.Amount.Equal(req.Amount.Round(2)) {
		return domain.IssueInvoiceResult{}, domain.ErrInvalidAmount
	}

	var result domain.IssueInvoiceResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prospect, err := s.repo.FindProspectForUpdate(ctx, tx, prospectID)
		if err != nil {
			return err
		}
		if prospect == nil {
			return domain.ErrProspectNotFound
		}
		if prospect.AffiliateID == nil {
			return domain.ErrNoAffiliateAttributed
		}

		now := time.Now().UTC()
		invoice := domain.Invoice{
			ID:            s.genID.Generate(),
			ProspectID:    prospect.ID,
			Amount:        req.Amount.Round(2),
			InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
			PaidAt:        &now,
			CreatedAt:     now,
		}
		if invoice.InvoiceNumber == "" {
			invoice.InvoiceNumber = fmt.Sprintf("INV-%s-%s", now.Format("20060102"), invoice.ID)
		}
		if url := strings.TrimSpace(req.FileURL); url != "" {
			invoice.FileURL = &url
		}
		if name := strings.TrimSpace(req.FileName); name != "" {
			invoice.FileName = &name
		}
		if err := s.repo.InsertInvoice(ctx, tx, &invoice); err != nil {
			return err
		}

		commission := domain.Commission{
			ID:          s.genID.Generate(),
			AffiliateID: *prospect.AffiliateID,
			InvoiceID:   invoice.ID,
			Amount:      invoice.Amount.Mul(domain.CommissionRate).Round(2),
			Paid:        false,
			CreatedAt:   now,
		}
		if err := s.repo.InsertCommission(ctx, tx, &commission); err != nil {
			return err
		}

		if prospect.Status != prospectdomain.StatusClient {
			prospect.Status = prospectdomain.StatusClient
			prospect.UpdatedAt = now
			if err := s.prospectRepo.UpdateStatus(ctx, tx, prospect); err != nil {
				return err
			}
		}

		result = domain.IssueInvoiceResult{Invoice: invoice, Commission: commission}
		return nil
	})
	if err != nil {
		return domain.IssueInvoiceResult{}, err
	}

	s.log.Info("invoice issued",
		zap.String("invoice_id", result.Invoice.ID.String()),
		zap.String("prospect_id", result.Invoice.ProspectID.String()),
		zap.String("amount", result.Invoice.Amount.StringFixed(2)),
		zap.String("commission", result.Commission.Amount.StringFixed(2)),
	)
	return result, nil
}

func (s *Service) MarkCommissionPaid(ctx context.Context, id string) (domain.Commission, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.Commission{}, domain.ErrInvalidCommissionID
	}

	affected, err := s.repo.MarkCommissionPaid(ctx, s.db, parsed)
	if err != nil {
		return domain.Commission{}, err
	}

	commission, err := s.repo.FindCommissionByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Commission{}, err
	}
	if commission == nil {
		return domain.Commission{}, domain.ErrCommissionNotFound
	}
	if affected == 0 {
		s.log.Debug("commission already paid", zap.String("commission_id", id))
	}
	return *commission, nil
}

func (s *Service) ListInvoices(ctx context.Context) ([]domain.InvoiceDetail, error) {
	return s.repo.ListInvoices(ctx, s.db)
}

func (s *Service) ListCommissions(ctx context.Context) ([]domain.CommissionDetail, error) {
	return s.repo.ListCommissions(ctx, s.db, nil)
}

func (s *Service) ListCommissionsByAffiliate(ctx context.Context, affiliateID snowflake.ID) ([]domain.CommissionDetail, error) {
	return s.repo.ListCommissions(ctx, s.db, &affiliateID)
}

func (s *Service) CommissionTotals(ctx context.Context, affiliateID snowflake.ID) (domain.Totals, error) {
	return s.repo.CommissionTotals(ctx, s.db, affiliateID)
}
