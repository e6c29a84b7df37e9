package service

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referra/internal/config"
	prospectdomain "github.com/smallbiznis/referra/internal/prospect/domain"
	"github.com/smallbiznis/referra/internal/referral/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config       config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	ProspectRepo prospectdomain.Repository
}

type Service struct {
	cfg          config.Config
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	prospectRepo prospectdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:          p.Config,
		db:           p.DB,
		log:          p.Log.Named("referral.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		prospectRepo: p.ProspectRepo,
	}
}

func (s *Service) RecordClick(ctx context.Context, code string) error {
	code = normalizeCode(code)
	if !domain.ValidCode(code) {
		return domain.ErrInvalidCode
	}

	affected, err := s.repo.IncrementClicks(ctx, s.db, code)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (domain.ReferralLink, error) {
	code = normalizeCode(code)
	if !domain.ValidCode(code) {
		return domain.ReferralLink{}, domain.ErrInvalidCode
	}

	link, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.ReferralLink{}, err
	}
	if link == nil {
		return domain.ReferralLink{}, domain.ErrLinkNotFound
	}
	return *link, nil
}

func (s *Service) GetByAffiliateID(ctx context.Context, affiliateID snowflake.ID) (domain.ReferralLink, error) {
	link, err := s.repo.FindByAffiliateID(ctx, s.db, affiliateID)
	if err != nil {
		return domain.ReferralLink{}, err
	}
	if link == nil {
		return domain.ReferralLink{}, domain.ErrLinkNotFound
	}
	return *link, nil
}

// SubmitProspect stores a lead attributed to the link's affiliate and builds
// the WhatsApp handoff URL the visitor continues to.
func (s *Service) SubmitProspect(ctx context.Context, req domain.SubmitProspectRequest) (domain.SubmitProspectResult, error) {
	link, err := s.GetByCode(ctx, req.Code)
	if err != nil {
		return domain.SubmitProspectResult{}, err
	}

	name := strings.TrimSpace(req.Name)
	company := strings.TrimSpace(req.Company)
	email, err := normalizeEmail(req.Email)
	if name == "" || company == "" || err != nil {
		return domain.SubmitProspectResult{}, domain.ErrInvalidProspect
	}

	now := time.Now().UTC()
	affiliateID := link.AffiliateID
	prospect := &prospectdomain.Prospect{
		ID:          s.genID.Generate(),
		AffiliateID: &affiliateID,
		Name:        name,
		Email:       email,
		Company:     company,
		Message:     strings.TrimSpace(req.Message),
		Status:      prospectdomain.StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.prospectRepo.Insert(ctx, s.db, prospect); err != nil {
		return domain.SubmitProspectResult{}, err
	}

	s.log.Info("prospect submitted",
		zap.String("code", link.Code),
		zap.String("prospect_id", prospect.ID.String()),
	)

	return domain.SubmitProspectResult{
		ProspectID: prospect.ID,
		ContactURL: s.contactURL(name, company, email),
	}, nil
}

func (s *Service) contactURL(name, company, email string) string {
	number := s.cfg.Contact.WhatsAppNumber
	if number == "" {
		return ""
	}
	text := fmt.Sprintf(
		"Bonjour, je suis %s de %s.\nJ'aimerais discuter de vos solutions IA.\nMon email : %s",
		name, company, email,
	)
	return "https://wa.me/" + number + "?text=" + url.QueryEscape(text)
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func normalizeEmail(value string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(value))
	if err != nil {
		return "", err
	}
	return strings.ToLower(addr.Address), nil
}
