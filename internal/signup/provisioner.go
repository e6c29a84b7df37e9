package signup

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	affiliatedomain "github.com/smallbiznis/referra/internal/affiliate/domain"
	authdomain "github.com/smallbiznis/referra/internal/auth/domain"
	referraldomain "github.com/smallbiznis/referra/internal/referral/domain"
	"github.com/smallbiznis/referra/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// codeAttempts bounds the collision retry when minting a referral code.
const codeAttempts = 5

type Request struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Result struct {
	User      *authdomain.User             `json:"user"`
	Affiliate *affiliatedomain.Affiliate   `json:"affiliate"`
	Link      *referraldomain.ReferralLink `json:"referral_link"`
}

type Provisioner interface {
	// SignUp creates the user, its pending affiliate profile and its
	// referral link atomically.
	SignUp(ctx context.Context, req Request) (*Result, error)
}

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Auth          authdomain.Service
	AffiliateRepo affiliatedomain.Repository
	ReferralRepo  referraldomain.Repository
}

type provisioner struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	auth          authdomain.Service
	affiliateRepo affiliatedomain.Repository
	referralRepo  referraldomain.Repository
}

func New(p Params) Provisioner {
	return &provisioner{
		db:            p.DB,
		log:           p.Log.Named("signup.provisioner"),
		genID:         p.GenID,
		auth:          p.Auth,
		affiliateRepo: p.AffiliateRepo,
		referralRepo:  p.ReferralRepo,
	}
}

func (s *provisioner) SignUp(ctx context.Context, req Request) (*Result, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, authdomain.ErrInvalidCredentials
	}

	var result Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.auth.CreateUser(ctx, tx, authdomain.CreateUserRequest{
			Email:       req.Email,
			Password:    req.Password,
			DisplayName: name,
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		affiliate := &affiliatedomain.Affiliate{
			ID:        s.genID.Generate(),
			UserID:    user.ID,
			Email:     user.Email,
			Name:      name,
			Status:    affiliatedomain.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.affiliateRepo.Insert(ctx, tx, affiliate); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return authdomain.ErrUserExists
			}
			return err
		}

		link, err := s.mintLink(ctx, tx, affiliate)
		if err != nil {
			return err
		}

		result = Result{User: user, Affiliate: affiliate, Link: link}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("affiliate signed up",
		zap.String("affiliate_id", result.Affiliate.ID.String()),
		zap.String("code", result.Link.Code),
	)
	return &result, nil
}

// mintLink probes candidate codes before inserting; a failed insert would
// abort the surrounding transaction on postgres. The unique index stays the
// backstop for the rare race between probe and insert.
func (s *provisioner) mintLink(ctx context.Context, tx *gorm.DB, affiliate *affiliatedomain.Affiliate) (*referraldomain.ReferralLink, error) {
	code := ""
	for i := 0; i < codeAttempts; i++ {
		candidate := referraldomain.GenerateCode(affiliate.Name)
		existing, err := s.referralRepo.FindByCode(ctx, tx, candidate)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			code = candidate
			break
		}
	}
	if code == "" {
		return nil, referraldomain.ErrInvalidCode
	}

	link := &referraldomain.ReferralLink{
		ID:          s.genID.Generate(),
		AffiliateID: affiliate.ID,
		Code:        code,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.referralRepo.Insert(ctx, tx, link); err != nil {
		return nil, err
	}
	return link, nil
}
