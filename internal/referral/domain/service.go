package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type SubmitProspectRequest struct {
	Code    string `json:"-"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Message string `json:"message"`
}

// SubmitProspectResult carries the stored prospect id and the external
// contact URL the visitor is sent to next.
type SubmitProspectResult struct {
	ProspectID snowflake.ID `json:"prospect_id,string"`
	ContactURL string       `json:"contact_url,omitempty"`
}

type Service interface {
	// RecordClick atomically bumps the click counter for code.
	RecordClick(ctx context.Context, code string) error
	GetByCode(ctx context.Context, code string) (ReferralLink, error)
	GetByAffiliateID(ctx context.Context, affiliateID snowflake.ID) (ReferralLink, error)
	SubmitProspect(ctx context.Context, req SubmitProspectRequest) (SubmitProspectResult, error)
}

var (
	ErrLinkNotFound    = errors.New("referral_link_not_found")
	ErrInvalidCode     = errors.New("invalid_referral_code")
	ErrInvalidProspect = errors.New("invalid_prospect_submission")
)
