package domain

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const codeSuffixLength = 6

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

var codePattern = regexp.MustCompile(`^[a-z0-9_.-]{1,64}$`)

// ReferralLink is the public entry point of an affiliate. Clicks is a raw
// counter updated in place, never read-modify-write.
type ReferralLink struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id,string"`
	AffiliateID snowflake.ID `gorm:"index" json:"affiliate_id,string"`
	Code        string       `gorm:"uniqueIndex" json:"code"`
	Clicks      int64        `json:"clicks"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (ReferralLink) TableName() string {
	return "referral_links"
}

// GenerateCode derives a referral code from the affiliate's name: the name
// lowercased with spaces stripped, an underscore, then six random base36
// characters. Collisions are resolved by the caller retrying.
func GenerateCode(name string) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	slug = sanitizeSlug(slug)
	if slug == "" {
		slug = "affiliate"
	}

	suffix := make([]byte, codeSuffixLength)
	max := big.NewInt(int64(len(base36)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			suffix[i] = base36[0]
			continue
		}
		suffix[i] = base36[n.Int64()]
	}
	return slug + "_" + string(suffix)
}

// ValidCode reports whether code is well formed. It does not check
// existence.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

func sanitizeSlug(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() > 32 {
		return b.String()[:32]
	}
	return b.String()
}
