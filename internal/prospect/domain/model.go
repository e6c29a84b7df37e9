package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusClient    Status = "client"
	StatusLost      Status = "lost"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusClient, StatusLost:
		return true
	}
	return false
}

// Prospect is a lead submitted through a referral link. AffiliateID is nil
// when the submitting affiliate has since been deleted.
type Prospect struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id,string"`
	AffiliateID *snowflake.ID `gorm:"index" json:"affiliate_id,string,omitempty"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Company     string        `json:"company"`
	Message     string        `json:"message,omitempty"`
	Status      Status        `gorm:"default:new" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (Prospect) TableName() string {
	return "prospects"
}

// Detail is a prospect joined with the name of the affiliate that referred
// it, for admin listings.
type Detail struct {
	Prospect
	AffiliateName string `json:"affiliate_name,omitempty"`
}
