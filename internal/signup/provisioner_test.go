package signup_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	affiliatedomain "github.com/smallbiznis/referra/internal/affiliate/domain"
	affiliaterepo "github.com/smallbiznis/referra/internal/affiliate/repository"
	authdomain "github.com/smallbiznis/referra/internal/auth/domain"
	authrepo "github.com/smallbiznis/referra/internal/auth/repository"
	authservice "github.com/smallbiznis/referra/internal/auth/service"
	referraldomain "github.com/smallbiznis/referra/internal/referral/domain"
	referralrepo "github.com/smallbiznis/referra/internal/referral/repository"
	"github.com/smallbiznis/referra/internal/signup"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&affiliatedomain.Affiliate{},
		&referraldomain.ReferralLink{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newProvisioner(t *testing.T, db *gorm.DB) signup.Provisioner {
	t.Helper()

	node, err := snowflake.NewNode(31)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	authSvc := authservice.New(authservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        authrepo.Provide(),
		SessionRepo: authrepo.ProvideSessions(),
	})

	return signup.New(signup.Params{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Auth:          authSvc,
		AffiliateRepo: affiliaterepo.Provide(),
		ReferralRepo:  referralrepo.Provide(),
	})
}

func TestSignUpProvisionsUserAffiliateAndLink(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	provisioner := newProvisioner(t, db)

	result, err := provisioner.SignUp(ctx, signup.Request{
		Name:     "Jean Dupont",
		Email:    "jean@example.com",
		Password: "s3cret!",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if result.User.Email != "jean@example.com" {
		t.Fatalf("unexpected user email %q", result.User.Email)
	}
	if result.Affiliate.Status != affiliatedomain.StatusPending {
		t.Fatalf("new affiliate must be pending, got %s", result.Affiliate.Status)
	}
	if result.Affiliate.UserID != result.User.ID {
		t.Fatal("affiliate must belong to the new user")
	}
	if !strings.HasPrefix(result.Link.Code, "jeandupont_") {
		t.Fatalf("unexpected referral code %q", result.Link.Code)
	}
	if result.Link.AffiliateID != result.Affiliate.ID {
		t.Fatal("link must belong to the new affiliate")
	}

	var links int64
	if err := db.Model(&referraldomain.ReferralLink{}).Count(&links).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}
	if links != 1 {
		t.Fatalf("expected one link, got %d", links)
	}
}

func TestSignUpDuplicateEmailRollsBack(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	provisioner := newProvisioner(t, db)

	if _, err := provisioner.SignUp(ctx, signup.Request{
		Name:     "Jean Dupont",
		Email:    "jean@example.com",
		Password: "s3cret!",
	}); err != nil {
		t.Fatalf("first sign up: %v", err)
	}

	_, err := provisioner.SignUp(ctx, signup.Request{
		Name:     "Other Jean",
		Email:    "jean@example.com",
		Password: "s3cret!",
	})
	if err != authdomain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	var affiliates int64
	if err := db.Model(&affiliatedomain.Affiliate{}).Count(&affiliates).Error; err != nil {
		t.Fatalf("count affiliates: %v", err)
	}
	if affiliates != 1 {
		t.Fatalf("expected one affiliate after failed sign up, got %d", affiliates)
	}
}

func TestSignUpRequiresName(t *testing.T) {
	db := setupTestDB(t)
	provisioner := newProvisioner(t, db)

	_, err := provisioner.SignUp(context.Background(), signup.Request{
		Name:     "  ",
		Email:    "jean@example.com",
		Password: "s3cret!",
	})
	if err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
