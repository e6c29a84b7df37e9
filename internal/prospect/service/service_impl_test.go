package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	affiliatedomain "github.com/smallbiznis/referra/internal/affiliate/domain"
	prospectdomain "github.com/smallbiznis/referra/internal/prospect/domain"
	prospectrepo "github.com/smallbiznis/referra/internal/prospect/repository"
	prospectservice "github.com/smallbiznis/referra/internal/prospect/service"
	"github.com/smallbiznis/referra/pkg/db/pagination"
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
		&affiliatedomain.Affiliate{},
		&prospectdomain.Prospect{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB) prospectdomain.Service {
	t.Helper()
	return prospectservice.New(prospectservice.Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: prospectrepo.Provide(),
	})
}

func seedProspects(t *testing.T, db *gorm.DB, count int) []prospectdomain.Prospect {
	t.Helper()

	node, err := snowflake.NewNode(61)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	affiliate := affiliatedomain.Affiliate{
		ID:     node.Generate(),
		UserID: node.Generate(),
		Email:  "jean@example.com",
		Name:   "Jean Dupont",
		Status: affiliatedomain.StatusApproved,
	}
	if err := db.Create(&affiliate).Error; err != nil {
		t.Fatalf("create affiliate: %v", err)
	}

	base := time.Now().UTC().Add(-time.Hour)
	out := make([]prospectdomain.Prospect, 0, count)
	for i := 0; i < count; i++ {
		prospect := prospectdomain.Prospect{
			ID:          node.Generate(),
			AffiliateID: &affiliate.ID,
			Name:        fmt.Sprintf("Prospect %d", i),
			Email:       fmt.Sprintf("p%d@example.com", i),
			Company:     "Acme",
			Status:      prospectdomain.StatusNew,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&prospect).Error; err != nil {
			t.Fatalf("create prospect: %v", err)
		}
		out = append(out, prospect)
	}
	return out
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)
	prospects := seedProspects(t, db, 1)

	transitions := []prospectdomain.Status{
		prospectdomain.StatusClient,
		prospectdomain.StatusLost,
		prospectdomain.StatusContacted,
		prospectdomain.StatusNew,
	}
	for _, status := range transitions {
		updated, err := svc.UpdateStatus(ctx, prospectdomain.UpdateStatusRequest{
			ID:     prospects[0].ID.String(),
			Status: status,
		})
		if err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("expected %s, got %s", status, updated.Status)
		}
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)
	prospects := seedProspects(t, db, 1)

	_, err := svc.UpdateStatus(ctx, prospectdomain.UpdateStatusRequest{
		ID:     prospects[0].ID.String(),
		Status: "archived",
	})
	if err != prospectdomain.ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestListPaginates(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)
	seedProspects(t, db, 5)

	page, info, err := svc.List(ctx, prospectdomain.ListRequest{
		Page: pagination.Pagination{PageSize: 3},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(page))
	}
	if !info.HasMore {
		t.Fatal("expected a following page")
	}
	if info.NextPageToken == "" {
		t.Fatal("expected a next page token")
	}

	// newest first
	if page[0].CreatedAt.Before(page[1].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}

	rest, restInfo, err := svc.List(ctx, prospectdomain.ListRequest{
		Page: pagination.Pagination{PageSize: 3, PageToken: info.NextPageToken},
	})
	if err != nil {
		t.Fatalf("list next page: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("expected 2 remaining rows, got %d", len(rest))
	}
	if restInfo.HasMore {
		t.Fatal("expected final page")
	}
}

func TestListFiltersByAffiliate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)
	prospects := seedProspects(t, db, 2)

	rows, _, err := svc.List(ctx, prospectdomain.ListRequest{
		AffiliateID: prospects[0].AffiliateID.String(),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].AffiliateName != "Jean Dupont" {
		t.Fatalf("expected joined affiliate name, got %q", rows[0].AffiliateName)
	}

	empty, _, err := svc.List(ctx, prospectdomain.ListRequest{AffiliateID: "424242"})
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no rows, got %d", len(empty))
	}
}
