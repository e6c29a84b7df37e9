package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	affiliatedomain "github.com/smallbiznis/referra/internal/affiliate/domain"
	billingdomain "github.com/smallbiznis/referra/internal/billing/domain"
	billingrepo "github.com/smallbiznis/referra/internal/billing/repository"
	billingservice "github.com/smallbiznis/referra/internal/billing/service"
	prospectdomain "github.com/smallbiznis/referra/internal/prospect/domain"
	prospectrepo "github.com/smallbiznis/referra/internal/prospect/repository"
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
		&billingdomain.Invoice{},
		&billingdomain.Commission{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB) billingdomain.Service {
	t.Helper()

	node, err := snowflake.NewNode(21)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return billingservice.New(billingservice.Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         billingrepo.Provide(),
		ProspectRepo: prospectrepo.Provide(),
	})
}

func seedProspect(t *testing.T, db *gorm.DB, withAffiliate bool) prospectdomain.Prospect {
	t.Helper()

	node, err := snowflake.NewNode(22)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	prospect := prospectdomain.Prospect{
		ID:      node.Generate(),
		Name:    "Alice Martin",
		Email:   "alice@example.com",
		Company: "Acme",
		Status:  prospectdomain.StatusQualified,
	}
	if withAffiliate {
		affiliate := affiliatedomain.Affiliate{
			ID:     node.Generate(),
			UserID: node.Generate(),
			Email:  fmt.Sprintf("aff_%d@example.com", node.Generate()),
			Name:   "Jean Dupont",
			Status: affiliatedomain.StatusApproved,
		}
		if err := db.Create(&affiliate).Error; err != nil {
			t.Fatalf("create affiliate: %v", err)
		}
		prospect.AffiliateID = &affiliate.ID
	}
	if err := db.Create(&prospect).Error; err != nil {
		t.Fatalf("create prospect: %v", err)
	}
	return prospect
}

func TestIssueInvoiceCreatesCommissionAndPromotesProspect(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)
	prospect := seedProspect(t, db, true)

	result, err := svc.IssueInvoice(ctx, billingdomain.IssueInvoiceRequest{
		ProspectID: prospect.ID.String(),
		Amount:     decimal.RequireFromString("1000.00"),
	})
	if err != nil {
		t.Fatalf("issue invoice: %v", err)
	}

	if !result.Commission.Amount.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("expected commission 200.00, got %s", result.Commission.Amount)
	}
	if result.Commission.AffiliateID != *prospect.AffiliateID {
		t.Fatalf("commission attributed to wrong affiliate")
	}
	if result.Commission.Paid {
		t.Fatal("new commission must be unpaid")
	}
	if result.Invoice.PaidAt == nil {
		t.Fatal("invoice must be stamped paid at issuance")
	}
	if result.Invoice.InvoiceNumber == "" {
		t.Fatal("invoice number must be generated when omitted")
	}

	var reloaded prospectdomain.Prospect
	if err := db.Where("id = ?", prospect.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload prospect: %v", err)
	}
	if reloaded.Status != prospectdomain.StatusClient {
		t.Fatalf("expected prospect promoted to client, got %s", reloaded.Status)
	}
}

func TestIssueInvoiceRoundsCommission(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)
	prospect := seedProspect(t, db, true)

	result, err := svc.IssueInvoice(ctx, billingdomain.IssueInvoiceRequest{
		ProspectID: prospect.ID.String(),
		Amount:     decimal.RequireFromString("99.99"),
	})
	if err != nil {
		t.Fatalf("issue invoice: %v", err)
	}
	// 99.99 * 0.20 = 19.998 -> 20.00
	if !result.Commission.Amount.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("expected commission 20.00, got %s", result.Commission.Amount)
	}
}

func TestIssueInvoiceWithoutAffiliatePersistsNothing(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)
	prospect := seedProspect(t, db, false)

	_, err := svc.IssueInvoice(ctx, billingdomain.IssueInvoiceRequest{
		ProspectID: prospect.ID.String(),
		Amount:     decimal.RequireFromString("500.00"),
	})
	if err != billingdomain.ErrNoAffiliateAttributed {
		t.Fatalf("expected ErrNoAffiliateAttributed, got %v", err)
	}

	var invoices int64
	if err := db.Model(&billingdomain.Invoice{}).Count(&invoices).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	if invoices != 0 {
		t.Fatalf("expected no invoice rows, got %d", invoices)
	}

	var reloaded prospectdomain.Prospect
	if err := db.Where("id = ?", prospect.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload prospect: %v", err)
	}
	if reloaded.Status != prospectdomain.StatusQualified {
		t.Fatalf("prospect status must be unchanged, got %s", reloaded.Status)
	}
}

func TestIssueInvoiceInvalidAmount(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)
	prospect := seedProspect(t, db, true)

	for _, raw := range []string{"0", "-10.00", "10.123"} {
		_, err := svc.IssueInvoice(ctx, billingdomain.IssueInvoiceRequest{
			ProspectID: prospect.ID.String(),
			Amount:     decimal.RequireFromString(raw),
		})
		if err != billingdomain.ErrInvalidAmount {
			t.Fatalf("amount %s: expected ErrInvalidAmount, got %v", raw, err)
		}
	}
}

func TestIssueInvoiceUnknownProspect(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db)

	_, err := svc.IssueInvoice(context.Background(), billingdomain.IssueInvoiceRequest{
		ProspectID: "123456789",
		Amount:     decimal.RequireFromString("10.00"),
	})
	if err != billingdomain.ErrProspectNotFound {
		t.Fatalf("expected ErrProspectNotFound, got %v", err)
	}
}

func TestMarkCommissionPaidIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)
	prospect := seedProspect(t, db, true)

	result, err := svc.IssueInvoice(ctx, billingdomain.IssueInvoiceRequest{
		ProspectID: prospect.ID.String(),
		Amount:     decimal.RequireFromString("1000.00"),
	})
	if err != nil {
		t.Fatalf("issue invoice: %v", err)
	}

	first, err := svc.MarkCommissionPaid(ctx, result.Commission.ID.String())
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !first.Paid || first.PaidAt == nil {
		t.Fatal("commission must be paid with a timestamp")
	}

	second, err := svc.MarkCommissionPaid(ctx, result.Commission.ID.String())
	if err != nil {
		t.Fatalf("mark paid again: %v", err)
	}
	if !second.PaidAt.Equal(*first.PaidAt) {
		t.Fatalf("repeat must keep the first timestamp: %v vs %v", second.PaidAt, first.PaidAt)
	}
}

func TestMarkCommissionPaidUnknown(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db)

	_, err := svc.MarkCommissionPaid(context.Background(), "987654321")
	if err != billingdomain.ErrCommissionNotFound {
		t.Fatalf("expected ErrCommissionNotFound, got %v", err)
	}
}

func TestCommissionTotals(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)
	prospect := seedProspect(t, db, true)

	first, err := svc.IssueInvoice(ctx, billingdomain.IssueInvoiceRequest{
		ProspectID: prospect.ID.String(),
		Amount:     decimal.RequireFromString("1000.00"),
	})
	if err != nil {
		t.Fatalf("issue invoice: %v", err)
	}
	if _, err := svc.IssueInvoice(ctx, billingdomain.IssueInvoiceRequest{
		ProspectID: prospect.ID.String(),
		Amount:     decimal.RequireFromString("500.00"),
	}); err != nil {
		t.Fatalf("issue second invoice: %v", err)
	}
	if _, err := svc.MarkCommissionPaid(ctx, first.Commission.ID.String()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	totals, err := svc.CommissionTotals(ctx, first.Commission.AffiliateID)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.Total.Equal(decimal.RequireFromString("300.00")) {
		t.Fatalf("expected total 300.00, got %s", totals.Total)
	}
	if !totals.Paid.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("expected paid 200.00, got %s", totals.Paid)
	}
	if !totals.Unpaid.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected unpaid 100.00, got %s", totals.Unpaid)
	}
}
