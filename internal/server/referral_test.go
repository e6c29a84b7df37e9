package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	referraldomain "github.com/smallbiznis/referra/internal/referral/domain"
	"go.uber.org/zap"
)

type fakeReferralService struct {
	link         referraldomain.ReferralLink
	clicks       int
	submitResult referraldomain.SubmitProspectResult
	submitErr    error
}

func (f *fakeReferralService) RecordClick(ctx context.Context, code string) error {
	_ = ctx
	if code != f.link.Code {
		return referraldomain.ErrLinkNotFound
	}
	f.clicks++
	return nil
}

func (f *fakeReferralService) GetByCode(ctx context.Context, code string) (referraldomain.ReferralLink, error) {
	_ = ctx
	if code != f.link.Code {
		return referraldomain.ReferralLink{}, referraldomain.ErrLinkNotFound
	}
	link := f.link
	link.Clicks += int64(f.clicks)
	return link, nil
}

func (f *fakeReferralService) GetByAffiliateID(ctx context.Context, affiliateID snowflake.ID) (referraldomain.ReferralLink, error) {
	_ = ctx
	_ = affiliateID
	return f.link, nil
}

func (f *fakeReferralService) SubmitProspect(ctx context.Context, req referraldomain.SubmitProspectRequest) (referraldomain.SubmitProspectResult, error) {
	_ = ctx
	_ = req
	if f.submitErr != nil {
		return referraldomain.SubmitProspectResult{}, f.submitErr
	}
	return f.submitResult, nil
}

func newReferralTestServer(svc referraldomain.Service) (*Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		log:         zap.NewNop(),
		referralSvc: svc,
	}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/public/ref/:code", srv.TrackReferralClick)
	router.POST("/public/ref/:code/prospects", srv.SubmitProspect)
	return srv, router
}

func TestTrackReferralClickCountsVisit(t *testing.T) {
	svc := &fakeReferralService{
		link: referraldomain.ReferralLink{Code: "jean_ab12cd", Clicks: 4},
	}
	_, router := newReferralTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/public/ref/jean_ab12cd", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if svc.clicks != 1 {
		t.Fatalf("expected one recorded click, got %d", svc.clicks)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["code"] != "jean_ab12cd" {
		t.Fatalf("unexpected code %v", body["code"])
	}
	// stored count after the increment, not the stale pre-click read
	if body["clicks"] != float64(5) {
		t.Fatalf("expected 5 clicks, got %v", body["clicks"])
	}
}

func TestTrackReferralClickUnknownCodeReturns404(t *testing.T) {
	svc := &fakeReferralService{
		link: referraldomain.ReferralLink{Code: "jean_ab12cd"},
	}
	_, router := newReferralTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/public/ref/nobody_zzzzzz", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if svc.clicks != 0 {
		t.Fatal("unknown code must not count a click")
	}
}

func TestSubmitProspectReturnsContactURL(t *testing.T) {
	svc := &fakeReferralService{
		link: referraldomain.ReferralLink{Code: "jean_ab12cd"},
		submitResult: referraldomain.SubmitProspectResult{
			ProspectID: snowflake.ID(7),
			ContactURL: "https://wa.me/33612345678?text=Bonjour",
		},
	}
	_, router := newReferralTestServer(svc)

	payload := `{"name":"Alice","email":"alice@example.com","company":"Acme"}`
	req := httptest.NewRequest(http.MethodPost, "/public/ref/jean_ab12cd/prospects", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["contact_url"] != "https://wa.me/33612345678?text=Bonjour" {
		t.Fatalf("unexpected contact_url %v", body["contact_url"])
	}
}

func TestSubmitProspectInvalidPayloadReturns400(t *testing.T) {
	svc := &fakeReferralService{
		link:      referraldomain.ReferralLink{Code: "jean_ab12cd"},
		submitErr: referraldomain.ErrInvalidProspect,
	}
	_, router := newReferralTestServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/public/ref/jean_ab12cd/prospects", bytes.NewBufferString(`{"name":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
