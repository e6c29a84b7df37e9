package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	affiliatedomain "github.com/smallbiznis/referra/internal/affiliate/domain"
	billingdomain "github.com/smallbiznis/referra/internal/billing/domain"
	prospectdomain "github.com/smallbiznis/referra/internal/prospect/domain"
	"github.com/smallbiznis/referra/pkg/db/pagination"
)

func (s *Server) GetAdminOverview(c *gin.Context) {
	overview, err := s.affiliateSvc.ListOverview(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var (
		clicks          int64
		prospects       int64
		totalCommission = decimal.Zero
		unpaid          = decimal.Zero
	)
	for _, row := range overview {
		clicks += row.Clicks
		prospects += row.ProspectCount
		totalCommission = totalCommission.Add(row.TotalCommission)
		unpaid = unpaid.Add(row.UnpaidCommission)
	}

	c.JSON(http.StatusOK, gin.H{
		"affiliates":        len(overview),
		"clicks":            clicks,
		"prospects":         prospects,
		"total_commission":  totalCommission,
		"unpaid_commission": unpaid,
	})
}

func (s *Server) ListAffiliates(c *gin.Context) {
	overview, err := s.affiliateSvc.ListOverview(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": overview})
}

type SetAffiliateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) SetAffiliateStatus(c *gin.Context) {
	var req SetAffiliateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.affiliateSvc.SetStatus(c.Request.Context(), affiliatedomain.SetStatusRequest{
		ID:     c.Param("id"),
		Status: affiliatedomain.Status(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// SetAffiliateBankInfo lets the administrator correct payout details on an
// affiliate's behalf.
func (s *Server) SetAffiliateBankInfo(c *gin.Context) {
	var req UpdateBankInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.affiliateSvc.UpdateBankInfo(c.Request.Context(), affiliatedomain.UpdateBankInfoRequest{
		ID: c.Param("id"),
		Details: affiliatedomain.BankDetails{
			AccountHolder: req.AccountHolder,
			IBAN:          req.IBAN,
			BIC:           req.BIC,
			BankName:      req.BankName,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) ListProspects(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	prospects, pageInfo, err := s.prospectSvc.List(c.Request.Context(), prospectdomain.ListRequest{
		AffiliateID: c.Query("affiliate_id"),
		Page:        page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prospects, "page_info": pageInfo})
}

type SetProspectStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) SetProspectStatus(c *gin.Context) {
	var req SetProspectStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.prospectSvc.UpdateStatus(c.Request.Context(), prospectdomain.UpdateStatusRequest{
		ID:     c.Param("id"),
		Status: prospectdomain.Status(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) ListInvoices(c *gin.Context) {
	invoices, err := s.billingSvc.ListInvoices(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

// CreateInvoice accepts a multipart form so the billed document can ride
// along with the amount.
func (s *Server) CreateInvoice(c *gin.Context) {
	prospectID := strings.TrimSpace(c.PostForm("prospect_id"))
	rawAmount := strings.TrimSpace(c.PostForm("amount"))

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		AbortWithError(c, billingdomain.ErrInvalidAmount)
		return
	}

	req := billingdomain.IssueInvoiceRequest{
		ProspectID:    prospectID,
		Amount:        amount,
		InvoiceNumber: c.PostForm("invoice_number"),
	}

	if file, err := c.FormFile("file"); err == nil && file != nil {
		src, err := file.Open()
		if err != nil {
			AbortWithError(c, err)
			return
		}
		defer src.Close()

		url, err := s.storage.Upload(c.Request.Context(), file.Filename, src)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		req.FileURL = url
		req.FileName = file.Filename
	}

	result, err := s.billingSvc.IssueInvoice(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) ListCommissions(c *gin.Context) {
	commissions, err := s.billingSvc.ListCommissions(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": commissions})
}

func (s *Server) MarkCommissionPaid(c *gin.Context) {
	commission, err := s.billingSvc.MarkCommissionPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, commission)
}
