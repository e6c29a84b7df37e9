package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	affiliatedomain "github.com/smallbiznis/referra/internal/affiliate/domain"
	prospectdomain "github.com/smallbiznis/referra/internal/prospect/domain"
	"github.com/smallbiznis/referra/internal/providers/pdf"
	referraldomain "github.com/smallbiznis/referra/internal/referral/domain"
)

func (s *Server) GetDashboardOverview(c *gin.Context) {
	item, ok := currentAffiliate(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	link, err := s.referralSvc.GetByAffiliateID(c.Request.Context(), item.ID)
	if err != nil && !errors.Is(err, referraldomain.ErrLinkNotFound) {
		AbortWithError(c, err)
		return
	}

	totals, err := s.billingSvc.CommissionTotals(c.Request.Context(), item.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	prospects, _, err := s.prospectSvc.List(c.Request.Context(), prospectdomain.ListRequest{
		AffiliateID: item.ID.String(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := gin.H{
		"affiliate":   item,
		"commissions": totals,
		"prospects":   prospects,
	}
	if link.Code != "" {
		resp["referral_link"] = gin.H{
			"code":   link.Code,
			"clicks": link.Clicks,
			"url":    s.cfg.PublicBaseURL + "/public/ref/" + link.Code,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListMyCommissions(c *gin.Context) {
	item, ok := currentAffiliate(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	commissions, err := s.billingSvc.ListCommissionsByAffiliate(c.Request.Context(), item.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": commissions})
}

type UpdateBankInfoRequest struct {
	AccountHolder string `json:"account_holder"`
	IBAN          string `json:"iban"`
	BIC           string `json:"bic"`
	BankName      string `json:"bank_name"`
}

func (s *Server) UpdateMyBankInfo(c *gin.Context) {
	item, ok := currentAffiliate(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req UpdateBankInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.affiliateSvc.UpdateBankInfo(c.Request.Context(), affiliatedomain.UpdateBankInfoRequest{
		ID: item.ID.String(),
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

func (s *Server) DownloadCommissionStatement(c *gin.Context) {
	item, ok := currentAffiliate(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	link, err := s.referralSvc.GetByAffiliateID(c.Request.Context(), item.ID)
	if err != nil && !errors.Is(err, referraldomain.ErrLinkNotFound) {
		AbortWithError(c, err)
		return
	}

	commissions, err := s.billingSvc.ListCommissionsByAffiliate(c.Request.Context(), item.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	totals, err := s.billingSvc.CommissionTotals(c.Request.Context(), item.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := pdf.StatementData{
		AppName:        s.cfg.AppName,
		AffiliateName:  item.Name,
		AffiliateEmail: item.Email,
		ReferralCode:   link.Code,
		GeneratedAt:    time.Now().UTC().Format("2006-01-02"),
		Total:          totals.Total.StringFixed(2),
		Paid:           totals.Paid.StringFixed(2),
		Unpaid:         totals.Unpaid.StringFixed(2),
	}
	for _, commission := range commissions {
		status := "unpaid"
		if commission.Paid {
			status = "paid"
		}
		data.Lines = append(data.Lines, pdf.StatementLine{
			Date:          commission.CreatedAt.Format("2006-01-02"),
			Prospect:      commission.ProspectName,
			InvoiceNumber: commission.InvoiceNumber,
			InvoiceAmount: commission.InvoiceAmount.StringFixed(2),
			Commission:    commission.Amount.StringFixed(2),
			Status:        status,
		})
	}

	doc, err := s.pdf.GenerateStatement(c.Request.Context(), data)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	raw, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="commission-statement.pdf"`)
	c.Data(http.StatusOK, "application/pdf", raw)
}
