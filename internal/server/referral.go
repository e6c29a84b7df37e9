package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	referraldomain "github.com/smallbiznis/referra/internal/referral/domain"
	"go.uber.org/zap"
)

// TrackReferralClick counts the visit and returns the link so the landing
// page can render the affiliate attribution.
func (s *Server) TrackReferralClick(c *gin.Context) {
	code := c.Param("code")

	link, err := s.referralSvc.GetByCode(c.Request.Context(), code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// counting must never break the landing page
	if err := s.referralSvc.RecordClick(c.Request.Context(), code); err != nil {
		if !errors.Is(err, referraldomain.ErrLinkNotFound) {
			s.log.Warn("record click", zap.String("code", code), zap.Error(err))
		}
	} else if fresh, err := s.referralSvc.GetByCode(c.Request.Context(), code); err == nil {
		// re-read so the reported count includes concurrent clicks
		link = fresh
	}

	c.JSON(http.StatusOK, gin.H{
		"code":   link.Code,
		"clicks": link.Clicks,
	})
}

type SubmitProspectRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Message string `json:"message"`
}

func (s *Server) SubmitProspect(c *gin.Context) {
	var req SubmitProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.referralSvc.SubmitProspect(c.Request.Context(), referraldomain.SubmitProspectRequest{
		Code:    c.Param("code"),
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Message: req.Message,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
