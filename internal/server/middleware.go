package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	affiliatedomain "github.com/smallbiznis/referra/internal/affiliate/domain"
	authdomain "github.com/smallbiznis/referra/internal/auth/domain"
)

const (
	contextUserKey      = "auth.user"
	contextAffiliateKey = "auth.affiliate"
)

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		sess, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		user, err := s.authsvc.GetUserByID(c.Request.Context(), sess.UserID)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !user.IsAdmin {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

// AffiliateRequired resolves the caller's affiliate profile and enforces the
// status gate on every request, so a suspension takes effect immediately.
func (s *Server) AffiliateRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		item, err := s.affiliateSvc.GetByUserID(c.Request.Context(), user.ID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if item.Status == affiliatedomain.StatusSuspended {
			AbortWithError(c, ErrForbidden)
			return
		}

		c.Set(contextAffiliateKey, item)
		c.Next()
	}
}

func (s *Server) PublicRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.publicLimiter.Enabled() {
			c.Next()
			return
		}

		allowed, retryAfter := s.publicLimiter.AllowIP(c.Request.Context(), c.ClientIP())
		if !allowed {
			if retryAfter > 0 {
				c.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
			}
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (*authdomain.User, bool) {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*authdomain.User)
	return user, ok && user != nil
}

func currentAffiliate(c *gin.Context) (affiliatedomain.Affiliate, bool) {
	value, ok := c.Get(contextAffiliateKey)
	if !ok {
		return affiliatedomain.Affiliate{}, false
	}
	item, ok := value.(affiliatedomain.Affiliate)
	return item, ok
}
