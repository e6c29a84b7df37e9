package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/referra/internal/affiliate"
	affiliatedomain "github.com/smallbiznis/referra/internal/affiliate/domain"
	"github.com/smallbiznis/referra/internal/auth"
	authdomain "github.com/smallbiznis/referra/internal/auth/domain"
	"github.com/smallbiznis/referra/internal/auth/session"
	"github.com/smallbiznis/referra/internal/billing"
	billingdomain "github.com/smallbiznis/referra/internal/billing/domain"
	"github.com/smallbiznis/referra/internal/config"
	"github.com/smallbiznis/referra/internal/migration"
	"github.com/smallbiznis/referra/internal/observability"
	obslogger "github.com/smallbiznis/referra/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/referra/internal/observability/metrics"
	obstracing "github.com/smallbiznis/referra/internal/observability/tracing"
	"github.com/smallbiznis/referra/internal/prospect"
	prospectdomain "github.com/smallbiznis/referra/internal/prospect/domain"
	"github.com/smallbiznis/referra/internal/providers/email"
	"github.com/smallbiznis/referra/internal/providers/pdf"
	"github.com/smallbiznis/referra/internal/providers/storage"
	"github.com/smallbiznis/referra/internal/ratelimit"
	"github.com/smallbiznis/referra/internal/referral"
	referraldomain "github.com/smallbiznis/referra/internal/referral/domain"
	"github.com/smallbiznis/referra/internal/seed"
	"github.com/smallbiznis/referra/internal/signup"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	observability.Module,
	fx.Provide(registerGin),
	auth.Module,
	session.Module,
	affiliate.Module,
	referral.Module,
	prospect.Module,
	billing.Module,
	signup.Module,
	email.Module,
	storage.Module,
	pdf.Module,
	ratelimit.Module,
	migration.Module,
	seed.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	db            *gorm.DB
	genID         *snowflake.Node
	sessions      *session.Manager
	authsvc       authdomain.Service
	affiliateSvc  affiliatedomain.Service
	referralSvc   referraldomain.Service
	prospectSvc   prospectdomain.Service
	billingSvc    billingdomain.Service
	signupSvc     signup.Provisioner
	storage       storage.Provider
	pdf           pdf.Provider
	publicLimiter *ratelimit.PublicLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	DB            *gorm.DB
	GenID         *snowflake.Node
	Sessions      *session.Manager
	Authsvc       authdomain.Service
	AffiliateSvc  affiliatedomain.Service
	ReferralSvc   referraldomain.Service
	ProspectSvc   prospectdomain.Service
	BillingSvc    billingdomain.Service
	SignupSvc     signup.Provisioner
	Storage       storage.Provider
	PDF           pdf.Provider
	PublicLimiter *ratelimit.PublicLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		db:            p.DB,
		genID:         p.GenID,
		sessions:      p.Sessions,
		authsvc:       p.Authsvc,
		affiliateSvc:  p.AffiliateSvc,
		referralSvc:   p.ReferralSvc,
		prospectSvc:   p.ProspectSvc,
		billingSvc:    p.BillingSvc,
		signupSvc:     p.SignupSvc,
		storage:       p.Storage,
		pdf:           p.PDF,
		publicLimiter: p.PublicLimiter,
	}

	svc.registerAuthRoutes()
	svc.registerPublicRoutes()
	svc.registerDashboardRoutes()
	svc.registerAdminRoutes()
	svc.registerFileRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	authGroup := s.engine.Group("/auth")

	authGroup.POST("/signup", s.Signup)
	authGroup.POST("/login", s.Login)
	authGroup.POST("/logout", s.Logout)
	authGroup.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/public", s.PublicRateLimit())

	public.GET("/ref/:code", s.TrackReferralClick)
	public.POST("/ref/:code/prospects", s.SubmitProspect)
}

func (s *Server) registerDashboardRoutes() {
	dashboard := s.engine.Group("/dashboard")

	dashboard.Use(s.AuthRequired())
	dashboard.Use(s.AffiliateRequired())

	dashboard.GET("/overview", s.GetDashboardOverview)
	dashboard.GET("/commissions", s.ListMyCommissions)
	dashboard.GET("/statement.pdf", s.DownloadCommissionStatement)
	dashboard.PUT("/bank-info", s.UpdateMyBankInfo)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.Use(s.AuthRequired())
	admin.Use(s.AdminRequired())

	admin.GET("/overview", s.GetAdminOverview)

	admin.GET("/affiliates", s.ListAffiliates)
	admin.PATCH("/affiliates/:id/status", s.SetAffiliateStatus)
	admin.PUT("/affiliates/:id/bank-info", s.SetAffiliateBankInfo)

	admin.GET("/prospects", s.ListProspects)
	admin.PATCH("/prospects/:id/status", s.SetProspectStatus)

	admin.GET("/invoices", s.ListInvoices)
	admin.POST("/invoices", s.CreateInvoice)

	admin.GET("/commissions", s.ListCommissions)
	admin.POST("/commissions/:id/pay", s.MarkCommissionPaid)
}

func (s *Server) registerFileRoutes() {
	s.engine.Static("/files", s.cfg.StorageDir)
}
