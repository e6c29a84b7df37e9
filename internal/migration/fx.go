package migration

import (
	affiliatedomain "github.com/smallbiznis/referra/internal/affiliate/domain"
	authdomain "github.com/smallbiznis/referra/internal/auth/domain"
	billingdomain "github.com/smallbiznis/referra/internal/billing/domain"
	prospectdomain "github.com/smallbiznis/referra/internal/prospect/domain"
	referraldomain "github.com/smallbiznis/referra/internal/referral/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(Run),
)

// Run applies the embedded SQL migrations on postgres. Other dialects fall
// back to AutoMigrate, which keeps sqlite usable for local development.
func Run(db *gorm.DB, log *zap.Logger) error {
	if db.Dialector.Name() == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	}

	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&affiliatedomain.Affiliate{},
		&referraldomain.ReferralLink{},
		&prospectdomain.Prospect{},
		&billingdomain.Invoice{},
		&billingdomain.Commission{},
	); err != nil {
		return err
	}
	log.Info("schema auto migrated", zap.String("dialect", db.Dialector.Name()))
	return nil
}
