package seed

import (
	"context"
	"errors"

	"github.com/smallbiznis/referra/internal/auth/domain"
	"github.com/smallbiznis/referra/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("seed",
	fx.Invoke(EnsureAdmin),
)

// EnsureAdmin creates the bootstrap admin account when one is configured.
// An already existing account is fine; anything else fails startup.
func EnsureAdmin(cfg config.Config, auth domain.Service, log *zap.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := auth.CreateUser(context.Background(), nil, domain.CreateUserRequest{
		Email:       cfg.AdminEmail,
		Password:    cfg.AdminPassword,
		DisplayName: cfg.AdminName,
		IsAdmin:     true,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil
		}
		return err
	}

	log.Info("admin account seeded", zap.String("email", cfg.AdminEmail))
	return nil
}
