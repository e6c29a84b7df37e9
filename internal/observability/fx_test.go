package observability

import (
	"testing"

	"github.com/smallbiznis/referra/internal/config"
)

func TestProvideLoggerConfigCarriesLevel(t *testing.T) {
	cfg := provideLoggerConfig(config.Config{
		AppName:     "referra",
		AppVersion:  "0.1.0",
		Environment: "production",
		LogLevel:    "warn",
	})

	if cfg.Level != "warn" {
		t.Fatalf("expected level warn, got %q", cfg.Level)
	}
	if cfg.ServiceName != "referra" {
		t.Fatalf("expected service name referra, got %q", cfg.ServiceName)
	}
	if cfg.Debug {
		t.Fatal("production must not enable the development config")
	}
}
