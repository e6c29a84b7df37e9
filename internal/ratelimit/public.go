package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/referra/internal/config"
	"go.uber.org/zap"
)

const keyPublicIP = "public:ip:%s"

const (
	defaultPublicRate  = 5.0
	defaultPublicBurst = 20
)

// PublicLimiter throttles the unauthenticated referral endpoints per client
// IP. Disabled entirely when no redis address is configured, and it fails
// open on redis errors so a cache outage never blocks referral traffic.
type PublicLimiter struct {
	enabled bool

	bucket *TokenBucket
	log    *zap.Logger

	rate  float64
	burst int
}

func NewPublicLimiter(cfg config.Config, log *zap.Logger) *PublicLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &PublicLimiter{enabled: false}
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	return &PublicLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		log:     log.Named("ratelimit.public"),
		rate:    defaultPublicRate,
		burst:   defaultPublicBurst,
	}
}

func (l *PublicLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *PublicLimiter) AllowIP(ctx context.Context, ip string) (bool, time.Duration) {
	if !l.Enabled() {
		return true, 0
	}

	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyPublicIP, strings.TrimSpace(ip)), l.rate, l.burst)
	if err != nil {
		l.log.Warn("rate limit check failed", zap.Error(err))
		return true, 0
	}
	return res.Allowed, res.RetryAfter
}
