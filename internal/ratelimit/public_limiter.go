package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/linkshophq/linkshop/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyCheckout = "checkout:%s"
	keyWebhook  = "webhook:%s"
)

// PublicLimiter throttles the public checkout and webhook surfaces per
// caller. It fails open: with no redis configured, or on a redis error,
// requests are allowed through.
type PublicLimiter struct {
	bucket *TokenBucket

	checkoutRate  float64
	checkoutBurst int
	webhookRate   float64
	webhookBurst  int
}

func NewPublicLimiter(cfg config.Config) *PublicLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &PublicLimiter{
		bucket:        NewTokenBucket(client),
		checkoutRate:  cfg.CheckoutRate,
		checkoutBurst: cfg.CheckoutBurst,
		webhookRate:   cfg.WebhookRate,
		webhookBurst:  cfg.WebhookBurst,
	}
}

func (l *PublicLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *PublicLimiter) AllowCheckout(ctx context.Context, clientIP string) bool {
	return l.allow(ctx, fmt.Sprintf(keyCheckout, strings.TrimSpace(clientIP)), l.checkoutRate, l.checkoutBurst)
}

func (l *PublicLimiter) AllowWebhook(ctx context.Context, provider string) bool {
	return l.allow(ctx, fmt.Sprintf(keyWebhook, strings.TrimSpace(provider)), l.webhookRate, l.webhookBurst)
}

func (l *PublicLimiter) allow(ctx context.Context, key string, rate float64, burst int) bool {
	if !l.Enabled() {
		return true
	}
	allowed, err := l.bucket.Allow(ctx, key, rate, burst)
	if err != nil {
		return true
	}
	return allowed
}
