package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyInviteSend         = "invite:send:user:%s"
	keyNotificationWorker = "notification:worker:lease"
)

// InviteLimiter bounds how fast a single user may send invitations. When no
// redis address is configured the limiter is disabled and every send is
// allowed.
type InviteLimiter struct {
	enabled bool

	bucket  *TokenBucket
	locker  *Locker
	holder  *config.MatchingConfigHolder
	lockTTL time.Duration
}

func NewInviteLimiter(cfg config.Config, holder *config.MatchingConfigHolder) *InviteLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &InviteLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		holder:  holder,
		lockTTL: 30 * time.Second,
	}
}

func (l *InviteLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowSend consumes one send token for userID. Open when disabled or when
// the configured rate is zero.
func (l *InviteLimiter) AllowSend(ctx context.Context, userID snowflake.ID) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	matching := l.holder.Get()
	if matching.InviteRatePerMinute <= 0 || matching.InviteBurst <= 0 {
		return true, nil
	}
	rate := float64(matching.InviteRatePerMinute) / 60.0
	return l.bucket.Allow(ctx, fmt.Sprintf(keyInviteSend, userID.String()), rate, matching.InviteBurst)
}

// TryWorkerLease claims the notification dispatch lease so only one instance
// drains the outbox at a time.
func (l *InviteLimiter) TryWorkerLease(ctx context.Context) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, keyNotificationWorker, l.lockTTL)
}

func (l *InviteLimiter) ReleaseWorkerLease(ctx context.Context, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, keyNotificationWorker, token)
}
