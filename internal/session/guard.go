package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrLockedOut = errors.New("too many failed login attempts")

// LoginGuard counts failed logins per username in redis and locks the
// username out once the limit is reached within the window.
type LoginGuard struct {
	redis       *redis.Client
	maxFailures int
	window      time.Duration
}

// NewLoginGuard returns a guard. With a nil client every check passes.
func NewLoginGuard(redisClient *redis.Client, maxFailures int, window time.Duration) *LoginGuard {
	return &LoginGuard{redis: redisClient, maxFailures: maxFailures, window: window}
}

func failuresKey(username string) string {
	return fmt.Sprintf("auth:failures:%s", username)
}

func (g *LoginGuard) Check(ctx context.Context, username string) error {
	if g.redis == nil || g.maxFailures <= 0 {
		return nil
	}
	count, err := g.redis.Get(ctx, failuresKey(username)).Int()
	if err != nil && err != redis.Nil {
		return err
	}
	if count >= g.maxFailures {
		return ErrLockedOut
	}
	return nil
}

func (g *LoginGuard) RecordFailure(ctx context.Context, username string) error {
	if g.redis == nil {
		return nil
	}
	key := failuresKey(username)
	pipe := g.redis.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, g.window)
	_, err := pipe.Exec(ctx)
	return err
}

func (g *LoginGuard) Reset(ctx context.Context, username string) error {
	if g.redis == nil {
		return nil
	}
	return g.redis.Del(ctx, failuresKey(username)).Err()
}
