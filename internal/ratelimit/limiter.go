// Package ratelimit implements fixed-window rate limiting with a shared Redis
// backend and an in-process fallback tier. The fallback keeps the cap enforced
// per process when Redis is unavailable; that degradation is accepted, failing
// open is not.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// consumeScript increments the window counter and sets its expiry only when
// the key was just created, in a single atomic round trip. Re-setting the TTL
// on every hit would reset the window.
const consumeScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`

// Result describes the outcome of one consume call.
type Result struct {
	// OK reports whether the attempt was within the cap.
	// The counter increments either way: a rejected attempt still counts.
	OK        bool
	Limit     int64
	Remaining int64
	ResetAtMs int64
	HitCount  int64
}

// Limiter is a two-tier fixed-window rate limiter. The shared tier is tried
// first; any shared-tier error falls through to the in-process tier.
type Limiter struct {
	client   rueidis.Client
	fallback *memoryTier
	logger   *zap.Logger
}

// New creates a limiter backed by the given Redis client. A nil client is
// allowed and skips the shared tier entirely (tests, single-process deploys).
func New(client rueidis.Client, logger *zap.Logger) *Limiter {
	return &Limiter{
		client:   client,
		fallback: newMemoryTier(),
		logger:   logger.Named("ratelimit"),
	}
}

// Consume records one attempt against the identifier's current window and
// reports whether it was admitted. Returns nil when limit is not positive,
// meaning the operation is not rate limited. A non-positive window is a
// programmer error.
func (l *Limiter) Consume(
	ctx context.Context, identifier string, limit int64, window time.Duration, now time.Time,
) *Result {
	if limit <= 0 {
		return nil
	}

	windowMs := window.Milliseconds()
	if windowMs <= 0 {
		panic(fmt.Sprintf("ratelimit: non-positive window %v", window))
	}

	windowStartMs := now.UnixMilli() / windowMs * windowMs
	key := fmt.Sprintf("ratelimit:%s:%d", identifier, windowStartMs)
	resetAtMs := windowStartMs + windowMs

	if l.client != nil {
		count, err := l.consumeShared(ctx, key, windowMs)
		if err == nil {
			return buildResult(count, limit, resetAtMs)
		}

		l.logger.Warn("Shared rate limit backend unavailable, using in-process fallback",
			zap.String("identifier", identifier),
			zap.Error(err))
	}

	count := l.fallback.incr(key, now.UnixMilli(), resetAtMs)

	return buildResult(count, limit, resetAtMs)
}

// consumeShared performs the atomic increment against Redis.
func (l *Limiter) consumeShared(ctx context.Context, key string, windowMs int64) (int64, error) {
	resp := l.client.Do(ctx, l.client.B().Eval().
		Script(consumeScript).
		Numkeys(1).
		Key(key).
		Arg(fmt.Sprintf("%d", windowMs)).
		Build())
	if resp.Error() != nil {
		return 0, resp.Error()
	}

	return resp.AsInt64()
}

func buildResult(count, limit, resetAtMs int64) *Result {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		OK:        count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAtMs: resetAtMs,
		HitCount:  count,
	}
}

// SpinKey returns the rate-limit identifier for a user's spins.
func SpinKey(userID int64) string {
	return fmt.Sprintf("user:%d:spins", userID)
}

// CommentKey returns the rate-limit identifier for a user's comments.
func CommentKey(userID int64) string {
	return fmt.Sprintf("user:%d:comments", userID)
}

// LikeKey returns the rate-limit identifier for a user's likes.
func LikeKey(userID int64) string {
	return fmt.Sprintf("user:%d:likes", userID)
}

// FollowKey returns the rate-limit identifier for a user's follows.
func FollowKey(userID int64) string {
	return fmt.Sprintf("user:%d:follows", userID)
}
