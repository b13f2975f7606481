package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrSyncInProgress is returned when another sync holds the lease.
var ErrSyncInProgress = errors.New("another sync is already running")

// ErrLeaseLost is the cancellation cause of a held context whose lease could
// not be renewed.
var ErrLeaseLost = errors.New("sync lease lost")

// SyncLease guarantees at most one sync runs at a time. Acquire returns a
// context to run the sync under and a release func on success, and
// ErrSyncInProgress when the lease is held. The returned context is
// cancelled if the lease is lost before release.
type SyncLease interface {
	Acquire(ctx context.Context) (held context.Context, release func(), err error)
}

// LocalLease serialises syncs inside one process.
type LocalLease struct {
	mu sync.Mutex
}

func NewLocalLease() *LocalLease {
	return &LocalLease{}
}

func (l *LocalLease) Acquire(ctx context.Context) (context.Context, func(), error) {
	if !l.mu.TryLock() {
		return nil, nil, ErrSyncInProgress
	}
	var once sync.Once
	return ctx, func() { once.Do(l.mu.Unlock) }, nil
}

// releaseScript deletes the lease only if this owner still holds it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript pushes the expiry out only if this owner still holds it.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLease serialises syncs across processes sharing a Redis. The key is
// renewed every ttl/3 while held, so the TTL only bounds how long a crashed
// holder blocks others.
type RedisLease struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func NewRedisLease(client *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *RedisLease {
	return &RedisLease{
		client: client,
		key:    "stride:lease:sync",
		ttl:    ttl,
		log:    log,
	}
}

func (l *RedisLease) Acquire(ctx context.Context) (context.Context, func(), error) {
	owner := uuid.New().String()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("acquire sync lease: %w", err)
	}
	if !ok {
		return nil, nil, ErrSyncInProgress
	}

	held, cancel := context.WithCancelCause(ctx)
	stop := make(chan struct{})
	done := make(chan struct{})
	renew := func(rctx context.Context) (bool, error) {
		n, err := renewScript.Run(rctx, l.client, []string{l.key}, owner, l.ttl.Milliseconds()).Int()
		return n == 1, err
	}
	go func() {
		defer close(done)
		renewEvery(held, stop, renewInterval(l.ttl), renew, cancel, l.log)
	}()

	var once sync.Once
	release := func() {
		once.Do(func() {
			close(stop)
			<-done
			cancel(nil)
			// The caller's context may already be cancelled.
			rctx, rcancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer rcancel()
			if err := releaseScript.Run(rctx, l.client, []string{l.key}, owner).Err(); err != nil {
				l.log.Warnw("Failed to release sync lease", "owner", owner, "error", err)
			}
		})
	}
	return held, release, nil
}

func renewInterval(ttl time.Duration) time.Duration {
	if interval := ttl / 3; interval > time.Millisecond {
		return interval
	}
	return time.Millisecond
}

// renewEvery calls renew every interval until stop is closed or ctx ends. A
// failed or refused renewal cancels ctx with ErrLeaseLost.
func renewEvery(
	ctx context.Context,
	stop <-chan struct{},
	interval time.Duration,
	renew func(context.Context) (bool, error),
	cancel context.CancelCauseFunc,
	log *zap.SugaredLogger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			rctx, rcancel := context.WithTimeout(context.WithoutCancel(ctx), interval)
			ok, err := renew(rctx)
			rcancel()
			if err == nil && ok {
				continue
			}
			cause := ErrLeaseLost
			if err != nil {
				cause = fmt.Errorf("%w: %v", ErrLeaseLost, err)
			}
			log.Errorw("[SyncLease] Lease renewal failed, cancelling sync", "error", cause)
			cancel(cause)
			return
		}
	}
}
