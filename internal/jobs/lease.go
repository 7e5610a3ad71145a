package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trustgate/internal/ids"
)

var (
	ErrLeaseHeld = errors.New("reconcile lease held by another runner")
	ErrLeaseLost = errors.New("reconcile lease lost")
)

// Lease keeps a single tick running across worker replicas. The returned
// context is cancelled with ErrLeaseLost as its cause once the holder can
// no longer prove ownership, so work stops before another replica starts.
type Lease interface {
	Acquire(ctx context.Context) (held context.Context, release func(), err error)
}

// Both scripts act only while the key still carries our token, so a lease
// picked up by another replica is left alone.
var (
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)
	renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)
)

type RedisLease struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisLease(client *redis.Client, key string, ttl time.Duration) *RedisLease {
	return &RedisLease{client: client, key: key, ttl: ttl}
}

// Acquire takes the lease and keeps extending it every third of the TTL
// until release is called.
func (l *RedisLease) Acquire(ctx context.Context) (context.Context, func(), error) {
	token := ids.New()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("acquire lease: %w", err)
	}
	if !ok {
		return nil, nil, ErrLeaseHeld
	}

	held, cancel := context.WithCancelCause(ctx)
	done := make(chan struct{})
	go l.heartbeat(held, cancel, token, done)

	var once sync.Once
	release := func() {
		once.Do(func() {
			cancel(nil)
			<-done

			ctx, stop := context.WithTimeout(context.Background(), 2*time.Second)
			defer stop()
			_ = releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
		})
	}
	return held, release, nil
}

func (l *RedisLease) heartbeat(ctx context.Context, cancel context.CancelCauseFunc, token string, done chan<- struct{}) {
	defer close(done)

	every := l.ttl / 3
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	expires := time.Now().Add(l.ttl)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		renewed, err := renewScript.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int()
		switch {
		case ctx.Err() != nil:
			return
		case err == nil && renewed == 0:
			cancel(ErrLeaseLost)
			return
		case err == nil:
			expires = time.Now().Add(l.ttl)
		case time.Until(expires) <= every:
			// Redis unreachable and the key may lapse before the next try.
			cancel(fmt.Errorf("%w: %w", ErrLeaseLost, err))
			return
		}
	}
}
