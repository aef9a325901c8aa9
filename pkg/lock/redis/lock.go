// Package redis provides a build lock shared by processes through Redis.
package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"

	"github.com/matzehuels/mvnbox/pkg/sandbox"
)

const defaultPollInterval = 100 * time.Millisecond

// unlockScript deletes the key only if this holder still owns it.
var unlockScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// refreshScript extends the expiry only if this holder still owns the key.
var refreshScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`)

// ErrNotHeld is returned by an unlock whose lock already expired or was
// taken over by another holder.
var ErrNotHeld = errors.New("lock no longer held")

// Locker implements sandbox.Locker with SET NX PX.
type Locker struct {
	client  backend.UniversalClient
	prefix  string
	poll    time.Duration
	refresh time.Duration
}

// Option configures a Locker.
type Option func(*Locker)

// WithPollInterval sets how often a blocked Lock retries.
func WithPollInterval(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.poll = d
		}
	}
}

// WithRefreshInterval sets how often a held lock has its expiry extended.
// The default is a third of the lock TTL.
func WithRefreshInterval(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.refresh = d
		}
	}
}

// New creates a locker. Keys are stored as <prefix>lock:<key>.
func New(client backend.UniversalClient, prefix string, opts ...Option) *Locker {
	l := &Locker{client: client, prefix: prefix, poll: defaultPollInterval}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr, prefix string, opts ...Option) (*Locker, error) {
	client := backend.NewClient(&backend.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return New(client, prefix, opts...), nil
}

// Close closes the underlying client.
func (l *Locker) Close() error {
	return l.client.Close()
}

// Lock blocks until key is acquired or ctx is done. While held, the expiry
// is pushed back to ttl at every refresh interval, so ttl only bounds how
// long a crashed holder blocks others. Unlock stops the refresh.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (sandbox.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return l.hold(lockKey, token, ttl), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// hold keeps an acquired lock alive and returns its unlock function.
func (l *Locker) hold(lockKey, token string, ttl time.Duration) sandbox.UnlockFunc {
	interval := l.refresh
	if interval <= 0 {
		interval = ttl / 3
	}
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				n, err := refreshScript.Run(context.Background(), l.client, []string{lockKey}, token, ttl.Milliseconds()).Int()
				if err == nil && n == 0 {
					return // lost; unlock reports ErrNotHeld
				}
			}
		}
	}()

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() { close(stop) })
		<-done
		n, err := unlockScript.Run(ctx, l.client, []string{lockKey}, token).Int()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotHeld
		}
		return nil
	}
}

var _ sandbox.Locker = (*Locker)(nil)
