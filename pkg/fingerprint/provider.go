// Package fingerprint supplies the device signals used for attribution
// matching.
package fingerprint

import (
	"context"
	"errors"
	"time"

	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/interfaces/cache"
)

// ErrUnavailable is returned when a signal source cannot produce a record.
var ErrUnavailable = errors.New("fingerprint: unavailable")

// Provider collects a FingerprintRecord on demand. Collect may perform I/O.
type Provider interface {
	Collect(ctx context.Context) (domain.FingerprintRecord, error)
}

// Func adapts a function to the Provider interface.
type Func func(ctx context.Context) (domain.FingerprintRecord, error)

// Collect satisfies the Provider interface.
func (f Func) Collect(ctx context.Context) (domain.FingerprintRecord, error) {
	if f == nil {
		return domain.FingerprintRecord{}, ErrUnavailable
	}
	return f(ctx)
}

// Static always returns the same record.
type Static domain.FingerprintRecord

// Collect satisfies the Provider interface.
func (s Static) Collect(ctx context.Context) (domain.FingerprintRecord, error) {
	return domain.FingerprintRecord(s), nil
}

// Nop has no signals.
type Nop struct{}

var _ Provider = (*Nop)(nil)

func (n *Nop) Collect(ctx context.Context) (domain.FingerprintRecord, error) {
	return domain.FingerprintRecord{}, ErrUnavailable
}

const cacheKey = "linkforty:fingerprint"

// Cached memoizes a provider's successful result for ttl. Failures are not
// cached.
type Cached struct {
	next  Provider
	cache cache.Cache
	ttl   time.Duration
}

var _ Provider = (*Cached)(nil)

// NewCached wraps next. A nil cache disables memoization.
func NewCached(next Provider, c cache.Cache, ttl time.Duration) *Cached {
	if c == nil {
		c = &cache.Nop{}
	}
	return &Cached{next: next, cache: c, ttl: ttl}
}

func (c *Cached) Collect(ctx context.Context) (domain.FingerprintRecord, error) {
	if v, ok, err := c.cache.Get(ctx, cacheKey); err == nil && ok {
		if rec, ok := v.(domain.FingerprintRecord); ok {
			return rec, nil
		}
	}
	rec, err := c.next.Collect(ctx)
	if err != nil {
		return domain.FingerprintRecord{}, err
	}
	_ = c.cache.Set(ctx, cacheKey, rec, c.ttl)
	return rec, nil
}
