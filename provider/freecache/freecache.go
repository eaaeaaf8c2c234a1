// Package freecache adapts coocood/freecache, a zero-GC in-process cache
// with a fixed memory arena. TTLs round up to whole seconds (freecache's
// granularity); sub-second TTLs become one second rather than no expiry.
package freecache

import (
	"context"
	"errors"
	"time"

	fc "github.com/coocood/freecache"

	pr "github.com/unkn0wn-root/prefixcache/provider"
)

type Provider struct {
	c *fc.Cache
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	// SizeBytes is the arena size. freecache allocates it up front;
	// anything below 512KB is rounded up internally.
	SizeBytes int
}

func New(cfg Config) (*Provider, error) {
	if cfg.SizeBytes <= 0 {
		return nil, errors.New("freecache: size must be positive")
	}
	return &Provider{c: fc.NewCache(cfg.SizeBytes)}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get([]byte(key))
	if err == fc.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	expire := 0 // freecache: 0 = no expiry
	if ttl > 0 {
		expire = int((ttl + time.Second - 1) / time.Second)
	}
	if err := p.c.Set([]byte(key), value, expire); err != nil {
		// entry too large for the arena is a rejection, not an outage
		if err == fc.ErrLargeEntry || err == fc.ErrLargeKey {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Del([]byte(key))
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Clear()
	return nil
}
