package index

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type tokenEntry struct {
	PrefixKey string
	UpdatedAt time.Time
}

// LocalIndex keeps prefix membership in-process (default). State lives as
// long as the index; an optional cleanup loop prunes long-inactive tokens.
type LocalIndex struct {
	mu      sync.RWMutex
	tokens  map[string]tokenEntry          // token -> owning prefix key
	current map[string]string              // prefix key -> its live token
	members map[string]map[string]struct{} // token -> composed keys

	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup

	retention time.Duration
}

var _ Index = (*LocalIndex)(nil)

func NewLocalIndex(cleanupInterval, retention time.Duration) *LocalIndex {
	s := &LocalIndex{
		tokens:    make(map[string]tokenEntry),
		current:   make(map[string]string),
		members:   make(map[string]map[string]struct{}),
		retention: retention,
	}
	if cleanupInterval > 0 && retention > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Cleanup(retention)
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *LocalIndex) RegisterToken(_ context.Context, prefixKey, token string) error {
	now := time.Now()
	s.mu.Lock()
	if old, ok := s.current[prefixKey]; ok && old != token {
		// re-issued namespace; the old token's members age out via store TTL
		delete(s.tokens, old)
		delete(s.members, old)
	}
	s.tokens[token] = tokenEntry{PrefixKey: prefixKey, UpdatedAt: now}
	s.current[prefixKey] = token
	if s.members[token] == nil {
		s.members[token] = make(map[string]struct{})
	}
	s.mu.Unlock()
	return nil
}

func (s *LocalIndex) Observe(_ context.Context, key string) error {
	now := time.Now()
	s.mu.Lock()
	for tok, e := range s.tokens {
		if !strings.HasPrefix(key, tok) {
			continue
		}
		s.members[tok][key] = struct{}{}
		e.UpdatedAt = now
		s.tokens[tok] = e
	}
	s.mu.Unlock()
	return nil
}

func (s *LocalIndex) Drop(_ context.Context, prefixKey, token string) ([]string, error) {
	s.mu.Lock()
	set := s.members[token]
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	delete(s.members, token)
	delete(s.tokens, token)
	if s.current[prefixKey] == token {
		delete(s.current, prefixKey)
	}
	s.mu.Unlock()

	sort.Strings(out)
	return out, nil
}

func (s *LocalIndex) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)

	s.mu.Lock()
	for tok, e := range s.tokens {
		if e.UpdatedAt.IsZero() || !e.UpdatedAt.Before(cutoff) {
			continue
		}
		delete(s.tokens, tok)
		delete(s.members, tok)
		if s.current[e.PrefixKey] == tok {
			delete(s.current, e.PrefixKey)
		}
	}
	s.mu.Unlock()
}

func (s *LocalIndex) Close(_ context.Context) error {
	if s.stopCh != nil {
		close(s.stopCh)
		if s.ticker != nil {
			s.ticker.Stop() // stop ticker before waiting
		}
		s.wg.Wait()
		s.stopCh = nil
	}
	return nil
}
