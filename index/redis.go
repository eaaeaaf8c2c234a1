package index

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisIndex shares prefix membership across processes and survives
// restarts, so RemoveByPrefix issued on one replica sees keys written by
// another. Optionally, a TTL can be applied to index keys to prevent
// unbounded growth; an expired index key just means the affected scope's
// members age out via entry TTL instead of being enumerated.
type RedisIndex struct {
	rdb redis.UniversalClient
	ns  string        // logical namespace; should match Options.Namespace
	ttl time.Duration // optional TTL for index keys; 0 disables expiry
}

var _ Index = (*RedisIndex)(nil)

// NewRedisIndex creates a Redis-backed prefix index without TTL.
func NewRedisIndex(client redis.UniversalClient, namespace string) *RedisIndex {
	return &RedisIndex{rdb: client, ns: namespace}
}

// NewRedisIndexWithTTL creates a Redis-backed prefix index with TTL.
// If ttl <= 0, index keys do not expire.
func NewRedisIndexWithTTL(client redis.UniversalClient, namespace string, ttl time.Duration) *RedisIndex {
	return &RedisIndex{rdb: client, ns: namespace, ttl: ttl}
}

func (s *RedisIndex) tokenKey(prefixKey string) string { return "pfx:" + s.ns + ":tok:" + prefixKey }
func (s *RedisIndex) liveKey() string                  { return "pfx:" + s.ns + ":live" }
func (s *RedisIndex) memberKey(token string) string    { return "pfx:" + s.ns + ":m:" + token }

func (s *RedisIndex) RegisterToken(ctx context.Context, prefixKey, token string) error {
	old, err := s.rdb.Get(ctx, s.tokenKey(prefixKey)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	_, err = s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		if old != "" && old != token {
			p.SRem(ctx, s.liveKey(), old)
			p.Del(ctx, s.memberKey(old))
		}
		p.Set(ctx, s.tokenKey(prefixKey), token, s.ttl)
		p.SAdd(ctx, s.liveKey(), token)
		if s.ttl > 0 {
			p.Expire(ctx, s.liveKey(), s.ttl)
		}
		return nil
	})
	return err
}

func (s *RedisIndex) Observe(ctx context.Context, key string) error {
	tokens, err := s.rdb.SMembers(ctx, s.liveKey()).Result()
	if err != nil {
		return err
	}
	var matched []string
	for _, tok := range tokens {
		if tok != "" && strings.HasPrefix(key, tok) {
			matched = append(matched, tok)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	_, err = s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, tok := range matched {
			p.SAdd(ctx, s.memberKey(tok), key)
			if s.ttl > 0 {
				p.Expire(ctx, s.memberKey(tok), s.ttl)
			}
		}
		return nil
	})
	return err
}

func (s *RedisIndex) Drop(ctx context.Context, prefixKey, token string) ([]string, error) {
	members, err := s.rdb.SMembers(ctx, s.memberKey(token)).Result()
	if err != nil {
		return nil, err
	}
	_, err = s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.memberKey(token))
		p.SRem(ctx, s.liveKey(), token)
		p.Del(ctx, s.tokenKey(prefixKey))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(members)
	return members, nil
}

// Cleanup is not applicable for RedisIndex (Redis handles expiry if TTL is set).
func (s *RedisIndex) Cleanup(time.Duration) {}

// Close closes the underlying Redis client.
func (s *RedisIndex) Close(ctx context.Context) error { return s.rdb.Close() }
