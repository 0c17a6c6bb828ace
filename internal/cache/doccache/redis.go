package doccache

import (
	"context"
	"fmt"
	"time"

	"github.com/mohammed-shakir/wcs-describe/internal/cache/keys"
	"github.com/mohammed-shakir/wcs-describe/internal/cache/redisstore"
)

type redisStore struct {
	cli *redisstore.Client
}

func NewRedis(cli *redisstore.Client) Store {
	return &redisStore{cli: cli}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, ok, err := s.cli.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("doccache get: %w", err)
	}
	return body, ok, nil
}

func (s *redisStore) Put(
	ctx context.Context,
	key string,
	coverageIDs []string,
	body []byte,
	ttl time.Duration,
) error {
	ids := uniqueIDs(coverageIDs)
	indexes := make([]string, len(ids))
	for i, id := range ids {
		indexes[i] = keys.CoverageIndexKey(id)
	}
	if err := s.cli.SetIndexed(ctx, key, body, ttl, indexes); err != nil {
		return fmt.Errorf("doccache put: %w", err)
	}
	return nil
}

func (s *redisStore) InvalidateCoverage(ctx context.Context, id string) (int, error) {
	idx := keys.CoverageIndexKey(id)
	members, err := s.cli.SMembers(ctx, idx)
	if err != nil {
		return 0, fmt.Errorf("doccache index %q: %w", id, err)
	}
	if err := s.cli.Del(ctx, append(members, idx)...); err != nil {
		return 0, fmt.Errorf("doccache evict %q: %w", id, err)
	}
	return len(members), nil
}
