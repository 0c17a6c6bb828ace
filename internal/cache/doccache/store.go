// Package doccache stores rendered DescribeCoverage documents and evicts them
// when a coverage they mention changes.
package doccache

import (
	"context"
	"time"
)

// Store caches document bodies under a document key. Every stored document is
// indexed by each coverage id it mentions.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, coverageIDs []string, body []byte, ttl time.Duration) error
	// InvalidateCoverage evicts every document that mentions id and returns how
	// many were evicted.
	InvalidateCoverage(ctx context.Context, id string) (int, error)
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
