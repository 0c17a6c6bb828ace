package doccache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mohammed-shakir/wcs-describe/internal/cache/keys"
)

type memoryEntry struct {
	body    []byte
	ids     []string
	expires time.Time
}

// memoryStore is a process-local Store bounded by entry count. Entries carry
// their own deadline so a per-call ttl shorter than the cache default holds.
type memoryStore struct {
	docs *expirable.LRU[string, memoryEntry]
	now  func() time.Time

	mu    sync.Mutex
	index map[string]map[string]struct{}
}

// NewMemory returns a Store holding at most size documents, none longer than
// maxTTL.
func NewMemory(size int, maxTTL time.Duration) Store {
	m := &memoryStore{
		now:   time.Now,
		index: make(map[string]map[string]struct{}),
	}
	m.docs = expirable.NewLRU[string, memoryEntry](size, m.unindex, maxTTL)
	return m
}

func (m *memoryStore) unindex(key string, e memoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range e.ids {
		idx := keys.CoverageIndexKey(id)
		if set, ok := m.index[idx]; ok {
			delete(set, key)
			if len(set) == 0 {
				delete(m.index, idx)
			}
		}
	}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := m.docs.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.docs.Remove(key)
		return nil, false, nil
	}
	return e.body, true, nil
}

func (m *memoryStore) Put(
	ctx context.Context,
	key string,
	coverageIDs []string,
	body []byte,
	ttl time.Duration,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ids := uniqueIDs(coverageIDs)
	e := memoryEntry{body: append([]byte(nil), body...), ids: ids}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.docs.Add(key, e)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		idx := keys.CoverageIndexKey(id)
		set, ok := m.index[idx]
		if !ok {
			set = make(map[string]struct{})
			m.index[idx] = set
		}
		set[key] = struct{}{}
	}
	return nil
}

func (m *memoryStore) InvalidateCoverage(ctx context.Context, id string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	idx := keys.CoverageIndexKey(id)

	m.mu.Lock()
	set := m.index[idx]
	delete(m.index, idx)
	evict := make([]string, 0, len(set))
	for key := range set {
		evict = append(evict, key)
	}
	m.mu.Unlock()

	for _, key := range evict {
		m.docs.Remove(key)
	}
	return len(evict), nil
}
