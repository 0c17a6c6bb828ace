package doccache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/mohammed-shakir/wcs-describe/internal/cache/keys"
	"github.com/mohammed-shakir/wcs-describe/internal/cache/redisstore"
)

func newRedisStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)
	cli, err := redisstore.New(ctx, mr.Addr())
	if err != nil {
		t.Fatalf("redisstore.New: %v", err)
	}
	t.Cleanup(func() { _ = cli.Close() })
	return NewRedis(cli), mr
}

func stores(t *testing.T) map[string]Store {
	rs, _ := newRedisStore(t)
	return map[string]Store{
		"redis":  rs,
		"memory": NewMemory(16, time.Hour),
	}
}

func TestStore_PutGet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := keys.DocumentKey(1, []string{"nurc__dem"})

			if _, ok, err := s.Get(ctx, key); err != nil || ok {
				t.Fatalf("Get before Put ok=%v err=%v", ok, err)
			}
			if err := s.Put(ctx, key, []string{"nurc__dem"}, []byte("<doc/>"), time.Minute); err != nil {
				t.Fatalf("Put: %v", err)
			}
			body, ok, err := s.Get(ctx, key)
			if err != nil || !ok || string(body) != "<doc/>" {
				t.Fatalf("Get = %q, %v, %v", body, ok, err)
			}
		})
	}
}

func TestStore_InvalidateCoverageEvictsEveryMention(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			both := keys.DocumentKey(1, []string{"nurc__dem", "sf__sst"})
			demOnly := keys.DocumentKey(1, []string{"nurc__dem"})
			sstOnly := keys.DocumentKey(1, []string{"sf__sst"})

			mustPut(t, s, both, "nurc__dem", "sf__sst")
			mustPut(t, s, demOnly, "nurc__dem", "nurc__dem")
			mustPut(t, s, sstOnly, "sf__sst")

			n, err := s.InvalidateCoverage(ctx, "nurc__dem")
			if err != nil {
				t.Fatalf("InvalidateCoverage: %v", err)
			}
			if n != 2 {
				t.Fatalf("evicted %d documents, want 2", n)
			}
			for _, k := range []string{both, demOnly} {
				if _, ok, _ := s.Get(ctx, k); ok {
					t.Fatalf("%s still cached", k)
				}
			}
			if _, ok, _ := s.Get(ctx, sstOnly); !ok {
				t.Fatalf("unrelated document was evicted")
			}

			n, err = s.InvalidateCoverage(ctx, "nurc__dem")
			if err != nil || n != 0 {
				t.Fatalf("second invalidation n=%d err=%v", n, err)
			}
		})
	}
}

func TestRedisStore_TTL(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()
	key := keys.DocumentKey(1, []string{"a"})
	mustPut(t, s, key, "a")

	mr.FastForward(2 * time.Minute)
	if _, ok, err := s.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected expiry, ok=%v err=%v", ok, err)
	}
	if mr.Exists(keys.CoverageIndexKey("a")) {
		t.Fatalf("index set should expire with its documents")
	}
}

func TestMemoryStore_PerEntryTTL(t *testing.T) {
	s := NewMemory(4, time.Hour).(*memoryStore)
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if err := s.Put(ctx, "k", []string{"a"}, []byte("v"), time.Second); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit before deadline")
	}
	now = now.Add(2 * time.Second)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after deadline")
	}
}

func TestMemoryStore_EvictionDropsIndexEntries(t *testing.T) {
	s := NewMemory(1, time.Hour).(*memoryStore)
	ctx := context.Background()

	_ = s.Put(ctx, "k1", []string{"a"}, []byte("1"), 0)
	_ = s.Put(ctx, "k2", []string{"b"}, []byte("2"), 0)

	s.mu.Lock()
	_, stale := s.index[keys.CoverageIndexKey("a")]
	s.mu.Unlock()
	if stale {
		t.Fatalf("index for evicted document should be dropped")
	}
	if n, _ := s.InvalidateCoverage(ctx, "b"); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
}

func TestStore_CanceledContext(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			if err := s.Put(ctx, "k", []string{"a"}, []byte("v"), time.Minute); err == nil {
				t.Fatalf("expected error on Put with canceled context")
			}
			if _, err := s.InvalidateCoverage(ctx, "a"); err == nil {
				t.Fatalf("expected error on InvalidateCoverage with canceled context")
			}
		})
	}
}

func mustPut(t *testing.T, s Store, key string, ids ...string) {
	t.Helper()
	if err := s.Put(context.Background(), key, ids, []byte("<doc/>"), time.Minute); err != nil {
		t.Fatalf("Put(%s): %v", key, err)
	}
}
