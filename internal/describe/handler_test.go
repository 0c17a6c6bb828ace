package describe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mohammed-shakir/wcs-describe/internal/cache/doccache"
	"github.com/mohammed-shakir/wcs-describe/internal/wcs"
)

type countingEncoder struct {
	calls int
	body  string
	err   error
}

func (e *countingEncoder) DescribeBytes(_ context.Context, ids []string) ([]byte, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []byte(e.body + strings.Join(ids, ",")), nil
}

type revision uint64

func (r *revision) Revision() uint64 { return uint64(*r) }

type brokenStore struct{ puts int }

func (b *brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis down")
}

func (b *brokenStore) Put(context.Context, string, []string, []byte, time.Duration) error {
	b.puts++
	return errors.New("redis down")
}

func (b *brokenStore) InvalidateCoverage(context.Context, string) (int, error) { return 0, nil }

func serve(h *Handler, ids ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/wcs", nil)
	rr := httptest.NewRecorder()
	h.HandleDescribe(req.Context(), rr, req, ids)
	return rr
}

func TestHandleDescribe_NoCache(t *testing.T) {
	enc := &countingEncoder{body: "doc:"}
	h := New(nil, enc)

	rr := serve(h, "a")
	if rr.Code != http.StatusOK || rr.Body.String() != "doc:a" {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Cache") != "" {
		t.Fatalf("X-Cache must be absent without a cache")
	}
	if ct := rr.Header().Get("Content-Type"); ct != wcs.ContentType {
		t.Fatalf("content type %q", ct)
	}
}

func TestHandleDescribe_MissThenHit(t *testing.T) {
	enc := &countingEncoder{body: "doc:"}
	h := New(nil, enc, WithCache(doccache.NewMemory(8, time.Hour), time.Minute, time.Second))

	first := serve(h, "a", "b")
	second := serve(h, "a", "b")

	if first.Header().Get("X-Cache") != "MISS" || second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("X-Cache first=%q second=%q", first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("cached body differs: %q vs %q", first.Body.String(), second.Body.String())
	}
	if enc.calls != 1 {
		t.Fatalf("encoder called %d times, want 1", enc.calls)
	}
}

func TestHandleDescribe_RevisionChangeBypassesOldEntries(t *testing.T) {
	enc := &countingEncoder{body: "doc:"}
	rev := revision(1)
	h := New(nil, enc,
		WithCache(doccache.NewMemory(8, time.Hour), time.Minute, time.Second),
		WithRevisions(&rev))

	serve(h, "a")
	rev = 2
	if rr := serve(h, "a"); rr.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("expected miss after revision change")
	}
	if enc.calls != 2 {
		t.Fatalf("encoder called %d times, want 2", enc.calls)
	}
}

func TestHandleDescribe_InvalidationForcesReencode(t *testing.T) {
	enc := &countingEncoder{body: "doc:"}
	store := doccache.NewMemory(8, time.Hour)
	h := New(nil, enc, WithCache(store, time.Minute, time.Second))

	serve(h, "a", "b")
	if _, err := store.InvalidateCoverage(context.Background(), "b"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if rr := serve(h, "a", "b"); rr.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("expected miss after invalidation")
	}
}

func TestHandleDescribe_CacheErrorsNeverFailRequest(t *testing.T) {
	enc := &countingEncoder{body: "doc:"}
	store := &brokenStore{}
	h := New(nil, enc, WithCache(store, time.Minute, time.Second))

	rr := serve(h, "a")
	if rr.Code != http.StatusOK || rr.Body.String() != "doc:a" {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
	if store.puts != 1 {
		t.Fatalf("expected a fill attempt, got %d", store.puts)
	}
}

func TestHandleDescribe_EncodeErrorIsExceptionReport(t *testing.T) {
	enc := &countingEncoder{err: wcs.NewServiceError(wcs.CodeNoSuchCoverage, "zz", wcs.ErrCoverageNotFound)}
	store := doccache.NewMemory(8, time.Hour)
	h := New(nil, enc, WithCache(store, time.Minute, time.Second))

	rr := serve(h, "zz")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `exceptionCode="NoSuchCoverage"`) {
		t.Fatalf("body:\n%s", rr.Body.String())
	}
	if n, _ := store.InvalidateCoverage(context.Background(), "zz"); n != 0 {
		t.Fatalf("failed documents must not be cached")
	}
}
