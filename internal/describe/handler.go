// Package describe serves DescribeCoverage documents, consulting the document
// cache before encoding.
package describe

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mohammed-shakir/wcs-describe/internal/cache/doccache"
	"github.com/mohammed-shakir/wcs-describe/internal/cache/keys"
	"github.com/mohammed-shakir/wcs-describe/internal/core/observability"
	"github.com/mohammed-shakir/wcs-describe/internal/logger"
	"github.com/mohammed-shakir/wcs-describe/internal/wcs"
)

// Encoder renders a CoverageDescriptions document.
type Encoder interface {
	DescribeBytes(ctx context.Context, ids []string) ([]byte, error)
}

// RevisionSource reports the catalog revision. Cached documents from an
// older revision are never served.
type RevisionSource interface {
	Revision() uint64
}

type Handler struct {
	logger    *slog.Logger
	enc       Encoder
	store     doccache.Store
	revisions RevisionSource
	ttl       time.Duration
	opTimeout time.Duration
}

type Option func(*Handler)

// WithCache enables the document cache. A nil store leaves it disabled.
func WithCache(store doccache.Store, ttl, opTimeout time.Duration) Option {
	return func(h *Handler) {
		h.store = store
		h.ttl = ttl
		h.opTimeout = opTimeout
	}
}

func WithRevisions(r RevisionSource) Option { return func(h *Handler) { h.revisions = r } }

func New(logger *slog.Logger, enc Encoder, opts ...Option) *Handler {
	h := &Handler{logger: logger, enc: enc}
	for _, o := range opts {
		o(h)
	}
	if h.logger == nil {
		h.logger = slog.New(slog.DiscardHandler)
	}
	return h
}

// HandleDescribe writes the document for ids, or an ExceptionReport.
func (h *Handler) HandleDescribe(ctx context.Context, w http.ResponseWriter, _ *http.Request, ids []string) {
	ctx = logger.WithComponent(logger.WithCoverageIDs(ctx, ids), "describe")

	var key string
	if h.store != nil {
		key = keys.DocumentKey(h.revision(), ids)
		if body, ok := h.lookup(ctx, key); ok {
			writeDocument(w, body, "HIT")
			return
		}
	}

	body, err := h.enc.DescribeBytes(ctx, ids)
	if err != nil {
		wcs.ServeException(w, err)
		return
	}

	cacheHeader := ""
	if h.store != nil {
		cacheHeader = "MISS"
	}
	writeDocument(w, body, cacheHeader)

	if h.store != nil {
		h.fill(ctx, key, ids, body)
	}
}

func (h *Handler) revision() uint64 {
	if h.revisions == nil {
		return 0
	}
	return h.revisions.Revision()
}

// returns context with timeout if set
func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.opTimeout)
}

func (h *Handler) lookup(ctx context.Context, key string) ([]byte, bool) {
	cctx, cancel := h.withTimeout(ctx)
	defer cancel()

	body, ok, err := h.store.Get(cctx, key)
	switch {
	case err != nil:
		observability.IncCacheError()
		h.logger.WarnContext(logger.WithCacheResult(ctx, "error"), "document cache get failed", "key", key, "err", err)
		return nil, false
	case ok:
		observability.IncCacheHit()
		h.logger.DebugContext(logger.WithCacheResult(ctx, "hit"), "document served from cache", "key", key, "bytes", len(body))
		return body, true
	default:
		observability.IncCacheMiss()
		return nil, false
	}
}

// fill stores body after the response was written. The request context may
// already be done by then, so only its values are kept.
func (h *Handler) fill(ctx context.Context, key string, ids []string, body []byte) {
	cctx, cancel := h.withTimeout(context.WithoutCancel(ctx))
	defer cancel()
	if err := h.store.Put(cctx, key, ids, body, h.ttl); err != nil {
		h.logger.WarnContext(ctx, "document cache put failed", "key", key, "err", err)
	}
}

func writeDocument(w http.ResponseWriter, body []byte, cacheHeader string) {
	w.Header().Set("Content-Type", wcs.ContentType)
	if cacheHeader != "" {
		w.Header().Set("X-Cache", cacheHeader)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
