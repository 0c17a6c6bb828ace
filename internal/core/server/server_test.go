package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mohammed-shakir/wcs-describe/internal/catalog"
	"github.com/mohammed-shakir/wcs-describe/internal/core/config"
	"github.com/mohammed-shakir/wcs-describe/internal/core/health"
	"github.com/mohammed-shakir/wcs-describe/internal/crs"
	"github.com/mohammed-shakir/wcs-describe/internal/describe"
	"github.com/mohammed-shakir/wcs-describe/internal/metrics"
	"github.com/mohammed-shakir/wcs-describe/internal/wcs"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "catalog", "testdata", "catalog.yaml"))
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	reg, err := crs.NewRegistry(16)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	cat, err := catalog.FromYAML(data, reg)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	logger := slog.New(slog.DiscardHandler)
	cfg := config.Config{Metrics: config.MetricsCfg{Path: "/metrics"}}
	p := metrics.Init(metrics.Config{})
	h := NewRouter(cfg, logger, Deps{
		Coverages: cat,
		Describe:  describe.New(logger, wcs.NewDescriber(cat)),
		Metrics:   p.Handler(),
		Ready: []health.Check{{Name: "catalog", Fn: func(context.Context) error {
			return nil
		}}},
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func fetch(t *testing.T, url string) (int, string, http.Header) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b), resp.Header
}

func TestServer_DescribeCoverage(t *testing.T) {
	srv := newTestServer(t)
	code, body, hdr := fetch(t, srv.URL+"/wcs?service=WCS&version=2.0.1&request=DescribeCoverage&coverageId=nurc__dem")

	if code != http.StatusOK {
		t.Fatalf("status=%d body=%s", code, body)
	}
	if hdr.Get("Content-Type") != wcs.ContentType {
		t.Fatalf("content type %q", hdr.Get("Content-Type"))
	}
	if !strings.Contains(body, `<wcs:CoverageDescription gml:id="nurc__dem">`) {
		t.Fatalf("body:\n%s", body)
	}
	if hdr.Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestServer_UnknownCoverage(t *testing.T) {
	srv := newTestServer(t)
	code, body, _ := fetch(t, srv.URL+"/wcs?service=WCS&version=2.0.1&request=DescribeCoverage&coverageId=nurc__missing")
	if code != http.StatusNotFound || !strings.Contains(body, "NoSuchCoverage") {
		t.Fatalf("status=%d body=%s", code, body)
	}
}

func TestServer_Probes(t *testing.T) {
	srv := newTestServer(t)
	if code, body, _ := fetch(t, srv.URL+"/healthz"); code != http.StatusOK || body != "ok" {
		t.Fatalf("healthz status=%d body=%q", code, body)
	}
	if code, _, _ := fetch(t, srv.URL+"/readyz"); code != http.StatusOK {
		t.Fatalf("readyz status=%d", code)
	}
	if code, body, _ := fetch(t, srv.URL+"/metrics"); code != http.StatusOK || !strings.Contains(body, "app_build_info") {
		t.Fatalf("metrics status=%d", code)
	}
}
