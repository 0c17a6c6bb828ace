package metrics

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestProvider_StandardCollectorsAndBuildInfo(t *testing.T) {
	p := Init(Config{Build: BuildInfo{Revision: "abc123", Branch: "main"}})

	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "describe_test_gauge", Help: "smoke"})
	p.Register(g)
	g.Set(42)
	if got := testutil.ToFloat64(g); got != 42 {
		t.Fatalf("gauge=%v want 42", got)
	}

	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	body := rr.Body.String()

	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected go_goroutines in payload; got:\n%s", body)
	}
	if !strings.Contains(body, `version="dev"`) || !strings.Contains(body, `revision="abc123"`) {
		t.Fatalf("expected app_build_info with defaulted version; got:\n%s", body)
	}
	if !strings.Contains(body, "describe_test_gauge 42") {
		t.Fatalf("registered gauge missing; got:\n%s", body)
	}
}

func TestInit_DefaultsPath(t *testing.T) {
	if p := Init(Config{}); p.cfg.Path != "/metrics" {
		t.Fatalf("path=%q", p.cfg.Path)
	}
	if p := Init(Config{Path: "/prom"}); p.cfg.Path != "/prom" {
		t.Fatalf("path=%q", p.cfg.Path)
	}
}

func TestServe_RequiresAddrAndStopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := Init(Config{}).Serve(context.Background(), logger); err == nil {
		t.Fatal("expected error without listen address")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Init(Config{Addr: "127.0.0.1:0"}).Serve(ctx, logger) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
