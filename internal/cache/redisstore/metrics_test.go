package redisstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/mohammed-shakir/wcs-describe/internal/core/observability"
	"github.com/mohammed-shakir/wcs-describe/internal/metrics"
)

func Test_RedisMetrics_IndexOps(t *testing.T) {
	mr, _ := miniredis.Run()
	defer mr.Close()

	p := metrics.Init(metrics.Config{})
	observability.Init(p.Registerer(), true)

	ctx := context.Background()
	c, err := New(ctx, mr.Addr())
	if err != nil {
		t.Fatalf("new redis: %v", err)
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			t.Fatalf("close redis client: %v", cerr)
		}
	}()

	_ = c.SetIndexed(ctx, "doc:k", []byte("v"), time.Minute, []string{"idx:k"})
	_, _ = c.SMembers(ctx, "idx:k")
	_ = c.Del(ctx, "doc:k", "idx:k")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, req)
	body := rr.Body.String()

	if !strings.Contains(body, `redis_operation_duration_seconds_count`) {
		t.Fatalf("missing redis_operation_duration_seconds_count\n%s", body)
	}
	for _, op := range []string{"set_indexed", "smembers", "del"} {
		if !strings.Contains(body, `cache_op_total{op="`+op+`",result="ok"}`) {
			t.Fatalf("missing ok result for %s\n%s", op, body)
		}
	}
}
