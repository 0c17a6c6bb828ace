package main

import (
	"testing"
	"time"

	"github.com/mohammed-shakir/wcs-describe/internal/invalidation"
)

func TestBuildEvents(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	evs, err := buildEvents(publishOptions{op: "Update", source: "ops"}, []string{"nurc__dem", "sf__sst"}, now)
	if err != nil {
		t.Fatalf("buildEvents: %v", err)
	}
	if len(evs) != 2 || evs[1].CoverageID != "sf__sst" || evs[0].Op != invalidation.OpUpdate {
		t.Fatalf("events=%+v", evs)
	}
	if evs[0].Revision != uint64(now.UnixNano()) {
		t.Fatalf("default revision=%d", evs[0].Revision)
	}

	evs, err = buildEvents(publishOptions{op: "reload", revision: 7}, nil, now)
	if err != nil || len(evs) != 1 || evs[0].Revision != 7 {
		t.Fatalf("reload events=%+v err=%v", evs, err)
	}

	if _, err := buildEvents(publishOptions{op: "update"}, nil, now); err == nil {
		t.Fatalf("expected error without ids")
	}
	if _, err := buildEvents(publishOptions{op: "truncate"}, []string{"a"}, now); err == nil {
		t.Fatalf("expected error for unknown op")
	}
}
