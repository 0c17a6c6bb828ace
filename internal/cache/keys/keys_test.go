package keys

import (
	"regexp"
	"strings"
	"testing"
)

func TestDocumentKey_Deterministic(t *testing.T) {
	k1 := DocumentKey(3, []string{"nurc__dem", "sf__sst"})
	k2 := DocumentKey(3, []string{" nurc__dem", "sf__sst "})
	if k1 != k2 {
		t.Fatalf("determinism failed:\n k1=%s\n k2=%s", k1, k2)
	}
	if !strings.HasPrefix(k1, "wcsdoc:r3:nurc__dem,sf__sst:h=") {
		t.Fatalf("unexpected key %s", k1)
	}
}

func TestDocumentKey_OrderAndRevisionMatter(t *testing.T) {
	a := DocumentKey(1, []string{"a", "b"})
	if a == DocumentKey(1, []string{"b", "a"}) {
		t.Fatal("order must be part of the key")
	}
	if a == DocumentKey(2, []string{"a", "b"}) {
		t.Fatal("revision must be part of the key")
	}
}

func TestDocumentKey_LongListsAreBounded(t *testing.T) {
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = "workspace__coverage_with_a_long_name"
	}
	k := DocumentKey(1, ids)
	if len(k) > 220 {
		t.Fatalf("key too long: %d", len(k))
	}
	if !regexp.MustCompile(`^[A-Za-z0-9:_=.,\-]+$`).MatchString(k) {
		t.Fatalf("key contains disallowed characters: %s", k)
	}
}

func TestCoverageIndexKey(t *testing.T) {
	if got := CoverageIndexKey("nurc__dem"); got != "wcsdoc:idx:nurc__dem" {
		t.Fatalf("got %s", got)
	}
	if got := CoverageIndexKey("bad key/x"); got != "wcsdoc:idx:bad_key-x" {
		t.Fatalf("got %s", got)
	}
}
