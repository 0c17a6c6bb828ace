package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

var testCatalog = filepath.Join("..", "..", "internal", "catalog", "testdata", "catalog.yaml")

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDescribe_WritesDocument(t *testing.T) {
	out, err := execute(t, "--catalog", testCatalog, "nurc__dem", "sf__sst")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{
		`<wcs:CoverageDescriptions`,
		`gml:id="nurc__dem"`,
		`gml:id="sf__sst"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
	if strings.Index(out, `gml:id="nurc__dem"`) > strings.Index(out, `gml:id="sf__sst"`) {
		t.Fatalf("coverages out of request order")
	}
}

func TestDescribe_UnknownIDWritesNothing(t *testing.T) {
	out, err := execute(t, "--catalog", testCatalog, "nurc__dem", "nope")
	if err == nil {
		t.Fatalf("expected error for unknown coverage")
	}
	if out != "" {
		t.Fatalf("partial output written:\n%s", out)
	}
}

func TestDescribe_H3Metadata(t *testing.T) {
	out, err := execute(t, "--catalog", testCatalog, "--h3-res", "2", "nurc__dem")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, `xmlns:h3=`) || !strings.Contains(out, `<h3:CellCoverage`) {
		t.Fatalf("h3 metadata missing:\n%s", out)
	}
}

func TestList(t *testing.T) {
	out, err := execute(t, "--catalog", testCatalog, "--list")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "nurc__dem\n") || !strings.Contains(out, "lab_scan\n") {
		t.Fatalf("ids:\n%s", out)
	}
}

func TestRequiresCatalogAndIDs(t *testing.T) {
	if _, err := execute(t, "nurc__dem"); err == nil {
		t.Fatalf("expected missing --catalog error")
	}
	if _, err := execute(t, "--catalog", testCatalog); err == nil {
		t.Fatalf("expected missing id error")
	}
}
