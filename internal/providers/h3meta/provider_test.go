package h3meta

import (
	"bytes"
	"math"
	"sort"
	"strings"
	"testing"

	h3 "github.com/uber/h3-go/v4"

	"github.com/mohammed-shakir/wcs-describe/internal/core/model"
	"github.com/mohammed-shakir/wcs-describe/internal/crs"
	"github.com/mohammed-shakir/wcs-describe/internal/wcs"
	"github.com/mohammed-shakir/wcs-describe/internal/xmlstream"
)

func decode(t *testing.T, ref string) (*crs.CRS, crs.Facts) {
	t.Helper()
	reg, err := crs.NewRegistry(4)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	c, err := reg.Decode(ref)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	f, err := crs.Resolve(c)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return c, f
}

func encode(t *testing.T, p *Provider, pc wcs.ProviderContext) string {
	t.Helper()
	var buf bytes.Buffer
	w := xmlstream.NewWriter(&buf)
	err := w.Within("root", nil, func() error { return p.EncodeMetadata(w, pc) })
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.String()
}

func TestNew_ValidatesResolution(t *testing.T) {
	if _, err := New(16, 10); err == nil {
		t.Fatal("expected error for res 16")
	}
	p, err := New(5, 0)
	if err != nil || p.maxCells != DefaultMaxCells {
		t.Fatalf("p=%+v err=%v", p, err)
	}
}

func TestEncodeMetadata_Geographic(t *testing.T) {
	c, f := decode(t, "EPSG:4326")
	p, _ := New(5, 64)
	// Lat 10..11, Long 20..21
	doc := encode(t, p, wcs.ProviderContext{EncodedID: "dem", CRS: c, Facts: f, Envelope: model.NewEnvelope2D(10, 20, 11, 21)})

	want, err := h3.LatLngToCell(h3.LatLng{Lat: 10.5, Lng: 20.5}, 5)
	if err != nil {
		t.Fatalf("h3: %v", err)
	}
	if !strings.Contains(doc, "<h3:center>"+want.String()+"</h3:center>") {
		t.Fatalf("center cell missing:\n%s", doc)
	}
	if !strings.Contains(doc, `<h3:CellCoverage resolution="5">`) || !strings.Contains(doc, "<h3:cells ") {
		t.Fatalf("cells missing:\n%s", doc)
	}
}

func TestCover_RespectsMaxCells(t *testing.T) {
	p, _ := New(9, 40)
	cells, res, err := p.cover(bbox{minLat: 59.30, minLng: 17.95, maxLat: 59.40, maxLng: 18.15})
	if err != nil {
		t.Fatalf("cover: %v", err)
	}
	if len(cells) == 0 || len(cells) > 40 {
		t.Fatalf("cells=%d", len(cells))
	}
	if res < 0 || res > 9 {
		t.Fatalf("res=%d", res)
	}
	if !sort.StringsAreSorted(cells) {
		t.Fatal("cells must be sorted")
	}
}

func TestFootprint_WebMercator(t *testing.T) {
	c, f := decode(t, "EPSG:3857")
	half := math.Pi * earthRadiusM / 2 // 90 degrees of longitude
	bb, ok := footprint(c, f.EPSGCode, model.NewEnvelope2D(0, 0, half, 1_000_000))
	if !ok {
		t.Fatal("expected footprint")
	}
	if math.Abs(bb.maxLng-90) > 1e-9 || bb.minLng != 0 || bb.minLat != 0 {
		t.Fatalf("bbox=%+v", bb)
	}
	if bb.maxLat < 8.9 || bb.maxLat > 9.0 {
		t.Fatalf("maxLat=%v", bb.maxLat)
	}
}

func TestEncodeMetadata_SkipsOtherCRSs(t *testing.T) {
	c, f := decode(t, "EPSG:32633")
	p, _ := New(5, 64)
	doc := encode(t, p, wcs.ProviderContext{CRS: c, Facts: f, Envelope: model.NewEnvelope2D(400000, 5000000, 500000, 5100000)})
	if strings.Contains(doc, "h3:") {
		t.Fatalf("unexpected h3 output:\n%s", doc)
	}
}

func TestRegisterNamespaces(t *testing.T) {
	p, _ := New(5, 64)
	ns := xmlstream.NewNamespaces()
	if err := p.RegisterNamespaces(ns); err != nil {
		t.Fatalf("register: %v", err)
	}
	if u, ok := ns.URI(Prefix); !ok || u != Namespace {
		t.Fatalf("uri=%q", u)
	}
}
