package dimensions

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/mohammed-shakir/wcs-describe/internal/core/model"
	"github.com/mohammed-shakir/wcs-describe/internal/crs"
)

type fakeReader struct {
	times   []time.Time
	elev    []float64
	custom  map[string][]string
	timeErr error
}

func (f *fakeReader) CRS() *crs.CRS                      { return nil }
func (f *fakeReader) OriginalEnvelope() model.Envelope   { return model.Envelope{} }
func (f *fakeReader) OriginalGridRange() model.GridRange { return model.GridRange{} }
func (f *fakeReader) OriginalGridToWorld(model.PixelAnchor) model.AffineTransform {
	return model.AffineTransform{}
}
func (f *fakeReader) TimeDomain(context.Context) ([]time.Time, error) { return f.times, f.timeErr }
func (f *fakeReader) ElevationDomain(context.Context) ([]float64, error) {
	return f.elev, nil
}
func (f *fakeReader) CustomDomain(_ context.Context, name string) ([]string, error) {
	return f.custom[name], nil
}

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func TestNew_NoDimensions(t *testing.T) {
	set, err := New(context.Background(), model.MetadataMap{"title": "x"}, &fakeReader{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := set.(None); !ok {
		t.Fatalf("want None, got %T", set)
	}
}

func TestNew_DisabledDimensionIgnored(t *testing.T) {
	meta := model.MetadataMap{model.TimeKey: &model.DimensionInfo{Enabled: false}}
	set, err := New(context.Background(), meta, &fakeReader{times: []time.Time{day(1)}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := set.(None); !ok {
		t.Fatalf("want None, got %T", set)
	}
}

func TestNew_EmptyDomainIsAbsent(t *testing.T) {
	meta := model.MetadataMap{model.ElevationKey: &model.DimensionInfo{Enabled: true}}
	set, err := New(context.Background(), meta, &fakeReader{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := set.(None); !ok {
		t.Fatalf("want None, got %T", set)
	}
}

func TestNew_TimeAndElevation(t *testing.T) {
	meta := model.MetadataMap{
		model.TimeKey:      &model.DimensionInfo{Enabled: true, Presentation: model.PresentationList},
		model.ElevationKey: &model.DimensionInfo{Enabled: true, Presentation: model.PresentationDiscreteInterval, Resolution: "10"},
	}
	r := &fakeReader{
		times: []time.Time{day(3), day(1), day(2), day(1)},
		elev:  []float64{20, 0, 10},
	}
	set, err := New(context.Background(), meta, r)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h, ok := set.(*Helper)
	if !ok {
		t.Fatalf("want *Helper, got %T", set)
	}

	td, ok := h.Time()
	if !ok {
		t.Fatal("missing time")
	}
	if len(td.Values) != 3 || !td.Begin().Equal(day(1)) || !td.End().Equal(day(3)) {
		t.Fatalf("time values=%v", td.Values)
	}
	if td.Representation() != List {
		t.Fatalf("time representation=%v", td.Representation())
	}
	if !td.Default().Equal(day(3)) {
		t.Fatalf("time default=%v want maximum", td.Default())
	}

	ed, ok := h.Elevation()
	if !ok {
		t.Fatal("missing elevation")
	}
	if ed.Min() != 0 || ed.Max() != 20 || ed.Representation() != ResolutionInterval || ed.Resolution != 10 {
		t.Fatalf("elevation=%+v", ed)
	}
	if ed.Default() != 0 {
		t.Fatalf("elevation default=%v want minimum", ed.Default())
	}
	if got := h.Names(); !slices.Equal(got, []string{"elevation", "time"}) {
		t.Fatalf("names=%v", got)
	}
}

func TestNew_CustomDimensionsSorted(t *testing.T) {
	meta := model.MetadataMap{
		model.CustomDimensionPrefix + "WAVELENGTH": &model.DimensionInfo{Enabled: true},
		model.CustomDimensionPrefix + "BAND_SET":   &model.DimensionInfo{Enabled: true, Default: model.DefaultValue{Strategy: model.DefaultMaximum}},
	}
	r := &fakeReader{custom: map[string][]string{
		"WAVELENGTH": {"550", "1000", "440"},
		"BAND_SET":   {"rgb", "nir"},
	}}
	set, err := New(context.Background(), meta, r)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h := set.(*Helper)
	cs := h.Custom()
	if len(cs) != 2 || cs[0].Name != "BAND_SET" || cs[1].Name != "WAVELENGTH" {
		t.Fatalf("custom=%+v", cs)
	}
	if !slices.Equal(cs[1].Values, []string{"440", "550", "1000"}) {
		t.Fatalf("numeric sort: %v", cs[1].Values)
	}
	if cs[0].Default() != "rgb" {
		t.Fatalf("default=%q", cs[0].Default())
	}
}

func TestNew_ReaderErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	meta := model.MetadataMap{model.TimeKey: &model.DimensionInfo{Enabled: true}}
	if _, err := New(context.Background(), meta, &fakeReader{timeErr: boom}); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
}

func TestTimeDomain_DefaultStrategies(t *testing.T) {
	d := &TimeDomain{Values: []time.Time{day(1), day(5), day(9)}}

	d.Info = &model.DimensionInfo{Default: model.DefaultValue{Strategy: model.DefaultMinimum}}
	if !d.Default().Equal(day(1)) {
		t.Fatalf("minimum=%v", d.Default())
	}
	d.Info = &model.DimensionInfo{Default: model.DefaultValue{Strategy: model.DefaultNearest, Reference: "2024-01-06T00:00:00.000Z"}}
	if !d.Default().Equal(day(5)) {
		t.Fatalf("nearest=%v", d.Default())
	}
	d.Info = &model.DimensionInfo{Default: model.DefaultValue{Strategy: model.DefaultFixed, Reference: "2020-02-02T00:00:00Z"}}
	if got := FormatTime(d.Default()); got != "2020-02-02T00:00:00.000Z" {
		t.Fatalf("fixed=%s", got)
	}
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 250_000_000, time.FixedZone("x", 3600))
	if got := FormatTime(ts); got != "2024-03-01T11:30:00.250Z" {
		t.Fatalf("got %s", got)
	}
}
