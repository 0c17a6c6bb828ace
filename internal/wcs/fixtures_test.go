package wcs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mohammed-shakir/wcs-describe/internal/core/model"
	"github.com/mohammed-shakir/wcs-describe/internal/crs"
)

type stubReader struct {
	crs    *crs.CRS
	env    model.Envelope
	grid   model.GridRange
	corner model.AffineTransform
	times  []time.Time
	elev   []float64
	custom map[string][]string
}

func (r *stubReader) CRS() *crs.CRS                      { return r.crs }
func (r *stubReader) OriginalEnvelope() model.Envelope   { return r.env }
func (r *stubReader) OriginalGridRange() model.GridRange { return r.grid }
func (r *stubReader) OriginalGridToWorld(a model.PixelAnchor) model.AffineTransform {
	if a == model.CellCenter {
		return r.corner.CenterShifted()
	}
	return r.corner
}
func (r *stubReader) TimeDomain(context.Context) ([]time.Time, error)    { return r.times, nil }
func (r *stubReader) ElevationDomain(context.Context) ([]float64, error) { return r.elev, nil }
func (r *stubReader) CustomDomain(_ context.Context, n string) ([]string, error) {
	return r.custom[n], nil
}

type stubCatalog map[string]*model.Coverage

func (c stubCatalog) Coverage(_ context.Context, id string) (*model.Coverage, error) {
	cov, ok := c[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCoverageNotFound, id)
	}
	return cov, nil
}

func decodeCRS(t *testing.T, ref string) *crs.CRS {
	t.Helper()
	r, err := crs.NewRegistry(0)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	c, err := r.Decode(ref)
	if err != nil {
		t.Fatalf("decode %s: %v", ref, err)
	}
	return c
}

// demCoverage is a north-up 4x4 grid over [(10,20),(11,21)] with quarter
// degree cells. Columns follow the CRS east axis.
func demCoverage(t *testing.T, ref string) *model.Coverage {
	t.Helper()
	c := decodeCRS(t, ref)
	corner := model.AffineTransform{
		ScaleX: 0.25, TranslateX: 10,
		ScaleY: -0.25, TranslateY: 21,
	}
	if crs.AxisOrderOf(c) == crs.NorthEast {
		corner = model.AffineTransform{
			ShearX: -0.25, TranslateX: 11,
			ShearY: 0.25, TranslateY: 20,
		}
	}
	return &model.Coverage{
		Name:         "dem",
		Format:       "GeoTIFF",
		NativeFormat: "image/tiff",
		Bands: []model.Band{{
			Name:     "elevation",
			Unit:     "m",
			NoData:   []float64{-9999},
			DataType: model.Float32,
		}},
		Metadata: model.MetadataMap{},
		Reader: &stubReader{
			crs:    c,
			env:    model.NewEnvelope2D(10, 20, 11, 21),
			grid:   model.NewGridRange2D(0, 0, 4, 4),
			corner: corner,
		},
	}
}
