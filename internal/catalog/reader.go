package catalog

import (
	"context"
	"slices"
	"time"

	"github.com/mohammed-shakir/wcs-describe/internal/core/model"
	"github.com/mohammed-shakir/wcs-describe/internal/crs"
)

// StaticReader serves grid geometry and dimension domains held in memory.
type StaticReader struct {
	crs       *crs.CRS
	envelope  model.Envelope
	grid      model.GridRange
	transform model.AffineTransform
	times     []time.Time
	elevation []float64
	custom    map[string][]string
}

func (r *StaticReader) CRS() *crs.CRS { return r.crs }

func (r *StaticReader) OriginalEnvelope() model.Envelope {
	return model.Envelope{Min: slices.Clone(r.envelope.Min), Max: slices.Clone(r.envelope.Max)}
}

func (r *StaticReader) OriginalGridRange() model.GridRange {
	return model.GridRange{Low: slices.Clone(r.grid.Low), High: slices.Clone(r.grid.High)}
}

func (r *StaticReader) OriginalGridToWorld(anchor model.PixelAnchor) model.AffineTransform {
	if anchor == model.CellCenter {
		return r.transform.CenterShifted()
	}
	return r.transform
}

func (r *StaticReader) TimeDomain(context.Context) ([]time.Time, error) {
	return slices.Clone(r.times), nil
}

func (r *StaticReader) ElevationDomain(context.Context) ([]float64, error) {
	return slices.Clone(r.elevation), nil
}

func (r *StaticReader) CustomDomain(_ context.Context, name string) ([]string, error) {
	return slices.Clone(r.custom[name]), nil
}

// cornerTransform fits a north-up transform mapping the grid onto the
// envelope. Grid columns follow the east axis and rows run southwards, so for
// north-first CRSs column i moves ordinate 1 and row j moves ordinate 0.
func cornerTransform(env model.Envelope, grid model.GridRange, order crs.AxisOrder) model.AffineTransform {
	w := float64(grid.Span(0))
	h := float64(grid.Span(1))
	if order == crs.NorthEast {
		return model.AffineTransform{
			ShearX:     -(env.Max[0] - env.Min[0]) / h,
			TranslateX: env.Max[0] + float64(grid.Low[1])*(env.Max[0]-env.Min[0])/h,
			ShearY:     (env.Max[1] - env.Min[1]) / w,
			TranslateY: env.Min[1] - float64(grid.Low[0])*(env.Max[1]-env.Min[1])/w,
		}
	}
	return model.AffineTransform{
		ScaleX:     (env.Max[0] - env.Min[0]) / w,
		TranslateX: env.Min[0] - float64(grid.Low[0])*(env.Max[0]-env.Min[0])/w,
		ScaleY:     -(env.Max[1] - env.Min[1]) / h,
		TranslateY: env.Max[1] + float64(grid.Low[1])*(env.Max[1]-env.Min[1])/h,
	}
}
