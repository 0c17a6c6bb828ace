package wcs

import (
	"context"
	"fmt"

	"github.com/mohammed-shakir/wcs-describe/internal/core/model"
	"github.com/mohammed-shakir/wcs-describe/internal/crs"
	"github.com/mohammed-shakir/wcs-describe/internal/dimensions"
)

// coverageFacts is everything resolved about a coverage before any of its
// elements are written.
type coverageFacts struct {
	id       string
	cov      *model.Coverage
	crs      *crs.CRS
	facts    crs.Facts
	envelope model.Envelope
	grid     model.GridRange
	g2w      model.AffineTransform
	dims     dimensions.Set
}

func resolveCoverage(ctx context.Context, id string, cov *model.Coverage) (*coverageFacts, error) {
	r := cov.Reader
	if r == nil {
		return nil, fmt.Errorf("%s: %w", cov.PrefixedName(), ErrMissingGridMetadata)
	}
	c := r.CRS()
	facts, err := crs.Resolve(c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cov.PrefixedName(), err)
	}
	env := r.OriginalEnvelope()
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", cov.PrefixedName(), err)
	}
	grid := r.OriginalGridRange()
	if grid.Dimension() != 2 || len(grid.High) != 2 {
		return nil, fmt.Errorf("%s: %w (got %d)", cov.PrefixedName(), ErrUnsupportedGrid, grid.Dimension())
	}
	dims, err := dimensions.New(ctx, cov.Metadata, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cov.PrefixedName(), err)
	}
	return &coverageFacts{
		id:       id,
		cov:      cov,
		crs:      c,
		facts:    facts,
		envelope: env,
		grid:     grid,
		g2w:      r.OriginalGridToWorld(model.CellCenter),
		dims:     dims,
	}, nil
}

func (cf *coverageFacts) swapped(a, b float64) (float64, float64) {
	if cf.facts.AxisSwap {
		return b, a
	}
	return a, b
}
