// Package model defines the coverage types shared across the service.
package model

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mohammed-shakir/wcs-describe/internal/crs"
)

// Envelope is a spatial extent with ordinates in native storage order.
type Envelope struct {
	Min []float64
	Max []float64
}

func NewEnvelope2D(minX, minY, maxX, maxY float64) Envelope {
	return Envelope{Min: []float64{minX, minY}, Max: []float64{maxX, maxY}}
}

func (e Envelope) Dimension() int { return len(e.Min) }

func (e Envelope) Validate() error {
	if len(e.Min) < 2 || len(e.Min) != len(e.Max) {
		return fmt.Errorf("envelope: want matching corners of at least 2 ordinates, got %d/%d", len(e.Min), len(e.Max))
	}
	return nil
}

// GridRange holds inclusive low/high grid coordinates.
type GridRange struct {
	Low  []int
	High []int
}

func NewGridRange2D(x, y, width, height int) GridRange {
	return GridRange{Low: []int{x, y}, High: []int{x + width - 1, y + height - 1}}
}

func (g GridRange) Dimension() int { return len(g.Low) }

func (g GridRange) Span(i int) int { return g.High[i] - g.Low[i] + 1 }

type PixelAnchor int

const (
	CellCorner PixelAnchor = iota
	CellCenter
)

// AffineTransform maps grid (i, j) to world coordinates:
// x = ScaleX*i + ShearX*j + TranslateX, y = ShearY*i + ScaleY*j + TranslateY.
type AffineTransform struct {
	ScaleX, ShearX, TranslateX float64
	ShearY, ScaleY, TranslateY float64
}

func (a AffineTransform) Apply(i, j float64) (x, y float64) {
	return a.ScaleX*i + a.ShearX*j + a.TranslateX, a.ShearY*i + a.ScaleY*j + a.TranslateY
}

// CenterShifted returns the transform anchored at cell centers given a corner anchored one.
func (a AffineTransform) CenterShifted() AffineTransform {
	out := a
	out.TranslateX, out.TranslateY = a.Apply(0.5, 0.5)
	return out
}

type DataType string

const (
	Byte    DataType = "Byte"
	Int8    DataType = "Int8"
	UInt16  DataType = "UInt16"
	Int16   DataType = "Int16"
	UInt32  DataType = "UInt32"
	Int32   DataType = "Int32"
	Float32 DataType = "Float32"
	Float64 DataType = "Float64"
)

// Range reports the value range representable by the type. Floating point
// types report ok=false.
func (d DataType) Range() (lo, hi float64, ok bool) {
	switch d {
	case Byte:
		return 0, math.MaxUint8, true
	case Int8:
		return math.MinInt8, math.MaxInt8, true
	case UInt16:
		return 0, math.MaxUint16, true
	case Int16:
		return math.MinInt16, math.MaxInt16, true
	case UInt32:
		return 0, math.MaxUint32, true
	case Int32:
		return math.MinInt32, math.MaxInt32, true
	}
	return 0, 0, false
}

type ValueRange struct {
	Min, Max float64
}

type Band struct {
	Name               string
	Unit               string
	NoData             []float64
	Range              *ValueRange
	SignificantFigures *int
	DataType           DataType
}

type Presentation string

const (
	PresentationList               Presentation = "LIST"
	PresentationContinuousInterval Presentation = "CONTINUOUS_INTERVAL"
	PresentationDiscreteInterval   Presentation = "DISCRETE_INTERVAL"
)

type DefaultStrategy string

const (
	DefaultMinimum DefaultStrategy = "MINIMUM"
	DefaultMaximum DefaultStrategy = "MAXIMUM"
	DefaultNearest DefaultStrategy = "NEAREST"
	DefaultFixed   DefaultStrategy = "FIXED"
)

type DefaultValue struct {
	Strategy  DefaultStrategy
	Reference string
}

// DimensionInfo configures how a coverage publishes one of its dimensions.
type DimensionInfo struct {
	Enabled      bool
	Presentation Presentation
	// Resolution is a duration string for time ("24h") and a number otherwise.
	Resolution string
	Units      string
	UnitSymbol string
	Default    DefaultValue
}

const (
	TimeKey               = "time"
	ElevationKey          = "elevation"
	CustomDimensionPrefix = "custom_dimension_"
)

// MetadataMap carries per-coverage configuration, dimension settings included.
type MetadataMap map[string]any

func (m MetadataMap) Dimension(key string) (*DimensionInfo, bool) {
	di, ok := m[key].(*DimensionInfo)
	if !ok || di == nil {
		return nil, false
	}
	return di, true
}

// GridReader exposes the native grid geometry and dimension domains of a coverage.
type GridReader interface {
	CRS() *crs.CRS
	OriginalEnvelope() Envelope
	OriginalGridRange() GridRange
	OriginalGridToWorld(anchor PixelAnchor) AffineTransform
	TimeDomain(ctx context.Context) ([]time.Time, error)
	ElevationDomain(ctx context.Context) ([]float64, error)
	CustomDomain(ctx context.Context, name string) ([]string, error)
}

type Coverage struct {
	Workspace    string
	Name         string
	Title        string
	Format       string
	NativeFormat string
	Bands        []Band
	Metadata     MetadataMap
	Reader       GridReader
}

func (c *Coverage) PrefixedName() string {
	if c.Workspace == "" {
		return c.Name
	}
	return c.Workspace + ":" + c.Name
}
