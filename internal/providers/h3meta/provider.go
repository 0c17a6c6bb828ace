// Package h3meta publishes the H3 cells covering a coverage footprint as
// coverage metadata.
package h3meta

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	h3 "github.com/uber/h3-go/v4"

	"github.com/mohammed-shakir/wcs-describe/internal/wcs"
	"github.com/mohammed-shakir/wcs-describe/internal/xmlstream"
)

const (
	Prefix          = "h3"
	Namespace       = "http://h3geo.org/ns/wcs/1.0"
	DefaultMaxCells = 64
)

type Provider struct {
	res      int
	maxCells int
}

func New(res, maxCells int) (*Provider, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	return &Provider{res: res, maxCells: maxCells}, nil
}

func (p *Provider) RegisterNamespaces(ns *xmlstream.Namespaces) error {
	return ns.Declare(Prefix, Namespace)
}

// SchemaLocations is empty: the h3 elements have no published schema.
func (p *Provider) SchemaLocations(string) []string { return nil }

// EncodeMetadata writes h3:CellCoverage for coverages with a WGS84
// footprint; other coverages are skipped.
func (p *Provider) EncodeMetadata(w *xmlstream.Writer, c wcs.ProviderContext) error {
	bb, ok := footprint(c.CRS, c.Facts.EPSGCode, c.Envelope)
	if !ok {
		return nil
	}
	center, err := h3.LatLngToCell(bb.center(), p.res)
	if err != nil {
		return fmt.Errorf("h3 center cell: %w", err)
	}
	cells, cellRes, err := p.cover(bb)
	if err != nil {
		return err
	}

	attrs := []xmlstream.Attr{
		xmlstream.A("resolution", strconv.Itoa(p.res)),
	}
	return w.Within(Prefix+":CellCoverage", attrs, func() error {
		w.Element(Prefix+":center", center.String())
		if len(cells) > 0 {
			w.Element(Prefix+":cells", strings.Join(cells, " "),
				xmlstream.A("resolution", strconv.Itoa(cellRes)),
				xmlstream.A("count", strconv.Itoa(len(cells))))
		}
		return w.Err()
	})
}

// cover returns the polyfill at the finest resolution up to p.res that stays
// within p.maxCells.
func (p *Provider) cover(bb bbox) ([]string, int, error) {
	if bb.maxLng-bb.minLng >= 180 {
		return nil, 0, nil
	}
	var best []string
	bestRes := 0
	for r := 0; r <= p.res; r++ {
		cells, err := cellsForBBox(bb, r)
		if err != nil {
			return nil, 0, err
		}
		if len(cells) > p.maxCells {
			break
		}
		if len(cells) > 0 {
			best, bestRes = cells, r
		}
	}
	return best, bestRes, nil
}

func validateRes(res int) error {
	if res < 0 || res > 15 {
		return fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return nil
}

// cellsForBBox polyfills the box and returns unique cells sorted.
func cellsForBBox(bb bbox, res int) ([]string, error) {
	outer := h3.GeoLoop{
		{Lat: bb.minLat, Lng: bb.minLng},
		{Lat: bb.minLat, Lng: bb.maxLng},
		{Lat: bb.maxLat, Lng: bb.maxLng},
		{Lat: bb.maxLat, Lng: bb.minLng},
	}
	indexes, err := h3.PolygonToCells(h3.GeoPolygon{GeoLoop: outer}, res)
	if err != nil {
		return nil, fmt.Errorf("h3 polyfill: %w", err)
	}
	out := make([]string, 0, len(indexes))
	seen := make(map[string]struct{}, len(indexes))
	for _, idx := range indexes {
		s := idx.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}
