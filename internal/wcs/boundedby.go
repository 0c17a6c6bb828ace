package wcs

import (
	"strconv"
	"strings"

	"github.com/mohammed-shakir/wcs-describe/internal/crs"
	"github.com/mohammed-shakir/wcs-describe/internal/dimensions"
	"github.com/mohammed-shakir/wcs-describe/internal/xmlstream"
)

const (
	timeUOM      = "s"
	elevationUOM = "m"
)

// envelopeLabels returns the axis and uom labels of the bounded envelope:
// spatial axes in written order, then elevation, then time.
func envelopeLabels(cf *coverageFacts) (axes, uoms []string) {
	axes = crs.AxisNames(cf.crs, true)
	uoms = crs.UomLabels(cf.crs, true)
	if h, ok := cf.dims.(*dimensions.Helper); ok {
		if ed, ok := h.Elevation(); ok {
			axes = append(axes, "elevation")
			uoms = append(uoms, elevationUnit(ed))
		}
		if _, ok := h.Time(); ok {
			axes = append(axes, "time")
			uoms = append(uoms, timeUOM)
		}
	}
	return axes, uoms
}

func elevationUnit(ed *dimensions.NumericDomain) string {
	switch {
	case ed.Info.UnitSymbol != "":
		return ed.Info.UnitSymbol
	case ed.Info.Units != "":
		return ed.Info.Units
	}
	return elevationUOM
}

func encodeBoundedBy(w *xmlstream.Writer, cf *coverageFacts) error {
	axes, uoms := envelopeLabels(cf)

	lowX, lowY := cf.swapped(cf.envelope.Min[0], cf.envelope.Min[1])
	highX, highY := cf.swapped(cf.envelope.Max[0], cf.envelope.Max[1])
	lower := []string{formatNumber(lowX), formatNumber(lowY)}
	upper := []string{formatNumber(highX), formatNumber(highY)}

	var td *dimensions.TimeDomain
	switch s := cf.dims.(type) {
	case dimensions.None:
	case *dimensions.Helper:
		if ed, ok := s.Elevation(); ok {
			lower = append(lower, formatNumber(ed.Min()))
			upper = append(upper, formatNumber(ed.Max()))
		}
		if t, ok := s.Time(); ok {
			td = t
			lower = append(lower, dimensions.FormatTime(t.Begin()))
			upper = append(upper, dimensions.FormatTime(t.End()))
		}
	}

	name := "gml:Envelope"
	if td != nil {
		name = "gml:EnvelopeWithTimePeriod"
	}
	attrs := []xmlstream.Attr{
		xmlstream.A("srsName", cf.facts.SRSName),
		xmlstream.A("axisLabels", strings.Join(axes, " ")),
		xmlstream.A("uomLabels", strings.Join(uoms, " ")),
		xmlstream.A("srsDimension", strconv.Itoa(len(axes))),
	}
	return w.Within("gml:boundedBy", nil, func() error {
		return w.Within(name, attrs, func() error {
			w.Element("gml:lowerCorner", strings.Join(lower, " "))
			w.Element("gml:upperCorner", strings.Join(upper, " "))
			if td != nil {
				w.Element("gml:beginPosition", dimensions.FormatTime(td.Begin()))
				w.Element("gml:endPosition", dimensions.FormatTime(td.End()))
			}
			return w.Err()
		})
	})
}
