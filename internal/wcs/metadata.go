package wcs

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mohammed-shakir/wcs-describe/internal/dimensions"
	"github.com/mohammed-shakir/wcs-describe/internal/xmlstream"
)

func encodeMetadata(w *xmlstream.Writer, cf *coverageFacts, providers []MetadataProvider) error {
	return w.Within("gmlcov:metadata", nil, func() error {
		return w.Within("gmlcov:Extension", nil, func() error {
			if h, ok := cf.dims.(*dimensions.Helper); ok {
				if err := encodeDimensions(w, cf.id, h); err != nil {
					return err
				}
			}
			pc := ProviderContext{
				EncodedID: cf.id,
				Coverage:  cf.cov,
				CRS:       cf.crs,
				Facts:     cf.facts,
				Envelope:  cf.envelope,
			}
			for _, p := range providers {
				if err := p.EncodeMetadata(w, pc); err != nil {
					return fmt.Errorf("metadata provider %T: %w", p, err)
				}
			}
			return w.Err()
		})
	})
}

func encodeDimensions(w *xmlstream.Writer, id string, h *dimensions.Helper) error {
	if td, ok := h.Time(); ok {
		if err := encodeTimeDomain(w, id, td); err != nil {
			return err
		}
	}
	if ed, ok := h.Elevation(); ok {
		attrs := []xmlstream.Attr{
			xmlstream.A("default", formatNumber(ed.Default())),
			xmlstream.A("uom", elevationUnit(ed)),
		}
		err := w.Within("wcsgs:ElevationDomain", attrs, func() error {
			values := make([]string, len(ed.Values))
			for i, v := range ed.Values {
				values[i] = formatNumber(v)
			}
			resolution := ""
			if ed.Resolution > 0 {
				resolution = formatNumber(ed.Resolution)
			}
			return encodeValueDomain(w, ed.Representation(), values, resolution)
		})
		if err != nil {
			return err
		}
	}
	for _, cd := range h.Custom() {
		attrs := []xmlstream.Attr{
			xmlstream.A("name", cd.Name),
			xmlstream.A("default", cd.Default()),
		}
		if u := cd.Info.UnitSymbol; u != "" {
			attrs = append(attrs, xmlstream.A("uom", u))
		}
		err := w.Within("wcsgs:DimensionDomain", attrs, func() error {
			return encodeValueDomain(w, cd.Representation(), cd.Values, "")
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func encodeTimeDomain(w *xmlstream.Writer, id string, td *dimensions.TimeDomain) error {
	attrs := []xmlstream.Attr{xmlstream.A("default", dimensions.FormatTime(td.Default()))}
	return w.Within("wcsgs:TimeDomain", attrs, func() error {
		if td.Representation() == dimensions.List {
			for i, t := range td.Values {
				err := w.Within("gml:TimeInstant", []xmlstream.Attr{xmlstream.A("gml:id", id+"_td_"+strconv.Itoa(i))}, func() error {
					w.Element("gml:timePosition", dimensions.FormatTime(t))
					return w.Err()
				})
				if err != nil {
					return err
				}
			}
			return nil
		}
		return w.Within("gml:TimePeriod", []xmlstream.Attr{xmlstream.A("gml:id", id+"_tp_0")}, func() error {
			w.Element("gml:beginPosition", dimensions.FormatTime(td.Begin()))
			w.Element("gml:endPosition", dimensions.FormatTime(td.End()))
			if td.Representation() == dimensions.ResolutionInterval {
				secs := strconv.FormatFloat(td.Resolution.Seconds(), 'f', -1, 64)
				w.Element("gml:timeInterval", secs, xmlstream.A("unit", "second"))
			}
			return w.Err()
		})
	})
}

// encodeValueDomain writes a list of wcsgs:SingleValue or one wcsgs:Range.
func encodeValueDomain(w *xmlstream.Writer, rep dimensions.Representation, values []string, resolution string) error {
	if rep == dimensions.List {
		for _, v := range values {
			w.Element("wcsgs:SingleValue", v)
		}
		return w.Err()
	}
	if len(values) == 0 {
		return errors.New("value domain range has no values")
	}
	return w.Within("wcsgs:Range", nil, func() error {
		w.Element("wcsgs:start", values[0])
		w.Element("wcsgs:end", values[len(values)-1])
		if rep == dimensions.ResolutionInterval && resolution != "" {
			w.Element("wcsgs:Resolution", resolution)
		}
		return w.Err()
	})
}
