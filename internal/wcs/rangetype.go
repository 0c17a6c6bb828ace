package wcs

import (
	"strconv"

	"github.com/mohammed-shakir/wcs-describe/internal/core/model"
	"github.com/mohammed-shakir/wcs-describe/internal/xmlstream"
)

func encodeRangeType(w *xmlstream.Writer, bands []model.Band) error {
	return w.Within("gmlcov:rangeType", nil, func() error {
		return w.Within("swe:DataRecord", nil, func() error {
			for _, b := range bands {
				if err := encodeField(w, b); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func encodeField(w *xmlstream.Writer, b model.Band) error {
	return w.Within("swe:field", []xmlstream.Attr{xmlstream.A("name", b.Name)}, func() error {
		return w.Within("swe:Quantity", nil, func() error {
			// no separate band description is tracked, the name stands in
			w.Element("swe:description", b.Name)
			if len(b.NoData) > 0 {
				err := w.Within("swe:nilValues", nil, func() error {
					return w.Within("swe:NilValues", nil, func() error {
						for _, v := range b.NoData {
							w.Element("swe:nilValue", formatNumber(v), xmlstream.A("reason", NilReasonUnknown))
						}
						return w.Err()
					})
				})
				if err != nil {
					return err
				}
			}
			uom := b.Unit
			if uom == "" {
				uom = DefaultUOM
			}
			w.Empty("swe:uom", xmlstream.A("code", uom))
			return w.Within("swe:constraint", nil, func() error {
				return w.Within("swe:AllowedValues", nil, func() error {
					w.Element("swe:interval", allowedInterval(b))
					if b.SignificantFigures != nil {
						w.Element("swe:significantFigures", strconv.Itoa(*b.SignificantFigures))
					}
					return w.Err()
				})
			})
		})
	})
}

// allowedInterval prefers the declared range, then the data type range.
func allowedInterval(b model.Band) string {
	if b.Range != nil {
		return joinNumbers(b.Range.Min, b.Range.Max)
	}
	if lo, hi, ok := b.DataType.Range(); ok {
		return joinNumbers(lo, hi)
	}
	return "-INF INF"
}
