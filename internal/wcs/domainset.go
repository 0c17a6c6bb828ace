package wcs

import (
	"strings"

	"github.com/mohammed-shakir/wcs-describe/internal/crs"
	"github.com/mohammed-shakir/wcs-describe/internal/xmlstream"
)

func encodeCoverageFunction(w *xmlstream.Writer, cf *coverageFacts) error {
	return w.Within("gml:coverageFunction", nil, func() error {
		return w.Within("gml:GridFunction", nil, func() error {
			w.Element("gml:sequenceRule", "Linear", xmlstream.A("axisOrder", "+1 +2"))
			w.Element("gml:startPoint", joinInts(cf.grid.Low))
			return w.Err()
		})
	})
}

func encodeDomainSet(w *xmlstream.Writer, cf *coverageFacts) error {
	srs := xmlstream.A("srsName", cf.facts.SRSName)
	g := cf.g2w

	originX, originY := cf.swapped(g.TranslateX, g.TranslateY)
	v1a, v1b := cf.swapped(g.ScaleX, g.ShearY)
	v2a, v2b := cf.swapped(g.ShearX, g.ScaleY)

	gridAttrs := []xmlstream.Attr{
		xmlstream.A("gml:id", "grid00__"+cf.id),
		xmlstream.A("dimension", "2"),
	}
	return w.Within("gmlcov:domainSet", nil, func() error {
		return w.Within("gml:RectifiedGrid", gridAttrs, func() error {
			err := w.Within("gml:limits", nil, func() error {
				return w.Within("gml:GridEnvelope", nil, func() error {
					w.Element("gml:low", joinInts(cf.grid.Low))
					w.Element("gml:high", joinInts(cf.grid.High))
					return w.Err()
				})
			})
			if err != nil {
				return err
			}
			w.Element("gml:axisLabels", strings.Join(crs.AxisNames(cf.crs, GridLabelSwapPolicy), " "))
			err = w.Within("gml:origin", nil, func() error {
				return w.Within("gml:Point", []xmlstream.Attr{xmlstream.A("gml:id", "p00_"+cf.id), srs}, func() error {
					w.Element("gml:pos", joinNumbers(originX, originY))
					return w.Err()
				})
			})
			if err != nil {
				return err
			}
			w.Element("gml:offsetVector", joinNumbers(v1a, v1b), srs)
			w.Element("gml:offsetVector", joinNumbers(v2a, v2b), srs)
			return w.Err()
		})
	})
}
