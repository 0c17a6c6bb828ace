package wcs

import "github.com/mohammed-shakir/wcs-describe/internal/xmlstream"

func encodeServiceParameters(w *xmlstream.Writer, nativeFormat string) error {
	return w.Within("wcs:ServiceParameters", nil, func() error {
		w.Element("wcs:CoverageSubtype", CoverageSubtype)
		w.Element("wcs:nativeFormat", nativeFormat)
		return w.Err()
	})
}
