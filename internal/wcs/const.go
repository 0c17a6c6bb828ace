// Package wcs encodes WCS 2.0 DescribeCoverage documents.
package wcs

import "github.com/mohammed-shakir/wcs-describe/internal/xmlstream"

const (
	NSWCS    = "http://www.opengis.net/wcs/2.0"
	NSOWS    = "http://www.opengis.net/ows/2.0"
	NSGML    = "http://www.opengis.net/gml/3.2"
	NSGMLCOV = "http://www.opengis.net/gmlcov/1.0"
	NSSWE    = "http://www.opengis.net/swe/2.0"
	NSXLink  = "http://www.w3.org/1999/xlink"
	NSXSI    = "http://www.w3.org/2001/XMLSchema-instance"
	NSWCSGS  = "http://www.geoserver.org/wcsgs/2.0"

	DefaultSchemaBaseURL = "http://schemas.opengis.net"

	NilReasonUnknown    = "http://www.opengis.net/def/nil/OGC/0/unknown"
	DefaultUOM          = "W.m-2.Sr-1"
	CoverageSubtype     = "RectifiedGridCoverage"
	DefaultNativeFormat = "image/tiff"
	// ContentType is served for documents and exception reports.
	ContentType = "application/xml"
)

// GridLabelSwapPolicy is the swap flag used for RectifiedGrid axis labels.
// Grid labels stay in CRS declaration order even when the envelope labels
// are swapped.
const GridLabelSwapPolicy = false

func defaultNamespaces() *xmlstream.Namespaces {
	ns := xmlstream.NewNamespaces()
	for _, d := range [][2]string{
		{"wcs", NSWCS},
		{"ows", NSOWS},
		{"gml", NSGML},
		{"gmlcov", NSGMLCOV},
		{"swe", NSSWE},
		{"xlink", NSXLink},
		{"xsi", NSXSI},
		{"wcsgs", NSWCSGS},
	} {
		_ = ns.Declare(d[0], d[1])
	}
	return ns
}
