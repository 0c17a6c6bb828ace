package wcs

import (
	"strings"
	"sync"

	"github.com/mohammed-shakir/wcs-describe/internal/core/model"
)

// MIMEMapper maps coverage store formats to native MIME types.
type MIMEMapper struct {
	mu       sync.RWMutex
	byFormat map[string]string
}

func NewMIMEMapper() *MIMEMapper {
	m := &MIMEMapper{byFormat: map[string]string{}}
	for format, mime := range map[string]string{
		"GeoTIFF":             "image/tiff",
		"WorldImage":          "image/tiff",
		"ImageMosaic":         "image/tiff",
		"NetCDF":              "application/x-netcdf",
		"GRIB":                "application/x-grib",
		"JP2K":                "image/jp2",
		"JPEG2000":            "image/jp2",
		"PNG":                 "image/png",
		"JPEG":                "image/jpeg",
		"ArcGrid":             "application/arcgrid",
		"GeoPackage":          "application/geopackage+sqlite3",
		"GeoPackage (mosaic)": "application/geopackage+sqlite3",
	} {
		m.byFormat[strings.ToLower(format)] = mime
	}
	return m
}

func (m *MIMEMapper) Register(format, mime string) {
	m.mu.Lock()
	m.byFormat[strings.ToLower(strings.TrimSpace(format))] = mime
	m.mu.Unlock()
}

// Mime returns the declared native format or the one mapped from the store
// format, or "" when neither is known.
func (m *MIMEMapper) Mime(cov *model.Coverage) string {
	if cov == nil {
		return ""
	}
	if nf := strings.TrimSpace(cov.NativeFormat); nf != "" {
		return nf
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byFormat[strings.ToLower(strings.TrimSpace(cov.Format))]
}

func (m *MIMEMapper) NativeFormat(cov *model.Coverage) string {
	if mime := m.Mime(cov); mime != "" {
		return mime
	}
	return DefaultNativeFormat
}
