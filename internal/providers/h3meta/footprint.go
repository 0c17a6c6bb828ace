package h3meta

import (
	"math"

	h3 "github.com/uber/h3-go/v4"

	"github.com/mohammed-shakir/wcs-describe/internal/core/model"
	"github.com/mohammed-shakir/wcs-describe/internal/crs"
)

const (
	webMercator  = 3857
	earthRadiusM = 6378137.0
)

type bbox struct {
	minLat, minLng, maxLat, maxLng float64
}

func (b bbox) center() h3.LatLng {
	return h3.LatLng{Lat: (b.minLat + b.maxLat) / 2, Lng: (b.minLng + b.maxLng) / 2}
}

// footprint converts the native envelope to a WGS84 box. Only geographic
// CRSs and web mercator are handled.
func footprint(c *crs.CRS, epsg int, env model.Envelope) (bbox, bool) {
	if c == nil || len(c.Axes) < 2 || env.Validate() != nil {
		return bbox{}, false
	}
	var lat, lng [2]float64
	switch {
	case c.Kind == crs.Geographic:
		for i := range 2 {
			switch c.Axes[i].Direction {
			case crs.North:
				lat = [2]float64{env.Min[i], env.Max[i]}
			case crs.East:
				lng = [2]float64{env.Min[i], env.Max[i]}
			default:
				return bbox{}, false
			}
		}
	case epsg == webMercator:
		lng = [2]float64{mercatorLng(env.Min[0]), mercatorLng(env.Max[0])}
		lat = [2]float64{mercatorLat(env.Min[1]), mercatorLat(env.Max[1])}
	default:
		return bbox{}, false
	}
	b := bbox{
		minLat: clamp(lat[0], -90, 90), maxLat: clamp(lat[1], -90, 90),
		minLng: clamp(lng[0], -180, 180), maxLng: clamp(lng[1], -180, 180),
	}
	if b.maxLat <= b.minLat || b.maxLng <= b.minLng {
		return bbox{}, false
	}
	return b, true
}

func mercatorLng(x float64) float64 { return x / earthRadiusM * 180 / math.Pi }

func mercatorLat(y float64) float64 {
	return (2*math.Atan(math.Exp(y/earthRadiusM)) - math.Pi/2) * 180 / math.Pi
}

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }
