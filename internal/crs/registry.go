package crs

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 256

var (
	geographicAxes = []Axis{
		{Abbreviation: "Lat", Direction: North, Unit: "deg"},
		{Abbreviation: "Long", Direction: East, Unit: "deg"},
	}
	eastingNorthing = []Axis{
		{Abbreviation: "E", Direction: East, Unit: "m"},
		{Abbreviation: "N", Direction: North, Unit: "m"},
	}
	xyAxes = []Axis{
		{Abbreviation: "X", Direction: East, Unit: "m"},
		{Abbreviation: "Y", Direction: North, Unit: "m"},
	}
	northingEasting = []Axis{
		{Abbreviation: "Y", Direction: North, Unit: "m"},
		{Abbreviation: "X", Direction: East, Unit: "m"},
	}
)

type definition struct {
	name string
	kind Kind
	axes []Axis
}

var builtin = map[int]definition{
	4326:  {"WGS 84", Geographic, geographicAxes},
	4258:  {"ETRS89", Geographic, geographicAxes},
	4269:  {"NAD83", Geographic, geographicAxes},
	4283:  {"GDA94", Geographic, geographicAxes},
	4617:  {"NAD83(CSRS)", Geographic, geographicAxes},
	3857:  {"WGS 84 / Pseudo-Mercator", Projected, xyAxes},
	3577:  {"GDA94 / Australian Albers", Projected, xyAxes},
	2056:  {"CH1903+ / LV95", Projected, eastingNorthing},
	27700: {"OSGB36 / British National Grid", Projected, eastingNorthing},
	3035:  {"ETRS89-extended / LAEA Europe", Projected, northingEasting},
}

func lookupDefinition(code int) (definition, bool) {
	if d, ok := builtin[code]; ok {
		return d, true
	}
	switch {
	case code >= 32601 && code <= 32660:
		return definition{fmt.Sprintf("WGS 84 / UTM zone %dN", code-32600), Projected, eastingNorthing}, true
	case code >= 32701 && code <= 32760:
		return definition{fmt.Sprintf("WGS 84 / UTM zone %dS", code-32700), Projected, eastingNorthing}, true
	}
	return definition{}, false
}

// Registry decodes EPSG references into CRS definitions. Decoded values are
// shared between callers and must not be mutated.
type Registry struct {
	mu    sync.RWMutex
	extra map[int]definition
	cache *lru.Cache[int, *CRS]
}

func NewRegistry(cacheSize int) (*Registry, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	c, err := lru.New[int, *CRS](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("crs cache: %w", err)
	}
	return &Registry{extra: map[int]definition{}, cache: c}, nil
}

// Register adds or replaces a definition for code.
func (r *Registry) Register(code int, name string, kind Kind, axes []Axis) {
	r.mu.Lock()
	r.extra[code] = definition{name: name, kind: kind, axes: append([]Axis(nil), axes...)}
	r.mu.Unlock()
	r.cache.Remove(code)
}

// Decode accepts "EPSG:n", "urn:ogc:def:crs:EPSG::n" and
// "http://www.opengis.net/def/crs/EPSG/0/n".
func (r *Registry) Decode(ref string) (*CRS, error) {
	code, err := ParseCode(ref)
	if err != nil {
		return nil, err
	}
	return r.ForCode(code)
}

func (r *Registry) ForCode(code int) (*CRS, error) {
	if c, ok := r.cache.Get(code); ok {
		return c, nil
	}
	r.mu.RLock()
	d, ok := r.extra[code]
	r.mu.RUnlock()
	if !ok {
		d, ok = lookupDefinition(code)
	}
	if !ok {
		return nil, fmt.Errorf("%w: EPSG:%d", ErrUnknownCode, code)
	}
	c := &CRS{
		Name:        d.name,
		Kind:        d.kind,
		Axes:        append([]Axis(nil), d.axes...),
		Identifiers: []Identifier{{Authority: "EPSG", Code: strconv.Itoa(code)}},
	}
	r.cache.Add(code, c)
	return c, nil
}

func ParseCode(ref string) (int, error) {
	s := strings.TrimSpace(ref)
	var raw string
	switch {
	case hasPrefixFold(s, "EPSG:"):
		raw = s[len("EPSG:"):]
	case hasPrefixFold(s, "urn:ogc:def:crs:EPSG:"):
		raw = s[len("urn:ogc:def:crs:EPSG:"):]
		// optional version segment: urn:ogc:def:crs:EPSG:6.6:4326
		if i := strings.LastIndex(raw, ":"); i >= 0 {
			raw = raw[i+1:]
		}
	case hasPrefixFold(s, SRSPrefix):
		raw = s[len(SRSPrefix):]
	default:
		return 0, fmt.Errorf("%w: unsupported reference %q", ErrUnknownCode, ref)
	}
	code, err := strconv.Atoi(raw)
	if err != nil || code <= 0 {
		return 0, fmt.Errorf("%w: bad code in %q", ErrUnknownCode, ref)
	}
	return code, nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
