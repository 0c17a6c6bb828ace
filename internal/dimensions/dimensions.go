// Package dimensions gathers the time, elevation and custom dimension
// domains a coverage publishes.
package dimensions

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mohammed-shakir/wcs-describe/internal/core/model"
)

// TimeFormat renders instants in UTC with millisecond precision.
const TimeFormat = "2006-01-02T15:04:05.000Z"

func FormatTime(t time.Time) string { return t.UTC().Format(TimeFormat) }

// ParseTime accepts TimeFormat and RFC 3339.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(TimeFormat, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// Set is either None or *Helper.
type Set interface {
	isSet()
}

// None is the Set of a coverage without enabled dimensions.
type None struct{}

func (None) isSet() {}

type Helper struct {
	time      *TimeDomain
	elevation *NumericDomain
	custom    []CustomDomain
}

func (*Helper) isSet() {}

func (h *Helper) Time() (*TimeDomain, bool) { return h.time, h.time != nil }

func (h *Helper) Elevation() (*NumericDomain, bool) { return h.elevation, h.elevation != nil }

// Custom returns custom dimensions sorted by name.
func (h *Helper) Custom() []CustomDomain { return h.custom }

// Names lists the dimensions present, for logging.
func (h *Helper) Names() []string {
	var out []string
	if h.elevation != nil {
		out = append(out, model.ElevationKey)
	}
	if h.time != nil {
		out = append(out, model.TimeKey)
	}
	for _, c := range h.custom {
		out = append(out, c.Name)
	}
	return out
}

type Representation int

const (
	List Representation = iota
	Interval
	ResolutionInterval
)

func representation(info *model.DimensionInfo, hasResolution bool) Representation {
	switch info.Presentation {
	case model.PresentationContinuousInterval:
		return Interval
	case model.PresentationDiscreteInterval:
		if hasResolution {
			return ResolutionInterval
		}
		return Interval
	}
	return List
}

type TimeDomain struct {
	Info       *model.DimensionInfo
	Values     []time.Time
	Resolution time.Duration
}

func (d *TimeDomain) Begin() time.Time { return d.Values[0] }

func (d *TimeDomain) End() time.Time { return d.Values[len(d.Values)-1] }

func (d *TimeDomain) Representation() Representation {
	return representation(d.Info, d.Resolution > 0)
}

// Default picks the default instant, MAXIMUM unless configured otherwise.
func (d *TimeDomain) Default() time.Time {
	switch d.Info.Default.Strategy {
	case model.DefaultMinimum:
		return d.Begin()
	case model.DefaultFixed:
		if t, err := ParseTime(d.Info.Default.Reference); err == nil {
			return t
		}
	case model.DefaultNearest:
		ref, err := ParseTime(d.Info.Default.Reference)
		if err != nil {
			break
		}
		best := d.Values[0]
		for _, v := range d.Values[1:] {
			if absDuration(v.Sub(ref)) < absDuration(best.Sub(ref)) {
				best = v
			}
		}
		return best
	}
	return d.End()
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

type NumericDomain struct {
	Info       *model.DimensionInfo
	Values     []float64
	Resolution float64
}

func (d *NumericDomain) Min() float64 { return d.Values[0] }

func (d *NumericDomain) Max() float64 { return d.Values[len(d.Values)-1] }

func (d *NumericDomain) Representation() Representation {
	return representation(d.Info, d.Resolution > 0)
}

// Default picks the default value, MINIMUM unless configured otherwise.
func (d *NumericDomain) Default() float64 {
	switch d.Info.Default.Strategy {
	case model.DefaultMaximum:
		return d.Max()
	case model.DefaultFixed:
		if v, err := strconv.ParseFloat(strings.TrimSpace(d.Info.Default.Reference), 64); err == nil {
			return v
		}
	case model.DefaultNearest:
		ref, err := strconv.ParseFloat(strings.TrimSpace(d.Info.Default.Reference), 64)
		if err != nil {
			break
		}
		best := d.Values[0]
		for _, v := range d.Values[1:] {
			if math.Abs(v-ref) < math.Abs(best-ref) {
				best = v
			}
		}
		return best
	}
	return d.Min()
}

type CustomDomain struct {
	Name   string
	Info   *model.DimensionInfo
	Values []string
}

func (d CustomDomain) Begin() string { return d.Values[0] }

func (d CustomDomain) End() string { return d.Values[len(d.Values)-1] }

func (d CustomDomain) Representation() Representation { return representation(d.Info, false) }

func (d CustomDomain) Default() string {
	switch d.Info.Default.Strategy {
	case model.DefaultMaximum:
		return d.End()
	case model.DefaultFixed:
		if d.Info.Default.Reference != "" {
			return d.Info.Default.Reference
		}
	case model.DefaultNearest:
		if slices.Contains(d.Values, d.Info.Default.Reference) {
			return d.Info.Default.Reference
		}
	}
	return d.Begin()
}

// Enabled returns the enabled dimension settings found in meta, keyed as in meta.
func Enabled(meta model.MetadataMap) map[string]*model.DimensionInfo {
	out := map[string]*model.DimensionInfo{}
	for k := range meta {
		if k != model.TimeKey && k != model.ElevationKey && !strings.HasPrefix(k, model.CustomDimensionPrefix) {
			continue
		}
		if di, ok := meta.Dimension(k); ok && di.Enabled {
			out[k] = di
		}
	}
	return out
}

// New reads the enabled dimension domains from r. Dimensions whose domain is
// empty are left out; None is returned when nothing remains.
func New(ctx context.Context, meta model.MetadataMap, r model.GridReader) (Set, error) {
	enabled := Enabled(meta)
	if len(enabled) == 0 {
		return None{}, nil
	}
	h := &Helper{}

	if info, ok := enabled[model.TimeKey]; ok {
		values, err := r.TimeDomain(ctx)
		if err != nil {
			return nil, fmt.Errorf("time domain: %w", err)
		}
		if len(values) > 0 {
			res, err := parseDurationResolution(info.Resolution)
			if err != nil {
				return nil, err
			}
			h.time = &TimeDomain{Info: info, Values: sortTimes(values), Resolution: res}
		}
	}

	if info, ok := enabled[model.ElevationKey]; ok {
		values, err := r.ElevationDomain(ctx)
		if err != nil {
			return nil, fmt.Errorf("elevation domain: %w", err)
		}
		if len(values) > 0 {
			res, err := parseNumericResolution(info.Resolution)
			if err != nil {
				return nil, err
			}
			h.elevation = &NumericDomain{Info: info, Values: sortFloats(values), Resolution: res}
		}
	}

	for key, info := range enabled {
		name, ok := strings.CutPrefix(key, model.CustomDimensionPrefix)
		if !ok || name == "" {
			continue
		}
		values, err := r.CustomDomain(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%s domain: %w", name, err)
		}
		if len(values) > 0 {
			h.custom = append(h.custom, CustomDomain{Name: name, Info: info, Values: sortCustom(values)})
		}
	}
	sort.Slice(h.custom, func(i, j int) bool { return h.custom[i].Name < h.custom[j].Name })

	if h.time == nil && h.elevation == nil && len(h.custom) == 0 {
		return None{}, nil
	}
	return h, nil
}

func parseDurationResolution(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("time resolution %q: %w", s, err)
	}
	return d, nil
}

func parseNumericResolution(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("elevation resolution %q: %w", s, err)
	}
	return v, nil
}

func sortTimes(in []time.Time) []time.Time {
	out := make([]time.Time, 0, len(in))
	for _, t := range in {
		out = append(out, t.UTC())
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(out, func(a, b time.Time) bool { return a.Equal(b) })
}

func sortFloats(in []float64) []float64 {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}

// sortCustom orders numerically when every value parses as a number.
func sortCustom(in []string) []string {
	out := slices.Clone(in)
	numeric := true
	nums := make(map[string]float64, len(out))
	for _, s := range out {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			numeric = false
			break
		}
		nums[s] = v
	}
	if numeric {
		slices.SortStableFunc(out, func(a, b string) int {
			switch {
			case nums[a] < nums[b]:
				return -1
			case nums[a] > nums[b]:
				return 1
			}
			return strings.Compare(a, b)
		})
	} else {
		slices.Sort(out)
	}
	return slices.Compact(out)
}
