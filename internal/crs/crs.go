// Package crs resolves coordinate reference system facts needed to describe
// gridded coverages: EPSG codes, axis order, axis labels and srsName URIs.
package crs

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// SRSPrefix is prepended to an EPSG code to build an srsName URI.
const SRSPrefix = "http://www.opengis.net/def/crs/EPSG/0/"

var (
	ErrNoEPSGCode  = errors.New("unable to lookup epsg code for this CRS")
	ErrUnknownCode = errors.New("unknown CRS code")
)

type Direction int

const (
	Other Direction = iota
	North
	South
	East
	West
	Up
	Down
	Future
)

func (d Direction) String() string {
	switch d {
	case North:
		return "NORTH"
	case South:
		return "SOUTH"
	case East:
		return "EAST"
	case West:
		return "WEST"
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Future:
		return "FUTURE"
	}
	return "OTHER"
}

func ParseDirection(s string) Direction {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NORTH":
		return North
	case "SOUTH":
		return South
	case "EAST":
		return East
	case "WEST":
		return West
	case "UP":
		return Up
	case "DOWN":
		return Down
	case "FUTURE":
		return Future
	}
	return Other
}

type Axis struct {
	Abbreviation string
	Direction    Direction
	Unit         string
}

type Kind int

const (
	Engineering Kind = iota
	Geographic
	Projected
)

func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "geographic":
		return Geographic
	case "projected":
		return Projected
	}
	return Engineering
}

type Identifier struct {
	Authority string
	Code      string
}

func (id Identifier) String() string { return id.Authority + ":" + id.Code }

type CRS struct {
	Name        string
	Kind        Kind
	Axes        []Axis
	Identifiers []Identifier
}

type AxisOrder int

const (
	Inapplicable AxisOrder = iota
	EastNorth
	NorthEast
)

func (o AxisOrder) String() string {
	switch o {
	case EastNorth:
		return "EAST_NORTH"
	case NorthEast:
		return "NORTH_EAST"
	}
	return "INAPPLICABLE"
}

// LookupEPSGCode returns the EPSG code carried by the CRS identifiers. Only the
// declared identifiers are consulted; no registry scan is attempted.
func LookupEPSGCode(c *CRS) (int, error) {
	if c == nil {
		return 0, fmt.Errorf("%w: nil CRS", ErrNoEPSGCode)
	}
	for _, id := range c.Identifiers {
		if !strings.EqualFold(strings.TrimSpace(id.Authority), "EPSG") {
			continue
		}
		code, err := strconv.Atoi(strings.TrimSpace(id.Code))
		if err != nil || code <= 0 {
			return 0, fmt.Errorf("%w: %q has a malformed code", ErrNoEPSGCode, c.Name)
		}
		return code, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrNoEPSGCode, c.Name)
}

// AxisOrderOf classifies the CRS by the direction of its first axis.
func AxisOrderOf(c *CRS) AxisOrder {
	if c == nil || len(c.Axes) < 2 {
		return Inapplicable
	}
	switch c.Axes[0].Direction {
	case East, West:
		return EastNorth
	case North, South:
		return NorthEast
	}
	return Inapplicable
}

func SRSName(code int) string { return SRSPrefix + strconv.Itoa(code) }

// Facts is everything the encoders need to know about a coverage CRS.
type Facts struct {
	EPSGCode int
	SRSName  string
	Name     string
	// AxisSwap is true when the CRS lists its east-pointing axis first.
	AxisSwap bool
}

func Resolve(c *CRS) (Facts, error) {
	code, err := LookupEPSGCode(c)
	if err != nil {
		return Facts{}, err
	}
	return Facts{
		EPSGCode: code,
		SRSName:  SRSName(code),
		Name:     c.Name,
		AxisSwap: AxisOrderOf(c) == EastNorth,
	}, nil
}

// AxisNames lists the spatial axis abbreviations in CRS order. When swap is
// requested on an east-first CRS the first two are reversed so the labels
// follow the written coordinate order.
func AxisNames(c *CRS, swap bool) []string {
	return axisField(c, swap, func(a Axis) string { return a.Abbreviation })
}

func UomLabels(c *CRS, swap bool) []string {
	return axisField(c, swap, func(a Axis) string { return a.Unit })
}

func axisField(c *CRS, swap bool, f func(Axis) string) []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.Axes))
	for _, a := range c.Axes {
		out = append(out, f(a))
	}
	if swap && len(out) >= 2 && AxisOrderOf(c) == EastNorth {
		out[0], out[1] = out[1], out[0]
	}
	return out
}

// Equal reports whether two CRSs share name, axes and identifiers.
func Equal(a, b *CRS) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name && a.Kind == b.Kind &&
		slices.Equal(a.Axes, b.Axes) && slices.Equal(a.Identifiers, b.Identifiers)
}
