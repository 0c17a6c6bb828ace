package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type fileDoc struct {
	Coverages []coverageDoc `yaml:"coverages"`
}

type coverageDoc struct {
	Workspace    string        `yaml:"workspace"`
	Name         string        `yaml:"name"`
	Title        string        `yaml:"title"`
	Format       string        `yaml:"format"`
	NativeFormat string        `yaml:"native_format"`
	CRS          crsDoc        `yaml:"crs"`
	Envelope     envelopeDoc   `yaml:"envelope"`
	Grid         gridDoc       `yaml:"grid"`
	Transform    *transformDoc `yaml:"transform"`
	Bands        []bandDoc     `yaml:"bands"`
	Dimensions   dimensionsDoc `yaml:"dimensions"`
	Domains      domainsDoc    `yaml:"domains"`
}

// crsDoc is either a reference ("EPSG:4326") or an inline definition.
type crsDoc struct {
	Ref  string
	Name string    `yaml:"name"`
	Kind string    `yaml:"kind"`
	EPSG int       `yaml:"epsg"`
	Axes []axisDoc `yaml:"axes"`
}

type axisDoc struct {
	Abbreviation string `yaml:"abbreviation"`
	Direction    string `yaml:"direction"`
	Unit         string `yaml:"unit"`
}

func (c *crsDoc) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		c.Ref = n.Value
		return nil
	}
	type inline crsDoc
	var v inline
	if err := n.Decode(&v); err != nil {
		return fmt.Errorf("crs: %w", err)
	}
	*c = crsDoc(v)
	return nil
}

type envelopeDoc struct {
	Min []float64 `yaml:"min"`
	Max []float64 `yaml:"max"`
}

type gridDoc struct {
	Low  []int `yaml:"low"`
	High []int `yaml:"high"`
}

type transformDoc struct {
	ScaleX     float64 `yaml:"scale_x"`
	ShearX     float64 `yaml:"shear_x"`
	TranslateX float64 `yaml:"translate_x"`
	ShearY     float64 `yaml:"shear_y"`
	ScaleY     float64 `yaml:"scale_y"`
	TranslateY float64 `yaml:"translate_y"`
}

type bandDoc struct {
	Name               string    `yaml:"name"`
	Unit               string    `yaml:"unit"`
	NoData             []float64 `yaml:"nodata"`
	Range              *rangeDoc `yaml:"range"`
	SignificantFigures *int      `yaml:"significant_figures"`
	DataType           string    `yaml:"data_type"`
}

type rangeDoc struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type dimensionDoc struct {
	Enabled      bool   `yaml:"enabled"`
	Presentation string `yaml:"presentation"`
	Resolution   string `yaml:"resolution"`
	Units        string `yaml:"units"`
	UnitSymbol   string `yaml:"unit_symbol"`
	Default      struct {
		Strategy  string `yaml:"strategy"`
		Reference string `yaml:"reference"`
	} `yaml:"default"`
}

type dimensionsDoc struct {
	Time      *dimensionDoc            `yaml:"time"`
	Elevation *dimensionDoc            `yaml:"elevation"`
	Custom    map[string]*dimensionDoc `yaml:"custom"`
}

type domainsDoc struct {
	Time      []string            `yaml:"time"`
	Elevation []float64           `yaml:"elevation"`
	Custom    map[string][]string `yaml:"custom"`
}
