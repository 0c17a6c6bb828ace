// Package catalog loads coverage definitions from a YAML file and serves
// them to the describer.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/mohammed-shakir/wcs-describe/internal/core/model"
	"github.com/mohammed-shakir/wcs-describe/internal/crs"
	"github.com/mohammed-shakir/wcs-describe/internal/dimensions"
	"github.com/mohammed-shakir/wcs-describe/internal/wcs"
)

var ErrNotFound = wcs.ErrCoverageNotFound

type snapshot struct {
	byName map[string]*model.Coverage
	ids    []string
}

// FileCatalog is safe for concurrent use; Reload swaps the whole snapshot.
type FileCatalog struct {
	path     string
	registry *crs.Registry
	logger   *slog.Logger

	mu       sync.RWMutex
	snap     snapshot
	revision uint64
}

func Open(path string, reg *crs.Registry, logger *slog.Logger) (*FileCatalog, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &FileCatalog{path: path, registry: reg, logger: logger}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromYAML builds a catalog that cannot be reloaded.
func FromYAML(data []byte, reg *crs.Registry) (*FileCatalog, error) {
	snap, err := parse(data, reg)
	if err != nil {
		return nil, err
	}
	return &FileCatalog{
		registry: reg,
		logger:   slog.New(slog.DiscardHandler),
		snap:     snap,
		revision: contentRevision(data),
	}, nil
}

func (c *FileCatalog) Reload() error {
	if c.path == "" {
		return errors.New("catalog: no file to reload from")
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", c.path, err)
	}
	snap, err := parse(data, c.registry)
	if err != nil {
		return fmt.Errorf("catalog: %s: %w", c.path, err)
	}
	rev := contentRevision(data)
	c.mu.Lock()
	c.snap = snap
	c.revision = rev
	c.mu.Unlock()
	c.logger.Info("catalog loaded", "path", c.path, "coverages", len(snap.ids), "revision", rev)
	return nil
}

// WatchSIGHUP reloads the catalog on SIGHUP until ctx ends. A failed reload
// keeps the previous snapshot.
func (c *FileCatalog) WatchSIGHUP(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				if err := c.Reload(); err != nil {
					c.logger.Error("catalog reload failed", "err", err)
				}
			}
		}
	}()
}

// Coverage resolves an encoded id, trying each workspace/name split.
func (c *FileCatalog) Coverage(ctx context.Context, encodedID string) (*model.Coverage, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, q := range wcs.DecodeNCName(encodedID) {
		if cov, ok := c.snap.byName[q.String()]; ok {
			return cov, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, encodedID)
}

func (c *FileCatalog) Exists(ctx context.Context, encodedID string) bool {
	_, err := c.Coverage(ctx, encodedID)
	return err == nil
}

// IDs lists encoded coverage ids in file order.
func (c *FileCatalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.snap.ids...)
}

func (c *FileCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snap.ids)
}

// Revision identifies the loaded file content, so replicas serving the same
// file agree on it.
func (c *FileCatalog) Revision() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

func contentRevision(data []byte) uint64 {
	return xxhash.Sum64(data)
}

func parse(data []byte, reg *crs.Registry) (snapshot, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return snapshot{}, fmt.Errorf("decode yaml: %w", err)
	}
	snap := snapshot{byName: map[string]*model.Coverage{}}
	for i, cd := range doc.Coverages {
		cov, err := buildCoverage(cd, reg)
		if err != nil {
			return snapshot{}, fmt.Errorf("coverage %d (%s): %w", i, cd.Name, err)
		}
		key := cov.PrefixedName()
		if _, dup := snap.byName[key]; dup {
			return snapshot{}, fmt.Errorf("duplicate coverage %s", key)
		}
		snap.byName[key] = cov
		snap.ids = append(snap.ids, wcs.EncodeNCName(cov.Workspace, cov.Name))
	}
	return snap, nil
}

func buildCoverage(cd coverageDoc, reg *crs.Registry) (*model.Coverage, error) {
	if strings.TrimSpace(cd.Name) == "" {
		return nil, errors.New("name is required")
	}
	if id := wcs.EncodeNCName(cd.Workspace, cd.Name); !wcs.IsNCName(id) {
		return nil, fmt.Errorf("identifier %q is not a valid NCName", id)
	}

	c, err := buildCRS(cd.CRS, reg)
	if err != nil {
		return nil, err
	}

	env := model.Envelope{Min: cd.Envelope.Min, Max: cd.Envelope.Max}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	grid := model.GridRange{Low: cd.Grid.Low, High: cd.Grid.High}
	if len(grid.Low) != 2 || len(grid.High) != 2 {
		return nil, errors.New("grid: low and high need two ordinates")
	}
	for i := range 2 {
		if grid.High[i] < grid.Low[i] {
			return nil, fmt.Errorf("grid: high[%d] < low[%d]", i, i)
		}
	}
	tr := cornerTransform(env, grid, crs.AxisOrderOf(c))
	if t := cd.Transform; t != nil {
		tr = model.AffineTransform{
			ScaleX: t.ScaleX, ShearX: t.ShearX, TranslateX: t.TranslateX,
			ShearY: t.ShearY, ScaleY: t.ScaleY, TranslateY: t.TranslateY,
		}
	}

	bands := make([]model.Band, 0, len(cd.Bands))
	for _, b := range cd.Bands {
		band := model.Band{
			Name:               b.Name,
			Unit:               b.Unit,
			NoData:             b.NoData,
			SignificantFigures: b.SignificantFigures,
			DataType:           model.DataType(b.DataType),
		}
		if b.Range != nil {
			band.Range = &model.ValueRange{Min: b.Range.Min, Max: b.Range.Max}
		}
		bands = append(bands, band)
	}

	meta := model.MetadataMap{}
	if d := cd.Dimensions.Time; d != nil {
		meta[model.TimeKey] = buildDimension(d)
	}
	if d := cd.Dimensions.Elevation; d != nil {
		meta[model.ElevationKey] = buildDimension(d)
	}
	for name, d := range cd.Dimensions.Custom {
		if d != nil {
			meta[model.CustomDimensionPrefix+strings.ToUpper(name)] = buildDimension(d)
		}
	}

	times := make([]time.Time, 0, len(cd.Domains.Time))
	for _, s := range cd.Domains.Time {
		t, err := dimensions.ParseTime(s)
		if err != nil {
			return nil, fmt.Errorf("time domain: %w", err)
		}
		times = append(times, t)
	}
	custom := map[string][]string{}
	for name, vs := range cd.Domains.Custom {
		custom[strings.ToUpper(name)] = vs
	}

	return &model.Coverage{
		Workspace:    cd.Workspace,
		Name:         cd.Name,
		Title:        cd.Title,
		Format:       cd.Format,
		NativeFormat: cd.NativeFormat,
		Bands:        bands,
		Metadata:     meta,
		Reader: &StaticReader{
			crs:       c,
			envelope:  env,
			grid:      grid,
			transform: tr,
			times:     times,
			elevation: cd.Domains.Elevation,
			custom:    custom,
		},
	}, nil
}

// buildCRS decodes a reference through the registry. Inline definitions are
// used as given; without an epsg entry they carry no identifier.
func buildCRS(d crsDoc, reg *crs.Registry) (*crs.CRS, error) {
	if ref := strings.TrimSpace(d.Ref); ref != "" {
		c, err := reg.Decode(ref)
		if err != nil {
			return nil, fmt.Errorf("crs: %w", err)
		}
		return c, nil
	}
	if len(d.Axes) < 2 {
		return nil, errors.New("crs: inline definition needs at least two axes")
	}
	c := &crs.CRS{Name: d.Name, Kind: crs.ParseKind(d.Kind)}
	for _, a := range d.Axes {
		c.Axes = append(c.Axes, crs.Axis{
			Abbreviation: a.Abbreviation,
			Direction:    crs.ParseDirection(a.Direction),
			Unit:         a.Unit,
		})
	}
	if d.EPSG > 0 {
		c.Identifiers = []crs.Identifier{{Authority: "EPSG", Code: strconv.Itoa(d.EPSG)}}
	}
	return c, nil
}

func buildDimension(d *dimensionDoc) *model.DimensionInfo {
	return &model.DimensionInfo{
		Enabled:      d.Enabled,
		Presentation: model.Presentation(strings.ToUpper(strings.TrimSpace(d.Presentation))),
		Resolution:   d.Resolution,
		Units:        d.Units,
		UnitSymbol:   d.UnitSymbol,
		Default: model.DefaultValue{
			Strategy:  model.DefaultStrategy(strings.ToUpper(strings.TrimSpace(d.Default.Strategy))),
			Reference: d.Default.Reference,
		},
	}
}
