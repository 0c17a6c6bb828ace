package wcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mohammed-shakir/wcs-describe/internal/core/model"
	"github.com/mohammed-shakir/wcs-describe/internal/core/observability"
	"github.com/mohammed-shakir/wcs-describe/internal/dimensions"
	"github.com/mohammed-shakir/wcs-describe/internal/xmlstream"
)

// Catalog resolves encoded coverage identifiers. Implementations return an
// error wrapping ErrCoverageNotFound for unknown ids.
type Catalog interface {
	Coverage(ctx context.Context, encodedID string) (*model.Coverage, error)
}

type Describer struct {
	catalog       Catalog
	providers     *Providers
	mime          *MIMEMapper
	schemaBaseURL string
	logger        *slog.Logger
}

type Option func(*Describer)

func WithProviders(p *Providers) Option { return func(d *Describer) { d.providers = p } }

func WithMIMEMapper(m *MIMEMapper) Option { return func(d *Describer) { d.mime = m } }

func WithSchemaBaseURL(u string) Option {
	return func(d *Describer) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			d.schemaBaseURL = u
		}
	}
}

func WithLogger(l *slog.Logger) Option { return func(d *Describer) { d.logger = l } }

func NewDescriber(cat Catalog, opts ...Option) *Describer {
	d := &Describer{
		catalog:       cat,
		providers:     NewProviders(),
		mime:          NewMIMEMapper(),
		schemaBaseURL: DefaultSchemaBaseURL,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// DescribeBytes encodes the CoverageDescriptions document for ids.
func (d *Describer) DescribeBytes(ctx context.Context, ids []string) ([]byte, error) {
	start := time.Now()
	body, err := d.encode(ctx, ids)
	observability.ObserveDescribe(err, time.Since(start).Seconds(), len(ids), len(body))
	if err != nil {
		d.logger.ErrorContext(ctx, "describe coverage failed", "coverages", len(ids), "err", err)
		return nil, err
	}
	return body, nil
}

// Describe writes the document to out. Nothing is written unless every
// coverage encoded successfully.
func (d *Describer) Describe(ctx context.Context, ids []string, out io.Writer) error {
	body, err := d.DescribeBytes(ctx, ids)
	if err != nil {
		return err
	}
	if _, err := out.Write(body); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func (d *Describer) encode(ctx context.Context, ids []string) ([]byte, error) {
	if len(ids) == 0 {
		return nil, NewServiceError(CodeMissingParameterValue, "coverageId", errors.New("no coverage requested"))
	}

	covs := make([]*model.Coverage, len(ids))
	for i, id := range ids {
		cov, err := d.catalog.Coverage(ctx, id)
		if err == nil && cov == nil {
			err = fmt.Errorf("%w: %s", ErrCoverageNotFound, id)
		}
		if err != nil {
			if errors.Is(err, ErrCoverageNotFound) {
				return nil, NewServiceError(CodeNoSuchCoverage, id, err)
			}
			return nil, NewServiceError(CodeNoApplicableCode, id, fmt.Errorf("failed to locate coverage: %w", err))
		}
		covs[i] = cov
	}

	// resolve everything fallible up front so a bad coverage aborts before
	// any element is written
	facts := make([]*coverageFacts, len(ids))
	for i, cov := range covs {
		cf, err := resolveCoverage(ctx, ids[i], cov)
		if err != nil {
			return nil, NewServiceError(CodeNoApplicableCode, ids[i], err)
		}
		facts[i] = cf
		dims := []string{}
		if h, ok := cf.dims.(*dimensions.Helper); ok {
			dims = h.Names()
		}
		d.logger.DebugContext(ctx, "coverage resolved",
			"coverage_id", cf.id,
			"epsg", cf.facts.EPSGCode,
			"axis_swap", cf.facts.AxisSwap,
			"dimensions", strings.Join(dims, ","))
	}

	providers := d.providers.All()
	ns := defaultNamespaces()
	for _, p := range providers {
		if err := p.RegisterNamespaces(ns); err != nil {
			return nil, NewServiceError(CodeNoApplicableCode, "", fmt.Errorf("metadata provider %T: %w", p, err))
		}
	}

	var buf bytes.Buffer
	w := xmlstream.NewWriter(&buf)
	w.Header()
	rootAttrs := append(ns.Attrs(), xmlstream.A("xsi:schemaLocation", d.schemaLocation(providers)))
	err := w.Within("wcs:CoverageDescriptions", rootAttrs, func() error {
		for _, cf := range facts {
			if err := d.encodeCoverage(w, cf, providers); err != nil {
				return NewServiceError(CodeNoApplicableCode, cf.id, err)
			}
		}
		return nil
	})
	if err == nil {
		err = w.Close()
	}
	if err != nil {
		return nil, AsServiceError(err)
	}
	return buf.Bytes(), nil
}

func (d *Describer) encodeCoverage(w *xmlstream.Writer, cf *coverageFacts, providers []MetadataProvider) error {
	return w.Within("wcs:CoverageDescription", []xmlstream.Attr{xmlstream.A("gml:id", cf.id)}, func() error {
		if err := encodeBoundedBy(w, cf); err != nil {
			return err
		}
		w.Element("wcs:CoverageId", cf.id)
		if err := encodeCoverageFunction(w, cf); err != nil {
			return err
		}
		if err := encodeMetadata(w, cf, providers); err != nil {
			return err
		}
		if err := encodeDomainSet(w, cf); err != nil {
			return err
		}
		if err := encodeRangeType(w, cf.cov.Bands); err != nil {
			return err
		}
		return encodeServiceParameters(w, d.mime.NativeFormat(cf.cov))
	})
}

// schemaLocation lists the WCS pair followed by provider pairs, each once.
func (d *Describer) schemaLocation(providers []MetadataProvider) string {
	pairs := []string{NSWCS + " " + d.schemaBaseURL + "/wcs/2.0/wcsDescribeCoverage.xsd"}
	seen := map[string]bool{pairs[0]: true}
	for _, p := range providers {
		for _, loc := range p.SchemaLocations(d.schemaBaseURL) {
			loc = strings.Join(strings.Fields(loc), " ")
			if loc == "" || seen[loc] {
				continue
			}
			seen[loc] = true
			pairs = append(pairs, loc)
		}
	}
	return strings.Join(pairs, " ")
}
