package wcs

import (
	"sync"

	"github.com/mohammed-shakir/wcs-describe/internal/core/model"
	"github.com/mohammed-shakir/wcs-describe/internal/crs"
	"github.com/mohammed-shakir/wcs-describe/internal/xmlstream"
)

// ProviderContext is what a metadata provider sees of the coverage being encoded.
type ProviderContext struct {
	EncodedID string
	Coverage  *model.Coverage
	CRS       *crs.CRS
	Facts     crs.Facts
	Envelope  model.Envelope
}

// MetadataProvider contributes elements to gmlcov:metadata/gmlcov:Extension.
type MetadataProvider interface {
	// RegisterNamespaces declares the prefixes the provider writes.
	RegisterNamespaces(ns *xmlstream.Namespaces) error
	// SchemaLocations returns "namespace location" pairs.
	SchemaLocations(schemaBaseURL string) []string
	EncodeMetadata(w *xmlstream.Writer, c ProviderContext) error
}

// Providers is an ordered provider list; providers run in registration order.
type Providers struct {
	mu   sync.RWMutex
	list []MetadataProvider
}

func NewProviders(ps ...MetadataProvider) *Providers {
	return &Providers{list: append([]MetadataProvider(nil), ps...)}
}

func (p *Providers) Add(mp MetadataProvider) {
	p.mu.Lock()
	p.list = append(p.list, mp)
	p.mu.Unlock()
}

func (p *Providers) All() []MetadataProvider {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]MetadataProvider(nil), p.list...)
}
