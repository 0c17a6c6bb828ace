package kafkaconsumer

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// revisionDedupe remembers the newest catalog revision applied per coverage.
type revisionDedupe struct {
	mu  sync.Mutex
	lru *lru.Cache[string, uint64]
}

func newRevisionDedupe(size int) *revisionDedupe {
	c, _ := lru.New[string, uint64](size)
	return &revisionDedupe{lru: c}
}

// seen reports whether rev was already applied for id. Revision zero is
// unversioned and never counts as seen.
func (d *revisionDedupe) seen(id string, rev uint64) bool {
	if rev == 0 {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.lru.Get(id)
	return ok && rev <= last
}

// record marks rev as applied for id.
func (d *revisionDedupe) record(id string, rev uint64) {
	if rev == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lru.Get(id); ok && rev <= last {
		return
	}
	d.lru.Add(id, rev)
}
