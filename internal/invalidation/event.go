// Package invalidation defines catalog change events that evict cached
// DescribeCoverage documents.
package invalidation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
	OpReload = "reload"
)

type Event struct {
	Version    int       `json:"version"`
	Op         string    `json:"op"`
	CoverageID string    `json:"coverage_id,omitempty"`
	Revision   uint64    `json:"revision,omitempty"`
	TS         time.Time `json:"ts"`
	Source     string    `json:"source,omitempty"`
}

// Decode parses and validates one wire event.
func Decode(b []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(b, &ev); err != nil {
		return Event{}, fmt.Errorf("json decode: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	ev.CoverageID = strings.TrimSpace(ev.CoverageID)
	return ev, nil
}

func (e Event) Encode() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("json encode: %w", err)
	}
	return b, nil
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return errors.New("version must be 1")
	}
	switch e.Op {
	case OpInsert, OpUpdate, OpDelete:
		if strings.TrimSpace(e.CoverageID) == "" {
			return errors.New("coverage_id is required")
		}
	case OpReload:
	default:
		return errors.New("op must be insert|update|delete|reload")
	}
	if e.TS.IsZero() {
		return errors.New("ts is required")
	}
	return nil
}
