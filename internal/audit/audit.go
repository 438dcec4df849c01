// Package audit records tagging outcomes outside the process, so a later
// reader can see who tagged what and when.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lakehouse-ops/dbxtag/internal/tagger"
)

// Sink receives one record per handled identifier.
type Sink interface {
	tagger.Observer

	// Close flushes buffered records.
	Close(ctx context.Context) error
}

// Event is the JSON document written for each outcome.
type Event struct {
	Time       time.Time         `json:"time"`
	Actor      string            `json:"actor,omitempty"`
	Kind       tagger.Kind       `json:"kind"`
	Identifier string            `json:"identifier"`
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name,omitempty"`
	Status     string            `json:"status"`
	Previous   map[string]string `json:"previous_tags,omitempty"`
	Applied    map[string]string `json:"applied_tags,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// newEvent builds the audit event for o.
func newEvent(now time.Time, actor string, o tagger.Outcome) Event {
	return Event{
		Time:       now.UTC(),
		Actor:      actor,
		Kind:       o.Kind,
		Identifier: o.Identifier,
		ID:         o.ID,
		Name:       o.Name,
		Status:     o.Status,
		Previous:   o.Previous,
		Applied:    o.Applied,
		Error:      o.Error,
	}
}

// String encodes the event as a single JSON line.
func (e Event) String() string {
	b, err := json.Marshal(e)
	if err != nil {
		return `{"error":"unencodable audit event"}`
	}
	return string(b)
}

// NopSink discards every record.
type NopSink struct{}

// Record implements tagger.Observer.
func (NopSink) Record(context.Context, tagger.Outcome) {}

// Close implements Sink.
func (NopSink) Close(context.Context) error { return nil }
