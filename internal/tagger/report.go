package tagger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Report collects the outcomes of one run over an identifier list.
type Report struct {
	Kind       Kind      `json:"kind"`
	Key        string    `json:"key"`
	Value      string    `json:"value"`
	DryRun     bool      `json:"dry_run,omitempty"`
	Source     string    `json:"source,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Counts tallies outcomes by status.
type Counts struct {
	Total     int `json:"total"`
	Tagged    int `json:"tagged"`
	Unchanged int `json:"unchanged"`
	DryRun    int `json:"dry_run"`
	NotFound  int `json:"not_found"`
	Failed    int `json:"failed"`
}

// Counts returns the per-status totals of the report.
func (r *Report) Counts() Counts {
	c := Counts{Total: len(r.Outcomes)}
	for i := range r.Outcomes {
		switch r.Outcomes[i].Status {
		case StatusTagged:
			c.Tagged++
		case StatusUnchanged:
			c.Unchanged++
		case StatusDryRun:
			c.DryRun++
		case StatusNotFound:
			c.NotFound++
		case StatusFailed:
			c.Failed++
		}
	}
	return c
}

// Failed returns the outcomes that did not succeed, in input order.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for i := range r.Outcomes {
		if !r.Outcomes[i].OK() {
			out = append(out, r.Outcomes[i])
		}
	}
	return out
}

// Errors returns the error of every failed outcome.
func (r *Report) Errors() []error {
	var errs []error
	for _, o := range r.Failed() {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errs
}

// OK reports whether every identifier was handled without error.
func (r *Report) OK() bool {
	return len(r.Failed()) == 0
}

// Summary returns a one-line human summary of the run.
func (r *Report) Summary() string {
	c := r.Counts()
	parts := []string{
		fmt.Sprintf("%d tagged", c.Tagged),
		fmt.Sprintf("%d unchanged", c.Unchanged),
	}
	if r.DryRun {
		parts = append(parts, fmt.Sprintf("%d dry-run", c.DryRun))
	}
	parts = append(parts,
		fmt.Sprintf("%d not found", c.NotFound),
		fmt.Sprintf("%d failed", c.Failed),
	)
	return fmt.Sprintf("%s %s=%s: %d %s(s): %s",
		r.Kind, r.Key, r.Value, c.Total, r.Kind, strings.Join(parts, ", "))
}

// MarshalJSON adds the status counts to the encoded report.
func (r *Report) MarshalJSON() ([]byte, error) {
	type reportAlias Report
	return json.Marshal(struct {
		*reportAlias
		Counts Counts `json:"counts"`
	}{
		reportAlias: (*reportAlias)(r),
		Counts:      r.Counts(),
	})
}
