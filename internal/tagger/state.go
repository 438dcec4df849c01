package tagger

import "fmt"

// Kind identifies which Databricks compute resource a tool operates on.
type Kind string

// Resource kinds handled by the tagger.
const (
	KindCluster   Kind = "cluster"
	KindWarehouse Kind = "warehouse"
)

// ParseKind converts a user-supplied kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCluster, KindWarehouse:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown resource kind %q (want %q or %q)", s, KindCluster, KindWarehouse)
	}
}

// Outcome status constants reported per identifier.
const (
	StatusTagged    = "tagged"
	StatusUnchanged = "unchanged"
	StatusDryRun    = "dry_run"
	StatusNotFound  = "not_found"
	StatusFailed    = "failed"
)

// Resource is the tagger's view of a cluster or SQL warehouse: enough to
// identify it and its current custom tag set.
type Resource struct {
	Kind Kind              `json:"kind"`
	ID   string            `json:"id"`
	Name string            `json:"name"`
	Tags map[string]string `json:"tags,omitempty"`
}

// Outcome records what happened to a single identifier from the input list.
type Outcome struct {
	Identifier string            `json:"identifier"`
	Kind       Kind              `json:"kind"`
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name,omitempty"`
	Status     string            `json:"status"`
	Previous   map[string]string `json:"previous_tags,omitempty"`
	Applied    map[string]string `json:"applied_tags,omitempty"`
	Err        error             `json:"-"`
	Error      string            `json:"error,omitempty"`
}

// OK reports whether the identifier was handled without error.
func (o Outcome) OK() bool {
	return o.Status != StatusFailed && o.Status != StatusNotFound
}
