package tagger

import "context"

// resourceClient abstracts the Databricks calls needed to tag one kind of
// compute resource, so tests can swap in an in-memory workspace.
type resourceClient interface {
	// Kind returns the resource kind served by this client.
	Kind() Kind

	// Get fetches a resource by its opaque ID. A missing resource must
	// produce an error for which isNotFound returns true.
	Get(ctx context.Context, id string) (*Resource, error)

	// List returns every resource of this kind. Only ID and Name are
	// required to be populated.
	List(ctx context.Context) ([]Resource, error)

	// UpdateTags replaces the resource's full custom tag set with tags.
	UpdateTags(ctx context.Context, id string, tags map[string]string) error
}
