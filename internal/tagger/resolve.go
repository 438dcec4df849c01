package tagger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Resolve turns an identifier from the input list into a resource. The
// identifier is tried as an opaque ID first; if the workspace reports it
// missing, every resource of the client's kind is listed and the first one
// whose name matches exactly is fetched by ID.
//
// Errors other than not-found from the ID lookup are returned as-is, with
// no name fallback.
func Resolve(ctx context.Context, client resourceClient, identifier string, log *zap.Logger) (*Resource, error) {
	if log == nil {
		log = zap.NewNop()
	}
	kind := client.Kind()

	res, err := client.Get(ctx, identifier)
	if err == nil {
		log.Info("found by id", zap.String("id", res.ID))
		return res, nil
	}
	if !isNotFound(err) {
		return nil, newTagError("get", kind, identifier, err)
	}

	log.Warn("no resource with this id, searching by name", zap.String("identifier", identifier))

	id, err := findIDByName(ctx, client, identifier, log)
	if err != nil {
		return nil, err
	}

	res, err = client.Get(ctx, id)
	if err != nil {
		return nil, newTagError("get", kind, identifier, err)
	}
	return res, nil
}

// findIDByName scans the full listing for an exact name match. When more
// than one resource shares the name, the first in listing order is used.
func findIDByName(ctx context.Context, client resourceClient, name string, log *zap.Logger) (string, error) {
	kind := client.Kind()
	log.Info("listing resources to match name", zap.String("name", name))

	all, err := client.List(ctx)
	if err != nil {
		return "", newTagError("list", kind, name, err)
	}

	var matches []string
	for i := range all {
		if all[i].Name == name {
			matches = append(matches, all[i].ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", newTagError("resolve", kind, name,
			fmt.Errorf("no %s with id or name %q: %w", kind, name, ErrNotFound))
	case 1:
		log.Info("found by name", zap.String("name", name), zap.String("id", matches[0]))
	default:
		log.Warn("name is ambiguous, using the first match",
			zap.String("name", name), zap.Strings("ids", matches), zap.String("id", matches[0]))
	}
	return matches[0], nil
}
