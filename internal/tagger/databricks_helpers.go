package tagger

import (
	"errors"
	"net/http"
	"strings"

	"github.com/databricks/databricks-sdk-go/apierr"
	"github.com/databricks/databricks-sdk-go/service/sql"
)

// isNotFound returns true if err says the requested resource does not
// exist. The clusters API answers an unknown cluster_id with
// INVALID_PARAMETER_VALUE and a "does not exist" message, so the message is
// checked as well as the typed errors.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) ||
		errors.Is(err, apierr.ErrNotFound) ||
		errors.Is(err, apierr.ErrResourceDoesNotExist) {
		return true
	}
	var apiErr *apierr.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "does not exist")
}

// endpointTagsToMap converts the warehouse API's list of key/value pairs
// into a map. Later duplicates win.
func endpointTagsToMap(tags *sql.EndpointTags) map[string]string {
	if tags == nil || len(tags.CustomTags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags.CustomTags))
	for _, pair := range tags.CustomTags {
		out[pair.Key] = pair.Value
	}
	return out
}

// mapToEndpointTags converts a tag map back into the warehouse API's list
// form, ordered by key so repeated runs send identical requests.
func mapToEndpointTags(tags map[string]string) *sql.EndpointTags {
	pairs := make([]sql.EndpointTagPair, 0, len(tags))
	for _, k := range sortedKeys(tags) {
		pairs = append(pairs, sql.EndpointTagPair{Key: k, Value: tags[k]})
	}
	return &sql.EndpointTags{CustomTags: pairs}
}
