package tagger

import "sort"

// DefaultTagKey is the tag key applied when no --key is given.
const DefaultTagKey = "Dominio"

// MergeTags returns a copy of existing with key set to value. The new value
// wins when the key is already present. existing is never modified, so the
// caller can still compare the before and after sets.
func MergeTags(existing map[string]string, key, value string) map[string]string {
	tags := make(map[string]string, len(existing)+1)
	for k, v := range existing {
		tags[k] = v
	}
	tags[key] = value
	return tags
}

// tagsEqual reports whether two tag sets hold the same pairs. A nil map and
// an empty map are equal.
func tagsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		if vb, ok := b[k]; !ok || va != vb {
			return false
		}
	}
	return true
}

// copyTags returns a shallow copy of tags, or nil for an empty set.
func copyTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}

// sortedKeys returns the keys of a map in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
