package board

import "strings"

// FacetMatch checks if a facet label matches the pattern.
// Patterns are ":"-separated segments where "*" matches any single
// segment. All other segments are matched literally, so "type:*" matches
// "type:bug" but not "area:api" or "type".
func FacetMatch(pattern, facet string) bool {
	pat := strings.Split(pattern, ":")
	seg := strings.Split(facet, ":")
	if len(pat) != len(seg) {
		return false
	}
	for i := range pat {
		if !segmentMatch(pat[i], seg[i]) {
			return false
		}
	}
	return true
}

// segmentMatch checks if a single segment matches a pattern segment.
// "*" matches any single segment.
func segmentMatch(pattern, segment string) bool {
	if pattern == "*" {
		return true
	}
	return pattern == segment
}

// HasFacet reports whether any facet in the list matches the pattern.
func HasFacet(facets []string, pattern string) bool {
	for _, f := range facets {
		if FacetMatch(pattern, f) {
			return true
		}
	}
	return false
}

// MissingFacets returns the required patterns that no facet in the list
// satisfies, in required order. An empty result means the item is fully
// classified.
func MissingFacets(facets, required []string) []string {
	var missing []string
	for _, pattern := range required {
		if !HasFacet(facets, pattern) {
			missing = append(missing, pattern)
		}
	}
	return missing
}

// FacetGroup returns the leading segment of a facet label: "type" for
// "type:bug". Labels without a separator are their own group.
func FacetGroup(facet string) string {
	group, _, _ := strings.Cut(facet, ":")
	return group
}

// DefaultRequiredFacets returns the facet groups an item must carry to be
// considered classified.
func DefaultRequiredFacets() []string {
	return []string{"type:*", "area:*"}
}
