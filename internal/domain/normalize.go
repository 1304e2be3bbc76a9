package domain

import "strings"

// normalizeHeadline case- and space-normalizes a headline for the
// duplicate-suppression comparison in the Clusterer. Internal runs of
// whitespace collapse to a single space.
func normalizeHeadline(headline string) string {
	fields := strings.Fields(strings.ToLower(headline))
	return strings.Join(fields, " ")
}
