// Package query splits a raw catalog search string into plain substrings and
// tag-prefixed keywords.
package query

import "strings"

// Parse tokenizes raw on whitespace. A token starting with tagPrefix is a
// keyword (prefix stripped, lower-cased); everything else is a plain
// substring. Token order is preserved in both output slices and duplicates are
// kept; callers deduplicate when they care.
func Parse(tagPrefix, raw string) (substrs, keywords []string) {
	for _, tok := range strings.Fields(raw) {
		if tagPrefix != "" && strings.HasPrefix(tok, tagPrefix) && len(tok) > len(tagPrefix) {
			keywords = append(keywords, strings.ToLower(tok[len(tagPrefix):]))
		} else {
			substrs = append(substrs, tok)
		}
	}
	return substrs, keywords
}

// Join recombines parser output into the predicate string consumed by the
// matching layer, the inverse of Parse up to token order.
func Join(tagPrefix string, substrs, keywords []string) string {
	parts := make([]string, 0, len(substrs)+len(keywords))
	parts = append(parts, substrs...)
	for _, kw := range keywords {
		parts = append(parts, tagPrefix+kw)
	}
	return strings.Join(parts, " ")
}
