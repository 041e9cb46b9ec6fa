// Package strings holds small string-slice utilities shared across
// request parsing.
package strings

import "strings"

// DedupeAndTrim trims whitespace from every element and drops empties
// and later duplicates. The first occurrence keeps its position.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	out := values[:0:0]
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
