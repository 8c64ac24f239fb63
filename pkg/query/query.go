// Package query parses comma-separated list values from settings and URLs.
package query

import "strings"

// List splits a comma-separated value into trimmed, lower-cased entries.
// Blank and repeated entries are dropped; order of first appearance is kept.
func List(val string) []string {
	if val == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.ToLower(strings.TrimSpace(v))
		if clean == "" {
			continue
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		res = append(res, clean)
	}
	return res
}
