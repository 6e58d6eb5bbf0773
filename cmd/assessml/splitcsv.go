package main

import "strings"

// splitCSV splits a comma-separated flag value, trimming blanks and dropping
// empty entries. An empty input yields nil.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
