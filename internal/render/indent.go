package render

import "strings"

// indent returns depth tab characters.
func indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat("\t", depth)
}
