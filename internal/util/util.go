package util

import "strings"

// MakeTextList joins items into a human-readable list: a single item is
// returned unchanged, two are joined with "and", and three or more get an
// Oxford comma ("a, b, and c"). items is never mutated.
func MakeTextList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		var b strings.Builder
		for _, s := range items[:len(items)-1] {
			b.WriteString(s)
			b.WriteString(", ")
		}
		b.WriteString("and ")
		b.WriteString(items[len(items)-1])
		return b.String()
	}
}
