package tsv

import (
	"strings"

	"moviecatalog/internal/parser/ints"
)

// SplitList splits a multi-valued field on sep. The absent sentinel and
// blank tokens are dropped, so `\N` and "" both yield nil.
func SplitList(field, sep string) []string {
	if field == "" || field == ints.Absent {
		return nil
	}
	parts := strings.Split(field, sep)
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == ints.Absent {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Present reports whether a field carries a value (not blank, not `\N`).
func Present(field string) bool {
	f := strings.TrimSpace(field)
	return f != "" && f != ints.Absent
}
