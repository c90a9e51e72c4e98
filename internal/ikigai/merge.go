package ikigai

import "strings"

// Merge appends incoming candidates to existing, dropping any whose
// statement text is already present. Order is preserved and the first
// occurrence of a statement wins, so percentages never flap mid-stream as
// the model restates an earlier line.
func Merge(existing, incoming []Candidate) []Candidate {
	out := make([]Candidate, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))

	for _, c := range existing {
		key := strings.TrimSpace(c.Ikigai)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	for _, c := range incoming {
		key := strings.TrimSpace(c.Ikigai)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
