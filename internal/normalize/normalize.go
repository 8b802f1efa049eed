// Package normalize turns raw name cells into the ordered search queries the
// resolver submits to a directory.
package normalize

import "strings"

// headerSentinel is the literal column header that sometimes leaks into data
// rows of exported rosters. Rows carrying it are skipped, not resolved.
const headerSentinel = "name"

// Collapse reduces all whitespace runs to single spaces and trims the ends.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Queries derives the ordered, case-insensitively deduplicated query variants
// for a raw name cell. It returns nil for empty cells and for the header
// sentinel. The primary variant is the cell with commas removed; a secondary
// given-before-surname variant is added when the cell is comma-separated, and
// a last-token rotation when it is not. Pure and deterministic.
func Queries(raw string) []string {
	cleaned := Collapse(raw)
	if cleaned == "" || strings.EqualFold(cleaned, headerSentinel) {
		return nil
	}

	primary := Collapse(strings.ReplaceAll(cleaned, ",", " "))
	if primary == "" {
		return nil
	}
	queries := []string{primary}

	if idx := strings.Index(cleaned, ","); idx >= 0 {
		// "LAST, First Middle": text before the first comma is the surname
		// group, the remainder the given-name group.
		surname := Collapse(cleaned[:idx])
		given := Collapse(strings.ReplaceAll(cleaned[idx+1:], ",", " "))
		if surname != "" && given != "" {
			queries = append(queries, given+" "+surname)
		}
	} else if tokens := strings.Fields(cleaned); len(tokens) >= 2 {
		// "First Last" vs "Last First" ambiguity: try the last token first.
		last := tokens[len(tokens)-1]
		rest := strings.Join(tokens[:len(tokens)-1], " ")
		queries = append(queries, last+" "+rest)
	}

	return dedupe(queries)
}

func dedupe(queries []string) []string {
	out := queries[:0]
	seen := make(map[string]struct{}, len(queries))
	for _, q := range queries {
		key := strings.ToLower(q)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out
}
