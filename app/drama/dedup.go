package drama

// Dedupe keeps the first record seen for each URL, preserving order, and
// renumbers IDs from 1.
func Dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))

	for _, r := range records {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}

	for i := range out {
		out[i].ID = i + 1
	}

	return out
}

// Search returns the records whose title or summary contains query, ignoring
// case. An empty query matches nothing.
func Search(records []Record, query string) []Record {
	q := Fold(CleanText(query))
	if q == "" {
		return []Record{}
	}

	matches := make([]Record, 0)
	for _, r := range records {
		if ContainsFold(r.Title, q) || ContainsFold(r.Summary, q) {
			matches = append(matches, r)
		}
	}
	return matches
}
