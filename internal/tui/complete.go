package tui

import (
	"sort"
	"strings"
)

// completions ranks ids against a partially typed command and returns at
// most n of them, best first. Matching is a case-insensitive subsequence.
func completions(ids []string, query string, n int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	type scored struct {
		id    string
		score int
	}
	var hits []scored
	for _, id := range ids {
		if ok, score := subsequenceScore(id, query); ok {
			hits = append(hits, scored{id: id, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > n {
		hits = hits[:n]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.id
	}
	return out
}

// subsequenceScore favours matches that start at the beginning of id, runs
// of adjacent characters and exact matches.
func subsequenceScore(id, query string) (bool, int) {
	if query == "" {
		return true, 0
	}
	id = strings.ToLower(id)
	prev, score := -1, len(query)
	from := 0
	for i := 0; i < len(query); i++ {
		j := strings.IndexByte(id[from:], query[i])
		if j < 0 {
			return false, 0
		}
		pos := from + j
		switch {
		case i == 0 && pos == 0:
			score += 10
		case pos == prev+1:
			score += 3
		}
		prev, from = pos, pos+1
	}
	if id == query {
		score += 20
	}
	return true, score
}
