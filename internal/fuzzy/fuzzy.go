// Package fuzzy ranks candidate strings against a typed query.
//
// Scoring is delegated to sahilm/fuzzy. The package only pins down the
// ordering contract: an empty query keeps the input order, a non-empty query
// keeps subsequence matches ordered by score with ties broken by input index.
package fuzzy

import (
	"sort"

	sfuzzy "github.com/sahilm/fuzzy"
)

type Ranked struct {
	Index          int
	Score          int
	MatchedIndexes []int
}

// Rank returns the positions of candidates matching query, best match first.
func Rank(query string, candidates []string) []Ranked {
	if len(candidates) == 0 {
		return nil
	}
	if query == "" {
		out := make([]Ranked, len(candidates))
		for i := range candidates {
			out[i] = Ranked{Index: i}
		}
		return out
	}

	matches := sfuzzy.Find(query, candidates)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Ranked, 0, len(matches))
	for _, m := range matches {
		out = append(out, Ranked{Index: m.Index, Score: m.Score, MatchedIndexes: m.MatchedIndexes})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// Match is Rank projected back onto the candidate strings.
func Match(query string, candidates []string) []string {
	ranked := Rank(query, candidates)
	if len(ranked) == 0 {
		return nil
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = candidates[r.Index]
	}
	return out
}

// Indexes returns only the candidate positions from Rank.
func Indexes(query string, candidates []string) []int {
	ranked := Rank(query, candidates)
	if len(ranked) == 0 {
		return nil
	}
	out := make([]int, len(ranked))
	for i, r := range ranked {
		out[i] = r.Index
	}
	return out
}
