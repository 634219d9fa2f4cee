// Package match filters raw catalog candidates against the requested title.
package match

import (
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/mo"
	"github.com/vsel-cli/vsel/source"
)

// Closest returns the pool candidate whose title has the smallest edit
// distance to the query, for "did you mean" suggestions when nothing
// matched. Ties resolve to the earliest candidate, so the result is
// deterministic. Absent when the pool is empty.
func Closest(queryTitle string, pool []source.Candidate) mo.Option[source.Candidate] {
	if len(pool) == 0 {
		return mo.None[source.Candidate]()
	}

	query := strings.ToLower(strings.TrimSpace(queryTitle))

	best := pool[0]
	bestDistance := levenshtein.Distance(query, strings.ToLower(best.Title))
	for _, c := range pool[1:] {
		if d := levenshtein.Distance(query, strings.ToLower(c.Title)); d < bestDistance {
			best = c
			bestDistance = d
		}
	}

	return mo.Some(best)
}
