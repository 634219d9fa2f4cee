// Package match filters raw catalog candidates against the requested title
// using language-aware heuristics. All functions are pure and deterministic:
// identical inputs always produce identical output orderings.
package match

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/vsel-cli/vsel/source"
)

// Result-count ceilings for the relaxed pass. English tokens carry less
// information per match, so the cap is much tighter; exceeding the cap means
// the query was too ambiguous to trust and the pass yields nothing.
const (
	maxRelaxedEnglish = 5
	maxRelaxedCJK     = 20
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {}, "by": {},
}

var (
	whitespacePattern   = regexp.MustCompile(`\s+`)
	digitsColonsPattern = regexp.MustCompile(`\d+|[：:]`)
	nonWordPattern      = regexp.MustCompile(`[^\w\s\p{Han}]`)
	nonKeywordPattern   = regexp.MustCompile(`[^\w\p{Han}]`)
	asciiLetterPattern  = regexp.MustCompile(`[a-z\s]`)
	hanPattern          = regexp.MustCompile(`\p{Han}`)
)

// Exact runs the strict filter: title containment (after whitespace removal
// and lowercasing), sequel-numbering-insensitive equality, or keyword-subset
// matching, gated by exact year and episode-count-vs-type checks. Order is
// preserved; duplicates by (source, id) are dropped, first occurrence wins.
func Exact(queryTitle, queryYear string, mediaType source.MediaType, candidates []source.Candidate) []source.Candidate {
	qt := flattenTitle(queryTitle)

	passed := lo.Filter(candidates, func(c source.Candidate, _ int) bool {
		rt := flattenTitle(c.Title)

		titleMatch := strings.Contains(rt, qt) ||
			strings.Contains(qt, rt) ||
			// Sequel-numbering drift: "死神来了：血脉诅咒" vs "死神来了6：血脉诅咒".
			digitsColonsPattern.ReplaceAllString(rt, "") == digitsColonsPattern.ReplaceAllString(qt, "") ||
			allKeywordsMatch(queryTitle, rt)

		yearMatch := queryYear == "" || strings.EqualFold(c.Year, queryYear)
		typeMatch := mediaType.MatchesEpisodeCount(len(c.Episodes))

		return titleMatch && yearMatch && typeMatch
	})

	return Dedupe(passed)
}

// Relaxed runs the fallback pass over the full accumulated candidate pool.
// The strategy depends on the query's dominant script: token matching for
// English, containment/character-overlap for CJK. When more candidates pass
// than the language's ceiling, the result is too ambiguous and an empty
// slice is returned instead.
func Relaxed(queryTitle string, pool []source.Candidate) []source.Candidate {
	query := strings.ToLower(strings.TrimSpace(queryTitle))

	var (
		passed  []source.Candidate
		ceiling int
	)
	if isEnglishQuery(query) {
		passed = relaxedEnglish(query, pool)
		ceiling = maxRelaxedEnglish
	} else {
		passed = relaxedCJK(query, pool)
		ceiling = maxRelaxedCJK
	}

	if len(passed) == 0 || len(passed) > ceiling {
		return nil
	}
	return Dedupe(passed)
}

// Dedupe drops duplicate (source, id) pairs, preserving first occurrence.
func Dedupe(candidates []source.Candidate) []source.Candidate {
	return lo.UniqBy(candidates, func(c source.Candidate) string {
		return c.Key()
	})
}

// isEnglishQuery detects the dominant script by run counts. The lowercased
// query's ASCII letters and spaces are weighed against its CJK characters.
func isEnglishQuery(query string) bool {
	letters := len(asciiLetterPattern.FindAllString(query, -1))
	han := len(hanPattern.FindAllString(query, -1))
	return letters > han
}

// relaxedEnglish passes a candidate when at least half the query's
// significant tokens fuzzy-match a title token.
func relaxedEnglish(query string, pool []source.Candidate) []source.Candidate {
	queryWords := tokenize(query, 2, true)
	if len(queryWords) == 0 {
		return nil
	}

	return lo.Filter(pool, func(c source.Candidate, _ int) bool {
		titleWords := tokenize(strings.ToLower(c.Title), 1, false)

		matched := lo.CountBy(queryWords, func(qw string) bool {
			return lo.SomeBy(titleWords, func(tw string) bool {
				return tokensMatch(qw, tw)
			})
		})

		return float64(matched)/float64(len(queryWords)) >= 0.5
	})
}

// tokensMatch accepts substring containment either direction, or a shared
// 4-character prefix when both tokens are long enough ("gumball" vs "gum").
func tokensMatch(a, b string) bool {
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return true
	}
	ra := []rune(a)
	rb := []rune(b)
	return len(ra) > 4 && len(rb) > 4 && string(ra[:4]) == string(rb[:4])
}

// relaxedCJK passes a candidate on normalized containment either direction,
// or when at least half the query's characters occur in the title.
func relaxedCJK(query string, pool []source.Candidate) []source.Candidate {
	normalizedQuery := nonKeywordPattern.ReplaceAllString(query, "")
	if normalizedQuery == "" {
		return nil
	}

	return lo.Filter(pool, func(c source.Candidate, _ int) bool {
		normalizedTitle := nonKeywordPattern.ReplaceAllString(strings.ToLower(c.Title), "")

		if strings.Contains(normalizedTitle, normalizedQuery) ||
			strings.Contains(normalizedQuery, normalizedTitle) {
			return true
		}

		common := 0
		for _, r := range normalizedQuery {
			if strings.ContainsRune(normalizedTitle, r) {
				common++
			}
		}
		return float64(common)/float64(utf8.RuneCountInString(normalizedQuery)) >= 0.5
	})
}

// tokenize lowers, strips punctuation, splits on whitespace, and keeps
// tokens longer than minLen runes, optionally dropping English stop-words.
func tokenize(s string, minLen int, dropStopWords bool) []string {
	cleaned := nonWordPattern.ReplaceAllString(s, " ")
	return lo.Filter(whitespacePattern.Split(cleaned, -1), func(tok string, _ int) bool {
		if utf8.RuneCountInString(tok) <= minLen {
			return false
		}
		if dropStopWords {
			if _, stop := stopWords[tok]; stop {
				return false
			}
		}
		return true
	})
}

// flattenTitle removes all whitespace and lowercases for containment checks.
func flattenTitle(s string) string {
	return strings.ToLower(whitespacePattern.ReplaceAllString(s, ""))
}

// allKeywordsMatch reports whether every whitespace-delimited keyword of the
// query (after punctuation stripping) occurs in the flattened title.
func allKeywordsMatch(queryTitle, flatTitle string) bool {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(queryTitle), "")
	words := lo.Filter(whitespacePattern.Split(cleaned, -1), func(w string, _ int) bool {
		return w != ""
	})
	if len(words) == 0 {
		return false
	}
	return lo.EveryBy(words, func(w string) bool {
		return strings.Contains(flatTitle, w)
	})
}
