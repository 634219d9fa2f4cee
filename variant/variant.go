// Package variant derives alternative search strings from a user query to
// improve recall against inconsistently indexed third-party catalogs.
package variant

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// cjkPunctuation is the set of full-width marks whose presence triggers
// punctuation rewriting.
const cjkPunctuation = "：；，。！？、“”‘’（）【】《》"

// ordinalMarkers flag a trailing token like "第九季" that catalogs often
// index concatenated with the main title.
const ordinalMarkers = "第季集部篇章"

// stopWords are English tokens too generic to search for on their own.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {}, "by": {},
}

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	punctStripPattern = regexp.MustCompile(`[：；，。！？、“”‘’（）【】《》:;,.!?'()\[\]<>]`)
)

// punctMapper rewrites full-width punctuation to ASCII equivalents. The
// full-width colon is handled separately with its own variant ladder.
var punctMapper = strings.NewReplacer(
	"；", ";", "，", ",", "。", ".", "！", "!", "？", "?",
	"“", `"`, "”", `"`, "‘", "'", "’", "'",
	"（", "(", "）", ")", "【", "[", "】", "]", "《", "<", "》", ">",
)

// Generate returns the ordered, deduplicated list of search variants for a
// query. The first element is always the trimmed input; subsequent entries
// are ordered by decreasing trust. Deterministic for a given input.
func Generate(query string) []string {
	trimmed := strings.TrimSpace(query)

	g := newCollector()
	g.add(trimmed)
	punctuationVariants(g, trimmed)

	if strings.Contains(trimmed, " ") {
		spaceVariants(g, trimmed)
	}

	return g.out
}

// punctuationVariants rewrites CJK punctuation. The full-width colon gets a
// ladder of its own: the space form has the highest recall (titles indexed
// without subtitle separators), then removal, then the ASCII form, then the
// bare main title and bare subtitle.
func punctuationVariants(g *collector, q string) {
	if !strings.ContainsAny(q, cjkPunctuation) {
		return
	}

	if strings.Contains(q, "：") {
		g.add(strings.ReplaceAll(q, "：", " "))
		g.add(strings.ReplaceAll(q, "：", ""))
		g.add(strings.ReplaceAll(q, "：", ":"))

		parts := strings.Split(q, "：")
		if before := strings.TrimSpace(parts[0]); before != "" && before != q {
			g.add(before)
		}
		if len(parts) > 1 {
			if after := strings.TrimSpace(parts[1]); after != "" {
				g.add(after)
			}
		}
	}

	if mapped := punctMapper.Replace(q); mapped != q {
		g.add(mapped)
	}

	if stripped := punctStripPattern.ReplaceAllString(q, ""); stripped != q && strings.TrimSpace(stripped) != "" {
		g.add(stripped)
	}
}

// spaceVariants covers titles indexed without spaces, with a subtitle
// separator, or under just the leading keyword.
func spaceVariants(g *collector, q string) {
	if noSpaces := whitespacePattern.ReplaceAllString(q, ""); noSpaces != q {
		g.add(noSpaces)
	}
	if normalized := whitespacePattern.ReplaceAllString(q, " "); normalized != q {
		g.add(normalized)
	}

	keywords := whitespacePattern.Split(q, -1)
	if len(keywords) < 2 {
		return
	}

	main := keywords[0]
	last := keywords[len(keywords)-1]

	// "中餐厅 第九季" is frequently indexed as "中餐厅第九季".
	if strings.ContainsAny(last, ordinalMarkers) {
		g.add(main + last)
	}

	g.add(whitespacePattern.ReplaceAllString(q, "："))
	g.add(whitespacePattern.ReplaceAllString(q, ":"))

	// Last-resort broad variant: the leading keyword alone, unless it is
	// too short or a throwaway English word.
	if _, stop := stopWords[strings.ToLower(main)]; !stop && utf8.RuneCountInString(main) > 2 {
		g.add(main)
	}
}

// collector accumulates variants with case-sensitive insertion-order dedupe.
type collector struct {
	seen map[string]struct{}
	out  []string
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{})}
}

func (c *collector) add(v string) {
	if _, ok := c.seen[v]; ok {
		return
	}
	c.seen[v] = struct{}{}
	c.out = append(c.out, v)
}
