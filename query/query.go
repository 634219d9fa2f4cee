// Package query manages the persistence and retrieval of resolved title history and suggestions.
package query

import (
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"

	"github.com/vsel-cli/vsel/filesystem"
	"github.com/vsel-cli/vsel/key"
	"github.com/vsel-cli/vsel/where"
)

type titleRecord struct {
	Rank       int    `json:"rank"`
	Title      string `json:"title"`
	LastUsedAt int64  `json:"last_used_at"`
}

var cacher = gache.New[map[string]*titleRecord](
	&gache.Options{
		Path:       where.Queries(),
		FileSystem: &filesystem.GacheFs{},
	},
)

var suggestionCache = make(map[string][]*titleRecord)

// Remember records a successfully resolved title in the persistent history
// or increments its popularity rank.
func Remember(title string, weight int) error {
	title = sanitize(title)
	if title == "" {
		return nil
	}

	cached, expired, err := cacher.Get()
	if expired || err != nil || cached == nil {
		cached = make(map[string]*titleRecord)
	}

	if record, ok := cached[title]; ok {
		record.Rank += weight
		record.LastUsedAt = time.Now().Unix()
	} else {
		cached[title] = &titleRecord{
			Rank:       weight,
			Title:      title,
			LastUsedAt: time.Now().Unix(),
		}
	}

	return cacher.Set(cached)
}

// Forget removes a title from the history.
func Forget(title string) error {
	cached, expired, err := cacher.Get()
	if expired || err != nil || cached == nil {
		return nil
	}

	delete(cached, sanitize(title))
	clear(suggestionCache)
	return cacher.Set(cached)
}

// Suggest returns the most relevant historical title for a partial input.
func Suggest(partial string) mo.Option[string] {
	suggestions := SuggestMany(partial)
	if len(suggestions) == 0 {
		return mo.None[string]()
	}
	return mo.Some(suggestions[0])
}

// SuggestMany returns historical titles matching the partial input, most
// popular first, ties broken by recency.
func SuggestMany(partial string) []string {
	if !viper.GetBool(key.SearchShowQuerySuggestions) {
		return []string{}
	}

	partial = sanitize(partial)
	var records []*titleRecord

	if prev, ok := suggestionCache[partial]; ok {
		records = prev
	} else {
		cached, expired, err := cacher.Get()
		if err != nil || expired || cached == nil {
			return []string{}
		}

		for _, record := range cached {
			if fuzzy.Match(partial, record.Title) {
				records = append(records, record)
			}
		}

		slices.SortFunc(records, func(a, b *titleRecord) int {
			if a.Rank != b.Rank {
				return b.Rank - a.Rank
			}
			return int(b.LastUsedAt - a.LastUsedAt)
		})

		suggestionCache[partial] = records
	}

	return lo.Map(records, func(r *titleRecord, _ int) string {
		return r.Title
	})
}

func sanitize(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}
