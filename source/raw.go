// Package source defines the domain models and collaborator interfaces for playable source discovery.
package source

import (
	"encoding/json"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// RawCandidate mirrors the loose JSON shapes third-party catalogs return.
// Numbers arrive as strings or numbers, fields go missing, episode lists
// contain empty entries. It exists only at the collaborator boundary;
// everything past Normalize works with strict Candidates.
type RawCandidate struct {
	Source     string          `json:"source"`
	SourceName string          `json:"source_name"`
	ID         json.RawMessage `json:"id"`
	Title      string          `json:"title"`
	Year       json.RawMessage `json:"year"`
	Episodes   []string        `json:"episodes"`
	DoubanID   json.RawMessage `json:"douban_id"`
}

// Normalize validates and defaults a raw entry into a Candidate. Entries
// with no identity or no title are rejected; blank episode URLs are dropped.
func (r RawCandidate) Normalize() (Candidate, bool) {
	id := flattenScalar(r.ID)
	title := strings.TrimSpace(r.Title)
	if r.Source == "" || id == "" || title == "" {
		return Candidate{}, false
	}

	episodes := lo.Filter(r.Episodes, func(u string, _ int) bool {
		return strings.TrimSpace(u) != ""
	})

	douban := mo.None[string]()
	if d := flattenScalar(r.DoubanID); d != "" && d != "0" {
		douban = mo.Some(d)
	}

	name := strings.TrimSpace(r.SourceName)
	if name == "" {
		name = r.Source
	}

	return Candidate{
		Source:     r.Source,
		SourceName: name,
		ID:         id,
		Title:      title,
		Year:       flattenScalar(r.Year),
		Episodes:   episodes,
		DoubanID:   douban,
	}, true
}

// NormalizeAll maps a raw batch to strict candidates, discarding rejects.
func NormalizeAll(raw []RawCandidate) []Candidate {
	return lo.FilterMap(raw, func(r RawCandidate, _ int) (Candidate, bool) {
		return r.Normalize()
	})
}

// flattenScalar renders a JSON scalar (string or number) as its plain string
// form, empty for null/absent/composite values.
func flattenScalar(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return ""
}
