// Package source defines the domain models and collaborator interfaces for playable source discovery.
package source

import (
	"fmt"

	"github.com/samber/mo"
)

// Candidate represents one playable (source, content-id) match for a
// requested title. It is a value object: constructed by catalog search or
// detail-fetch responses and never mutated afterwards.
type Candidate struct {
	// Source is the opaque catalog site identifier (string key).
	Source string `json:"source"`
	// SourceName is the human-readable site label.
	SourceName string `json:"source_name"`
	// ID is the opaque per-site content identifier.
	ID string `json:"id"`
	// Title and Year are normalized metadata used for matching.
	Title string `json:"title"`
	Year  string `json:"year"`
	// Episodes is the ordered sequence of playable URLs.
	// A usable candidate has at least one.
	Episodes []string `json:"episodes"`

	// DoubanID cross-references an external metadata record.
	DoubanID mo.Option[string] `json:"douban_id,omitempty"`
}

// Key returns the composite identity used to deduplicate candidates and key
// probe measurements.
func (c *Candidate) Key() string {
	return fmt.Sprintf("%s-%s", c.Source, c.ID)
}

// Usable reports whether the candidate carries at least one playable URL.
func (c *Candidate) Usable() bool {
	return len(c.Episodes) > 0
}

// ProbeURL returns the URL probed when measuring this candidate: the second
// episode when available (the first often carries a trailer or recap), else
// the first.
func (c *Candidate) ProbeURL() mo.Option[string] {
	switch {
	case len(c.Episodes) > 1:
		return mo.Some(c.Episodes[1])
	case len(c.Episodes) == 1:
		return mo.Some(c.Episodes[0])
	default:
		return mo.None[string]()
	}
}

func (c *Candidate) String() string {
	return fmt.Sprintf("%s (%s)", c.Title, c.SourceName)
}

// MediaType narrows a search to titles whose episode count matches.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// MatchesEpisodeCount reports whether the candidate's episode count is
// consistent with the media type: series have more than one episode, movies
// exactly one.
func (t MediaType) MatchesEpisodeCount(n int) bool {
	switch t {
	case MediaTypeTV:
		return n > 1
	case MediaTypeMovie:
		return n == 1
	default:
		return true
	}
}
