package cms

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/vsel-cli/vsel/source"
)

// Apple-CMS vod_play_url delimiters: play sources are separated by "$$$",
// episodes within a source by "#", and each episode is "label$url".
const (
	playSourceSeparator = "$$$"
	episodeSeparator    = "#"
	labelSeparator      = "$"
)

// vodItem mirrors one videolist entry. Identifier-ish fields arrive as
// strings or numbers depending on the site's PHP version, hence RawMessage.
type vodItem struct {
	ID       json.RawMessage `json:"vod_id"`
	Name     string          `json:"vod_name"`
	Year     json.RawMessage `json:"vod_year"`
	PlayURL  string          `json:"vod_play_url"`
	DoubanID json.RawMessage `json:"vod_douban_id"`
}

type vodResponse struct {
	Code json.RawMessage `json:"code"`
	List []vodItem       `json:"list"`
}

// parseVideolist decodes a videolist response body into normalized
// candidates attributed to the given site.
func parseVideolist(site *Site, body []byte) ([]source.Candidate, error) {
	var response vodResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parse videolist: %w", err)
	}

	raw := lo.Map(response.List, func(item vodItem, _ int) source.RawCandidate {
		return source.RawCandidate{
			Source:     site.Key,
			SourceName: site.Name,
			ID:         item.ID,
			Title:      item.Name,
			Year:       item.Year,
			Episodes:   parsePlayURL(item.PlayURL),
			DoubanID:   item.DoubanID,
		}
	})

	return source.NormalizeAll(raw), nil
}

// parsePlayURL extracts the ordered episode URLs from a vod_play_url field.
// When several play sources are present, the first one carrying HLS
// playlists is used; sites list their mp4 mirror first and the m3u8 source
// after it.
func parsePlayURL(playURL string) []string {
	if strings.TrimSpace(playURL) == "" {
		return nil
	}

	groups := lo.Map(strings.Split(playURL, playSourceSeparator), func(group string, _ int) []string {
		return episodeURLs(group)
	})
	groups = lo.Filter(groups, func(urls []string, _ int) bool {
		return len(urls) > 0
	})
	if len(groups) == 0 {
		return nil
	}

	for _, urls := range groups {
		if lo.SomeBy(urls, func(u string) bool {
			return strings.Contains(u, ".m3u8")
		}) {
			return urls
		}
	}
	return groups[0]
}

// episodeURLs splits one play source into its URLs, dropping label-only and
// non-HTTP entries.
func episodeURLs(group string) []string {
	return lo.FilterMap(strings.Split(group, episodeSeparator), func(episode string, _ int) (string, bool) {
		u := episode
		if i := strings.LastIndex(episode, labelSeparator); i >= 0 {
			u = episode[i+1:]
		}
		u = strings.TrimSpace(u)
		return u, strings.HasPrefix(u, "http")
	})
}
