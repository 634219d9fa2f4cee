// Package cms implements the catalog collaborator over Apple-CMS V10
// compatible JSON endpoints. A configurable registry of sites is searched in
// parallel and loose upstream payloads are normalized at the boundary.
package cms

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/vsel-cli/vsel/filesystem"
	"github.com/vsel-cli/vsel/where"
)

// Site is one configured catalog endpoint.
type Site struct {
	// Key is the opaque site identifier carried into Candidate.Source.
	Key string `json:"key"`
	// Name is the human-readable label.
	Name string `json:"name"`
	// API is the videolist endpoint base URL.
	API string `json:"api"`
	// TLSSpoof routes requests through the Chrome-fingerprint client for
	// sites behind anti-bot CDNs.
	TLSSpoof bool `json:"tls_spoof,omitempty"`
	// Disabled keeps the entry in the registry but out of searches.
	Disabled bool `json:"disabled,omitempty"`
}

func (s *Site) valid() bool {
	return s.Key != "" && strings.HasPrefix(s.API, "http")
}

// defaultSites seeds the registry on first run.
var defaultSites = []Site{
	{Key: "dyttzy", Name: "电影天堂", API: "http://caiji.dyttzyapi.com/api.php/provide/vod"},
	{Key: "bfzy", Name: "暴风资源", API: "https://bfzyapi.com/api.php/provide/vod"},
	{Key: "tyyszy", Name: "天涯资源", API: "https://tyyszy.com/api.php/provide/vod"},
	{Key: "okzy", Name: "OK资源", API: "https://okzyw1.com/api.php/provide/vod", TLSSpoof: true},
	{Key: "wolong", Name: "卧龙资源", API: "https://wolongzyw.com/api.php/provide/vod"},
}

// LoadSites reads the site registry, seeding it with the shipped defaults
// when no registry file exists yet. Invalid entries are dropped.
func LoadSites() ([]Site, error) {
	path := where.Sites()

	exists, err := afero.Exists(filesystem.API(), path)
	if err != nil {
		return nil, fmt.Errorf("stat sites registry: %w", err)
	}
	if !exists {
		if err := SaveSites(defaultSites); err != nil {
			return nil, err
		}
		return defaultSites, nil
	}

	contents, err := afero.ReadFile(filesystem.API(), path)
	if err != nil {
		return nil, fmt.Errorf("read sites registry: %w", err)
	}

	var sites []Site
	if err := json.Unmarshal(contents, &sites); err != nil {
		return nil, fmt.Errorf("parse sites registry: %w", err)
	}

	return lo.Filter(sites, func(s Site, _ int) bool {
		return s.valid()
	}), nil
}

// SaveSites writes the registry back, pretty-printed for hand editing.
func SaveSites(sites []Site) error {
	contents, err := json.MarshalIndent(sites, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sites registry: %w", err)
	}
	if err := afero.WriteFile(filesystem.API(), where.Sites(), contents, 0o644); err != nil {
		return fmt.Errorf("write sites registry: %w", err)
	}
	return nil
}

// Enabled filters the registry down to searchable sites.
func Enabled(sites []Site) []Site {
	return lo.Filter(sites, func(s Site, _ int) bool {
		return !s.Disabled
	})
}
