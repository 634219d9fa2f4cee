package cms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/vsel-cli/vsel/key"
	"github.com/vsel-cli/vsel/log"
	"github.com/vsel-cli/vsel/network"
	"github.com/vsel-cli/vsel/source"
)

// Provider aggregates the configured sites into one catalog collaborator.
// Searches fan out across all enabled sites in parallel; a site that fails
// or times out contributes nothing instead of failing the whole search.
type Provider struct {
	sites   []Site
	limiter *network.RateLimiter
	client  *http.Client
	timeout time.Duration
}

// NewProvider builds a provider over the given registry with pacing and
// timeouts from configuration.
func NewProvider(sites []Site, clock clockwork.Clock) *Provider {
	return &Provider{
		sites: Enabled(sites),
		limiter: network.NewRateLimiter(
			clock,
			time.Duration(viper.GetInt(key.SearchMinIntervalMs))*time.Millisecond,
			viper.GetInt(key.SearchPerMinuteLimit),
		),
		client:  network.Client,
		timeout: time.Duration(viper.GetInt(key.SearchSiteTimeout)) * time.Second,
	}
}

// Search queries every enabled site for the term and merges the results in
// registry order, so output is deterministic regardless of which site
// answered first.
func (p *Provider) Search(ctx context.Context, query string) ([]source.Candidate, error) {
	perSite := make([][]source.Candidate, len(p.sites))

	var wg sync.WaitGroup
	for i := range p.sites {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			site := &p.sites[i]
			results, err := p.searchSite(ctx, site, query)
			if err != nil {
				log.Debugf("site %s search %q: %s", site.Key, query, err)
				return
			}
			perSite[i] = results
		}(i)
	}
	wg.Wait()

	return lo.Flatten(perSite), ctx.Err()
}

// FetchDetail looks up an exact (source, id) pair on its site.
func (p *Provider) FetchDetail(ctx context.Context, src, id string) (source.Candidate, error) {
	site, ok := lo.Find(p.sites, func(s Site) bool {
		return s.Key == src
	})
	if !ok {
		return source.Candidate{}, fmt.Errorf("site %q: %w", src, source.ErrNotFound)
	}

	candidates, err := p.query(ctx, &site, url.Values{"ac": {"videolist"}, "ids": {id}})
	if err != nil {
		return source.Candidate{}, err
	}
	if len(candidates) == 0 {
		return source.Candidate{}, fmt.Errorf("id %q on %q: %w", id, src, source.ErrNotFound)
	}
	return candidates[0], nil
}

func (p *Provider) searchSite(ctx context.Context, site *Site, query string) ([]source.Candidate, error) {
	return p.query(ctx, site, url.Values{"ac": {"videolist"}, "wd": {query}})
}

// query performs one paced videolist request against a site.
func (p *Provider) query(ctx context.Context, site *Site, params url.Values) ([]source.Candidate, error) {
	if _, err := p.limiter.Acquire(ctx, site.Key); err != nil {
		return nil, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	endpoint, err := requestURL(site.API, params)
	if err != nil {
		return nil, err
	}

	body, status, err := p.fetch(ctx, site, endpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("site %s returned %d", site.Key, status)
	}

	return parseVideolist(site, body)
}

// fetch routes between the shared client and the TLS-fingerprint client.
func (p *Provider) fetch(ctx context.Context, site *Site, endpoint string) ([]byte, int, error) {
	if site.TLSSpoof {
		return network.DoTLS(ctx, http.MethodGet, endpoint, nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// requestURL merges query parameters into the site's base endpoint,
// preserving any parameters baked into the configured URL.
func requestURL(api string, params url.Values) (string, error) {
	u, err := url.Parse(api)
	if err != nil {
		return "", fmt.Errorf("site endpoint: %w", err)
	}

	merged := u.Query()
	for k, vs := range params {
		merged[k] = vs
	}
	u.RawQuery = merged.Encode()

	return u.String(), nil
}
