// Package probe measures candidate playability with a strategy matched to
// the device tier: full streaming probes on desktops, cheap reachability
// checks on phones, and a zero-network static preference ranking on
// constrained tablets. Every submitted candidate receives exactly one
// measurement, success or failure-sentinel.
package probe

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/vsel-cli/vsel/device"
	"github.com/vsel-cli/vsel/key"
	"github.com/vsel-cli/vsel/log"
	"github.com/vsel-cli/vsel/source"
)

// maxFullConcurrency caps in-flight full probes regardless of configuration.
// Each full probe holds a streaming read buffer, and constrained clients have
// crashed under wider fan-out.
const maxFullConcurrency = 2

// Mode selects how much a single URL probe measures.
type Mode int

const (
	// ModeLightweight checks reachability and latency only.
	ModeLightweight Mode = iota
	// ModeFull additionally samples resolution and throughput.
	ModeFull
)

// Result is the raw outcome of one URL probe. Zero values mean "not
// measured" for the optional dimensions.
type Result struct {
	LatencyMs        int
	ResolutionHeight int
	SpeedKBps        float64
}

// URLProber measures a single URL.
type URLProber interface {
	Probe(ctx context.Context, url string, mode Mode) (Result, error)
}

// Prober runs the tier-appropriate measurement strategy over a candidate
// batch.
type Prober struct {
	urls  URLProber
	clock clockwork.Clock

	lightweightTimeout time.Duration
	fullTimeout        time.Duration
	concurrency        int
	batchPause         time.Duration
	preferred          []string
}

// New builds a Prober from configuration. A nil urls defaults to an
// HTTPProber over the shared client.
func New(urls URLProber, clock clockwork.Clock) *Prober {
	if urls == nil {
		urls = NewHTTPProber(int64(viper.GetInt(key.ProbeReadBudgetKB)) << 10)
	}

	concurrency := viper.GetInt(key.ProbeFullConcurrency)
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > maxFullConcurrency {
		concurrency = maxFullConcurrency
	}

	return &Prober{
		urls:               urls,
		clock:              clock,
		lightweightTimeout: time.Duration(viper.GetInt(key.ProbeLightweightTimeoutSeconds)) * time.Second,
		fullTimeout:        time.Duration(viper.GetInt(key.ProbeFullTimeoutSeconds)) * time.Second,
		concurrency:        concurrency,
		batchPause:         time.Duration(viper.GetInt(key.ProbeBatchPauseMs)) * time.Millisecond,
		preferred:          viper.GetStringSlice(key.ProbePreferredSources),
	}
}

// Measure probes candidates with the strategy for the given tier and returns
// the (possibly reordered) candidates alongside positionally paired
// measurements. Only the constrained strategy reorders.
func (p *Prober) Measure(ctx context.Context, tier device.Tier, candidates []source.Candidate) ([]source.Candidate, []source.Measurement) {
	switch tier {
	case device.TierConstrained:
		return p.measureConstrained(candidates)
	case device.TierMobile:
		return candidates, p.measureMobile(ctx, candidates)
	default:
		return candidates, p.measureFull(ctx, candidates)
	}
}

// measureConstrained performs no network calls at all. Candidates are
// reordered by the static source preference list and every one is assumed
// playable.
func (p *Prober) measureConstrained(candidates []source.Candidate) ([]source.Candidate, []source.Measurement) {
	ordered := PreferenceRank(candidates, p.preferred)
	measurements := lo.Map(ordered, func(source.Candidate, int) source.Measurement {
		return assumedPlayable()
	})
	return ordered, measurements
}

// measureMobile fires one lightweight probe per candidate concurrently.
func (p *Prober) measureMobile(ctx context.Context, candidates []source.Candidate) []source.Measurement {
	measurements := make([]source.Measurement, len(candidates))

	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c source.Candidate) {
			defer wg.Done()
			measurements[i] = p.probeOne(ctx, &c, ModeLightweight, p.lightweightTimeout)
		}(i, c)
	}
	wg.Wait()

	return measurements
}

// measureFull runs full probes in small batches, pausing between batches so
// a long candidate list does not saturate the link it is trying to measure.
func (p *Prober) measureFull(ctx context.Context, candidates []source.Candidate) []source.Measurement {
	measurements := make([]source.Measurement, len(candidates))

	for start := 0; start < len(candidates); start += p.concurrency {
		end := start + p.concurrency
		if end > len(candidates) {
			end = len(candidates)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				measurements[i] = p.probeOne(ctx, &candidates[i], ModeFull, p.fullTimeout)
			}(i)
		}
		wg.Wait()

		if end < len(candidates) && p.batchPause > 0 {
			select {
			case <-p.clock.After(p.batchPause):
			case <-ctx.Done():
				for i := end; i < len(candidates); i++ {
					measurements[i] = source.Unreachable()
				}
				return measurements
			}
		}
	}

	return measurements
}

// probeOne measures a single candidate, degrading every failure to the
// unreachable sentinel.
func (p *Prober) probeOne(ctx context.Context, c *source.Candidate, mode Mode, timeout time.Duration) source.Measurement {
	url, ok := c.ProbeURL().Get()
	if !ok {
		return source.Unreachable()
	}

	probeCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := p.urls.Probe(probeCtx, url, mode)
	if err != nil {
		log.Debugf("probe %s failed: %s", c.Key(), err)
		return source.Unreachable()
	}

	m := source.Measurement{
		PingMs:    result.LatencyMs,
		Quality:   source.QualityFromHeight(result.ResolutionHeight),
		LoadSpeed: source.SpeedUnknown,
		Available: true,
	}
	if result.SpeedKBps > 0 {
		m.LoadSpeed = formatSpeed(result.SpeedKBps)
	}
	return m
}

// PreferenceRank orders candidates by the static source preference list:
// candidates whose source matches a preferred entry come first, in list
// order, then the rest in input order. Matching is by case-insensitive
// substring so site id suffixes ("okzy", "okm3u8") hit their family entry.
func PreferenceRank(candidates []source.Candidate, preferred []string) []source.Candidate {
	ordered := make([]source.Candidate, 0, len(candidates))
	taken := make(map[string]struct{}, len(candidates))

	for _, pref := range preferred {
		for _, c := range candidates {
			if _, ok := taken[c.Key()]; ok {
				continue
			}
			if strings.Contains(strings.ToLower(c.Source), strings.ToLower(pref)) {
				ordered = append(ordered, c)
				taken[c.Key()] = struct{}{}
			}
		}
	}
	for _, c := range candidates {
		if _, ok := taken[c.Key()]; !ok {
			ordered = append(ordered, c)
		}
	}

	return ordered
}

// assumedPlayable is the synthetic measurement recorded without probing.
// Zero latency keeps it distinguishable from measured pings, which are
// floored at one millisecond.
func assumedPlayable() source.Measurement {
	return source.Measurement{
		PingMs:    0,
		Quality:   source.QualityUnknown,
		LoadSpeed: source.SpeedUnknown,
		Available: true,
	}
}

func formatSpeed(kbps float64) string {
	if kbps >= 1024 {
		return fmt.Sprintf("%.1f MB/s", kbps/1024)
	}
	return fmt.Sprintf("%.1f KB/s", kbps)
}
