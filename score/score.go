// Package score ranks probed sources with a weighted composite of quality,
// download speed, and latency. All math is pure; batch statistics are
// computed once over a probe batch and shared by every candidate's score so
// relative ranking stays meaningful.
package score

import (
	"math"

	"github.com/samber/lo"
	"github.com/vsel-cli/vsel/source"
)

// Component weights. Quality and speed dominate; latency only breaks ties
// between otherwise comparable sources.
const (
	weightQuality = 0.4
	weightSpeed   = 0.4
	weightPing    = 0.2
)

// unknownSpeedScore is the neutral speed sub-score for sources whose probe
// could not measure throughput. Below any decent measured source, above a
// measured crawl.
const unknownSpeedScore = 30

// Batch stat fallbacks used when no probe in the batch produced a valid
// measurement of the respective dimension.
const (
	defaultMaxSpeedKBps = 1024
	defaultMinPingMs    = 50
	defaultMaxPingMs    = 1000
)

var qualityScores = map[source.Quality]float64{
	source.Quality4K:    100,
	source.Quality2K:    85,
	source.Quality1080p: 75,
	source.Quality720p:  60,
	source.Quality480p:  40,
	source.QualitySD:    20,
}

// Stats holds the per-batch normalization baselines for speed and ping.
type Stats struct {
	MaxSpeedKBps float64
	MinPingMs    float64
	MaxPingMs    float64
}

// ComputeStats derives the batch baselines from a set of measurements.
// Unparseable speeds and non-positive pings are excluded; when a dimension
// has no valid samples its documented fallback is used instead.
func ComputeStats(measurements []source.Measurement) Stats {
	speeds := lo.FilterMap(measurements, func(m source.Measurement, _ int) (float64, bool) {
		kbps := m.SpeedKBps()
		return kbps, kbps > 0
	})
	pings := lo.FilterMap(measurements, func(m source.Measurement, _ int) (float64, bool) {
		return float64(m.PingMs), m.PingMs > 0 && m.PingMs != source.UnreachablePing
	})

	stats := Stats{
		MaxSpeedKBps: defaultMaxSpeedKBps,
		MinPingMs:    defaultMinPingMs,
		MaxPingMs:    defaultMaxPingMs,
	}
	if len(speeds) > 0 {
		stats.MaxSpeedKBps = lo.Max(speeds)
	}
	if len(pings) > 0 {
		stats.MinPingMs = lo.Min(pings)
		stats.MaxPingMs = lo.Max(pings)
	}
	return stats
}

// Calculate produces the composite score for one measurement against its
// batch baselines, rounded to two decimals.
func Calculate(m source.Measurement, stats Stats) float64 {
	total := qualityScores[m.Quality]*weightQuality +
		speedScore(m, stats.MaxSpeedKBps)*weightSpeed +
		pingScore(float64(m.PingMs), stats.MinPingMs, stats.MaxPingMs)*weightPing

	return math.Round(total*100) / 100
}

// speedScore scales throughput linearly against the fastest source in the
// batch, clamped to [0, 100].
func speedScore(m source.Measurement, maxSpeedKBps float64) float64 {
	kbps := m.SpeedKBps()
	if kbps <= 0 {
		return unknownSpeedScore
	}
	return clamp(kbps/maxSpeedKBps*100, 0, 100)
}

// pingScore maps latency inversely and linearly onto [0, 100] within the
// batch's observed range. Missing or sentinel pings score zero; a degenerate
// range where every source pinged alike scores full marks.
func pingScore(ping, minPing, maxPing float64) float64 {
	if ping <= 0 || ping >= float64(source.UnreachablePing) {
		return 0
	}
	if maxPing == minPing {
		return 100
	}
	return clamp((maxPing-ping)/(maxPing-minPing)*100, 0, 100)
}

func clamp(v, low, high float64) float64 {
	return math.Min(high, math.Max(low, v))
}

// Ranked pairs a candidate with its measurement and composite score.
type Ranked struct {
	Candidate   source.Candidate
	Measurement source.Measurement
	Score       float64
}

// Rank scores every candidate against batch statistics computed from the
// given measurements. Candidates and measurements are positionally paired
// and must have equal length.
func Rank(candidates []source.Candidate, measurements []source.Measurement) []Ranked {
	stats := ComputeStats(measurements)
	return lo.Map(candidates, func(c source.Candidate, i int) Ranked {
		return Ranked{
			Candidate:   c,
			Measurement: measurements[i],
			Score:       Calculate(measurements[i], stats),
		}
	})
}

// SelectBest returns the index of the highest-scoring available candidate.
// Ties keep the earliest entry. When every probe failed, index 0 is returned
// so the caller still resolves to a deterministic candidate.
func SelectBest(ranked []Ranked) int {
	best := -1
	for i, r := range ranked {
		if !r.Measurement.Available {
			continue
		}
		if best == -1 || r.Score > ranked[best].Score {
			best = i
		}
	}
	if best == -1 {
		return 0
	}
	return best
}
