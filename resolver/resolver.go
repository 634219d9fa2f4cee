// Package resolver composes search, matching, probing, and scoring into the
// single end-to-end operation: given a title (or an explicit source and id),
// find the best playable source under a wall-clock deadline.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/mo"
	"github.com/spf13/viper"

	"github.com/vsel-cli/vsel/device"
	"github.com/vsel-cli/vsel/key"
	"github.com/vsel-cli/vsel/log"
	"github.com/vsel-cli/vsel/match"
	"github.com/vsel-cli/vsel/probe"
	"github.com/vsel-cli/vsel/score"
	"github.com/vsel-cli/vsel/source"
	"github.com/vsel-cli/vsel/variant"
)

// ErrMissingParameters is returned when neither a title nor a complete
// (source, id) pair was supplied.
var ErrMissingParameters = errors.New("a title or a source and id pair is required")

// NotFoundError carries an optional "did you mean" suggestion drawn from the
// closest-matching candidate seen during the search.
type NotFoundError struct {
	Suggestion mo.Option[source.Candidate]
}

func (e *NotFoundError) Error() string {
	if suggestion, ok := e.Suggestion.Get(); ok {
		return fmt.Sprintf("no matching source found, did you mean %q", suggestion.Title)
	}
	return "no matching source found"
}

func (e *NotFoundError) Unwrap() error {
	return source.ErrNotFound
}

// Stage names a resolution phase, reported through OnStage for progress
// display.
type Stage string

const (
	StageSearching      Stage = "searching"
	StageFetchingDetail Stage = "fetching detail"
	StagePreferring     Stage = "preferring"
	StageReady          Stage = "ready"
	StageFailed         Stage = "failed"
)

// Request describes one resolution. Title drives search; Source and ID pin
// an exact catalog entry; PreferBest enables the probing and scoring pass.
type Request struct {
	Title      string
	Year       string
	Type       source.MediaType
	Source     string
	ID         string
	PreferBest bool
}

func (r *Request) valid() bool {
	return r.Title != "" || (r.Source != "" && r.ID != "")
}

// pinned reports whether the request names an exact catalog entry.
func (r *Request) pinned() bool {
	return r.Source != "" && r.ID != ""
}

// Result is a completed resolution. Measurements and Scores are positionally
// paired with Candidates and present only after a preference pass.
type Result struct {
	Chosen       source.Candidate     `json:"chosen"`
	Candidates   []source.Candidate   `json:"candidates"`
	Measurements []source.Measurement `json:"measurements,omitempty"`
	Scores       []float64            `json:"scores,omitempty"`
	Tier         device.Tier          `json:"tier,omitempty"`
}

// Options configures a Resolver. A zero Tier is classified from the
// configured device identity.
type Options struct {
	Providers []source.Provider
	Prober    *probe.Prober
	Tier      device.Tier
	OnStage   func(Stage)
}

// Resolver runs resolutions. Safe for sequential reuse; construct with New.
type Resolver struct {
	providers []source.Provider
	prober    *probe.Prober
	tier      device.Tier
	deadline  time.Duration
	onStage   func(Stage)
}

func New(options Options) *Resolver {
	tier := options.Tier
	if tier == "" {
		tier = device.Classify(
			viper.GetString(key.DeviceUserAgent),
			viper.GetInt(key.DeviceTouchPoints),
		)
	}

	onStage := options.OnStage
	if onStage == nil {
		onStage = func(Stage) {}
	}

	return &Resolver{
		providers: options.Providers,
		prober:    options.Prober,
		tier:      tier,
		deadline:  time.Duration(viper.GetInt(key.ResolveDeadlineSeconds)) * time.Second,
		onStage:   onStage,
	}
}

// Resolve executes the full pipeline for one request.
func (r *Resolver) Resolve(ctx context.Context, request Request) (Result, error) {
	if !request.valid() {
		return Result{}, ErrMissingParameters
	}

	if r.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.deadline)
		defer cancel()
	}

	candidates, pool := r.search(ctx, &request)

	if request.pinned() && !containsKey(candidates, request.Source, request.ID) {
		// The pin names an exact catalog entry: its detail fetch supersedes
		// whatever the title search matched, and a miss is a miss even when
		// the search found something else.
		pinned, ok := r.fetchDetail(ctx, &request).Get()
		if !ok {
			r.onStage(StageFailed)
			return Result{}, &NotFoundError{Suggestion: match.Closest(request.Title, pool)}
		}
		candidates = []source.Candidate{pinned}
	}

	candidates = match.Dedupe(candidates)
	if len(candidates) == 0 {
		r.onStage(StageFailed)
		return Result{}, &NotFoundError{Suggestion: match.Closest(request.Title, pool)}
	}

	if !request.PreferBest {
		r.onStage(StageReady)
		return Result{
			Chosen:     pickPinned(candidates, &request),
			Candidates: candidates,
			Tier:       r.tier,
		}, nil
	}

	return r.prefer(ctx, candidates)
}

// search runs the variant ladder: each generated variant is searched across
// all providers, and the first variant whose results survive the exact
// filter wins. Transport failures count as empty results so one flaky site
// cannot abort the ladder. The accumulated pool of everything seen backs the
// relaxed fallback and "did you mean" suggestions.
func (r *Resolver) search(ctx context.Context, request *Request) (matched, pool []source.Candidate) {
	if request.Title == "" {
		return nil, nil
	}

	r.onStage(StageSearching)

	for _, v := range variant.Generate(request.Title) {
		if ctx.Err() != nil {
			break
		}

		var variantResults []source.Candidate
		for _, provider := range r.providers {
			results, err := provider.Search(ctx, v)
			if err != nil {
				log.Debugf("search %q: %s", v, err)
				continue
			}
			variantResults = append(variantResults, results...)
		}
		pool = append(pool, variantResults...)

		if exact := match.Exact(request.Title, request.Year, request.Type, variantResults); len(exact) > 0 {
			return exact, pool
		}
	}

	return match.Relaxed(request.Title, pool), pool
}

// fetchDetail resolves a pinned (source, id) pair through the providers,
// returning the first hit.
func (r *Resolver) fetchDetail(ctx context.Context, request *Request) mo.Option[source.Candidate] {
	r.onStage(StageFetchingDetail)

	for _, provider := range r.providers {
		c, err := provider.FetchDetail(ctx, request.Source, request.ID)
		if err != nil {
			if !errors.Is(err, source.ErrNotFound) {
				log.Debugf("detail %s-%s: %s", request.Source, request.ID, err)
			}
			continue
		}
		if c.Usable() {
			return mo.Some(c)
		}
	}

	return mo.None[source.Candidate]()
}

// prefer probes the candidates with the tier strategy and picks the winner:
// desktops by composite score, phones by lowest latency, constrained devices
// by the static preference order the prober already applied.
func (r *Resolver) prefer(ctx context.Context, candidates []source.Candidate) (Result, error) {
	r.onStage(StagePreferring)

	ordered, measurements := r.prober.Measure(ctx, r.tier, candidates)

	result := Result{
		Candidates:   ordered,
		Measurements: measurements,
		Tier:         r.tier,
	}

	switch r.tier {
	case device.TierConstrained:
		result.Chosen = ordered[0]
	case device.TierMobile:
		result.Chosen = ordered[lowestPing(measurements)]
	default:
		ranked := score.Rank(ordered, measurements)
		result.Scores = make([]float64, len(ranked))
		for i, entry := range ranked {
			result.Scores[i] = entry.Score
		}
		result.Chosen = ordered[score.SelectBest(ranked)]
	}

	r.onStage(StageReady)
	return result, nil
}

// lowestPing returns the index of the lowest-latency available measurement,
// falling back to the first candidate when every probe failed.
func lowestPing(measurements []source.Measurement) int {
	best := -1
	for i, m := range measurements {
		if !m.Available || m.PingMs <= 0 {
			continue
		}
		if best == -1 || m.PingMs < measurements[best].PingMs {
			best = i
		}
	}
	if best == -1 {
		return 0
	}
	return best
}

func containsKey(candidates []source.Candidate, src, id string) bool {
	for i := range candidates {
		if candidates[i].Source == src && candidates[i].ID == id {
			return true
		}
	}
	return false
}

// pickPinned returns the candidate matching the request's (source, id) when
// pinned and present, else the first candidate.
func pickPinned(candidates []source.Candidate, request *Request) source.Candidate {
	if request.pinned() {
		for i := range candidates {
			if candidates[i].Source == request.Source && candidates[i].ID == request.ID {
				return candidates[i]
			}
		}
	}
	return candidates[0]
}
