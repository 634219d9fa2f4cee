package resolver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/vsel-cli/vsel/device"
	"github.com/vsel-cli/vsel/probe"
	"github.com/vsel-cli/vsel/source"
)

type stubProvider struct {
	queries []string
	results map[string][]source.Candidate
	details map[string]source.Candidate
}

func (s *stubProvider) Search(_ context.Context, query string) ([]source.Candidate, error) {
	s.queries = append(s.queries, query)
	return s.results[query], nil
}

func (s *stubProvider) FetchDetail(_ context.Context, src, id string) (source.Candidate, error) {
	c, ok := s.details[src+"-"+id]
	if !ok {
		return source.Candidate{}, source.ErrNotFound
	}
	return c, nil
}

type stubURLProber struct {
	latencies map[string]int
}

func (s *stubURLProber) Probe(_ context.Context, url string, _ probe.Mode) (probe.Result, error) {
	latency, ok := s.latencies[url]
	if !ok {
		return probe.Result{}, errors.New("unreachable")
	}
	return probe.Result{LatencyMs: latency}, nil
}

func candidate(src, id, title string, episodes ...string) source.Candidate {
	return source.Candidate{Source: src, SourceName: src, ID: id, Title: title, Episodes: episodes}
}

func newResolver(provider source.Provider, urls probe.URLProber, tier device.Tier) *Resolver {
	return New(Options{
		Providers: []source.Provider{provider},
		Prober:    probe.New(urls, clockwork.NewFakeClock()),
		Tier:      tier,
	})
}

func TestResolveValidation(t *testing.T) {
	Convey("Resolve validation", t, func() {
		r := newResolver(&stubProvider{}, &stubURLProber{}, device.TierDesktop)

		Convey("An empty request is rejected", func() {
			_, err := r.Resolve(context.Background(), Request{})
			So(errors.Is(err, ErrMissingParameters), ShouldBeTrue)
		})

		Convey("A source without an id is rejected", func() {
			_, err := r.Resolve(context.Background(), Request{Source: "s"})
			So(errors.Is(err, ErrMissingParameters), ShouldBeTrue)
		})
	})
}

func TestResolveSearch(t *testing.T) {
	Convey("Resolve search", t, func() {
		Convey("The variant ladder stops at the first exact match", func() {
			season := candidate("ok", "42", "中餐厅 第九季",
				"http://ok/42/1.m3u8", "http://ok/42/2.m3u8")
			provider := &stubProvider{
				results: map[string][]source.Candidate{"中餐厅第九季": {season}},
			}
			r := newResolver(provider, &stubURLProber{}, device.TierDesktop)

			result, err := r.Resolve(context.Background(), Request{Title: "中餐厅 第九季"})

			So(err, ShouldBeNil)
			So(result.Chosen.ID, ShouldEqual, "42")
			So(result.Measurements, ShouldBeEmpty)

			So(provider.queries[0], ShouldEqual, "中餐厅 第九季")
			So(provider.queries[len(provider.queries)-1], ShouldEqual, "中餐厅第九季")
		})

		Convey("Without preference the first candidate wins", func() {
			first := candidate("a", "1", "Foo", "http://a/1.m3u8")
			second := candidate("b", "2", "Foo", "http://b/1.m3u8")
			provider := &stubProvider{
				results: map[string][]source.Candidate{"Foo": {first, second}},
			}
			r := newResolver(provider, &stubURLProber{}, device.TierDesktop)

			result, err := r.Resolve(context.Background(), Request{Title: "Foo"})

			So(err, ShouldBeNil)
			So(result.Chosen, ShouldResemble, first)
			So(result.Candidates, ShouldHaveLength, 2)
		})

		Convey("Nothing matching yields a not-found with a suggestion", func() {
			unrelated := candidate("a", "1", "Breaking News", "http://a/1.m3u8")
			provider := &stubProvider{
				results: map[string][]source.Candidate{"gumball": {unrelated}},
			}
			r := newResolver(provider, &stubURLProber{}, device.TierDesktop)

			_, err := r.Resolve(context.Background(), Request{Title: "gumball"})

			So(errors.Is(err, source.ErrNotFound), ShouldBeTrue)
			var notFound *NotFoundError
			So(errors.As(err, &notFound), ShouldBeTrue)
			So(notFound.Suggestion.MustGet().Title, ShouldEqual, "Breaking News")
		})
	})
}

func TestResolvePinned(t *testing.T) {
	Convey("Resolve with a pinned (source, id)", t, func() {
		pinned := candidate("ok", "7", "Foo", "http://ok/7/1.m3u8")

		Convey("Detail fetch supplies the candidate without a title", func() {
			provider := &stubProvider{details: map[string]source.Candidate{"ok-7": pinned}}
			r := newResolver(provider, &stubURLProber{}, device.TierDesktop)

			result, err := r.Resolve(context.Background(), Request{Source: "ok", ID: "7"})

			So(err, ShouldBeNil)
			So(result.Chosen, ShouldResemble, pinned)
			So(provider.queries, ShouldBeEmpty)
		})

		Convey("The pinned entry beats earlier search results", func() {
			other := candidate("a", "1", "Foo", "http://a/1.m3u8")
			provider := &stubProvider{
				results: map[string][]source.Candidate{"Foo": {other, pinned}},
			}
			r := newResolver(provider, &stubURLProber{}, device.TierDesktop)

			result, err := r.Resolve(context.Background(), Request{Title: "Foo", Source: "ok", ID: "7"})

			So(err, ShouldBeNil)
			So(result.Chosen, ShouldResemble, pinned)
		})

		Convey("An absent pin replaces the search matches with its detail fetch", func() {
			other := candidate("a", "1", "Foo", "http://a/1.m3u8")
			provider := &stubProvider{
				results: map[string][]source.Candidate{"Foo": {other}},
				details: map[string]source.Candidate{"ok-7": pinned},
			}
			r := newResolver(provider, &stubURLProber{}, device.TierDesktop)

			result, err := r.Resolve(context.Background(), Request{Title: "Foo", Source: "ok", ID: "7"})

			So(err, ShouldBeNil)
			So(result.Chosen, ShouldResemble, pinned)
			So(result.Candidates, ShouldResemble, []source.Candidate{pinned})
		})

		Convey("An absent pin without a detail record is not-found even when the title matched", func() {
			other := candidate("a", "1", "Foo", "http://a/1.m3u8")
			provider := &stubProvider{
				results: map[string][]source.Candidate{"Foo": {other}},
			}
			r := newResolver(provider, &stubURLProber{}, device.TierDesktop)

			_, err := r.Resolve(context.Background(), Request{Title: "Foo", Source: "ok", ID: "7"})

			So(errors.Is(err, source.ErrNotFound), ShouldBeTrue)
		})

		Convey("Unknown identifiers fall through to not-found", func() {
			provider := &stubProvider{}
			r := newResolver(provider, &stubURLProber{}, device.TierDesktop)

			_, err := r.Resolve(context.Background(), Request{Source: "ok", ID: "404"})
			So(errors.Is(err, source.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestResolvePreferred(t *testing.T) {
	Convey("Resolve with preference", t, func() {
		slow := candidate("a", "1", "Foo", "http://a/1.m3u8")
		fast := candidate("b", "2", "Foo", "http://b/1.m3u8")
		provider := func() *stubProvider {
			return &stubProvider{
				results: map[string][]source.Candidate{"Foo": {slow, fast}},
			}
		}

		Convey("Phones pick the lowest latency", func() {
			urls := &stubURLProber{latencies: map[string]int{
				"http://a/1.m3u8": 300,
				"http://b/1.m3u8": 40,
			}}
			r := newResolver(provider(), urls, device.TierMobile)

			result, err := r.Resolve(context.Background(), Request{Title: "Foo", PreferBest: true})

			So(err, ShouldBeNil)
			So(result.Chosen.ID, ShouldEqual, "2")
			So(result.Tier, ShouldEqual, device.TierMobile)
			So(result.Measurements, ShouldHaveLength, 2)
		})

		Convey("Desktops rank by composite score", func() {
			urls := &stubURLProber{latencies: map[string]int{
				"http://a/1.m3u8": 300,
				"http://b/1.m3u8": 40,
			}}
			r := newResolver(provider(), urls, device.TierDesktop)

			result, err := r.Resolve(context.Background(), Request{Title: "Foo", PreferBest: true})

			So(err, ShouldBeNil)
			So(result.Chosen.ID, ShouldEqual, "2")
			So(result.Scores, ShouldHaveLength, 2)
			So(result.Scores[1], ShouldBeGreaterThan, result.Scores[0])
		})

		Convey("All probes failing falls back to the first candidate", func() {
			r := newResolver(provider(), &stubURLProber{}, device.TierDesktop)

			result, err := r.Resolve(context.Background(), Request{Title: "Foo", PreferBest: true})

			So(err, ShouldBeNil)
			So(result.Chosen.ID, ShouldEqual, "1")
			So(result.Measurements[0], ShouldResemble, source.Unreachable())
		})

		Convey("Constrained devices take the preference order without probing", func() {
			r := newResolver(provider(), &stubURLProber{}, device.TierConstrained)

			result, err := r.Resolve(context.Background(), Request{Title: "Foo", PreferBest: true})

			So(err, ShouldBeNil)
			So(result.Chosen.ID, ShouldEqual, "1")
			for _, m := range result.Measurements {
				So(m.Available, ShouldBeTrue)
			}
		})

		Convey("Stages fire in pipeline order", func() {
			var stages []Stage
			urls := &stubURLProber{latencies: map[string]int{
				"http://a/1.m3u8": 100,
				"http://b/1.m3u8": 100,
			}}
			r := New(Options{
				Providers: []source.Provider{provider()},
				Prober:    probe.New(urls, clockwork.NewFakeClock()),
				Tier:      device.TierDesktop,
				OnStage:   func(s Stage) { stages = append(stages, s) },
			})

			_, err := r.Resolve(context.Background(), Request{Title: "Foo", PreferBest: true})

			So(err, ShouldBeNil)
			So(stages, ShouldResemble, []Stage{StageSearching, StagePreferring, StageReady})
		})
	})
}

func TestLowestPing(t *testing.T) {
	Convey("lowestPing", t, func() {
		Convey("Zero-latency synthetic measurements are skipped", func() {
			measurements := []source.Measurement{
				{PingMs: 0, Available: true},
				{PingMs: 25, Available: true},
			}
			So(lowestPing(measurements), ShouldEqual, 1)
		})

		Convey("Nothing available falls back to index zero", func() {
			So(lowestPing([]source.Measurement{source.Unreachable()}), ShouldEqual, 0)
		})
	})
}

func ExampleResolver_Resolve() {
	provider := &stubProvider{
		results: map[string][]source.Candidate{
			"Foo": {candidate("ok", "1", "Foo", "http://ok/1.m3u8")},
		},
	}
	r := newResolver(provider, &stubURLProber{}, device.TierDesktop)

	result, _ := r.Resolve(context.Background(), Request{Title: "Foo"})
	fmt.Println(result.Chosen.Title)
	// Output: Foo
}
