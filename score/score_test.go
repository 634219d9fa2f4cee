package score

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vsel-cli/vsel/source"
)

func measured(ping int, quality source.Quality, speed string) source.Measurement {
	return source.Measurement{
		PingMs:    ping,
		Quality:   quality,
		LoadSpeed: speed,
		Available: true,
	}
}

func TestComputeStats(t *testing.T) {
	Convey("ComputeStats", t, func() {
		Convey("Valid samples set the baselines", func() {
			stats := ComputeStats([]source.Measurement{
				measured(100, source.Quality1080p, "2 MB/s"),
				measured(400, source.Quality720p, "512 KB/s"),
			})
			So(stats.MaxSpeedKBps, ShouldEqual, 2048)
			So(stats.MinPingMs, ShouldEqual, 100)
			So(stats.MaxPingMs, ShouldEqual, 400)
		})

		Convey("Sentinel pings and unknown speeds are excluded", func() {
			stats := ComputeStats([]source.Measurement{
				source.Unreachable(),
				measured(200, source.Quality1080p, source.SpeedUnknown),
			})
			So(stats.MaxSpeedKBps, ShouldEqual, defaultMaxSpeedKBps)
			So(stats.MinPingMs, ShouldEqual, 200)
			So(stats.MaxPingMs, ShouldEqual, 200)
		})

		Convey("An empty batch falls back entirely", func() {
			stats := ComputeStats(nil)
			So(stats.MaxSpeedKBps, ShouldEqual, defaultMaxSpeedKBps)
			So(stats.MinPingMs, ShouldEqual, defaultMinPingMs)
			So(stats.MaxPingMs, ShouldEqual, defaultMaxPingMs)
		})
	})
}

func TestCalculate(t *testing.T) {
	Convey("Calculate", t, func() {
		stats := Stats{MaxSpeedKBps: 2048, MinPingMs: 100, MaxPingMs: 400}

		Convey("A perfect source scores 100", func() {
			m := measured(100, source.Quality4K, "2 MB/s")
			So(Calculate(m, stats), ShouldEqual, 100)
		})

		Convey("Component weights apply", func() {
			// 75*0.4 + 25*0.4 + 0*0.2 = 40 with the slowest valid ping.
			m := measured(400, source.Quality1080p, "512 KB/s")
			So(Calculate(m, stats), ShouldEqual, 40)
		})

		Convey("Unknown speed earns the neutral sub-score", func() {
			m := measured(100, source.Quality1080p, source.SpeedUnknown)
			// 75*0.4 + 30*0.4 + 100*0.2 = 62.
			So(Calculate(m, stats), ShouldEqual, 62)
		})

		Convey("A failed probe earns only its quality bucket", func() {
			// Sentinel ping scores 0; unknown quality and speed leave
			// 0*0.4 + 30*0.4 + 0*0.2 = 12.
			So(Calculate(source.Unreachable(), stats), ShouldEqual, 12)
		})

		Convey("Degenerate ping ranges score full latency marks", func() {
			flat := Stats{MaxSpeedKBps: 1024, MinPingMs: 150, MaxPingMs: 150}
			m := measured(150, source.QualityUnknown, source.SpeedUnknown)
			// 0*0.4 + 30*0.4 + 100*0.2 = 32.
			So(Calculate(m, flat), ShouldEqual, 32)
		})

		Convey("Higher quality always scores strictly higher", func() {
			lower := Calculate(measured(200, source.Quality720p, "512 KB/s"), stats)
			higher := Calculate(measured(200, source.Quality1080p, "512 KB/s"), stats)
			So(higher, ShouldBeGreaterThan, lower)
		})

		Convey("Faster speed never lowers the score", func() {
			slow := Calculate(measured(200, source.Quality1080p, "256 KB/s"), stats)
			fast := Calculate(measured(200, source.Quality1080p, "1 MB/s"), stats)
			So(fast, ShouldBeGreaterThan, slow)
		})

		Convey("Speeds above the batch maximum clamp at 100", func() {
			m := measured(100, source.Quality4K, "4 MB/s")
			So(Calculate(m, stats), ShouldEqual, 100)
		})

		Convey("Results round to two decimals", func() {
			m := measured(233, source.Quality720p, "333 KB/s")
			// 60*0.4 + (333/2048*100)*0.4 + ((400-233)/300*100)*0.2 = 41.6372...
			So(Calculate(m, stats), ShouldAlmostEqual, 41.64, 0.0001)
		})
	})
}

func TestSelectBest(t *testing.T) {
	Convey("SelectBest", t, func() {
		cand := func(id string) source.Candidate {
			return source.Candidate{Source: "s", ID: id, Title: id, Episodes: []string{"http://e/1.m3u8"}}
		}

		Convey("The highest score wins", func() {
			ranked := Rank(
				[]source.Candidate{cand("a"), cand("b")},
				[]source.Measurement{
					measured(300, source.Quality480p, "128 KB/s"),
					measured(100, source.Quality4K, "2 MB/s"),
				},
			)
			So(SelectBest(ranked), ShouldEqual, 1)
		})

		Convey("Ties keep the earliest candidate", func() {
			m := measured(100, source.Quality1080p, "1 MB/s")
			ranked := Rank(
				[]source.Candidate{cand("a"), cand("b")},
				[]source.Measurement{m, m},
			)
			So(SelectBest(ranked), ShouldEqual, 0)
		})

		Convey("Unavailable sources are skipped", func() {
			ranked := Rank(
				[]source.Candidate{cand("a"), cand("b")},
				[]source.Measurement{
					source.Unreachable(),
					measured(200, source.QualitySD, "64 KB/s"),
				},
			)
			So(SelectBest(ranked), ShouldEqual, 1)
		})

		Convey("All probes failed falls back to the first candidate", func() {
			ranked := Rank(
				[]source.Candidate{cand("a"), cand("b")},
				[]source.Measurement{source.Unreachable(), source.Unreachable()},
			)
			So(SelectBest(ranked), ShouldEqual, 0)
		})
	})
}
