package source

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCandidate(t *testing.T) {
	Convey("Candidate", t, func() {
		c := &Candidate{
			Source:     "wasu",
			SourceName: "华数",
			ID:         "4242",
			Title:      "中餐厅",
			Episodes:   []string{"http://a/1.m3u8", "http://a/2.m3u8"},
		}

		Convey("Key combines source and id", func() {
			So(c.Key(), ShouldEqual, "wasu-4242")
		})

		Convey("ProbeURL prefers the second episode", func() {
			So(c.ProbeURL().MustGet(), ShouldEqual, "http://a/2.m3u8")
		})

		Convey("ProbeURL falls back to the only episode", func() {
			c.Episodes = c.Episodes[:1]
			So(c.ProbeURL().MustGet(), ShouldEqual, "http://a/1.m3u8")
		})

		Convey("ProbeURL is empty without episodes", func() {
			c.Episodes = nil
			So(c.ProbeURL().IsAbsent(), ShouldBeTrue)
			So(c.Usable(), ShouldBeFalse)
		})
	})
}

func TestMediaType(t *testing.T) {
	Convey("MediaType episode gating", t, func() {
		So(MediaTypeTV.MatchesEpisodeCount(2), ShouldBeTrue)
		So(MediaTypeTV.MatchesEpisodeCount(1), ShouldBeFalse)
		So(MediaTypeMovie.MatchesEpisodeCount(1), ShouldBeTrue)
		So(MediaTypeMovie.MatchesEpisodeCount(12), ShouldBeFalse)
		So(MediaType("").MatchesEpisodeCount(7), ShouldBeTrue)
	})
}

func TestQuality(t *testing.T) {
	Convey("QualityFromHeight buckets resolutions", t, func() {
		So(QualityFromHeight(2160), ShouldEqual, Quality4K)
		So(QualityFromHeight(1440), ShouldEqual, Quality2K)
		So(QualityFromHeight(1080), ShouldEqual, Quality1080p)
		So(QualityFromHeight(720), ShouldEqual, Quality720p)
		So(QualityFromHeight(480), ShouldEqual, Quality480p)
		So(QualityFromHeight(360), ShouldEqual, QualitySD)
		So(QualityFromHeight(0), ShouldEqual, QualityUnknown)
	})
}

func TestParseSpeed(t *testing.T) {
	Convey("ParseSpeedKBps", t, func() {
		So(ParseSpeedKBps("800 KB/s"), ShouldEqual, 800)
		So(ParseSpeedKBps("2.5 MB/s"), ShouldEqual, 2560)
		So(ParseSpeedKBps(SpeedUnknown), ShouldEqual, 0)
		So(ParseSpeedKBps("fast"), ShouldEqual, 0)
	})
}
