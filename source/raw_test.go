package source

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given loose catalog JSON", t, func() {
		Convey("Numeric ids and years are flattened", func() {
			raw := RawCandidate{
				Source:   "dyttzy",
				ID:       json.RawMessage(`67890`),
				Title:    " 死神来了 ",
				Year:     json.RawMessage(`2025`),
				Episodes: []string{"http://x/1", ""},
			}

			c, ok := raw.Normalize()
			So(ok, ShouldBeTrue)
			So(c.ID, ShouldEqual, "67890")
			So(c.Year, ShouldEqual, "2025")
			So(c.Title, ShouldEqual, "死神来了")
			So(c.Episodes, ShouldResemble, []string{"http://x/1"})
			So(c.SourceName, ShouldEqual, "dyttzy")
		})

		Convey("Entries without identity are rejected", func() {
			_, ok := RawCandidate{Title: "x"}.Normalize()
			So(ok, ShouldBeFalse)

			_, ok = RawCandidate{Source: "s", ID: json.RawMessage(`"1"`)}.Normalize()
			So(ok, ShouldBeFalse)
		})

		Convey("Zero douban ids are treated as absent", func() {
			raw := RawCandidate{
				Source:   "s",
				ID:       json.RawMessage(`"1"`),
				Title:    "t",
				DoubanID: json.RawMessage(`0`),
			}
			c, ok := raw.Normalize()
			So(ok, ShouldBeTrue)
			So(c.DoubanID.IsAbsent(), ShouldBeTrue)
		})

		Convey("NormalizeAll drops rejects and keeps order", func() {
			batch := []RawCandidate{
				{Source: "a", ID: json.RawMessage(`"1"`), Title: "first"},
				{Source: "", ID: json.RawMessage(`"2"`), Title: "broken"},
				{Source: "b", ID: json.RawMessage(`"3"`), Title: "second"},
			}
			out := NormalizeAll(batch)
			So(len(out), ShouldEqual, 2)
			So(out[0].Title, ShouldEqual, "first")
			So(out[1].Title, ShouldEqual, "second")
		})
	})
}
