package variant

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	Convey("Generate", t, func() {
		Convey("The first variant is the trimmed input", func() {
			So(Generate("  中餐厅 第九季  ")[0], ShouldEqual, "中餐厅 第九季")
			So(Generate("Inception")[0], ShouldEqual, "Inception")
		})

		Convey("It is deterministic", func() {
			q := "死神来了：血脉诅咒"
			So(Generate(q), ShouldResemble, Generate(q))
		})

		Convey("It deduplicates case-sensitively in insertion order", func() {
			variants := Generate("中餐厅 第九季")
			seen := map[string]bool{}
			for _, v := range variants {
				So(seen[v], ShouldBeFalse)
				seen[v] = true
			}
		})

		Convey("Full-width colon gets the rewrite ladder", func() {
			variants := Generate("死神来了：血脉诅咒")
			So(variants, ShouldContain, "死神来了 血脉诅咒")
			So(variants, ShouldContain, "死神来了血脉诅咒")
			So(variants, ShouldContain, "死神来了:血脉诅咒")
			So(variants, ShouldContain, "死神来了")
			So(variants, ShouldContain, "血脉诅咒")
		})

		Convey("Spaced titles gain colon and concatenation variants", func() {
			variants := Generate("死神来了 血脉诅咒")
			So(variants, ShouldContain, "死神来了：血脉诅咒")
			So(variants, ShouldContain, "死神来了:血脉诅咒")
			So(variants, ShouldContain, "死神来了血脉诅咒")
		})

		Convey("Ordinal-marker suffixes are concatenated with the main keyword", func() {
			So(Generate("中餐厅 第九季"), ShouldContain, "中餐厅第九季")
		})

		Convey("English stop-words are never a standalone variant", func() {
			variants := Generate("The Gumball Chronicles")
			So(variants, ShouldNotContain, "The")
			So(variants, ShouldNotContain, "the")
		})

		Convey("Short leading tokens are never a standalone variant", func() {
			So(Generate("Up in the Air"), ShouldNotContain, "Up")
		})

		Convey("Other full-width punctuation maps to ASCII", func() {
			variants := Generate("爱，死亡和机器人")
			So(variants, ShouldContain, "爱,死亡和机器人")
			So(variants, ShouldContain, "爱死亡和机器人")
		})

		Convey("Consecutive spaces collapse to one", func() {
			So(Generate("a  b  c"), ShouldContain, "a b c")
		})
	})
}
