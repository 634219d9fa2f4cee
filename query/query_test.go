package query

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/vsel-cli/vsel/filesystem"
	"github.com/vsel-cli/vsel/key"
)

func TestQueryHistory(t *testing.T) {
	Convey("Title history", t, func() {
		filesystem.SetMemMapFs()
		t.Setenv("VSEL_CONFIG_PATH", "/config")
		viper.Set(key.SearchShowQuerySuggestions, true)
		clear(suggestionCache)

		Convey("Remembered titles are suggested by popularity", func() {
			So(Remember("中餐厅 第九季", 1), ShouldBeNil)
			So(Remember("中餐厅 第八季", 1), ShouldBeNil)
			So(Remember("中餐厅 第九季", 1), ShouldBeNil)

			suggestions := SuggestMany("中餐厅")
			So(suggestions, ShouldHaveLength, 2)
			So(suggestions[0], ShouldEqual, "中餐厅 第九季")
		})

		Convey("Suggest returns the top match only", func() {
			So(Remember("breaking waves", 3), ShouldBeNil)
			So(Suggest("breaking").MustGet(), ShouldEqual, "breaking waves")
			So(Suggest("zzzz").IsAbsent(), ShouldBeTrue)
		})

		Convey("Blank titles are never recorded", func() {
			So(Remember("   ", 1), ShouldBeNil)
			So(SuggestMany(""), ShouldNotContain, "")
		})

		Convey("Forgotten titles stop being suggested", func() {
			So(Remember("forget me", 1), ShouldBeNil)
			So(Forget("forget me"), ShouldBeNil)
			So(SuggestMany("forget"), ShouldBeEmpty)
		})

		Convey("Suggestions are disabled by configuration", func() {
			viper.Set(key.SearchShowQuerySuggestions, false)
			So(Remember("hidden title", 1), ShouldBeNil)
			So(SuggestMany("hidden"), ShouldBeEmpty)
		})
	})
}
