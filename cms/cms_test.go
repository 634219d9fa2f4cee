package cms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"

	"github.com/vsel-cli/vsel/filesystem"
	"github.com/vsel-cli/vsel/network"
	"github.com/vsel-cli/vsel/source"
	"github.com/vsel-cli/vsel/where"
)

func testProvider(sites ...Site) *Provider {
	return &Provider{
		sites:   Enabled(sites),
		limiter: network.NewRateLimiter(clockwork.NewRealClock(), 0, 0),
		client:  network.Client,
		timeout: 5 * time.Second,
	}
}

func videolistServer(items ...map[string]any) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{"code": 1, "list": items}
		if r.URL.Query().Get("wd") == "" && r.URL.Query().Get("ids") == "" {
			payload["list"] = nil
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func TestParsePlayURL(t *testing.T) {
	Convey("parsePlayURL", t, func() {
		Convey("Labels are stripped and order preserved", func() {
			urls := parsePlayURL("第1集$http://cdn/1.m3u8#第2集$http://cdn/2.m3u8")
			So(urls, ShouldResemble, []string{"http://cdn/1.m3u8", "http://cdn/2.m3u8"})
		})

		Convey("The HLS play source wins over an mp4 mirror", func() {
			urls := parsePlayURL("1$http://cdn/1.mp4$$$1$http://cdn/1.m3u8#2$http://cdn/2.m3u8")
			So(urls, ShouldResemble, []string{"http://cdn/1.m3u8", "http://cdn/2.m3u8"})
		})

		Convey("Without HLS the first non-empty source is kept", func() {
			urls := parsePlayURL("1$http://cdn/1.mp4")
			So(urls, ShouldResemble, []string{"http://cdn/1.mp4"})
		})

		Convey("Label-only and blank entries are dropped", func() {
			So(parsePlayURL("正片$#花絮$"), ShouldBeEmpty)
			So(parsePlayURL(""), ShouldBeEmpty)
		})
	})
}

func TestParseVideolist(t *testing.T) {
	Convey("parseVideolist", t, func() {
		site := &Site{Key: "ok", Name: "OK资源"}

		Convey("Numeric and string identifiers both normalize", func() {
			body := []byte(`{"code":1,"list":[
				{"vod_id":42,"vod_name":"中餐厅 第九季","vod_year":2025,
				 "vod_play_url":"1$http://cdn/1.m3u8#2$http://cdn/2.m3u8"},
				{"vod_id":"77","vod_name":"Foo","vod_year":"2020",
				 "vod_play_url":"1$http://cdn/f.m3u8","vod_douban_id":0}
			]}`)

			candidates, err := parseVideolist(site, body)

			So(err, ShouldBeNil)
			So(candidates, ShouldHaveLength, 2)
			So(candidates[0].ID, ShouldEqual, "42")
			So(candidates[0].Year, ShouldEqual, "2025")
			So(candidates[0].Source, ShouldEqual, "ok")
			So(candidates[0].SourceName, ShouldEqual, "OK资源")
			So(candidates[1].DoubanID.IsAbsent(), ShouldBeTrue)
		})

		Convey("Entries without a title are discarded", func() {
			body := []byte(`{"code":1,"list":[{"vod_id":1,"vod_name":""}]}`)
			candidates, err := parseVideolist(site, body)
			So(err, ShouldBeNil)
			So(candidates, ShouldBeEmpty)
		})

		Convey("Non-JSON bodies error", func() {
			_, err := parseVideolist(site, []byte("<html>blocked</html>"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestProviderSearch(t *testing.T) {
	Convey("Provider search", t, func() {
		first := videolistServer(map[string]any{
			"vod_id": 1, "vod_name": "Foo", "vod_play_url": "1$http://a/1.m3u8",
		})
		defer first.Close()
		second := videolistServer(map[string]any{
			"vod_id": 2, "vod_name": "Foo", "vod_play_url": "1$http://b/1.m3u8",
		})
		defer second.Close()

		Convey("Results merge in registry order", func() {
			p := testProvider(
				Site{Key: "a", Name: "A", API: first.URL},
				Site{Key: "b", Name: "B", API: second.URL},
			)

			candidates, err := p.Search(context.Background(), "Foo")

			So(err, ShouldBeNil)
			So(candidates, ShouldHaveLength, 2)
			So(candidates[0].Source, ShouldEqual, "a")
			So(candidates[1].Source, ShouldEqual, "b")
		})

		Convey("A failing site contributes nothing", func() {
			dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer dead.Close()

			p := testProvider(
				Site{Key: "dead", Name: "Dead", API: dead.URL},
				Site{Key: "b", Name: "B", API: second.URL},
			)

			candidates, err := p.Search(context.Background(), "Foo")

			So(err, ShouldBeNil)
			So(candidates, ShouldHaveLength, 1)
			So(candidates[0].Source, ShouldEqual, "b")
		})

		Convey("Disabled sites are never queried", func() {
			p := testProvider(Site{Key: "a", Name: "A", API: first.URL, Disabled: true})

			candidates, err := p.Search(context.Background(), "Foo")

			So(err, ShouldBeNil)
			So(candidates, ShouldBeEmpty)
		})
	})
}

func TestProviderFetchDetail(t *testing.T) {
	Convey("Provider detail fetch", t, func() {
		server := videolistServer(map[string]any{
			"vod_id": 7, "vod_name": "Foo", "vod_play_url": "1$http://a/1.m3u8",
		})
		defer server.Close()

		p := testProvider(Site{Key: "ok", Name: "OK", API: server.URL})

		Convey("Known identifiers resolve", func() {
			c, err := p.FetchDetail(context.Background(), "ok", "7")
			So(err, ShouldBeNil)
			So(c.ID, ShouldEqual, "7")
			So(c.Source, ShouldEqual, "ok")
		})

		Convey("Unknown sites are not found", func() {
			_, err := p.FetchDetail(context.Background(), "nope", "7")
			So(errors.Is(err, source.ErrNotFound), ShouldBeTrue)
		})

		Convey("Empty responses are not found", func() {
			empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"code":1,"list":[]}`))
			}))
			defer empty.Close()

			miss := testProvider(Site{Key: "ok", Name: "OK", API: empty.URL})
			_, err := miss.FetchDetail(context.Background(), "ok", "404")
			So(errors.Is(err, source.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestSiteRegistry(t *testing.T) {
	Convey("Site registry", t, func() {
		filesystem.SetMemMapFs()
		t.Setenv(where.EnvConfigPath, "/config")

		Convey("First load seeds the shipped defaults", func() {
			sites, err := LoadSites()
			So(err, ShouldBeNil)
			So(sites, ShouldResemble, defaultSites)

			exists, _ := afero.Exists(filesystem.API(), where.Sites())
			So(exists, ShouldBeTrue)
		})

		Convey("Saved registries round-trip, dropping invalid entries", func() {
			So(SaveSites([]Site{
				{Key: "ok", Name: "OK", API: "https://ok.example/api.php/provide/vod"},
				{Name: "no key", API: "https://bad.example"},
				{Key: "ftp", Name: "bad scheme", API: "ftp://x"},
			}), ShouldBeNil)

			sites, err := LoadSites()
			So(err, ShouldBeNil)
			So(sites, ShouldHaveLength, 1)
			So(sites[0].Key, ShouldEqual, "ok")
		})
	})
}
