package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/rally/internal/adapters/http/api"
	service "github.com/okian/rally/internal/app"
	"github.com/okian/rally/internal/config"
	"github.com/okian/rally/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newServer(t *testing.T) (*httptest.Server, *service.Service) {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}
	cfg := config.New(context.Background())
	cfg.MaxPanels = 3
	cfg.RankingsCSV = write("rankings.csv", "Name,Country,2020-01,2020-02\n"+
		"FAN Zhendong,CHN,1,1\nXU Xin,CHN,2,3\nMA Long,CHN,3,2\n")
	cfg.AbilitiesCSV = write("abilities.csv", "Name,Serving,Defense,Speed,Experience,Power,Skill\n"+
		"FAN Zhendong,5,4,5,4,5,5\n")
	cfg.RecordsCSV = write("records.csv", "Name,2019_win,2019_loss\nFAN Zhendong,30,3\n")

	svc := service.New(cfg)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		ts.Close()
		svc.Stop(context.Background())
	})
	return ts, svc
}

func do(method, url, body string) (*http.Response, []byte) {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, url, nil)
	} else {
		req, _ = http.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	So(err, ShouldBeNil)
	defer res.Body.Close()
	var buf strings.Builder
	_, _ = io.Copy(&buf, res.Body)
	return res, []byte(buf.String())
}

func TestPlayersEndpoints(t *testing.T) {
	Convey("Given a running API", t, func() {
		ts, _ := newServer(t)

		Convey("GET /players lists the roster in rank order", func() {
			res, body := do(http.MethodGet, ts.URL+"/players", "")
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			var players []map[string]any
			So(json.Unmarshal(body, &players), ShouldBeNil)
			So(len(players), ShouldEqual, 3)
			So(players[0]["name"], ShouldEqual, "FAN Zhendong")
		})

		Convey("GET /players/{id} returns the combined data", func() {
			res, body := do(http.MethodGet, ts.URL+"/players/FAN%20Zhendong", "")
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, `"rank":1`)
		})

		Convey("Unknown players are 404", func() {
			res, body := do(http.MethodGet, ts.URL+"/players/nobody", "")
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)
			So(string(body), ShouldContainSubstring, `"code":"not_found"`)
		})

		Convey("Charts render as SVG by default", func() {
			res, body := do(http.MethodGet, ts.URL+"/players/FAN%20Zhendong/charts/record?width=500", "")
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			So(res.Header.Get("Content-Type"), ShouldEqual, "image/svg+xml")
			So(string(body), ShouldContainSubstring, `width="500" height="300"`)
			So(string(body), ShouldContainSubstring, "<animate")
		})

		Convey("Charts sample a frame when at is given", func() {
			res, body := do(http.MethodGet, ts.URL+"/players/FAN%20Zhendong/charts/trend?at=500", "")
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldNotContainSubstring, "<animate")
		})

		Convey("Charts render as PNG on request", func() {
			res, body := do(http.MethodGet, ts.URL+"/players/FAN%20Zhendong/charts/ability?width=300&format=png", "")
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			So(res.Header.Get("Content-Type"), ShouldEqual, "image/png")
			So(string(body[:4]), ShouldEqual, "\x89PNG")
		})

		Convey("Bad chart queries are rejected", func() {
			res, _ := do(http.MethodGet, ts.URL+"/players/FAN%20Zhendong/charts/trend?width=wide", "")
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
			res, _ = do(http.MethodGet, ts.URL+"/players/FAN%20Zhendong/charts/trend?at=-1", "")
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
			res, _ = do(http.MethodGet, ts.URL+"/players/FAN%20Zhendong/charts/trend?width=-1", "")
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
			res, _ = do(http.MethodGet, ts.URL+"/players/FAN%20Zhendong/charts/trend?width=NaN", "")
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
			res, _ = do(http.MethodGet, ts.URL+"/players/FAN%20Zhendong/charts/trend?format=gif", "")
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
			res, _ = do(http.MethodGet, ts.URL+"/players/FAN%20Zhendong/charts/pie", "")
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPanelsEndpoints(t *testing.T) {
	Convey("Given a running API", t, func() {
		ts, svc := newServer(t)
		pinned := svc.Panels()[0].ID

		Convey("GET /panels lists the pinned panels", func() {
			res, body := do(http.MethodGet, ts.URL+"/panels", "")
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			var panels []service.PanelInfo
			So(json.Unmarshal(body, &panels), ShouldBeNil)
			So(len(panels), ShouldEqual, 2)
			So(panels[0].Pinned, ShouldBeTrue)
		})

		Convey("POST /panels adds a panel and DELETE removes it", func() {
			res, body := do(http.MethodPost, ts.URL+"/panels", `{"player":"MA Long"}`)
			So(res.StatusCode, ShouldEqual, http.StatusCreated)
			var p service.PanelInfo
			So(json.Unmarshal(body, &p), ShouldBeNil)
			So(p.Player, ShouldEqual, "MA Long")

			res, _ = do(http.MethodPost, ts.URL+"/panels", "")
			So(res.StatusCode, ShouldEqual, http.StatusConflict)

			res, _ = do(http.MethodDelete, ts.URL+"/panels/"+p.ID, "")
			So(res.StatusCode, ShouldEqual, http.StatusNoContent)
			res, _ = do(http.MethodGet, ts.URL+"/panels/"+p.ID, "")
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("Pinned panels cannot be deleted", func() {
			res, _ := do(http.MethodDelete, ts.URL+"/panels/"+pinned, "")
			So(res.StatusCode, ShouldEqual, http.StatusConflict)
		})

		Convey("Unknown fields are rejected", func() {
			res, _ := do(http.MethodPost, ts.URL+"/panels", `{"who":"MA Long"}`)
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("PUT /panels/{id} selects a player", func() {
			res, body := do(http.MethodPut, ts.URL+"/panels/"+pinned, `{"player":"MA Long"}`)
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, `"player":"MA Long"`)

			res, _ = do(http.MethodPut, ts.URL+"/panels/"+pinned, `{}`)
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Resizing is accepted and the chart follows", func() {
			res, body := do(http.MethodPost, ts.URL+"/panels/"+pinned+"/resize", `{"width":400}`)
			So(res.StatusCode, ShouldEqual, http.StatusAccepted)
			So(string(body), ShouldContainSubstring, `"accepted"`)

			deadline := time.Now().Add(3 * time.Second)
			var doc string
			for time.Now().Before(deadline) {
				res, body := do(http.MethodGet, ts.URL+"/panels/"+pinned+"/charts/trend", "")
				doc = string(body)
				if res.StatusCode == http.StatusOK && strings.Contains(doc, `width="400"`) {
					So(res.Header.Get("X-Commit-Version"), ShouldNotEqual, "0")
					break
				}
				time.Sleep(10 * time.Millisecond)
			}
			So(doc, ShouldContainSubstring, `width="400" height="240"`)

			res, _ = do(http.MethodPost, ts.URL+"/panels/"+pinned+"/resize", `{}`)
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
			res, _ = do(http.MethodPost, ts.URL+"/panels/"+pinned+"/resize", `{"width":-3}`)
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Pointer samples outside the chart leave the tooltip hidden", func() {
			res, body := do(http.MethodPost, ts.URL+"/panels/"+pinned+"/charts/record/pointer", `{"x":1,"y":1,"inside":false}`)
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			var out struct {
				Event   string `json:"event"`
				Tooltip struct {
					Visible bool `json:"visible"`
				} `json:"tooltip"`
			}
			So(json.Unmarshal(body, &out), ShouldBeNil)
			So(out.Tooltip.Visible, ShouldBeFalse)

			res, _ = do(http.MethodPost, ts.URL+"/panels/"+pinned+"/charts/pie/pointer", `{}`)
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given a running API", t, func() {
		ts, _ := newServer(t)

		Convey("GET /healthz acks JSON clients", func() {
			res, body := do(http.MethodGet, ts.URL+"/healthz", "")
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("GET /healthz serves metrics to scrapers", func() {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
			req.Header.Set("Accept", "text/plain")
			res, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer res.Body.Close()
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			So(res.Header.Get("Content-Type"), ShouldStartWith, "text/plain")
		})

		Convey("GET /stats reports the service", func() {
			res, body := do(http.MethodGet, ts.URL+"/stats", "")
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, `"panels":2`)
		})

		Convey("GET /dashboard serves the page", func() {
			res, body := do(http.MethodGet, ts.URL+"/dashboard", "")
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, "ResizeObserver")
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given error statuses", t, func() {
		cases := map[int][2]string{
			http.StatusBadRequest:          {"client_error", "medium"},
			http.StatusNotFound:            {"not_found", "low"},
			http.StatusConflict:            {"conflict", "low"},
			http.StatusInternalServerError: {"server_error", "high"},
			http.StatusServiceUnavailable:  {"unavailable", "high"},
		}
		for status, want := range cases {
			kind, severity := api.ClassifyStatus(status)
			So(kind, ShouldEqual, want[0])
			So(severity, ShouldEqual, want[1])
		}
	})
}
