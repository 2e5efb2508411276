package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/rally/internal/adapters/ingest"
	"github.com/okian/rally/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func table(s string) *ingest.Table {
	t, err := ingest.Decode(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return t
}

func sampleTables() *ingest.Tables {
	return &ingest.Tables{
		Rankings: table("Name,Country,2020-01,2020-02\n" +
			"XU Xin,CHN,2,3\n" +
			"Newcomer,FRA,,\n" +
			"FAN Zhendong,CHN,1,1\n" +
			"HARIMOTO Tomokazu,JPN,4,3\n"),
		Abilities: table("Name,Serving,Defense,Speed,Experience,Power,Skill\n" +
			"FAN Zhendong,5,4,5,4,5,5\n"),
		Records: table("Name,2019_win,2019_loss,2020_win,2020_loss\n" +
			"FAN Zhendong,30,3,12,2\n"),
	}
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a loaded store", t, func() {
		ctx := context.Background()
		s := NewMemoryStore(ctx, WithRecordYears([]string{"2019", "2020"}))
		defer s.Close()
		s.Load(ctx, sampleTables())

		Convey("Then players are ordered by latest rank, unranked last", func() {
			ps := s.Players(ctx)
			So(len(ps), ShouldEqual, 4)
			So(ps[0].Name, ShouldEqual, "FAN Zhendong")
			So(ps[1].Name, ShouldEqual, "HARIMOTO Tomokazu")
			So(ps[2].Name, ShouldEqual, "XU Xin")
			So(ps[3].Name, ShouldEqual, "Newcomer")
			So(ps[3].Rank, ShouldEqual, 0)
			So(ps[3].Position, ShouldEqual, 4)
			So(s.Count(ctx), ShouldEqual, 4)
		})

		Convey("Then a player is found by name", func() {
			p, err := s.Player(ctx, "XU Xin")
			So(err, ShouldBeNil)
			So(p.Country, ShouldEqual, "CHN")
			So(p.Rank, ShouldEqual, 3)
		})

		Convey("Then unknown players are not found", func() {
			_, err := s.Player(ctx, "nobody")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Then chart data attaches by name", func() {
			So(len(s.Trend(ctx, "FAN Zhendong")), ShouldEqual, 2)
			So(s.Ability(ctx, "FAN Zhendong"), ShouldResemble, model.AbilityVector{5, 4, 5, 4, 5, 5})
			So(s.Record(ctx, "FAN Zhendong"), ShouldResemble, []model.RecordPoint{
				{Year: "2019", Wins: 30, Losses: 3},
				{Year: "2020", Wins: 12, Losses: 2},
			})
		})

		Convey("Then players missing from a table degrade to empty data", func() {
			So(s.Trend(ctx, "Newcomer"), ShouldBeEmpty)
			So(s.Ability(ctx, "XU Xin").IsZero(), ShouldBeTrue)
			So(s.Record(ctx, "XU Xin"), ShouldBeEmpty)
			So(s.Trend(ctx, "nobody"), ShouldBeEmpty)
		})

		Convey("Then returned slices do not alias the snapshot", func() {
			tr := s.Trend(ctx, "FAN Zhendong")
			tr[0].Rank = 99
			So(s.Trend(ctx, "FAN Zhendong")[0].Rank, ShouldEqual, 1)
		})

		Convey("When an empty load follows", func() {
			s.Load(ctx, nil)
			So(s.Count(ctx), ShouldEqual, 0)
			So(s.Snapshot().ByName, ShouldBeEmpty)
		})
	})
}

func TestReload(t *testing.T) {
	Convey("Given a store reading from files", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		rankings := filepath.Join(dir, "rankings.csv")
		So(os.WriteFile(rankings, []byte("Name,Country,2020-01\nA,X,1\n"), 0o600), ShouldBeNil)

		s := NewMemoryStore(ctx, WithSources(ingest.Sources{Rankings: rankings}))
		defer s.Close()

		Convey("Reload picks up the tables", func() {
			So(s.Reload(ctx), ShouldBeNil)
			So(s.Count(ctx), ShouldEqual, 1)

			Convey("and a failed reload keeps the previous roster", func() {
				So(os.WriteFile(rankings, []byte("Name\n\"broken\n"), 0o600), ShouldBeNil)
				So(errors.Is(s.Reload(ctx), ingest.ErrReadTable), ShouldBeTrue)
				So(s.Count(ctx), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a store without sources", t, func() {
		s := NewMemoryStore(context.Background())
		So(s.Reload(context.Background()), ShouldEqual, ErrNoSource)
		So(s.Close(), ShouldBeNil)
		So(s.Close(), ShouldBeNil)
	})

	Convey("Given a periodically reloading store", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		rankings := filepath.Join(dir, "rankings.csv")
		So(os.WriteFile(rankings, []byte("Name,Country,2020-01\nA,X,1\nB,Y,2\n"), 0o600), ShouldBeNil)

		s := NewMemoryStore(ctx, WithSources(ingest.Sources{Rankings: rankings}), WithReloadInterval(5*time.Millisecond))
		defer s.Close()

		deadline := time.Now().Add(2 * time.Second)
		for s.Count(ctx) == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		So(s.Count(ctx), ShouldEqual, 2)
	})
}

func TestConcurrentReads(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(ctx)
	defer s.Close()
	s.Load(ctx, sampleTables())

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for range 100 {
				if i%2 == 0 {
					s.Load(ctx, sampleTables())
					continue
				}
				if n := len(s.Players(ctx)); n != 4 {
					t.Errorf("expected full roster, got %d players", n)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
