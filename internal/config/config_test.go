package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/rally/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have the chart defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.RankFloor, convey.ShouldEqual, 20)
			convey.So(cfg.AbilityMax, convey.ShouldEqual, 5)
			convey.So(cfg.AbilityLevels, convey.ShouldEqual, 5)
			convey.So(cfg.TrendPathMS, convey.ShouldEqual, 2000)
			convey.So(cfg.TrendPointMS, convey.ShouldEqual, 800)
			convey.So(cfg.RadarMS, convey.ShouldEqual, 1000)
			convey.So(cfg.BarMS, convey.ShouldEqual, 800)
			convey.So(cfg.AspectRatio, convey.ShouldEqual, 0.6)
			convey.So(cfg.MaxPanels, convey.ShouldEqual, 5)
			convey.So(cfg.RecordYears, convey.ShouldResemble, []string{"2017", "2018", "2019", "2020"})
			convey.So(cfg.DefaultPlayers, convey.ShouldResemble, []string{"FAN Zhendong", "XU Xin"})
		})

		convey.Convey("Then it should validate", func() {
			convey.So(cfg.Validate(context.Background()), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configurations", t, func() {
		ctx := context.Background()
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = "" },
			"zero rank floor":   func(c *config.Config) { c.RankFloor = 0 },
			"zero ability max":  func(c *config.Config) { c.AbilityMax = 0 },
			"zero levels":       func(c *config.Config) { c.AbilityLevels = 0 },
			"negative duration": func(c *config.Config) { c.BarMS = -1 },
			"point beyond path": func(c *config.Config) { c.TrendPointMS = 3000 },
			"zero aspect":       func(c *config.Config) { c.AspectRatio = 0 },
			"width over max":    func(c *config.Config) { c.DefaultWidth = 5000 },
			"too few panels":    func(c *config.Config) { c.MaxPanels = 1 },
			"no record years":   func(c *config.Config) { c.RecordYears = nil },
			"negative reload":   func(c *config.Config) { c.ReloadSeconds = -1 },
		}
		for name, mutate := range cases {
			cfg := config.New(ctx)
			mutate(cfg)
			err := cfg.Validate(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			_ = name
		}
	})
}

func TestDuration(t *testing.T) {
	if got := config.Duration(800); got != 800*time.Millisecond {
		t.Fatalf("expected 800ms, got %v", got)
	}
}
