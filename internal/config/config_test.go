package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/papermatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewDefaults(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New()

		convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
		convey.So(cfg.MaxCommentLength, convey.ShouldEqual, 1000)
		convey.So(cfg.AnonymousFeedback, convey.ShouldBeFalse)
		convey.So(cfg.CacheTTL(), convey.ShouldEqual, time.Hour)
		convey.So(cfg.BusyTimeout(), convey.ShouldEqual, 5*time.Second)
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given configs with a single bad field", t, func() {
		cases := map[string]func(*config.Config){
			"empty db path":          func(c *config.Config) { c.DBPath = "" },
			"zero leaderboard cap":   func(c *config.Config) { c.MaxLeaderboardLimit = 0 },
			"default above cap":      func(c *config.Config) { c.DefaultLeaderboardLimit = c.MaxLeaderboardLimit + 1 },
			"zero comment length":    func(c *config.Config) { c.MaxCommentLength = 0 },
			"zero page size":         func(c *config.Config) { c.MaxPageSize = 0 },
			"negative cache ttl":     func(c *config.Config) { c.CacheTTLSeconds = -1 },
			"negative rate":          func(c *config.Config) { c.FeedbackRatePerSec = -1 },
			"negative trend epsilon": func(c *config.Config) { c.TrendEpsilon = -0.5 },
		}

		for name, mutate := range cases {
			convey.Convey("Then "+name+" is rejected", func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
