package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/papermatch/internal/adapters/cache"
	"github.com/smartystreets/goconvey/convey"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestMemory(t *testing.T) {
	convey.Convey("Given an in-memory cache", t, func() {
		ctx := context.Background()
		clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
		c := cache.NewMemory(cache.WithTTL(time.Minute), cache.WithMaxEntries(2), cache.WithClock(clock.now))

		convey.Convey("When a value is stored", func() {
			buf := []byte("v1")
			convey.So(c.Set(ctx, "a", buf), convey.ShouldBeNil)
			buf[0] = 'x'

			convey.Convey("Then it is returned as stored", func() {
				v, ok, err := c.Get(ctx, "a")
				convey.So(err, convey.ShouldBeNil)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(string(v), convey.ShouldEqual, "v1")
			})

			convey.Convey("Then it expires after the TTL", func() {
				clock.t = clock.t.Add(time.Minute)
				_, ok, _ := c.Get(ctx, "a")
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(c.Len(), convey.ShouldEqual, 0)
			})

			convey.Convey("Then it can be invalidated", func() {
				convey.So(c.Delete(ctx, "a", "missing"), convey.ShouldBeNil)
				_, ok, _ := c.Get(ctx, "a")
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the cache is full", func() {
			_ = c.Set(ctx, "a", []byte("1"))
			_ = c.Set(ctx, "b", []byte("2"))
			_, _, _ = c.Get(ctx, "a")
			_ = c.Set(ctx, "c", []byte("3"))

			convey.Convey("Then the least recently used entry is evicted", func() {
				_, okA, _ := c.Get(ctx, "a")
				_, okB, _ := c.Get(ctx, "b")
				_, okC, _ := c.Get(ctx, "c")
				convey.So(okA, convey.ShouldBeTrue)
				convey.So(okB, convey.ShouldBeFalse)
				convey.So(okC, convey.ShouldBeTrue)
				convey.So(c.Len(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a key is overwritten", func() {
			_ = c.Set(ctx, "a", []byte("1"))
			clock.t = clock.t.Add(50 * time.Second)
			_ = c.Set(ctx, "a", []byte("2"))
			clock.t = clock.t.Add(50 * time.Second)

			convey.Convey("Then the TTL restarts", func() {
				v, ok, _ := c.Get(ctx, "a")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(string(v), convey.ShouldEqual, "2")
			})
		})
	})
}

func TestKeys(t *testing.T) {
	convey.Convey("Given cache key builders", t, func() {
		convey.So(cache.StatsKey("p1"), convey.ShouldEqual, "stats:p1")
		convey.So(cache.ResultsKey("p1"), convey.ShouldEqual, "results:p1")
		convey.So(cache.LeaderboardKey("cs", "cv", 0), convey.ShouldEqual, "leaderboard:2:cs:2:cv:0")
		convey.So(cache.LeaderboardKey("cs", "", 2024), convey.ShouldEqual, "leaderboard:2:cs:0::2024")

		convey.Convey("Then separators inside names do not collide", func() {
			convey.So(cache.LeaderboardKey("a:b", "", 0), convey.ShouldNotEqual, cache.LeaderboardKey("a", "b:", 0))
			convey.So(cache.LeaderboardKey("a", "b", 0), convey.ShouldNotEqual, cache.LeaderboardKey("a:1:b", "", 0))
		})

		convey.Convey("Then years are kept apart", func() {
			convey.So(cache.LeaderboardKey("cs", "cv", 2023), convey.ShouldNotEqual, cache.LeaderboardKey("cs", "cv", 2024))
		})
	})
}
