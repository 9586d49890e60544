package app

import (
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/papermatch/internal/adapters/cache"
)

func TestReadThroughFill(t *testing.T) {
	convey.Convey("Given a service over an in-memory cache", t, func() {
		ctx := context.Background()
		svc := New(nil, cache.NewMemory())
		key := cache.StatsKey("p1")

		convey.Convey("When a write invalidates the key while a read is loading", func() {
			v, err := readThrough(ctx, svc, cacheStats, key, func() (int, error) {
				svc.invalidate(ctx, cacheStats, key)
				return 1, nil
			})

			convey.Convey("Then the loaded value is returned but not cached", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(v, convey.ShouldEqual, 1)
				_, ok, err := svc.cache.Get(ctx, key)
				convey.So(err, convey.ShouldBeNil)
				convey.So(ok, convey.ShouldBeFalse)
			})

			convey.Convey("Then the next read fills the cache", func() {
				v, err := readThrough(ctx, svc, cacheStats, key, func() (int, error) { return 2, nil })
				convey.So(err, convey.ShouldBeNil)
				convey.So(v, convey.ShouldEqual, 2)
				_, ok, _ := svc.cache.Get(ctx, key)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an unrelated invalidation happened before the load", func() {
			svc.invalidate(ctx, cacheStats, cache.StatsKey("other"))
			_, err := readThrough(ctx, svc, cacheStats, key, func() (int, error) { return 3, nil })

			convey.Convey("Then the fill is stored", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok, _ := svc.cache.Get(ctx, key)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})
	})
}
