package ranking_test

import (
	"errors"
	"testing"

	"github.com/okian/papermatch/internal/domain/model"
	"github.com/okian/papermatch/internal/domain/ranking"
	"github.com/smartystreets/goconvey/convey"
)

func standing(id string, points int, winRate float64) model.Standing {
	return model.Standing{ID: id, Title: "Paper " + id, Stats: model.PaperStats{Points: points, WinRate: winRate}}
}

func ids(entries []model.LeaderboardEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestRank(t *testing.T) {
	convey.Convey("Given a set of standings", t, func() {
		in := []model.Standing{
			standing("c", 6, 50),
			standing("a", 9, 75),
			standing("b", 6, 66.7),
			standing("e", 6, 50),
			standing("d", 1, 0),
		}
		original := append([]model.Standing(nil), in...)

		convey.Convey("When ranking without a limit", func() {
			out, err := ranking.Rank(in, 0)

			convey.Convey("Then points, win rate and id order the entries", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ids(out), convey.ShouldResemble, []string{"a", "b", "c", "e", "d"})
				convey.So(out[0].Rank, convey.ShouldEqual, 1)
				convey.So(out[4].Rank, convey.ShouldEqual, 5)
				convey.So(out[1].Title, convey.ShouldEqual, "Paper b")
				convey.So(out[1].WinRate, convey.ShouldEqual, 66.7)
			})

			convey.Convey("Then the input is untouched", func() {
				convey.So(in, convey.ShouldResemble, original)
			})
		})

		convey.Convey("When ranking repeatedly", func() {
			first, _ := ranking.Rank(in, 0)
			for range 10 {
				again, _ := ranking.Rank(in, 0)
				convey.So(again, convey.ShouldResemble, first)
			}
		})

		convey.Convey("When a limit is given", func() {
			out, err := ranking.Rank(in, 2)

			convey.So(err, convey.ShouldBeNil)
			convey.So(ids(out), convey.ShouldResemble, []string{"a", "b"})
		})

		convey.Convey("When the limit exceeds the set", func() {
			out, _ := ranking.Rank(in, 50)

			convey.So(len(out), convey.ShouldEqual, 5)
		})

		convey.Convey("When an id is duplicated", func() {
			_, err := ranking.Rank(append(in, standing("a", 0, 0)), 0)

			convey.So(errors.Is(err, model.ErrAggregation), convey.ShouldBeTrue)
		})

		convey.Convey("When an id is empty", func() {
			_, err := ranking.Rank([]model.Standing{standing("", 1, 1)}, 0)

			convey.So(errors.Is(err, model.ErrAggregation), convey.ShouldBeTrue)
		})

		convey.Convey("When there are no standings", func() {
			out, err := ranking.Rank(nil, 10)

			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldBeEmpty)
		})
	})
}
