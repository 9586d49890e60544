package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry and custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.feedbackApplied.WithLabelValues("like", "created").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, mf := range families {
					if strings.HasPrefix(mf.GetName(), "test_unit_feedback_applied_total") {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When options receive empty values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "papermatch")
				So(manager.subsystem, ShouldEqual, "core")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording feedback transitions", func() {
			before := testutil.ToFloat64(globalManager.feedbackApplied.WithLabelValues("dislike", "switched"))
			RecordFeedbackApplied("dislike", "switched")

			Convey("Then the labelled counter increases", func() {
				after := testutil.ToFloat64(globalManager.feedbackApplied.WithLabelValues("dislike", "switched"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording leaderboard builds", func() {
			RecordLeaderboardBuild(3.5, 42)

			Convey("Then the size gauge reflects the last build", func() {
				So(testutil.ToFloat64(globalManager.leaderboardSize), ShouldEqual, 42)
			})
		})

		Convey("When recording reconcile drift", func() {
			before := testutil.ToFloat64(globalManager.reconcileDrift)
			RecordReconcileDrift(3)
			So(testutil.ToFloat64(globalManager.reconcileDrift)-before, ShouldEqual, 3)
		})

		Convey("When recording the remaining metrics", func() {
			So(func() {
				RecordFeedbackRetry()
				RecordFeedbackConflict()
				RecordStatsComputation(1.2)
				RecordMatchRecorded()
				RecordAggregationFailure()
				RecordCacheHit("stats")
				RecordCacheMiss("stats")
				RecordCacheInvalidation("stats", 2)
				RecordStoreLatency("upsert_like", 0.4)
				RecordStoreError("upsert_like")
				RecordHTTPRequest("feedback", "POST", "200")
				RecordHTTPRequestDuration("feedback", "POST", "200", 5)
				RecordRateLimited("feedback")
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("feedback", "POST", "client_error")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then GetRegistry exposes the custom registry", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
