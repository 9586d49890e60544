package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/time/rate"

	"github.com/okian/papermatch/internal/adapters/auth"
)

func TestIdentityLimiter(t *testing.T) {
	Convey("Given a limiter with burst 2 and a frozen clock", t, func() {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		l := newIdentityLimiter(rate.Limit(1), 2)
		l.now = func() time.Time { return now }

		Convey("Each caller gets its own bucket", func() {
			So(l.allow("a"), ShouldBeTrue)
			So(l.allow("a"), ShouldBeTrue)
			So(l.allow("a"), ShouldBeFalse)
			So(l.allow("b"), ShouldBeTrue)
		})

		Convey("Tokens refill over time", func() {
			So(l.allow("a"), ShouldBeTrue)
			So(l.allow("a"), ShouldBeTrue)
			So(l.allow("a"), ShouldBeFalse)
			now = now.Add(time.Second)
			So(l.allow("a"), ShouldBeTrue)
		})

		Convey("Idle buckets are pruned", func() {
			l.allow("old")
			now = now.Add(limiterIdleTTL + time.Second)
			l.allow("fresh")
			l.prune(now)
			_, oldKept := l.entries["old"]
			_, freshKept := l.entries["fresh"]
			So(oldKept, ShouldBeFalse)
			So(freshKept, ShouldBeTrue)
		})
	})
}

func TestCallerKey(t *testing.T) {
	Convey("Given a request", t, func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"

		Convey("Anonymous callers are keyed by address", func() {
			So(callerKey(req), ShouldEqual, "ip:10.0.0.1")
		})

		Convey("Identified callers are keyed by user", func() {
			req = req.WithContext(auth.WithUser(req.Context(), "alice"))
			So(callerKey(req), ShouldEqual, "user:alice")
		})
	})
}

func TestGetErrorType(t *testing.T) {
	Convey("Error types follow the status code", t, func() {
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(429), ShouldEqual, "rate_limit")
		So(getErrorType(404), ShouldEqual, "not_found")
		So(getErrorType(401), ShouldEqual, "unauthorized")
		So(getErrorType(409), ShouldEqual, "conflict")
		So(getErrorType(422), ShouldEqual, "client_error")
		So(getErrorSeverity(503), ShouldEqual, "high")
		So(getErrorSeverity(400), ShouldEqual, "medium")
	})
}
