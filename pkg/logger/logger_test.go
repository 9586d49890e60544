package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	convey.Convey("Given the global logger", t, func() {
		convey.Convey("When initialized with defaults", func() {
			err := Init()

			convey.Convey("Then Get returns a usable logger", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(Get(), convey.ShouldNotBeNil)
				convey.So(Sync(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			convey.Convey("Then it should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	convey.Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		convey.So(Init(WithFormat("json"), WithWriter(&buf)), convey.ShouldBeNil)

		convey.Convey("When logging with fields through a named logger", func() {
			Named("feedback").Info(context.Background(), "applied",
				String("target", "m-1"),
				Bool("anonymous", false),
				Duration("took", 2*time.Millisecond),
				Error(errors.New("boom")),
			)

			convey.Convey("Then the record carries all fields", func() {
				var rec map[string]any
				convey.So(json.Unmarshal(buf.Bytes(), &rec), convey.ShouldBeNil)
				convey.So(rec["msg"], convey.ShouldEqual, "applied")
				convey.So(rec["component"], convey.ShouldEqual, "feedback")
				convey.So(rec["target"], convey.ShouldEqual, "m-1")
				convey.So(rec["anonymous"], convey.ShouldEqual, false)
				convey.So(rec["source"], convey.ShouldContainSubstring, "logger_test.go")
			})
		})

		convey.Convey("When the level filters out debug", func() {
			convey.So(SetLevelString("warn"), convey.ShouldBeNil)
			Get().Debug(context.Background(), "hidden")
			Get().Info(context.Background(), "hidden too")

			convey.Convey("Then nothing is written", func() {
				convey.So(buf.Len(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	convey.Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "info", "", "warn", "warning", "ERROR"} {
			convey.So(SetLevelString(lvl), convey.ShouldBeNil)
		}
		convey.So(SetLevelString("loud"), convey.ShouldNotBeNil)
	})
}

func TestNop(t *testing.T) {
	convey.Convey("Given a nop logger", t, func() {
		l := Nop()
		convey.So(func() { l.Named("x").Warn(context.Background(), "quiet") }, convey.ShouldNotPanic)
	})
}
