package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/papermatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		// Point .env lookups at a file that never exists so a developer's local .env cannot leak in.
		_ = os.Setenv("PAPERMATCH_DOTENV", filepath.Join(t.TempDir(), "missing.env"))
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "data/papermatch.db")
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
				convey.So(cfg.DefaultLeaderboardLimit, convey.ShouldEqual, 10)
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 3600)
				convey.So(cfg.TrendEpsilon, convey.ShouldEqual, 0.1)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PAPERMATCH_ADDR", ":8080")
			_ = os.Setenv("PAPERMATCH_DB_PATH", "/tmp/pm.db")
			_ = os.Setenv("PAPERMATCH_ANONYMOUS_FEEDBACK", "true")
			_ = os.Setenv("PAPERMATCH_MAX_COMMENT_LENGTH", "280")
			_ = os.Setenv("PAPERMATCH_TREND_EPSILON", "0.25")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/pm.db")
				convey.So(cfg.AnonymousFeedback, convey.ShouldBeTrue)
				convey.So(cfg.MaxCommentLength, convey.ShouldEqual, 280)
				convey.So(cfg.TrendEpsilon, convey.ShouldEqual, 0.25)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := createTempConfigFile(t, `
addr: ":7070"
max_leaderboard_limit: 50
default_leaderboard_limit: 5
jwt_secret: "s3cret"
`)
			_ = os.Setenv("PAPERMATCH_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load values from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 50)
				convey.So(cfg.DefaultLeaderboardLimit, convey.ShouldEqual, 5)
				convey.So(cfg.JWTSecret, convey.ShouldEqual, "s3cret")
				convey.So(cfg.MaxCommentLength, convey.ShouldEqual, 1000)
			})
		})

		convey.Convey("When both file and env vars are set", func() {
			path := createTempConfigFile(t, "addr: \":7070\"\ncache_size: 42\n")
			_ = os.Setenv("PAPERMATCH_CONFIG", path)
			_ = os.Setenv("PAPERMATCH_ADDR", ":6060")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars should take precedence", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.CacheSize, convey.ShouldEqual, 42)
			})
		})

		convey.Convey("When a .env file is present", func() {
			dotenv := filepath.Join(t.TempDir(), ".env")
			convey.So(os.WriteFile(dotenv, []byte("PAPERMATCH_REDIS_ADDR=localhost:6379\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("PAPERMATCH_DOTENV", dotenv)

			cfg, err := config.Load(ctx)

			convey.Convey("Then its variables are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			path := createTempConfigFile(t, "addr: [unterminated\n")
			_ = os.Setenv("PAPERMATCH_CONFIG", path)

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("PAPERMATCH_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the resulting config is invalid", func() {
			_ = os.Setenv("PAPERMATCH_MAX_LEADERBOARD_LIMIT", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then it should fail validation", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "PAPERMATCH_") {
			_ = os.Unsetenv(name)
		}
	}
}
