package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/papermatch/internal/adapters/auth"
	"github.com/okian/papermatch/internal/domain/model"
)

const matchFile = `matches:
  - id: p1
    title: Paper One
    match_details:
      - {date: 2024-03-12, result: W, opponent: Paper Two, rating: 1800, venue: V1}
      - {date: 2024-04-02, result: D, opponent: Paper Three, rating: 1750, venue: V2}
  - id: p2
    title: Paper Two
    match_details:
      - {date: 2024-03-12, result: L, opponent: Paper One, rating: 1900, venue: V1}
`

// run executes the command tree with args and returns stdout, stderr and the error.
func run(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestAdminCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PAPERMATCH_DOTENV", filepath.Join(dir, "missing.env"))
	t.Setenv("PAPERMATCH_CONFIG", "")
	t.Setenv("PAPERMATCH_JWT_SECRET", "admin-test-secret")
	t.Setenv("PAPERMATCH_REDIS_ADDR", "")

	db := filepath.Join(dir, "admin.db")
	file := filepath.Join(dir, "matches.yaml")
	if err := os.WriteFile(file, []byte(matchFile), 0o600); err != nil {
		t.Fatal(err)
	}

	Convey("Given a fresh database file", t, func() {
		Convey("migrate up reports the schema version", func() {
			out, _, err := run("--db", db, "--json", "migrate", "up")
			So(err, ShouldBeNil)

			var got map[string]any
			So(json.Unmarshal([]byte(out), &got), ShouldBeNil)
			So(got["dirty"], ShouldEqual, false)
			So(got["version"], ShouldBeGreaterThan, 0)
		})

		Convey("import is idempotent", func() {
			out, _, err := run("--db", db, "import", file, "--category", "vision", "--year", "2024")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "imported 2 papers: 3 results added, 0 already present")

			out, _, err = run("--db", db, "import", file, "--category", "vision", "--year", "2024")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "0 results added, 3 already present")
		})

		Convey("import without a category is a usage error", func() {
			_, errOut, err := run("--db", db, "import", file)
			So(err, ShouldWrap, ErrUsage)
			So(errOut, ShouldContainSubstring, "--category is required")
		})

		Convey("target add registers a match target", func() {
			out, _, err := run("--db", db, "target", "add", "m1", "--kind", "match", "--title", "A vs B")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "registered match m1")
		})

		Convey("target add rejects unknown kinds", func() {
			_, _, err := run("--db", db, "target", "add", "x", "--kind", "venue")
			So(err, ShouldWrap, ErrUsage)
		})

		Convey("reconcile finds nothing to repair", func() {
			out, _, err := run("--db", db, "--json", "reconcile")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, `"drifted"`)
		})

		Convey("delete-user reports unknown users", func() {
			_, errOut, err := run("--db", db, "delete-user", "nobody")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			So(errOut, ShouldStartWith, "Error: ")
		})

		Convey("token signs a verifiable token", func() {
			out, _, err := run("--db", db, "token", "alice", "--ttl", "1h")
			So(err, ShouldBeNil)

			v, err := auth.NewVerifier("admin-test-secret")
			So(err, ShouldBeNil)
			user, err := v.Verify(strings.TrimSpace(out))
			So(err, ShouldBeNil)
			So(user, ShouldEqual, "alice")
		})
	})
}

func TestIsSchemaError(t *testing.T) {
	Convey("Schema errors are recognized by message", t, func() {
		So(isSchemaError(nil), ShouldBeFalse)
		So(isSchemaError(os.ErrNotExist), ShouldBeFalse)
		So(isSchemaError(&schemaErr{"SQL logic error: no such table: targets"}), ShouldBeTrue)
	})
}

type schemaErr struct{ msg string }

func (e *schemaErr) Error() string { return e.msg }
