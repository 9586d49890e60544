package admin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ErrUsage reports invalid arguments or flags.
var ErrUsage = errors.New("usage error")

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())

	if isSchemaError(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Hint: This looks like a schema mismatch. Try: %s migrate up\n", AppName)
	}
	return err
}

// isSchemaError checks if an error is a SQLite schema mismatch.
func isSchemaError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "has no column")
}
