// Package admin implements the papermatch-admin command tree.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/papermatch/internal/app"
	"github.com/okian/papermatch/internal/config"
	"github.com/okian/papermatch/pkg/logger"
)

// AppName is the binary name.
const AppName = "papermatch-admin"

// state is shared by every subcommand of one invocation.
type state struct {
	cfg      *config.Config
	log      logger.Logger
	jsonMode bool
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	st := &state{log: logger.Nop()}

	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Administer a papermatch database",
		Long:          "papermatch-admin runs migrations, imports match files and maintains the catalog and counters.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if db, _ := cmd.Flags().GetString("db"); db != "" {
				cfg.DBPath = db
			}
			st.cfg = cfg
			st.jsonMode, _ = cmd.Flags().GetBool("json")
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err == nil {
					_ = logger.SetLevelString("debug")
					st.log = logger.Named("admin")
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("db", "", "database file (overrides db_path)")
	cmd.PersistentFlags().Bool("json", false, "output in JSON format")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log to stderr")

	cmd.AddCommand(
		newMigrateCmd(st),
		newImportCmd(st),
		newTargetCmd(st),
		newReconcileCmd(st),
		newDeleteUserCmd(st),
		newTokenCmd(st),
	)
	return cmd
}

// openService migrates the database and opens the service over it.
func (st *state) openService(ctx context.Context) (*app.Service, error) {
	return app.Open(ctx, st.cfg, st.log)
}

// print writes v as JSON in --json mode and text otherwise.
func (st *state) print(cmd *cobra.Command, v any, text string, args ...any) {
	if st.jsonMode {
		_ = json.NewEncoder(cmd.OutOrStdout()).Encode(v)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), text+"\n", args...)
}
