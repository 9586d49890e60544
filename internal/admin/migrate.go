package admin

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/okian/papermatch/internal/adapters/repository"
)

type migrateFunc func(cmd *cobra.Command, mm *repository.MigrationManager) error

func newMigrateCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		st.migrateStep("up", "Apply all pending migrations", func(c *cobra.Command, mm *repository.MigrationManager) error {
			if err := mm.Up(); err != nil {
				return err
			}
			return st.printVersion(c, mm, "migrated")
		}),
		st.migrateStep("down", "Roll back the most recent migration", func(c *cobra.Command, mm *repository.MigrationManager) error {
			if err := mm.Down(); err != nil {
				return err
			}
			return st.printVersion(c, mm, "rolled back")
		}),
		st.migrateStep("version", "Print the applied schema version", func(c *cobra.Command, mm *repository.MigrationManager) error {
			return st.printVersion(c, mm, "current")
		}),
	)
	return cmd
}

func (st *state) migrateStep(name, short string, fn migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mm, err := repository.NewMigrationManager(st.cfg.DBPath)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if err := errors.Join(fn(cmd, mm), mm.Close()); err != nil {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}
}

func (st *state) printVersion(cmd *cobra.Command, mm *repository.MigrationManager, status string) error {
	v, dirty, err := mm.Version()
	if err != nil {
		return err
	}
	st.print(cmd, map[string]any{"status": status, "version": v, "dirty": dirty},
		"%s: schema version %d (dirty=%t)", status, v, dirty)
	return nil
}
