package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/papermatch/internal/importer"
)

func newImportCmd(st *state) *cobra.Command {
	var scope importer.Scope

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import a match file",
		Long: `Import a match file into the catalog.

Every paper in the file is registered under --category, --subcategory and
--year, and its match details are appended to its result history. Importing
the same file twice adds nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if scope.Category == "" {
				return writeCommandError(cmd, fmt.Errorf("%w: --category is required", ErrUsage))
			}
			svc, err := st.openService(cmd.Context())
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer svc.Stop()

			rep, err := importer.New(svc, importer.WithLogger(st.log)).ImportFile(cmd.Context(), args[0], scope)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			st.print(cmd, rep, "imported %d papers: %d results added, %d already present",
				rep.Papers, rep.Inserted, rep.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&scope.Category, "category", "", "paper category (required)")
	cmd.Flags().StringVar(&scope.Subcategory, "subcategory", "", "paper subcategory")
	cmd.Flags().IntVar(&scope.Year, "year", 0, "publication year")
	return cmd
}
