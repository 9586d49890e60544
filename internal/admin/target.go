package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/papermatch/internal/domain/model"
)

func newTargetCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Manage feedback targets",
	}
	cmd.AddCommand(newTargetAddCmd(st))
	return cmd
}

func newTargetAddCmd(st *state) *cobra.Command {
	var (
		t    model.Target
		kind string
	)

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Register a paper or match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t.ID = args[0]
			switch model.TargetKind(kind) {
			case model.TargetPaper, model.TargetMatch:
				t.Kind = model.TargetKind(kind)
			default:
				return writeCommandError(cmd, fmt.Errorf("%w: --kind must be paper or match", ErrUsage))
			}

			svc, err := st.openService(cmd.Context())
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer svc.Stop()

			if err := svc.AddTarget(cmd.Context(), t); err != nil {
				return writeCommandError(cmd, err)
			}
			st.print(cmd, t, "registered %s %s", t.Kind, t.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(model.TargetPaper), "paper or match")
	cmd.Flags().StringVar(&t.Category, "category", "", "category")
	cmd.Flags().StringVar(&t.Subcategory, "subcategory", "", "subcategory")
	cmd.Flags().IntVar(&t.Year, "year", 0, "year")
	cmd.Flags().StringVar(&t.Title, "title", "", "display title")
	return cmd
}
