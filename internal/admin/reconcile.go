package admin

import (
	"strings"

	"github.com/spf13/cobra"
)

func newReconcileCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute feedback counters from raw interactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := st.openService(cmd.Context())
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer svc.Stop()

			report, err := svc.Reconcile(cmd.Context())
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if len(report.Drifted) == 0 {
				st.print(cmd, report, "checked %d targets, no drift", report.Checked)
				return nil
			}
			st.print(cmd, report, "checked %d targets, repaired %d: %s",
				report.Checked, len(report.Drifted), strings.Join(report.Drifted, ", "))
			return nil
		},
	}
}
