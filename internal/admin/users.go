package admin

import (
	"github.com/spf13/cobra"
)

func newDeleteUserCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-user <id>",
		Short: "Delete a user and every interaction they authored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := st.openService(cmd.Context())
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer svc.Stop()

			if err := svc.DeleteUser(cmd.Context(), args[0]); err != nil {
				return writeCommandError(cmd, err)
			}
			st.print(cmd, map[string]string{"status": "deleted", "userId": args[0]}, "deleted user %s", args[0])
			return nil
		},
	}
}
