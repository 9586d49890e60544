package admin

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/papermatch/internal/adapters/auth"
)

func newTokenCmd(st *state) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <userId>",
		Short: "Sign a development bearer token with jwt_secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := auth.NewVerifier(st.cfg.JWTSecret, auth.WithIssuer(st.cfg.JWTIssuer))
			if err != nil {
				return writeCommandError(cmd, err)
			}
			token, err := v.Issue(args[0], ttl)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			st.print(cmd, map[string]string{"token": token}, "%s", token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
