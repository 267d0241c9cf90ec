package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mcoot/ranktracker/internal/api/response"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User directory commands",
	}

	cmd.AddCommand(newUserWhoamiCmd())
	cmd.AddCommand(newUserListCmd())

	return cmd
}

func newUserWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user the current token authenticates as",
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := currentUser(cmd.Context())
			if err != nil {
				return err
			}

			output(cmd).Print(me)
			return nil
		},
	}
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users known to the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.User

			if err := client.Get(cmd.Context(), "/api/v1/users", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func currentUser(ctx context.Context) (response.User, error) {
	var me response.User
	err := client.Get(ctx, "/api/v1/users/me", &me)
	return me, err
}
