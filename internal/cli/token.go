package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/ranktracker/internal/dependencies/clock"
	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/services/auth"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Development token commands",
	}

	cmd.AddCommand(newTokenIssueCmd())

	return cmd
}

func newTokenIssueCmd() *cobra.Command {
	var (
		name  string
		roles []string
		ttl   time.Duration
		save  bool
	)

	c := &cobra.Command{
		Use:   "issue <user-id>",
		Short: "Mint a bearer token signed with the server secret",
		Long: `Mint a bearer token for a user, signed locally with the same secret the
server verifies with (--secret or AUTH_SECRET). Use --save to store it in the
token file for later commands.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]model.Role, 0, len(roles))
			for _, r := range roles {
				role, ok := model.ParseRole(r)
				if !ok {
					return fmt.Errorf("unknown role %q", r)
				}
				parsed = append(parsed, role)
			}

			authService, err := auth.New(auth.Config{
				Secret:   cfg.AuthSecret,
				Issuer:   cfg.AuthIssuer,
				TokenTTL: ttl,
			}, clock.New())
			if err != nil {
				return err
			}

			userID := args[0]
			if name == "" {
				name = userID
			}
			token, err := authService.Issue(model.UserID(userID), name, parsed, ttl)
			if err != nil {
				return err
			}

			if save {
				if err := cfg.SaveToken(token); err != nil {
					return fmt.Errorf("save token: %w", err)
				}
			}

			principal := model.NewPrincipal(model.UserID(userID), parsed...)
			result := TokenResult{UserID: userID, Token: token}
			for _, r := range principal.Roles {
				result.Roles = append(result.Roles, string(r))
			}
			output(cmd).Print(result)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "Display name claim (defaults to the user id)")
	c.Flags().StringSliceVar(&roles, "role", nil, "Role to grant: User, Admin (repeatable)")
	c.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to the server default)")
	c.Flags().StringVar(&cfg.AuthSecret, "secret", cfg.AuthSecret, "Signing secret (env: AUTH_SECRET)")
	c.Flags().StringVar(&cfg.AuthIssuer, "issuer", cfg.AuthIssuer, "Token issuer (env: AUTH_ISSUER)")
	c.Flags().BoolVar(&save, "save", false, "Save the token to the token file")

	return c
}
