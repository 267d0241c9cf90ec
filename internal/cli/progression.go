package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/ranktracker/internal/api/response"
)

func newProgressionCmd() *cobra.Command {
	var (
		userID string
		gameID int64
	)

	c := &cobra.Command{
		Use:   "progression",
		Short: "Show a user's rank history in a game, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				me, err := currentUser(cmd.Context())
				if err != nil {
					return fmt.Errorf("resolve current user: %w", err)
				}
				userID = me.ID
			}

			query := url.Values{}
			query.Set("userId", userID)
			query.Set("gameId", strconv.FormatInt(gameID, 10))

			var result []response.ProgressionPoint
			if err := client.Get(cmd.Context(), "/api/v1/rankentries/progression?"+query.Encode(), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	c.Flags().StringVar(&userID, "user", "", "User id (defaults to the current user)")
	c.Flags().Int64Var(&gameID, "game", 0, "Game id")
	_ = c.MarkFlagRequired("game")

	return c
}
