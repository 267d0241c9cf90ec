package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/ranktracker/internal/api/request"
	"github.com/mcoot/ranktracker/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "games",
		Aliases: []string{"game"},
		Short:   "Game catalogue commands",
	}

	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameRenameCmd())
	cmd.AddCommand(newGameDeleteCmd())

	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all games",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Game

			if err := client.Get(cmd.Context(), "/api/v1/games", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var result response.Game
			if err := client.Get(cmd.Context(), fmt.Sprintf("/api/v1/games/%d", id), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Register a game owned by you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game

			if err := client.Post(cmd.Context(), "/api/v1/games", request.GameRequest{Name: args[0]}, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a game (owner or admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			body := request.GameRequest{ID: id, Name: args[1]}
			if err := client.Put(cmd.Context(), fmt.Sprintf("/api/v1/games/%d", id), body); err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Game %d renamed to %s", id, args[1]))
			return nil
		},
	}
}

func newGameDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a game (owner or admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := client.Delete(cmd.Context(), fmt.Sprintf("/api/v1/games/%d", id)); err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Game %d deleted", id))
			return nil
		},
	}
}
