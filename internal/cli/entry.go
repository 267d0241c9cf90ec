package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/ranktracker/internal/api/request"
	"github.com/mcoot/ranktracker/internal/api/response"
)

func newEntryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "entries",
		Aliases: []string{"entry"},
		Short:   "Rank entry commands",
	}

	cmd.AddCommand(newEntryListCmd())
	cmd.AddCommand(newEntryGetCmd())
	cmd.AddCommand(newEntryAddCmd())
	cmd.AddCommand(newEntryUpdateCmd())
	cmd.AddCommand(newEntryDeleteCmd())

	return cmd
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

func newEntryListCmd() *cobra.Command {
	var (
		userID string
		gameID int64
	)

	c := &cobra.Command{
		Use:   "list",
		Short: "List rank entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if userID != "" {
				query.Set("userId", userID)
			}
			if gameID != 0 {
				query.Set("gameId", strconv.FormatInt(gameID, 10))
			}
			path := "/api/v1/rankentries"
			if len(query) > 0 {
				path += "?" + query.Encode()
			}

			var result []response.RankEntry
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	c.Flags().StringVar(&userID, "user", "", "Only entries owned by this user id")
	c.Flags().Int64Var(&gameID, "game", 0, "Only entries for this game id")

	return c
}

func newEntryGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a rank entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var result response.RankEntry
			if err := client.Get(cmd.Context(), fmt.Sprintf("/api/v1/rankentries/%d", id), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newEntryAddCmd() *cobra.Command {
	var (
		gameID      int64
		rank        int
		date        string
		description string
	)

	c := &cobra.Command{
		Use:   "add",
		Short: "Record a rank (the date defaults to now)",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := request.RankEntryRequest{
				Rank:        rank,
				Description: description,
				GameID:      gameID,
			}
			if date != "" {
				d, err := parseDate(date)
				if err != nil {
					return err
				}
				body.Date = &d
			}

			var result response.RankEntry
			if err := client.Post(cmd.Context(), "/api/v1/rankentries", body, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	c.Flags().Int64Var(&gameID, "game", 0, "Game id")
	c.Flags().IntVar(&rank, "rank", 0, "Rank (1-5000)")
	c.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD or RFC 3339")
	c.Flags().StringVar(&description, "description", "", "Optional note")
	_ = c.MarkFlagRequired("game")
	_ = c.MarkFlagRequired("rank")

	return c
}

func newEntryUpdateCmd() *cobra.Command {
	var (
		gameID      int64
		rank        int
		date        string
		description string
	)

	c := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a rank entry (owner or admin)",
		Long: `Change fields of a rank entry. Only the flags given are changed; the rest
are read back from the server first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var current response.RankEntry
			if err := client.Get(cmd.Context(), fmt.Sprintf("/api/v1/rankentries/%d/edit", id), &current); err != nil {
				return err
			}

			body := request.RankEntryRequest{
				ID:          id,
				Rank:        current.Rank,
				Date:        &current.Date,
				Description: current.Description,
				GameID:      current.GameID,
			}
			flags := cmd.Flags()
			if flags.Changed("game") {
				body.GameID = gameID
			}
			if flags.Changed("rank") {
				body.Rank = rank
			}
			if flags.Changed("description") {
				body.Description = description
			}
			if flags.Changed("date") {
				d, err := parseDate(date)
				if err != nil {
					return err
				}
				body.Date = &d
			}

			if err := client.Put(cmd.Context(), fmt.Sprintf("/api/v1/rankentries/%d", id), body); err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Rank entry %d updated", id))
			return nil
		},
	}

	c.Flags().Int64Var(&gameID, "game", 0, "Game id")
	c.Flags().IntVar(&rank, "rank", 0, "Rank (1-5000)")
	c.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD or RFC 3339")
	c.Flags().StringVar(&description, "description", "", "Note (empty clears it)")

	return c
}

func newEntryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rank entry (owner or admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := client.Delete(cmd.Context(), fmt.Sprintf("/api/v1/rankentries/%d", id)); err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Rank entry %d deleted", id))
			return nil
		},
	}
}
