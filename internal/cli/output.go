package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mcoot/ranktracker/internal/api/response"
)

const dateLayout = "2006-01-02"

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errOut, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.out, string(data))
	} else {
		_, _ = fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.User:
		o.printUser(v)
	case []response.User:
		o.printUsers(v)
	case response.Game:
		o.printGame(v)
	case []response.Game:
		o.printGames(v)
	case response.RankEntry:
		o.printRankEntry(v)
	case []response.RankEntry:
		o.printRankEntries(v)
	case []response.ProgressionPoint:
		o.printProgression(v)
	case TokenResult:
		o.printToken(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult is the server's health report, tagged with the URL that was checked
type HealthResult struct {
	Status string `json:"status"`
	Server string `json:"server,omitempty"`
}

// TokenResult is a freshly minted bearer token
type TokenResult struct {
	UserID string   `json:"userId"`
	Roles  []string `json:"roles"`
	Token  string   `json:"token"`
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.out, format, args...)
}

func (o *Output) printUser(u response.User) {
	o.printf("User: %s (%s)\n", displayName(u.DisplayName, u.ID), u.ID)
	o.printf("Roles: %s\n", strings.Join(u.Roles, ", "))
}

func (o *Output) printUsers(users []response.User) {
	tw := tabwriter.NewWriter(o.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tROLES")
	for _, u := range users {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, displayName(u.DisplayName, u.ID), strings.Join(u.Roles, ","))
	}
	_ = tw.Flush()
}

func (o *Output) printGame(g response.Game) {
	o.printf("Game %d: %s\n", g.ID, g.Name)
	o.printf("Owner: %s\n", ownerName(g.Owner, g.OwnerUserID))
	if g.CanEdit {
		o.printf("Editable: yes\n")
	}
}

func (o *Output) printGames(games []response.Game) {
	if len(games) == 0 {
		o.printf("No games\n")
		return
	}
	tw := tabwriter.NewWriter(o.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tOWNER")
	for _, g := range games {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", g.ID, g.Name, ownerName(g.Owner, g.OwnerUserID))
	}
	_ = tw.Flush()
}

func (o *Output) printRankEntry(e response.RankEntry) {
	o.printf("Rank entry %d\n", e.ID)
	o.printf("Game: %s\n", gameName(e))
	o.printf("Rank: %d\n", e.Rank)
	o.printf("Date: %s\n", e.Date.Format(dateLayout))
	if e.Description != "" {
		o.printf("Description: %s\n", e.Description)
	}
	o.printf("Owner: %s\n", ownerName(e.Owner, e.OwnerUserID))
}

func (o *Output) printRankEntries(entries []response.RankEntry) {
	if len(entries) == 0 {
		o.printf("No rank entries\n")
		return
	}
	tw := tabwriter.NewWriter(o.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tDATE\tGAME\tRANK\tOWNER\tDESCRIPTION")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			e.ID, e.Date.Format(dateLayout), gameName(e), e.Rank, ownerName(e.Owner, e.OwnerUserID), e.Description)
	}
	_ = tw.Flush()
}

func (o *Output) printProgression(points []response.ProgressionPoint) {
	if len(points) == 0 {
		o.printf("No rank history\n")
		return
	}
	tw := tabwriter.NewWriter(o.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DATE\tRANK")
	for _, p := range points {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", p.Date.Format(dateLayout), p.Rank)
	}
	_ = tw.Flush()
}

func (o *Output) printToken(t TokenResult) {
	o.printf("Token for %s (%s):\n%s\n", t.UserID, strings.Join(t.Roles, ", "), t.Token)
}

func (o *Output) printHealthResult(h HealthResult) {
	o.printf("%s: %s\n", h.Server, h.Status)
}

func displayName(name, id string) string {
	if name == "" {
		return id
	}
	return name
}

func ownerName(owner *response.User, id string) string {
	if owner == nil {
		return id
	}
	return displayName(owner.DisplayName, id)
}

func gameName(e response.RankEntry) string {
	if e.Game == nil {
		return fmt.Sprintf("#%d", e.GameID)
	}
	return e.Game.Name
}
