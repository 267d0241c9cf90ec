package response

import (
	"time"

	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/services/access"
	"github.com/mcoot/ranktracker/internal/services/game"
	"github.com/mcoot/ranktracker/internal/services/rankentry"
)

// User represents a user in API responses
type User struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName,omitempty"`
	Roles       []string `json:"roles"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	roles := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = string(r)
	}
	return User{
		ID:          string(u.ID),
		DisplayName: u.DisplayName,
		Roles:       roles,
	}
}

func optionalUser(u *model.User) *User {
	if u == nil {
		return nil
	}
	resp := UserFromModel(u)
	return &resp
}

// Game represents a game in API responses
type Game struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	OwnerUserID string `json:"ownerUserId"`
	Owner       *User  `json:"owner,omitempty"`
	CanEdit     bool   `json:"canEdit"`
}

// GameFromDetail converts a game detail for the viewing principal
func GameFromDetail(d *game.Detail, viewer model.Principal) Game {
	return Game{
		ID:          int64(d.Game.ID),
		Name:        d.Game.Name,
		OwnerUserID: string(d.Game.OwnerUserID),
		Owner:       optionalUser(d.Owner),
		CanEdit:     access.CanModify(viewer, d.Game.OwnerUserID),
	}
}

// GamesFromDetails converts a list of game details
func GamesFromDetails(details []*game.Detail, viewer model.Principal) []Game {
	games := make([]Game, len(details))
	for i, d := range details {
		games[i] = GameFromDetail(d, viewer)
	}
	return games
}

// GameRef is the embedded summary of a rank entry's game
type GameRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RankEntry represents a rank entry in API responses
type RankEntry struct {
	ID          int64     `json:"id"`
	Rank        int       `json:"rank"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	OwnerUserID string    `json:"ownerUserId"`
	GameID      int64     `json:"gameId"`
	Game        *GameRef  `json:"game,omitempty"`
	Owner       *User     `json:"owner,omitempty"`
	CanEdit     bool      `json:"canEdit"`
}

// RankEntryFromDetail converts a rank entry detail for the viewing principal
func RankEntryFromDetail(d *rankentry.Detail, viewer model.Principal) RankEntry {
	e := d.Entry
	resp := RankEntry{
		ID:          int64(e.ID),
		Rank:        e.Rank,
		Date:        e.Date,
		Description: e.Description,
		OwnerUserID: string(e.OwnerUserID),
		GameID:      int64(e.GameID),
		Owner:       optionalUser(d.Owner),
		CanEdit:     access.CanModify(viewer, e.OwnerUserID),
	}
	if d.Game != nil {
		resp.Game = &GameRef{ID: int64(d.Game.ID), Name: d.Game.Name}
	}
	return resp
}

// RankEntriesFromDetails converts a list of rank entry details
func RankEntriesFromDetails(details []*rankentry.Detail, viewer model.Principal) []RankEntry {
	entries := make([]RankEntry, len(details))
	for i, d := range details {
		entries[i] = RankEntryFromDetail(d, viewer)
	}
	return entries
}

// ProgressionPoint is one sample of a rank chart
type ProgressionPoint struct {
	Date time.Time `json:"date"`
	Rank int       `json:"rank"`
}

// ProgressionFromModel converts progression points
func ProgressionFromModel(points []model.ProgressionPoint) []ProgressionPoint {
	resp := make([]ProgressionPoint, len(points))
	for i, p := range points {
		resp[i] = ProgressionPoint{Date: p.Date, Rank: p.Rank}
	}
	return resp
}
