package request

import "time"

// GameRequest is the request body for creating or updating a game.
// OwnerUserID is accepted for compatibility but never used.
type GameRequest struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	OwnerUserID string `json:"ownerUserId,omitempty"`
}

// RankEntryRequest is the request body for creating or updating a rank entry.
// OwnerUserID is accepted for compatibility but never used.
type RankEntryRequest struct {
	ID          int64      `json:"id,omitempty"`
	Rank        int        `json:"rank"`
	Date        *time.Time `json:"date,omitempty"`
	Description string     `json:"description,omitempty"`
	OwnerUserID string     `json:"ownerUserId,omitempty"`
	GameID      int64      `json:"gameId"`
}
