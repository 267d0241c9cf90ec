package model

import "time"

// RankEntryID identifies a rank entry; assigned by storage on creation
type RankEntryID int64

// Rank bounds (inclusive)
const (
	MinRank = 1
	MaxRank = 5000
)

// RankEntry records a user's rank in a game at a point in time
type RankEntry struct {
	ID          RankEntryID
	Rank        int
	Date        time.Time
	Description string // optional
	OwnerUserID UserID // set from the principal, never from input
	GameID      GameID
}

// RankEntryFilter narrows a rank entry listing. Zero-valued fields match anything.
type RankEntryFilter struct {
	OwnerUserID UserID
	GameID      GameID
}

// Matches reports whether the entry satisfies the filter
func (f RankEntryFilter) Matches(e *RankEntry) bool {
	if f.OwnerUserID != "" && e.OwnerUserID != f.OwnerUserID {
		return false
	}
	if f.GameID != 0 && e.GameID != f.GameID {
		return false
	}
	return true
}

// ProgressionPoint is one sample on a user's rank chart
type ProgressionPoint struct {
	Date time.Time
	Rank int
}
