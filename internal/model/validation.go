package model

import (
	"fmt"
	"strings"
	"time"
)

// unixEpoch is treated the same as an unset date
var unixEpoch = time.Unix(0, 0).UTC()

// ValidateGame checks field constraints on a game payload
func ValidateGame(g *Game) error {
	if strings.TrimSpace(g.Name) == "" {
		return NewValidationError("name", "game name is required")
	}
	return nil
}

// ValidateRankEntry checks field constraints on a rank entry payload.
// The owner must already have been assigned from the principal.
func ValidateRankEntry(e *RankEntry) error {
	if e.Rank < MinRank || e.Rank > MaxRank {
		return NewValidationError("rank", fmt.Sprintf("rank must be between %d and %d", MinRank, MaxRank))
	}
	if IsUnsetDate(e.Date) {
		return NewValidationError("date", "date is required")
	}
	if e.GameID == 0 {
		return NewValidationError("gameId", "a game must be selected")
	}
	if e.OwnerUserID == "" {
		return NewValidationError("ownerUserId", "owner is required")
	}
	return nil
}

// IsUnsetDate reports whether t is the zero time or the Unix epoch
func IsUnsetDate(t time.Time) bool {
	return t.IsZero() || t.Equal(unixEpoch)
}
