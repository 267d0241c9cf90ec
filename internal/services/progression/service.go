package progression

import (
	"context"
	"sort"

	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/storage"
)

// Service computes rank history for charting. It holds no state between
// calls, so the same store contents always yield the same sequence.
type Service struct {
	storage storage.Storage
}

// New creates a new progression service
func New(storage storage.Storage) *Service {
	return &Service{storage: storage}
}

// Progression returns the user's ranks in a game ordered by date, with ties
// broken by entry id. The result is empty, never nil, when nothing matches.
func (s *Service) Progression(ctx context.Context, userID model.UserID, gameID model.GameID) ([]model.ProgressionPoint, error) {
	if userID == "" {
		return nil, model.NewValidationError("userId", "user id is required")
	}
	if gameID <= 0 {
		return nil, model.NewValidationError("gameId", "game id is required")
	}

	entries, err := s.storage.ListRankEntries(ctx, model.RankEntryFilter{
		OwnerUserID: userID,
		GameID:      gameID,
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})

	points := make([]model.ProgressionPoint, len(entries))
	for i, e := range entries {
		points[i] = model.ProgressionPoint{Date: e.Date, Rank: e.Rank}
	}
	return points, nil
}
