package storage

import (
	"context"

	"github.com/mcoot/ranktracker/internal/model"
)

// Storage defines the interface for data persistence.
//
// Create operations assign the entity ID. Update and Delete return the
// entity's not-found error when no record exists at write time; each call is
// atomic for a single record and nothing spans multiple entities.
// Listings are ordered by ascending ID.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)

	// Game operations
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	ListGames(ctx context.Context) ([]*model.Game, error)
	UpdateGame(ctx context.Context, game *model.Game) error
	DeleteGame(ctx context.Context, id model.GameID) error

	// Rank entry operations
	CreateRankEntry(ctx context.Context, entry *model.RankEntry) error
	GetRankEntry(ctx context.Context, id model.RankEntryID) (*model.RankEntry, error)
	ListRankEntries(ctx context.Context, filter model.RankEntryFilter) ([]*model.RankEntry, error)
	UpdateRankEntry(ctx context.Context, entry *model.RankEntry) error
	DeleteRankEntry(ctx context.Context, id model.RankEntryID) error
	DeleteRankEntriesForGame(ctx context.Context, gameID model.GameID) error

	// Close releases any held connections
	Close() error
}
