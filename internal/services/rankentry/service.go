package rankentry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/ranktracker/internal/dependencies/clock"
	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/services/access"
	"github.com/mcoot/ranktracker/internal/services/user"
	"github.com/mcoot/ranktracker/internal/storage"
)

// Input carries the client-controlled fields of a rank entry.
// Owner is deliberately absent: it always comes from the principal or the stored record.
type Input struct {
	Rank        int
	Date        time.Time // zero on create means "now"
	Description string
	GameID      model.GameID
}

// Detail is a rank entry with its game and owner resolved for display.
// Either may be nil when the referenced record does not exist.
type Detail struct {
	Entry *model.RankEntry
	Game  *model.Game
	Owner *model.User
}

// Service manages rank entries
type Service struct {
	storage storage.Storage
	users   *user.Service
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new rank entry service
func New(storage storage.Storage, users *user.Service, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		users:   users,
		clock:   clock,
		logger:  logger,
	}
}

// Create records a rank entry owned by the principal
func (s *Service) Create(ctx context.Context, p model.Principal, in Input) (*Detail, error) {
	if !p.IsAuthenticated() {
		return nil, model.ErrUnauthenticated
	}

	date := in.Date
	if date.IsZero() {
		date = s.clock.Now()
	}

	entry := &model.RankEntry{
		Rank:        in.Rank,
		Date:        date.UTC(),
		Description: in.Description,
		OwnerUserID: p.ID,
		GameID:      in.GameID,
	}
	if err := model.ValidateRankEntry(entry); err != nil {
		return nil, err
	}

	game, err := s.resolveGame(ctx, entry.GameID)
	if err != nil {
		return nil, err
	}

	if err := s.storage.CreateRankEntry(ctx, entry); err != nil {
		if !errors.Is(err, model.ErrGameReferenceNotFound) {
			s.logger.Error("failed to create rank entry",
				slog.String("owner_user_id", string(p.ID)),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("rank entry created",
		slog.Int64("rank_entry_id", int64(entry.ID)),
		slog.Int64("game_id", int64(entry.GameID)),
		slog.String("owner_user_id", string(entry.OwnerUserID)),
	)

	return s.detail(ctx, entry, game)
}

// Get returns a rank entry with its game and owner resolved
func (s *Service) Get(ctx context.Context, id model.RankEntryID) (*Detail, error) {
	entry, err := s.storage.GetRankEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, entry, nil)
}

// List returns every rank entry matching the filter, ordered by id
func (s *Service) List(ctx context.Context, filter model.RankEntryFilter) ([]*Detail, error) {
	entries, err := s.storage.ListRankEntries(ctx, filter)
	if err != nil {
		return nil, err
	}

	games := make(map[model.GameID]*model.Game)
	ownerIDs := make([]model.UserID, 0, len(entries))
	for _, e := range entries {
		ownerIDs = append(ownerIDs, e.OwnerUserID)
		if _, seen := games[e.GameID]; seen {
			continue
		}
		g, err := s.storage.GetGame(ctx, e.GameID)
		if err != nil && !errors.Is(err, model.ErrGameNotFound) {
			return nil, err
		}
		games[e.GameID] = g
	}

	owners, err := s.users.Resolve(ctx, ownerIDs...)
	if err != nil {
		return nil, err
	}

	details := make([]*Detail, len(entries))
	for i, e := range entries {
		details[i] = &Detail{Entry: e, Game: games[e.GameID], Owner: owners[e.OwnerUserID]}
	}
	return details, nil
}

// GetForEdit returns a rank entry only to a principal allowed to modify it
func (s *Service) GetForEdit(ctx context.Context, p model.Principal, id model.RankEntryID) (*Detail, error) {
	entry, err := s.storage.GetRankEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, entry.OwnerUserID, access.OpEdit); err != nil {
		return nil, err
	}
	return s.detail(ctx, entry, nil)
}

// Update replaces rank, date, description and game. The owner is kept from
// the stored record.
func (s *Service) Update(ctx context.Context, p model.Principal, id model.RankEntryID, in Input) (*Detail, error) {
	existing, err := s.storage.GetRankEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, existing.OwnerUserID, access.OpUpdate); err != nil {
		return nil, err
	}

	updated := &model.RankEntry{
		ID:          existing.ID,
		Rank:        in.Rank,
		Date:        in.Date.UTC(),
		Description: in.Description,
		OwnerUserID: existing.OwnerUserID,
		GameID:      in.GameID,
	}
	if err := model.ValidateRankEntry(updated); err != nil {
		return nil, err
	}

	game, err := s.resolveGame(ctx, updated.GameID)
	if err != nil {
		return nil, err
	}

	if err := s.storage.UpdateRankEntry(ctx, updated); err != nil {
		switch {
		case errors.Is(err, model.ErrRankEntryNotFound):
			// Deleted between the lookup and the write
			return nil, fmt.Errorf("rank entry %d: %w", id, model.ErrConflict)
		case errors.Is(err, model.ErrConflict), errors.Is(err, model.ErrGameReferenceNotFound):
			return nil, err
		}
		s.logger.Error("failed to update rank entry",
			slog.Int64("rank_entry_id", int64(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("rank entry updated",
		slog.Int64("rank_entry_id", int64(id)),
		slog.String("by_user_id", string(p.ID)),
	)

	return s.detail(ctx, updated, game)
}

// Delete removes a rank entry. Ownership is enforced on every path.
func (s *Service) Delete(ctx context.Context, p model.Principal, id model.RankEntryID) error {
	existing, err := s.storage.GetRankEntry(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(p, existing.OwnerUserID, access.OpDelete); err != nil {
		return err
	}

	if err := s.storage.DeleteRankEntry(ctx, id); err != nil {
		return err
	}

	s.logger.Info("rank entry deleted",
		slog.Int64("rank_entry_id", int64(id)),
		slog.String("by_user_id", string(p.ID)),
	)
	return nil
}

// resolveGame loads the referenced game, reporting a missing one as a bad reference
func (s *Service) resolveGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	game, err := s.storage.GetGame(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrGameNotFound) {
			return nil, fmt.Errorf("game %d: %w", id, model.ErrGameReferenceNotFound)
		}
		return nil, err
	}
	return game, nil
}

func (s *Service) detail(ctx context.Context, entry *model.RankEntry, game *model.Game) (*Detail, error) {
	if game == nil {
		g, err := s.storage.GetGame(ctx, entry.GameID)
		if err != nil && !errors.Is(err, model.ErrGameNotFound) {
			return nil, err
		}
		game = g
	}

	owners, err := s.users.Resolve(ctx, entry.OwnerUserID)
	if err != nil {
		return nil, err
	}
	return &Detail{Entry: entry, Game: game, Owner: owners[entry.OwnerUserID]}, nil
}
