package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/services/access"
	"github.com/mcoot/ranktracker/internal/services/user"
	"github.com/mcoot/ranktracker/internal/storage"
)

// DeletePolicy decides what happens to rank entries when their game is deleted
type DeletePolicy string

const (
	// DeletePolicyRestrict refuses to delete a game that rank entries still reference
	DeletePolicyRestrict DeletePolicy = "restrict"
	// DeletePolicyCascade deletes the referencing rank entries first
	DeletePolicyCascade DeletePolicy = "cascade"
)

// ParseDeletePolicy parses a policy name; empty means restrict
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DeletePolicyRestrict:
		return DeletePolicyRestrict, nil
	case DeletePolicyCascade:
		return DeletePolicyCascade, nil
	default:
		return "", fmt.Errorf("unknown game delete policy %q", s)
	}
}

// Input carries the client-controlled fields of a game
type Input struct {
	Name string
}

// Detail is a game with its owner resolved for display.
// Owner is nil when no user has been recorded for the owner id.
type Detail struct {
	Game  *model.Game
	Owner *model.User
}

// Service manages the game catalogue
type Service struct {
	storage      storage.Storage
	users        *user.Service
	deletePolicy DeletePolicy
	logger       *slog.Logger
}

// New creates a new game service
func New(storage storage.Storage, users *user.Service, deletePolicy DeletePolicy, logger *slog.Logger) *Service {
	if deletePolicy == "" {
		deletePolicy = DeletePolicyRestrict
	}
	return &Service{
		storage:      storage,
		users:        users,
		deletePolicy: deletePolicy,
		logger:       logger,
	}
}

// DeletePolicy returns the policy applied by Delete
func (s *Service) DeletePolicy() DeletePolicy {
	return s.deletePolicy
}

// Create registers a game owned by the principal. The name is stored as
// given; surrounding whitespace only matters for the emptiness check.
func (s *Service) Create(ctx context.Context, p model.Principal, in Input) (*Detail, error) {
	if !p.IsAuthenticated() {
		return nil, model.ErrUnauthenticated
	}

	game := &model.Game{
		Name:        in.Name,
		OwnerUserID: p.ID,
	}
	if err := model.ValidateGame(game); err != nil {
		return nil, err
	}

	if err := s.storage.CreateGame(ctx, game); err != nil {
		s.logger.Error("failed to create game",
			slog.String("owner_user_id", string(p.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("game created",
		slog.Int64("game_id", int64(game.ID)),
		slog.String("owner_user_id", string(game.OwnerUserID)),
	)

	return s.detail(ctx, game)
}

// Get returns a game with its owner resolved
func (s *Service) Get(ctx context.Context, id model.GameID) (*Detail, error) {
	game, err := s.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, game)
}

// List returns every game, regardless of who owns it
func (s *Service) List(ctx context.Context) ([]*Detail, error) {
	games, err := s.storage.ListGames(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]model.UserID, len(games))
	for i, g := range games {
		ids[i] = g.OwnerUserID
	}
	owners, err := s.users.Resolve(ctx, ids...)
	if err != nil {
		return nil, err
	}

	details := make([]*Detail, len(games))
	for i, g := range games {
		details[i] = &Detail{Game: g, Owner: owners[g.OwnerUserID]}
	}
	return details, nil
}

// GetForEdit returns a game only to a principal allowed to modify it
func (s *Service) GetForEdit(ctx context.Context, p model.Principal, id model.GameID) (*Detail, error) {
	game, err := s.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, game.OwnerUserID, access.OpEdit); err != nil {
		return nil, err
	}
	return s.detail(ctx, game)
}

// Update replaces the game's name. The owner is always kept from the stored record.
func (s *Service) Update(ctx context.Context, p model.Principal, id model.GameID, in Input) (*Detail, error) {
	existing, err := s.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, existing.OwnerUserID, access.OpUpdate); err != nil {
		return nil, err
	}

	updated := &model.Game{
		ID:          existing.ID,
		Name:        in.Name,
		OwnerUserID: existing.OwnerUserID,
	}
	if err := model.ValidateGame(updated); err != nil {
		return nil, err
	}

	if err := s.storage.UpdateGame(ctx, updated); err != nil {
		if errors.Is(err, model.ErrGameNotFound) {
			// Deleted between the lookup and the write
			return nil, fmt.Errorf("game %d: %w", id, model.ErrConflict)
		}
		s.logger.Error("failed to update game",
			slog.Int64("game_id", int64(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("game updated",
		slog.Int64("game_id", int64(id)),
		slog.String("by_user_id", string(p.ID)),
	)

	return s.detail(ctx, updated)
}

// Delete removes a game, applying the configured policy to its rank entries
func (s *Service) Delete(ctx context.Context, p model.Principal, id model.GameID) error {
	existing, err := s.storage.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(p, existing.OwnerUserID, access.OpDelete); err != nil {
		return err
	}

	switch s.deletePolicy {
	case DeletePolicyCascade:
		if err := s.storage.DeleteRankEntriesForGame(ctx, id); err != nil {
			return err
		}
	default:
		entries, err := s.storage.ListRankEntries(ctx, model.RankEntryFilter{GameID: id})
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return fmt.Errorf("game %d has %d rank entries: %w", id, len(entries), model.ErrGameInUse)
		}
	}

	if err := s.storage.DeleteGame(ctx, id); err != nil {
		return err
	}

	s.logger.Info("game deleted",
		slog.Int64("game_id", int64(id)),
		slog.String("by_user_id", string(p.ID)),
		slog.String("policy", string(s.deletePolicy)),
	)
	return nil
}

func (s *Service) detail(ctx context.Context, game *model.Game) (*Detail, error) {
	owners, err := s.users.Resolve(ctx, game.OwnerUserID)
	if err != nil {
		return nil, err
	}
	return &Detail{Game: game, Owner: owners[game.OwnerUserID]}, nil
}
