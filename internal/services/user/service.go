package user

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/mcoot/ranktracker/internal/dependencies/clock"
	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/storage"
)

// Service keeps the local record of users the identity provider has vouched for
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new user service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Record upserts the user behind an authenticated principal. An empty display
// name keeps whatever was recorded before. Nothing is written when the stored
// record already matches.
func (s *Service) Record(ctx context.Context, p model.Principal, displayName string) (*model.User, error) {
	if !p.IsAuthenticated() {
		return nil, model.ErrUnauthenticated
	}
	displayName = strings.TrimSpace(displayName)

	existing, err := s.storage.GetUser(ctx, p.ID)
	if err != nil && !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	now := s.clock.Now()
	if existing == nil {
		user := &model.User{
			ID:          p.ID,
			DisplayName: displayName,
			Roles:       slices.Clone(p.Roles),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.storage.SaveUser(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("user recorded",
			slog.String("user_id", string(user.ID)),
		)
		return user, nil
	}

	if displayName == "" {
		displayName = existing.DisplayName
	}
	if existing.DisplayName == displayName && slices.Equal(existing.Roles, p.Roles) {
		return existing, nil
	}

	existing.DisplayName = displayName
	existing.Roles = slices.Clone(p.Roles)
	existing.UpdatedAt = now
	if err := s.storage.SaveUser(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Get returns a recorded user
func (s *Service) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}

// List returns every recorded user ordered by id
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	return s.storage.ListUsers(ctx)
}

// Resolve looks up each distinct id. Ids with no recorded user are left out of
// the result rather than treated as an error.
func (s *Service) Resolve(ctx context.Context, ids ...model.UserID) (map[model.UserID]*model.User, error) {
	resolved := make(map[model.UserID]*model.User, len(ids))
	for _, id := range ids {
		if _, done := resolved[id]; done || id == "" {
			continue
		}
		u, err := s.storage.GetUser(ctx, id)
		if err != nil {
			if errors.Is(err, model.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		resolved[id] = u
	}
	return resolved, nil
}
