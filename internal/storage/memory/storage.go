package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are copied on the way in and out so callers never share records.
type Storage struct {
	mu sync.RWMutex

	users       map[model.UserID]*model.User
	games       map[model.GameID]*model.Game
	rankEntries map[model.RankEntryID]*model.RankEntry

	nextGameID      model.GameID
	nextRankEntryID model.RankEntryID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:       make(map[model.UserID]*model.User),
		games:       make(map[model.GameID]*model.Game),
		rankEntries: make(map[model.RankEntryID]*model.RankEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for in-memory storage
func (s *Storage) Close() error {
	return nil
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGameID++
	game.ID = s.nextGameID
	g := *game
	s.games[g.ID] = &g
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	g := *game
	return &g, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*model.Game, 0, len(s.games))
	for _, game := range s.games {
		g := *game
		games = append(games, &g)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.ID]; !ok {
		return model.ErrGameNotFound
	}
	g := *game
	s.games[g.ID] = &g
	return nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return model.ErrGameNotFound
	}
	delete(s.games, id)
	return nil
}

// Rank entry operations

func (s *Storage) CreateRankEntry(ctx context.Context, entry *model.RankEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRankEntryID++
	entry.ID = s.nextRankEntryID
	e := *entry
	s.rankEntries[e.ID] = &e
	return nil
}

func (s *Storage) GetRankEntry(ctx context.Context, id model.RankEntryID) (*model.RankEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.rankEntries[id]
	if !ok {
		return nil, model.ErrRankEntryNotFound
	}
	e := *entry
	return &e, nil
}

func (s *Storage) ListRankEntries(ctx context.Context, filter model.RankEntryFilter) ([]*model.RankEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]*model.RankEntry, 0)
	for _, entry := range s.rankEntries {
		if !filter.Matches(entry) {
			continue
		}
		e := *entry
		entries = append(entries, &e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (s *Storage) UpdateRankEntry(ctx context.Context, entry *model.RankEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rankEntries[entry.ID]; !ok {
		return model.ErrRankEntryNotFound
	}
	e := *entry
	s.rankEntries[e.ID] = &e
	return nil
}

func (s *Storage) DeleteRankEntry(ctx context.Context, id model.RankEntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rankEntries[id]; !ok {
		return model.ErrRankEntryNotFound
	}
	delete(s.rankEntries, id)
	return nil
}

func (s *Storage) DeleteRankEntriesForGame(ctx context.Context, gameID model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.rankEntries {
		if entry.GameID == gameID {
			delete(s.rankEntries, id)
		}
	}
	return nil
}

func copyUser(u *model.User) *model.User {
	c := *u
	c.Roles = append([]model.Role(nil), u.Roles...)
	return &c
}
