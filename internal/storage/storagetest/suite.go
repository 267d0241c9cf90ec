// Package storagetest holds the behavioural suite every storage backend must pass.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/storage"
)

// Suite exercises a storage.Storage implementation. Backends embed it and
// set NewStorage, which must return an empty store for every test.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}

func (s *Suite) createGame(name string, owner model.UserID) *model.Game {
	game := &model.Game{Name: name, OwnerUserID: owner}
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, game))
	return game
}

func (s *Suite) createEntry(owner model.UserID, gameID model.GameID, rank int, date time.Time) *model.RankEntry {
	entry := &model.RankEntry{
		Rank:        rank,
		Date:        date,
		OwnerUserID: owner,
		GameID:      gameID,
	}
	s.Require().NoError(s.Storage.CreateRankEntry(s.Ctx, entry))
	return entry
}

func day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}

// User tests

func (s *Suite) TestSaveAndGetUser() {
	user := &model.User{
		ID:          "u-1",
		DisplayName: "Alice",
		Roles:       []model.Role{model.RoleUser},
		CreatedAt:   day(1),
		UpdatedAt:   day(1),
	}
	s.Require().NoError(s.Storage.SaveUser(s.Ctx, user))

	retrieved, err := s.Storage.GetUser(s.Ctx, "u-1")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.DisplayName)
	s.Equal([]model.Role{model.RoleUser}, retrieved.Roles)
	s.True(user.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *Suite) TestSaveUserOverwrites() {
	s.Require().NoError(s.Storage.SaveUser(s.Ctx, &model.User{ID: "u-1", DisplayName: "Alice"}))
	s.Require().NoError(s.Storage.SaveUser(s.Ctx, &model.User{ID: "u-1", DisplayName: "Alicia"}))

	retrieved, err := s.Storage.GetUser(s.Ctx, "u-1")
	s.Require().NoError(err)
	s.Equal("Alicia", retrieved.DisplayName)

	users, err := s.Storage.ListUsers(s.Ctx)
	s.Require().NoError(err)
	s.Len(users, 1)
}

func (s *Suite) TestGetUserNotFound() {
	_, err := s.Storage.GetUser(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestListUsersSortedByID() {
	s.Require().NoError(s.Storage.SaveUser(s.Ctx, &model.User{ID: "u-b"}))
	s.Require().NoError(s.Storage.SaveUser(s.Ctx, &model.User{ID: "u-a"}))

	users, err := s.Storage.ListUsers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal(model.UserID("u-a"), users[0].ID)
	s.Equal(model.UserID("u-b"), users[1].ID)
}

// Game tests

func (s *Suite) TestCreateGameAssignsIncreasingIDs() {
	first := s.createGame("Chess", "u-1")
	second := s.createGame("Go", "u-1")

	s.NotZero(first.ID)
	s.Greater(second.ID, first.ID)
}

func (s *Suite) TestGetGame() {
	created := s.createGame("Chess", "u-1")

	retrieved, err := s.Storage.GetGame(s.Ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(*created, *retrieved)
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, 999)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestListGamesEmpty() {
	games, err := s.Storage.ListGames(s.Ctx)
	s.Require().NoError(err)
	s.NotNil(games)
	s.Empty(games)
}

func (s *Suite) TestListGamesOrderedByID() {
	a := s.createGame("Chess", "u-1")
	b := s.createGame("Go", "u-2")

	games, err := s.Storage.ListGames(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal(a.ID, games[0].ID)
	s.Equal(b.ID, games[1].ID)
}

func (s *Suite) TestUpdateGame() {
	game := s.createGame("Chess", "u-1")
	game.Name = "Chess960"

	s.Require().NoError(s.Storage.UpdateGame(s.Ctx, game))

	retrieved, err := s.Storage.GetGame(s.Ctx, game.ID)
	s.Require().NoError(err)
	s.Equal("Chess960", retrieved.Name)
}

func (s *Suite) TestUpdateGameNotFound() {
	err := s.Storage.UpdateGame(s.Ctx, &model.Game{ID: 999, Name: "Nope", OwnerUserID: "u-1"})
	s.ErrorIs(err, model.ErrGameNotFound)

	_, err = s.Storage.GetGame(s.Ctx, 999)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestDeleteGame() {
	game := s.createGame("Chess", "u-1")

	s.Require().NoError(s.Storage.DeleteGame(s.Ctx, game.ID))

	_, err := s.Storage.GetGame(s.Ctx, game.ID)
	s.ErrorIs(err, model.ErrGameNotFound)

	games, err := s.Storage.ListGames(s.Ctx)
	s.Require().NoError(err)
	s.Empty(games)
}

func (s *Suite) TestDeleteGameNotFound() {
	err := s.Storage.DeleteGame(s.Ctx, 999)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestDeletedGameIDNotReused() {
	game := s.createGame("Chess", "u-1")
	s.Require().NoError(s.Storage.DeleteGame(s.Ctx, game.ID))

	next := s.createGame("Go", "u-1")
	s.Greater(next.ID, game.ID)
}

// Rank entry tests

func (s *Suite) TestCreateAndGetRankEntry() {
	game := s.createGame("Chess", "u-1")
	entry := &model.RankEntry{
		Rank:        1200,
		Date:        day(5),
		Description: "after the tournament",
		OwnerUserID: "u-1",
		GameID:      game.ID,
	}
	s.Require().NoError(s.Storage.CreateRankEntry(s.Ctx, entry))
	s.NotZero(entry.ID)

	retrieved, err := s.Storage.GetRankEntry(s.Ctx, entry.ID)
	s.Require().NoError(err)
	s.Equal(1200, retrieved.Rank)
	s.True(day(5).Equal(retrieved.Date))
	s.Equal("after the tournament", retrieved.Description)
	s.Equal(model.UserID("u-1"), retrieved.OwnerUserID)
	s.Equal(game.ID, retrieved.GameID)
}

func (s *Suite) TestRankEntryDateKeepsFullPrecision() {
	game := s.createGame("Chess", "u-1")
	dates := []time.Time{
		time.Date(2024, time.January, 1, 0, 0, 0, 123456789, time.UTC),
		time.Unix(0, 500000).UTC(),
	}
	for _, date := range dates {
		entry := s.createEntry("u-1", game.ID, 10, date)

		retrieved, err := s.Storage.GetRankEntry(s.Ctx, entry.ID)
		s.Require().NoError(err)
		s.True(date.Equal(retrieved.Date), "stored %s, read back %s", date, retrieved.Date)
		s.NoError(model.ValidateRankEntry(retrieved))

		s.Require().NoError(s.Storage.UpdateRankEntry(s.Ctx, retrieved))
		again, err := s.Storage.GetRankEntry(s.Ctx, entry.ID)
		s.Require().NoError(err)
		s.True(date.Equal(again.Date))
	}
}

func (s *Suite) TestGetRankEntryNotFound() {
	_, err := s.Storage.GetRankEntry(s.Ctx, 999)
	s.ErrorIs(err, model.ErrRankEntryNotFound)
}

func (s *Suite) TestListRankEntriesFilters() {
	chess := s.createGame("Chess", "u-1")
	goGame := s.createGame("Go", "u-1")

	e1 := s.createEntry("u-1", chess.ID, 100, day(1))
	e2 := s.createEntry("u-2", chess.ID, 200, day(2))
	e3 := s.createEntry("u-1", goGame.ID, 300, day(3))

	all, err := s.Storage.ListRankEntries(s.Ctx, model.RankEntryFilter{})
	s.Require().NoError(err)
	s.Equal([]model.RankEntryID{e1.ID, e2.ID, e3.ID}, entryIDs(all))

	byOwner, err := s.Storage.ListRankEntries(s.Ctx, model.RankEntryFilter{OwnerUserID: "u-1"})
	s.Require().NoError(err)
	s.Equal([]model.RankEntryID{e1.ID, e3.ID}, entryIDs(byOwner))

	byGame, err := s.Storage.ListRankEntries(s.Ctx, model.RankEntryFilter{GameID: chess.ID})
	s.Require().NoError(err)
	s.Equal([]model.RankEntryID{e1.ID, e2.ID}, entryIDs(byGame))

	both, err := s.Storage.ListRankEntries(s.Ctx, model.RankEntryFilter{OwnerUserID: "u-1", GameID: chess.ID})
	s.Require().NoError(err)
	s.Equal([]model.RankEntryID{e1.ID}, entryIDs(both))
}

func (s *Suite) TestListRankEntriesEmpty() {
	entries, err := s.Storage.ListRankEntries(s.Ctx, model.RankEntryFilter{OwnerUserID: "nobody"})
	s.Require().NoError(err)
	s.NotNil(entries)
	s.Empty(entries)
}

func (s *Suite) TestUpdateRankEntryMovesBetweenGames() {
	chess := s.createGame("Chess", "u-1")
	goGame := s.createGame("Go", "u-1")
	entry := s.createEntry("u-1", chess.ID, 100, day(1))

	entry.GameID = goGame.ID
	entry.Rank = 150
	s.Require().NoError(s.Storage.UpdateRankEntry(s.Ctx, entry))

	retrieved, err := s.Storage.GetRankEntry(s.Ctx, entry.ID)
	s.Require().NoError(err)
	s.Equal(150, retrieved.Rank)
	s.Equal(goGame.ID, retrieved.GameID)

	chessEntries, err := s.Storage.ListRankEntries(s.Ctx, model.RankEntryFilter{GameID: chess.ID})
	s.Require().NoError(err)
	s.Empty(chessEntries)

	goEntries, err := s.Storage.ListRankEntries(s.Ctx, model.RankEntryFilter{GameID: goGame.ID})
	s.Require().NoError(err)
	s.Equal([]model.RankEntryID{entry.ID}, entryIDs(goEntries))
}

func (s *Suite) TestUpdateRankEntryNotFound() {
	err := s.Storage.UpdateRankEntry(s.Ctx, &model.RankEntry{ID: 999, Rank: 1, Date: day(1), OwnerUserID: "u-1", GameID: 1})
	s.ErrorIs(err, model.ErrRankEntryNotFound)
}

func (s *Suite) TestDeleteRankEntry() {
	game := s.createGame("Chess", "u-1")
	entry := s.createEntry("u-1", game.ID, 100, day(1))

	s.Require().NoError(s.Storage.DeleteRankEntry(s.Ctx, entry.ID))

	_, err := s.Storage.GetRankEntry(s.Ctx, entry.ID)
	s.ErrorIs(err, model.ErrRankEntryNotFound)

	entries, err := s.Storage.ListRankEntries(s.Ctx, model.RankEntryFilter{OwnerUserID: "u-1"})
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *Suite) TestDeleteRankEntryNotFound() {
	err := s.Storage.DeleteRankEntry(s.Ctx, 999)
	s.ErrorIs(err, model.ErrRankEntryNotFound)
}

func (s *Suite) TestDeleteRankEntriesForGame() {
	chess := s.createGame("Chess", "u-1")
	goGame := s.createGame("Go", "u-1")
	s.createEntry("u-1", chess.ID, 100, day(1))
	s.createEntry("u-2", chess.ID, 200, day(2))
	kept := s.createEntry("u-1", goGame.ID, 300, day(3))

	s.Require().NoError(s.Storage.DeleteRankEntriesForGame(s.Ctx, chess.ID))

	all, err := s.Storage.ListRankEntries(s.Ctx, model.RankEntryFilter{})
	s.Require().NoError(err)
	s.Equal([]model.RankEntryID{kept.ID}, entryIDs(all))

	byOwner, err := s.Storage.ListRankEntries(s.Ctx, model.RankEntryFilter{OwnerUserID: "u-2"})
	s.Require().NoError(err)
	s.Empty(byOwner)
}

func (s *Suite) TestDeleteRankEntriesForGameWithNoEntries() {
	game := s.createGame("Chess", "u-1")
	s.NoError(s.Storage.DeleteRankEntriesForGame(s.Ctx, game.ID))
}

func entryIDs(entries []*model.RankEntry) []model.RankEntryID {
	ids := make([]model.RankEntryID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
