package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/ranktracker/internal/dependencies/mocks"
	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/services/user"
	"github.com/mcoot/ranktracker/internal/storage/memory"
	"github.com/mcoot/ranktracker/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	users   *user.Service
	service *Service
	ctx     context.Context

	owner model.Principal
	other model.Principal
	admin model.Principal
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.users = user.New(s.storage, s.clock, testutil.NopLogger())
	s.service = New(s.storage, s.users, DeletePolicyRestrict, testutil.NopLogger())
	s.ctx = context.Background()

	s.owner = model.NewPrincipal("u1")
	s.other = model.NewPrincipal("u2")
	s.admin = model.NewPrincipal("u3", model.RoleAdmin)
}

func (s *ServiceSuite) create(name string) *model.Game {
	detail, err := s.service.Create(s.ctx, s.owner, Input{Name: name})
	s.Require().NoError(err)
	return detail.Game
}

func (s *ServiceSuite) addEntry(gameID model.GameID) {
	s.Require().NoError(s.storage.CreateRankEntry(s.ctx, &model.RankEntry{
		Rank: 10, Date: s.clock.Now(), OwnerUserID: "u1", GameID: gameID,
	}))
}

// Create tests

func (s *ServiceSuite) TestCreateAssignsIDAndOwner() {
	detail, err := s.service.Create(s.ctx, s.owner, Input{Name: "Chess"})
	s.Require().NoError(err)

	s.Equal(model.Game{ID: 1, Name: "Chess", OwnerUserID: "u1"}, *detail.Game)
}

func (s *ServiceSuite) TestCreateKeepsNameAsGiven() {
	game := s.create("  Chess 960 ")
	s.Equal("  Chess 960 ", game.Name)

	detail, err := s.service.Get(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(model.Game{ID: game.ID, Name: "  Chess 960 ", OwnerUserID: "u1"}, *detail.Game)
}

func (s *ServiceSuite) TestCreateRejectsBlankName() {
	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := s.service.Create(s.ctx, s.owner, Input{Name: name})
		s.ErrorIs(err, model.ErrValidation)

		var verr *model.ValidationError
		s.Require().ErrorAs(err, &verr)
		s.Equal("name", verr.Field)
	}

	games, err := s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Empty(games)
}

func (s *ServiceSuite) TestCreateRequiresPrincipal() {
	_, err := s.service.Create(s.ctx, model.Principal{}, Input{Name: "Chess"})
	s.ErrorIs(err, model.ErrUnauthenticated)
}

// Read tests

func (s *ServiceSuite) TestGetResolvesOwner() {
	_, err := s.users.Record(s.ctx, s.owner, "Alice")
	s.Require().NoError(err)
	game := s.create("Chess")

	detail, err := s.service.Get(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(*game, *detail.Game)
	s.Require().NotNil(detail.Owner)
	s.Equal("Alice", detail.Owner.DisplayName)
}

func (s *ServiceSuite) TestGetUnknownOwnerResolvesToIDOnly() {
	game := s.create("Chess")

	detail, err := s.service.Get(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Nil(detail.Owner)
	s.Equal(model.UserID("u1"), detail.Game.OwnerUserID)
}

func (s *ServiceSuite) TestGetIsRepeatable() {
	game := s.create("Chess")

	first, err := s.service.Get(s.ctx, game.ID)
	s.Require().NoError(err)
	second, err := s.service.Get(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *ServiceSuite) TestGetNotFound() {
	_, err := s.service.Get(s.ctx, 42)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ServiceSuite) TestListIncludesEveryOwner() {
	s.create("Chess")
	_, err := s.service.Create(s.ctx, s.other, Input{Name: "Go"})
	s.Require().NoError(err)

	details, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(details, 2)
	s.Equal(model.UserID("u1"), details[0].Game.OwnerUserID)
	s.Equal(model.UserID("u2"), details[1].Game.OwnerUserID)
}

func (s *ServiceSuite) TestGetForEdit() {
	game := s.create("Chess")

	_, err := s.service.GetForEdit(s.ctx, s.owner, game.ID)
	s.NoError(err)
	_, err = s.service.GetForEdit(s.ctx, s.admin, game.ID)
	s.NoError(err)
	_, err = s.service.GetForEdit(s.ctx, s.other, game.ID)
	s.ErrorIs(err, model.ErrForbidden)
	_, err = s.service.GetForEdit(s.ctx, s.owner, 99)
	s.ErrorIs(err, model.ErrGameNotFound)
}

// Update tests

func (s *ServiceSuite) TestUpdateByOwner() {
	game := s.create("Chess")

	detail, err := s.service.Update(s.ctx, s.owner, game.ID, Input{Name: "Chess960"})
	s.Require().NoError(err)
	s.Equal("Chess960", detail.Game.Name)

	stored, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal("Chess960", stored.Name)
}

func (s *ServiceSuite) TestUpdateByAdminKeepsOwner() {
	game := s.create("Chess")

	detail, err := s.service.Update(s.ctx, s.admin, game.ID, Input{Name: "Chess960"})
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), detail.Game.OwnerUserID)
}

func (s *ServiceSuite) TestUpdateByOtherUserForbidden() {
	game := s.create("Chess")

	_, err := s.service.Update(s.ctx, s.other, game.ID, Input{Name: "Mine now"})
	s.ErrorIs(err, model.ErrForbidden)

	stored, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal("Chess", stored.Name)
}

func (s *ServiceSuite) TestUpdateNotFound() {
	_, err := s.service.Update(s.ctx, s.owner, 99, Input{Name: "Chess"})
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ServiceSuite) TestUpdateAuthorizesBeforeValidating() {
	game := s.create("Chess")

	_, err := s.service.Update(s.ctx, s.other, game.ID, Input{Name: ""})
	s.ErrorIs(err, model.ErrForbidden)

	_, err = s.service.Update(s.ctx, s.owner, game.ID, Input{Name: ""})
	s.ErrorIs(err, model.ErrValidation)
}

// Delete tests

func (s *ServiceSuite) TestDeleteByOwner() {
	game := s.create("Chess")

	s.Require().NoError(s.service.Delete(s.ctx, s.owner, game.ID))

	_, err := s.service.Get(s.ctx, game.ID)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ServiceSuite) TestDeleteNotFound() {
	err := s.service.Delete(s.ctx, s.owner, 99)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ServiceSuite) TestDeleteByOtherUserForbidden() {
	game := s.create("Chess")

	err := s.service.Delete(s.ctx, s.other, game.ID)
	s.ErrorIs(err, model.ErrForbidden)
}

func (s *ServiceSuite) TestDeleteRestrictedWhileReferenced() {
	game := s.create("Chess")
	s.addEntry(game.ID)

	err := s.service.Delete(s.ctx, s.owner, game.ID)
	s.ErrorIs(err, model.ErrGameInUse)

	_, err = s.storage.GetGame(s.ctx, game.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestDeleteCascadeRemovesEntries() {
	s.service = New(s.storage, s.users, DeletePolicyCascade, testutil.NopLogger())
	game := s.create("Chess")
	other := s.create("Go")
	s.addEntry(game.ID)
	s.addEntry(other.ID)

	s.Require().NoError(s.service.Delete(s.ctx, s.admin, game.ID))

	remaining, err := s.storage.ListRankEntries(s.ctx, model.RankEntryFilter{})
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal(other.ID, remaining[0].GameID)
}

func TestParseDeletePolicy(t *testing.T) {
	cases := map[string]DeletePolicy{
		"":          DeletePolicyRestrict,
		"restrict":  DeletePolicyRestrict,
		" CASCADE ": DeletePolicyCascade,
	}
	for in, want := range cases {
		got, err := ParseDeletePolicy(in)
		if err != nil {
			t.Fatalf("ParseDeletePolicy(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseDeletePolicy(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseDeletePolicy("orphan"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

// vanishingStorage deletes the game just before the update lands
type vanishingStorage struct {
	*memory.Storage
}

func (v vanishingStorage) UpdateGame(ctx context.Context, game *model.Game) error {
	if err := v.Storage.DeleteGame(ctx, game.ID); err != nil {
		return err
	}
	return v.Storage.UpdateGame(ctx, game)
}

func (s *ServiceSuite) TestUpdateOfVanishedGameConflicts() {
	game := s.create("Chess")
	s.service = New(vanishingStorage{s.storage}, s.users, DeletePolicyRestrict, testutil.NopLogger())

	_, err := s.service.Update(s.ctx, s.owner, game.ID, Input{Name: "Chess960"})
	s.ErrorIs(err, model.ErrConflict)
}
