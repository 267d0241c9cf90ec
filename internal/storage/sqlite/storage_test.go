package sqlite

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/storage"
	"github.com/mcoot/ranktracker/internal/storage/sqlite/migrations"
	"github.com/mcoot/ranktracker/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage {
		store, err := Open(filepath.Join(s.T().TempDir(), "ranktracker.db"))
		s.Require().NoError(err)
		return store
	}
	suite.Run(t, s)
}

func (s *StorageSuite) TestCreateRankEntryRejectsUnknownGame() {
	entry := &model.RankEntry{Rank: 10, Date: testDate, OwnerUserID: "u-1", GameID: 42}
	err := s.Storage.CreateRankEntry(s.Ctx, entry)
	s.ErrorIs(err, model.ErrGameReferenceNotFound)
}

func (s *StorageSuite) TestDeleteReferencedGameFails() {
	game := &model.Game{Name: "Chess", OwnerUserID: "u-1"}
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, game))
	entry := &model.RankEntry{Rank: 10, Date: testDate, OwnerUserID: "u-1", GameID: game.ID}
	s.Require().NoError(s.Storage.CreateRankEntry(s.Ctx, entry))

	err := s.Storage.DeleteGame(s.Ctx, game.ID)
	s.ErrorIs(err, model.ErrGameInUse)

	_, err = s.Storage.GetGame(s.Ctx, game.ID)
	s.NoError(err)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranktracker.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;\n"
	require.Equal(t, "\nCREATE TABLE a (id INTEGER);\n", extractUpMigration(content))
	require.Equal(t, "SELECT 1;", extractUpMigration("SELECT 1;"))
}

func TestOpenUpgradesMillisecondDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranktracker.db")

	initSQL, err := fs.ReadFile(migrations.FS, "001_init.sql")
	require.NoError(t, err)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	require.NoError(t, applyMigrations(db, fstest.MapFS{"001_init.sql": {Data: initSQL}}))
	_, err = db.Exec(`INSERT INTO games (name, owner_user_id) VALUES ('Chess', 'u-1')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO rank_entries (rank, date, description, owner_user_id, game_id) VALUES (10, ?, '', 'u-1', 1)`,
		testDate.UnixMilli())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	entry, err := store.GetRankEntry(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, testDate.Truncate(time.Millisecond).Equal(entry.Date), entry.Date.String())
}
