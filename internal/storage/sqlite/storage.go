// Package sqlite provides a SQLite-backed storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/storage"
	"github.com/mcoot/ranktracker/internal/storage/sqlite/migrations"
)

const migrationTable = "schema_migrations"

// toUnixNano stores timestamps at full precision so rank entry dates read
// back exactly as written.
func toUnixNano(value time.Time) int64 {
	return value.UTC().UnixNano()
}

func fromUnixNano(value int64) time.Time {
	return time.Unix(0, value).UTC()
}

// Storage implements the storage interface over a single SQLite file.
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open opens a SQLite store at path and applies bundled migrations.
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows a single writer; serialize through one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Storage{db: db}, nil
}

// NewWithDB wraps an existing handle whose schema is already in place (for testing)
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Close releases the underlying database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (id, display_name, roles, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    display_name = excluded.display_name,
    roles = excluded.roles,
    created_at = excluded.created_at,
    updated_at = excluded.updated_at`,
		string(user.ID), user.DisplayName, joinRoles(user.Roles),
		toUnixNano(user.CreatedAt), toUnixNano(user.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, roles, created_at, updated_at FROM users WHERE id = ?`, string(id))
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, roles, created_at, updated_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO games (name, owner_user_id) VALUES (?, ?)`,
		game.Name, string(game.OwnerUserID))
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	game.ID = model.GameID(id)
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, owner_user_id FROM games WHERE id = ?`, int64(id))
	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}
	return game, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, owner_user_id FROM games ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := make([]*model.Game, 0)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET name = ?, owner_user_id = ? WHERE id = ?`,
		game.Name, string(game.OwnerUserID), int64(game.ID))
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	return requireAffected(res, model.ErrGameNotFound)
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, int64(id))
	if err != nil {
		if isForeignKeyError(err) {
			return model.ErrGameInUse
		}
		return fmt.Errorf("delete game: %w", err)
	}
	return requireAffected(res, model.ErrGameNotFound)
}

// Rank entry operations

func (s *Storage) CreateRankEntry(ctx context.Context, entry *model.RankEntry) error {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO rank_entries (rank, date, description, owner_user_id, game_id)
VALUES (?, ?, ?, ?, ?)`,
		entry.Rank, toUnixNano(entry.Date), entry.Description,
		string(entry.OwnerUserID), int64(entry.GameID))
	if err != nil {
		if isForeignKeyError(err) {
			return model.ErrGameReferenceNotFound
		}
		return fmt.Errorf("create rank entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create rank entry: %w", err)
	}
	entry.ID = model.RankEntryID(id)
	return nil
}

func (s *Storage) GetRankEntry(ctx context.Context, id model.RankEntryID) (*model.RankEntry, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, rank, date, description, owner_user_id, game_id
FROM rank_entries WHERE id = ?`, int64(id))
	entry, err := scanRankEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrRankEntryNotFound
		}
		return nil, fmt.Errorf("get rank entry: %w", err)
	}
	return entry, nil
}

func (s *Storage) ListRankEntries(ctx context.Context, filter model.RankEntryFilter) ([]*model.RankEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, rank, date, description, owner_user_id, game_id
FROM rank_entries
WHERE (?1 = '' OR owner_user_id = ?1)
  AND (?2 = 0 OR game_id = ?2)
ORDER BY id`, string(filter.OwnerUserID), int64(filter.GameID))
	if err != nil {
		return nil, fmt.Errorf("list rank entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*model.RankEntry, 0)
	for rows.Next() {
		entry, err := scanRankEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rank entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rank entries: %w", err)
	}
	return entries, nil
}

func (s *Storage) UpdateRankEntry(ctx context.Context, entry *model.RankEntry) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE rank_entries
SET rank = ?, date = ?, description = ?, owner_user_id = ?, game_id = ?
WHERE id = ?`,
		entry.Rank, toUnixNano(entry.Date), entry.Description,
		string(entry.OwnerUserID), int64(entry.GameID), int64(entry.ID))
	if err != nil {
		if isForeignKeyError(err) {
			return model.ErrGameReferenceNotFound
		}
		return fmt.Errorf("update rank entry: %w", err)
	}
	return requireAffected(res, model.ErrRankEntryNotFound)
}

func (s *Storage) DeleteRankEntry(ctx context.Context, id model.RankEntryID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rank_entries WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("delete rank entry: %w", err)
	}
	return requireAffected(res, model.ErrRankEntryNotFound)
}

func (s *Storage) DeleteRankEntriesForGame(ctx context.Context, gameID model.GameID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rank_entries WHERE game_id = ?`, int64(gameID)); err != nil {
		return fmt.Errorf("delete rank entries for game: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*model.User, error) {
	var (
		id, displayName, roles string
		createdAt, updatedAt   int64
	)
	if err := row.Scan(&id, &displayName, &roles, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return &model.User{
		ID:          model.UserID(id),
		DisplayName: displayName,
		Roles:       splitRoles(roles),
		CreatedAt:   fromUnixNano(createdAt),
		UpdatedAt:   fromUnixNano(updatedAt),
	}, nil
}

func scanGame(row scanner) (*model.Game, error) {
	var (
		id          int64
		name, owner string
	)
	if err := row.Scan(&id, &name, &owner); err != nil {
		return nil, err
	}
	return &model.Game{ID: model.GameID(id), Name: name, OwnerUserID: model.UserID(owner)}, nil
}

func scanRankEntry(row scanner) (*model.RankEntry, error) {
	var (
		id, date, gameID   int64
		rank               int
		description, owner string
	)
	if err := row.Scan(&id, &rank, &date, &description, &owner, &gameID); err != nil {
		return nil, err
	}
	return &model.RankEntry{
		ID:          model.RankEntryID(id),
		Rank:        rank,
		Date:        fromUnixNano(date),
		Description: description,
		OwnerUserID: model.UserID(owner),
		GameID:      model.GameID(gameID),
	}, nil
}

func joinRoles(roles []model.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ",")
}

func splitRoles(value string) []model.Role {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	roles := make([]model.Role, len(parts))
	for i, p := range parts {
		roles[i] = model.Role(p)
	}
	return roles
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isForeignKeyError(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY
}

// applyMigrations executes embedded migrations at most once per file.
func applyMigrations(db *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		var found int
		err := db.QueryRow(`SELECT 1 FROM `+migrationTable+` WHERE name = ?`, file).Scan(&found)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration %s: %w", file, err)
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(extractUpMigration(string(content))); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`,
			file, toUnixNano(time.Now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

// extractUpMigration returns the SQL in the -- +migrate Up section.
func extractUpMigration(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"
	upIdx := strings.Index(content, up)
	if upIdx == -1 {
		return content
	}
	body := content[upIdx+len(up):]
	if downIdx := strings.Index(body, down); downIdx != -1 {
		body = body[:downIdx]
	}
	return body
}
