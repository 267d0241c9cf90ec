package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	key := userKey(user.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		pipe.SAdd(ctx, usersIndexKey(), key)
		return nil
	})
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	keys, err := s.client.SMembers(ctx, usersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	users, err := fetchAll[model.User](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	id, err := s.client.Incr(ctx, gameSeqKey()).Result()
	if err != nil {
		return err
	}

	created := *game
	created.ID = model.GameID(id)
	data, err := json.Marshal(&created)
	if err != nil {
		return err
	}

	key := gameKey(created.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		pipe.ZAdd(ctx, gamesIndexKey(), redis.Z{Score: float64(id), Member: key})
		return nil
	})
	if err != nil {
		return err
	}

	game.ID = created.ID
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	keys, err := s.client.ZRange(ctx, gamesIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return fetchAll[model.Game](ctx, s.client, keys)
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	// SET XX only writes when the key still exists
	ok, err := s.client.SetXX(ctx, gameKey(game.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrGameNotFound
	}
	return nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	key := gameKey(id)

	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, key)
		pipe.ZRem(ctx, gamesIndexKey(), key)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return model.ErrGameNotFound
	}
	return nil
}

// Rank entry operations

func (s *Storage) CreateRankEntry(ctx context.Context, entry *model.RankEntry) error {
	id, err := s.client.Incr(ctx, rankEntrySeqKey()).Result()
	if err != nil {
		return err
	}

	created := *entry
	created.ID = model.RankEntryID(id)
	data, err := json.Marshal(&created)
	if err != nil {
		return err
	}

	key := rankEntryKey(created.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		pipe.ZAdd(ctx, rankEntriesIndexKey(), redis.Z{Score: float64(id), Member: key})
		pipe.SAdd(ctx, rankEntriesForGameIndexKey(created.GameID), key)
		pipe.SAdd(ctx, rankEntriesForUserIndexKey(created.OwnerUserID), key)
		return nil
	})
	if err != nil {
		return err
	}

	entry.ID = created.ID
	return nil
}

func (s *Storage) GetRankEntry(ctx context.Context, id model.RankEntryID) (*model.RankEntry, error) {
	data, err := s.client.Get(ctx, rankEntryKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRankEntryNotFound
		}
		return nil, err
	}
	return decodeRankEntry(data)
}

func (s *Storage) ListRankEntries(ctx context.Context, filter model.RankEntryFilter) ([]*model.RankEntry, error) {
	// Narrow the candidate set with the most selective index available
	var keys []string
	var err error
	switch {
	case filter.GameID != 0:
		keys, err = s.client.SMembers(ctx, rankEntriesForGameIndexKey(filter.GameID)).Result()
	case filter.OwnerUserID != "":
		keys, err = s.client.SMembers(ctx, rankEntriesForUserIndexKey(filter.OwnerUserID)).Result()
	default:
		keys, err = s.client.ZRange(ctx, rankEntriesIndexKey(), 0, -1).Result()
	}
	if err != nil {
		return nil, err
	}

	candidates, err := fetchAll[model.RankEntry](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}

	entries := make([]*model.RankEntry, 0, len(candidates))
	for _, e := range candidates {
		if filter.Matches(e) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (s *Storage) UpdateRankEntry(ctx context.Context, entry *model.RankEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	key := rankEntryKey(entry.ID)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrRankEntryNotFound
			}
			return err
		}
		old, err := decodeRankEntry(raw)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if old.GameID != entry.GameID {
				pipe.SRem(ctx, rankEntriesForGameIndexKey(old.GameID), key)
				pipe.SAdd(ctx, rankEntriesForGameIndexKey(entry.GameID), key)
			}
			if old.OwnerUserID != entry.OwnerUserID {
				pipe.SRem(ctx, rankEntriesForUserIndexKey(old.OwnerUserID), key)
				pipe.SAdd(ctx, rankEntriesForUserIndexKey(entry.OwnerUserID), key)
			}
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrConflict
	}
	return err
}

func (s *Storage) DeleteRankEntry(ctx context.Context, id model.RankEntryID) error {
	key := rankEntryKey(id)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrRankEntryNotFound
			}
			return err
		}
		old, err := decodeRankEntry(raw)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, rankEntriesIndexKey(), key)
			pipe.SRem(ctx, rankEntriesForGameIndexKey(old.GameID), key)
			pipe.SRem(ctx, rankEntriesForUserIndexKey(old.OwnerUserID), key)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		// Someone else changed or removed it first
		return model.ErrConflict
	}
	return err
}

func (s *Storage) DeleteRankEntriesForGame(ctx context.Context, gameID model.GameID) error {
	indexKey := rankEntriesForGameIndexKey(gameID)

	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	entries, err := fetchAll[model.RankEntry](ctx, s.client, keys)
	if err != nil {
		return err
	}

	// Delete all entries and their index memberships in one transaction
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			pipe.SRem(ctx, rankEntriesForUserIndexKey(e.OwnerUserID), rankEntryKey(e.ID))
		}
		members := make([]interface{}, len(keys))
		for i, k := range keys {
			members[i] = k
		}
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, rankEntriesIndexKey(), members...)
		pipe.Del(ctx, indexKey)
		return nil
	})
	return err
}

// fetchAll loads JSON records by key with a single MGET, skipping keys that
// vanished since the index was read
func fetchAll[T any](ctx context.Context, client *redis.Client, keys []string) ([]*T, error) {
	if len(keys) == 0 {
		return []*T{}, nil
	}

	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(values))
	for _, val := range values {
		raw, ok := val.(string)
		if !ok {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, err
		}
		out = append(out, &item)
	}
	return out, nil
}

func decodeRankEntry(data []byte) (*model.RankEntry, error) {
	var entry model.RankEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
