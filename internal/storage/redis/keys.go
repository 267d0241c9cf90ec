package redis

import (
	"fmt"

	"github.com/mcoot/ranktracker/internal/model"
)

// Key prefix for all tracker data
const keyPrefix = "ranktracker"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usersIndexKey returns the Redis key for the SET of known user ids
func usersIndexKey() string {
	return fmt.Sprintf("%s:idx:users", keyPrefix)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%d", keyPrefix, id)
}

// gameSeqKey returns the Redis key for the game id counter
func gameSeqKey() string {
	return fmt.Sprintf("%s:seq:game", keyPrefix)
}

// gamesIndexKey returns the Redis key for the ZSET of game ids scored by id
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}

// rankEntryKey returns the Redis key for a RankEntry
func rankEntryKey(id model.RankEntryID) string {
	return fmt.Sprintf("%s:rank_entry:%d", keyPrefix, id)
}

// rankEntrySeqKey returns the Redis key for the rank entry id counter
func rankEntrySeqKey() string {
	return fmt.Sprintf("%s:seq:rank_entry", keyPrefix)
}

// rankEntriesIndexKey returns the Redis key for the ZSET of rank entry ids scored by id
func rankEntriesIndexKey() string {
	return fmt.Sprintf("%s:idx:rank_entries", keyPrefix)
}

// rankEntriesForGameIndexKey returns the Redis key for the SET of rank entry keys for a game
func rankEntriesForGameIndexKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:rank_entries_for_game:%d", keyPrefix, gameID)
}

// rankEntriesForUserIndexKey returns the Redis key for the SET of rank entry keys owned by a user
func rankEntriesForUserIndexKey(userID model.UserID) string {
	return fmt.Sprintf("%s:idx:rank_entries_for_user:%s", keyPrefix, userID)
}
