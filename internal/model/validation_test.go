package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEntry() *RankEntry {
	return &RankEntry{
		Rank:        1200,
		Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		OwnerUserID: "u1",
		GameID:      1,
	}
}

func TestValidateGame(t *testing.T) {
	assert.NoError(t, ValidateGame(&Game{Name: "Chess"}))

	for _, name := range []string{"", "   ", "\t\n"} {
		err := ValidateGame(&Game{Name: name})
		require.Error(t, err, "name %q", name)
		assert.ErrorIs(t, err, ErrValidation)

		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "name", ve.Field)
	}
}

func TestValidateRankEntryAcceptsBounds(t *testing.T) {
	for _, rank := range []int{MinRank, 2500, MaxRank} {
		e := validEntry()
		e.Rank = rank
		assert.NoError(t, ValidateRankEntry(e), "rank %d", rank)
	}
}

func TestValidateRankEntryRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *RankEntry)
		field  string
	}{
		{"rank zero", func(e *RankEntry) { e.Rank = 0 }, "rank"},
		{"rank negative", func(e *RankEntry) { e.Rank = -4 }, "rank"},
		{"rank above max", func(e *RankEntry) { e.Rank = 5001 }, "rank"},
		{"zero date", func(e *RankEntry) { e.Date = time.Time{} }, "date"},
		{"epoch date", func(e *RankEntry) { e.Date = time.Unix(0, 0) }, "date"},
		{"missing game", func(e *RankEntry) { e.GameID = 0 }, "gameId"},
		{"missing owner", func(e *RankEntry) { e.OwnerUserID = "" }, "ownerUserId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(e)

			err := ValidateRankEntry(e)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateRankEntryIsDeterministic(t *testing.T) {
	e := validEntry()
	e.Rank = 9000
	first := ValidateRankEntry(e)
	second := ValidateRankEntry(e)
	assert.Equal(t, first, second)
}

func TestRankEntryFilterMatches(t *testing.T) {
	e := &RankEntry{OwnerUserID: "u1", GameID: 3}

	assert.True(t, RankEntryFilter{}.Matches(e))
	assert.True(t, RankEntryFilter{OwnerUserID: "u1"}.Matches(e))
	assert.True(t, RankEntryFilter{GameID: 3}.Matches(e))
	assert.True(t, RankEntryFilter{OwnerUserID: "u1", GameID: 3}.Matches(e))
	assert.False(t, RankEntryFilter{OwnerUserID: "u2"}.Matches(e))
	assert.False(t, RankEntryFilter{OwnerUserID: "u1", GameID: 4}.Matches(e))
}
