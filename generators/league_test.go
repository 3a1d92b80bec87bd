package generators

import (
	"context"
	"fmt"
	"testing"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeagueGeneratorSessionCount(t *testing.T) {
	testCases := []struct {
		players  int
		expected int
	}{
		{players: 2, expected: 1},
		{players: 4, expected: 6},
		{players: 5, expected: 10},
		{players: 32, expected: 496},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d players", tc.players), func(t *testing.T) {
			gen := NewLeagueGenerator()
			sessions, err := gen.GenerateSessions(context.Background(), GenerateSessionsParams{
				Tournament: testTournament(models.FormatLeague),
				PlayerIDs:  testPlayers(tc.players),
				Schedule:   testSchedule(4),
			})
			require.NoError(t, err)
			assert.Len(t, sessions, tc.expected)
		})
	}
}

func TestLeagueGeneratorEveryPairOnce(t *testing.T) {
	gen := NewLeagueGenerator()
	sessions, err := gen.GenerateSessions(context.Background(), GenerateSessionsParams{
		Tournament: testTournament(models.FormatLeague),
		PlayerIDs:  testPlayers(8),
		Schedule:   testSchedule(2),
	})
	require.NoError(t, err)
	require.Len(t, sessions, 28)

	seen := make(map[[2]int]bool)
	for _, s := range sessions {
		require.NotNil(t, s.Participant1ID)
		require.NotNil(t, s.Participant2ID)
		a, b := *s.Participant1ID, *s.Participant2ID
		require.NotEqual(t, a, b)
		if a > b {
			a, b = b, a
		}
		key := [2]int{a, b}
		assert.False(t, seen[key], "pair %v scheduled twice", key)
		seen[key] = true

		assert.Equal(t, models.PhaseLeague, s.Phase)
		assert.True(t, s.AutoGenerated)
		assert.Equal(t, 7, s.TournamentID)
	}
}

func TestLeagueGeneratorSchedulesWithoutFieldOverlap(t *testing.T) {
	gen := NewLeagueGenerator()
	sessions, err := gen.GenerateSessions(context.Background(), GenerateSessionsParams{
		Tournament: testTournament(models.FormatLeague),
		PlayerIDs:  testPlayers(10),
		Schedule:   testSchedule(3),
	})
	require.NoError(t, err)

	byField := make(map[int][]*models.GeneratedSession)
	for _, s := range sessions {
		byField[s.FieldNumber] = append(byField[s.FieldNumber], s)
	}

	for field, list := range byField {
		for i := 1; i < len(list); i++ {
			assert.False(t, list[i].StartsAt.Before(list[i-1].EndsAt),
				"field %d: session %d overlaps previous", field, i)
		}
	}
}

func TestLeagueGeneratorRejectsTooFewPlayers(t *testing.T) {
	gen := NewLeagueGenerator()
	_, err := gen.GenerateSessions(context.Background(), GenerateSessionsParams{
		Tournament: testTournament(models.FormatLeague),
		PlayerIDs:  testPlayers(1),
		Schedule:   testSchedule(1),
	})
	assert.Error(t, err)
}
