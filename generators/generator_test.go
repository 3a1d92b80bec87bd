package generators

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/Dosada05/tournament-sessions/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTournament(format models.TournamentFormat) *models.Tournament {
	return &models.Tournament{ID: 7, Format: format}
}

func testSchedule(fields int) *schedule.Schedule {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	params := schedule.Params{MatchDurationMinutes: 30, BreakDurationMinutes: 5, ParallelFields: fields}
	return schedule.New(schedule.NewCampusPlan(1, params, start))
}

func testPlayers(n int) []int {
	players := make([]int, n)
	for i := range players {
		players[i] = 100 + i
	}
	return players
}

func TestForFormat(t *testing.T) {
	testCases := []struct {
		format models.TournamentFormat
		name   string
	}{
		{format: models.FormatLeague, name: "League"},
		{format: models.FormatKnockout, name: "Knockout"},
		{format: models.FormatGroupKnockout, name: "GroupKnockout"},
		{format: models.FormatSwiss, name: "Swiss"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.format), func(t *testing.T) {
			gen, err := ForFormat(tc.format)
			require.NoError(t, err)
			assert.Equal(t, tc.name, gen.Name())
		})
	}

	_, err := ForFormat(models.TournamentFormat("double_elimination"))
	assert.Error(t, err)
}

func TestMinPlayers(t *testing.T) {
	assert.Equal(t, 2, MinPlayers(models.FormatLeague))
	assert.Equal(t, 2, MinPlayers(models.FormatKnockout))
	assert.Equal(t, 6, MinPlayers(models.FormatGroupKnockout))
}

func TestSwissGeneratorNotSupported(t *testing.T) {
	gen := NewSwissGenerator()
	_, err := gen.GenerateSessions(context.Background(), GenerateSessionsParams{
		Tournament: testTournament(models.FormatSwiss),
		PlayerIDs:  testPlayers(8),
		Schedule:   testSchedule(1),
	})
	assert.ErrorIs(t, err, ErrSwissNotSupported)
}
