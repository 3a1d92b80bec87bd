package generators

import (
	"context"
	"testing"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupKnockoutGeneratorRejectsSmallPools(t *testing.T) {
	gen := NewGroupKnockoutGenerator()
	_, err := gen.GenerateSessions(context.Background(), GenerateSessionsParams{
		Tournament: testTournament(models.FormatGroupKnockout),
		PlayerIDs:  testPlayers(5),
		Schedule:   testSchedule(2),
	})
	assert.Error(t, err)
}

func TestGroupKnockoutGeneratorSixtyFourPlayers(t *testing.T) {
	gen := NewGroupKnockoutGenerator()
	sessions, err := gen.GenerateSessions(context.Background(), GenerateSessionsParams{
		Tournament: testTournament(models.FormatGroupKnockout),
		PlayerIDs:  testPlayers(64),
		Schedule:   testSchedule(8),
	})
	require.NoError(t, err)

	var group, knockout []*models.GeneratedSession
	for _, s := range sessions {
		switch s.Phase {
		case models.PhaseGroup:
			group = append(group, s)
		case models.PhaseKnockout:
			knockout = append(knockout, s)
		default:
			t.Fatalf("unexpected phase %q", s.Phase)
		}
	}

	// 16 групп по 4 игрока: по 6 матчей в группе.
	assert.Len(t, group, 96)
	// Выходят по двое из группы: сетка на 32 плюс бронза.
	assert.Len(t, knockout, 32)
}

func TestGroupKnockoutGeneratorGroupStage(t *testing.T) {
	gen := NewGroupKnockoutGenerator()
	sessions, err := gen.GenerateSessions(context.Background(), GenerateSessionsParams{
		Tournament: testTournament(models.FormatGroupKnockout),
		PlayerIDs:  testPlayers(8), // две группы по 4
		Schedule:   testSchedule(2),
	})
	require.NoError(t, err)

	membersByGroup := make(map[int]map[int]bool)
	for _, s := range sessions {
		if s.Phase != models.PhaseGroup {
			continue
		}
		require.NotNil(t, s.GroupNumber)
		require.NotNil(t, s.Participant1ID)
		require.NotNil(t, s.Participant2ID)

		members, ok := membersByGroup[*s.GroupNumber]
		if !ok {
			members = make(map[int]bool)
			membersByGroup[*s.GroupNumber] = members
		}
		members[*s.Participant1ID] = true
		members[*s.Participant2ID] = true
	}

	require.Len(t, membersByGroup, 2)
	assert.Len(t, membersByGroup[1], 4)
	assert.Len(t, membersByGroup[2], 4)

	// Группы не пересекаются.
	for id := range membersByGroup[1] {
		assert.False(t, membersByGroup[2][id], "player %d in both groups", id)
	}
}

func TestGroupKnockoutGeneratorKnockoutIsNullAndAfterGroups(t *testing.T) {
	gen := NewGroupKnockoutGenerator()
	sessions, err := gen.GenerateSessions(context.Background(), GenerateSessionsParams{
		Tournament: testTournament(models.FormatGroupKnockout),
		PlayerIDs:  testPlayers(12),
		Schedule:   testSchedule(3),
	})
	require.NoError(t, err)

	lastGroupEnd := sessions[0].EndsAt
	for _, s := range sessions {
		if s.Phase == models.PhaseGroup && s.EndsAt.After(lastGroupEnd) {
			lastGroupEnd = s.EndsAt
		}
	}

	knockoutCount := 0
	for _, s := range sessions {
		if s.Phase != models.PhaseKnockout {
			continue
		}
		knockoutCount++
		// Участники сетки неизвестны до окончания групп.
		assert.Nil(t, s.Participant1ID)
		assert.Nil(t, s.Participant2ID)
		assert.True(t, s.StartsAt.After(lastGroupEnd),
			"knockout session starts before group stage finished")
	}

	// 12 игроков: 3 группы, выходят 6, сетка на 8 плюс бронза.
	assert.Equal(t, 8, knockoutCount)
}
