package generators

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/Dosada05/tournament-sessions/pairing"
)

// LeagueGenerator emits one session per unordered player pair, n(n-1)/2 in
// total, scheduled round by round with the circle method.
type LeagueGenerator struct{}

func NewLeagueGenerator() SessionGenerator {
	return &LeagueGenerator{}
}

func (g *LeagueGenerator) Name() string {
	return "League"
}

func (g *LeagueGenerator) GenerateSessions(ctx context.Context, params GenerateSessionsParams) ([]*models.GeneratedSession, error) {
	n := len(params.PlayerIDs)
	if n < 2 {
		return nil, fmt.Errorf("league requires at least 2 players, got %d", n)
	}

	rounds := pairing.CalculateRounds(n)
	sessions := make([]*models.GeneratedSession, 0, n*(n-1)/2)

	for round := 1; round <= rounds; round++ {
		pairs := pairing.RoundPairings(params.PlayerIDs, round)
		for i, pair := range pairs {
			p1, p2 := pair[0], pair[1]
			slot := params.Schedule.NextSlot()
			sessions = append(sessions, &models.GeneratedSession{
				TournamentID:   params.Tournament.ID,
				Round:          round,
				MatchNumber:    i + 1,
				Phase:          models.PhaseLeague,
				Participant1ID: &p1,
				Participant2ID: &p2,
				CampusID:       slot.CampusID,
				FieldNumber:    slot.FieldNumber,
				StartsAt:       slot.StartsAt,
				EndsAt:         slot.EndsAt,
				AutoGenerated:  true,
			})
		}
	}

	return sessions, nil
}
