package generators

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/Dosada05/tournament-sessions/pairing"
)

// KnockoutGenerator schedules a full single-elimination bracket. Round 1
// carries explicit mirrored-seed participant pairs; every later round (and
// the bronze match) is a time slot whose participants stay NULL until
// earlier results resolve them. Byes are seeds beyond the player count:
// their round-1 slots are kept in the bracket but left unassigned.
type KnockoutGenerator struct{}

func NewKnockoutGenerator() SessionGenerator {
	return &KnockoutGenerator{}
}

func (g *KnockoutGenerator) Name() string {
	return "Knockout"
}

func (g *KnockoutGenerator) GenerateSessions(ctx context.Context, params GenerateSessionsParams) ([]*models.GeneratedSession, error) {
	n := len(params.PlayerIDs)
	if n < 2 {
		return nil, fmt.Errorf("knockout requires at least 2 players, got %d", n)
	}

	structure := pairing.KnockoutStructureFor(n)
	sessions := appendKnockoutSessions(nil, params, params.PlayerIDs, structure, 0)
	return sessions, nil
}

// appendKnockoutSessions emits the bracket_size-1 bracket sessions plus an
// optional bronze match. playerIDs may be nil (group-knockout stage, where
// qualifiers are unknown); then even round 1 gets NULL participant pairs.
// Rounds are numbered from 1 and offset by roundOffset.
func appendKnockoutSessions(sessions []*models.GeneratedSession, params GenerateSessionsParams, playerIDs []int, structure pairing.KnockoutStructure, roundOffset int) []*models.GeneratedSession {
	t := params.Tournament
	sched := params.Schedule

	seedPairs := pairing.FirstRoundSeedPairs(structure.BracketSize)
	for i, seeds := range seedPairs {
		var p1, p2 *int
		if playerIDs != nil && seeds[0] < len(playerIDs) && seeds[1] < len(playerIDs) {
			a, b := playerIDs[seeds[0]], playerIDs[seeds[1]]
			p1, p2 = &a, &b
		}
		slot := sched.NextSlot()
		sessions = append(sessions, &models.GeneratedSession{
			TournamentID:   t.ID,
			Round:          roundOffset + 1,
			MatchNumber:    i + 1,
			Phase:          models.PhaseKnockout,
			Participant1ID: p1,
			Participant2ID: p2,
			CampusID:       slot.CampusID,
			FieldNumber:    slot.FieldNumber,
			StartsAt:       slot.StartsAt,
			EndsAt:         slot.EndsAt,
			AutoGenerated:  true,
		})
	}

	for round := 2; round <= structure.Rounds; round++ {
		sched.RoundBreak()
		matches := structure.BracketSize >> uint(round)
		for m := 1; m <= matches; m++ {
			slot := sched.NextSlot()
			sessions = append(sessions, &models.GeneratedSession{
				TournamentID:  t.ID,
				Round:         roundOffset + round,
				MatchNumber:   m,
				Phase:         models.PhaseKnockout,
				CampusID:      slot.CampusID,
				FieldNumber:   slot.FieldNumber,
				StartsAt:      slot.StartsAt,
				EndsAt:        slot.EndsAt,
				AutoGenerated: true,
			})
		}
	}

	if structure.HasBronze {
		slot := sched.NextSlot()
		sessions = append(sessions, &models.GeneratedSession{
			TournamentID:  t.ID,
			Round:         roundOffset + structure.Rounds,
			MatchNumber:   2,
			Phase:         models.PhaseKnockout,
			IsBronze:      true,
			CampusID:      slot.CampusID,
			FieldNumber:   slot.FieldNumber,
			StartsAt:      slot.StartsAt,
			EndsAt:        slot.EndsAt,
			AutoGenerated: true,
		})
	}

	return sessions
}
