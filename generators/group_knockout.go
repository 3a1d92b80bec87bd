package generators

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/Dosada05/tournament-sessions/pairing"
)

// GroupKnockoutGenerator plays a round-robin inside each group, then a
// knockout over the pool of group qualifiers. Group sessions carry explicit
// participants; knockout sessions are all NULL pairs, because qualifiers are
// known only after group play. The knockout stage starts strictly after the
// last group slot plus the inter-round buffer.
type GroupKnockoutGenerator struct{}

func NewGroupKnockoutGenerator() SessionGenerator {
	return &GroupKnockoutGenerator{}
}

func (g *GroupKnockoutGenerator) Name() string {
	return "GroupKnockout"
}

func (g *GroupKnockoutGenerator) GenerateSessions(ctx context.Context, params GenerateSessionsParams) ([]*models.GeneratedSession, error) {
	n := len(params.PlayerIDs)

	dist, err := pairing.OptimalGroupDistribution(n)
	if err != nil {
		return nil, fmt.Errorf("group knockout: %w", err)
	}

	groups := make([][]int, dist.GroupsCount)
	offset := 0
	for i, size := range dist.GroupSizes {
		groups[i] = params.PlayerIDs[offset : offset+size]
		offset += size
	}

	sessions := make([]*models.GeneratedSession, 0, n*2)
	t := params.Tournament
	sched := params.Schedule

	maxRounds := 0
	for _, group := range groups {
		if r := pairing.CalculateRounds(len(group)); r > maxRounds {
			maxRounds = r
		}
	}

	// Groups advance round by round together so every group fills the same
	// field window instead of one group monopolising the earliest slots.
	for round := 1; round <= maxRounds; round++ {
		matchNumber := 0
		for gi, group := range groups {
			if round > pairing.CalculateRounds(len(group)) {
				continue
			}
			groupNumber := gi + 1
			for _, pair := range pairing.RoundPairings(group, round) {
				p1, p2 := pair[0], pair[1]
				gn := groupNumber
				matchNumber++
				slot := sched.NextSlot()
				sessions = append(sessions, &models.GeneratedSession{
					TournamentID:   t.ID,
					Round:          round,
					MatchNumber:    matchNumber,
					Phase:          models.PhaseGroup,
					GroupNumber:    &gn,
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
	}

	// Buffer between the stages: the knockout draw cannot interleave with
	// group play.
	sched.RoundBreak()

	structure := pairing.KnockoutStructureFor(dist.KnockoutSize)
	sessions = appendKnockoutSessions(sessions, params, nil, structure, 0)

	return sessions, nil
}
