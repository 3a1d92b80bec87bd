package generators

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/Dosada05/tournament-sessions/schedule"
)

// ErrSwissNotSupported is returned by the swiss generator: the format is a
// declared variant, but its pairing rules are produced round by round during
// play and cannot be scheduled up front by this service.
var ErrSwissNotSupported = errors.New("swiss format sessions cannot be pre-generated")

// GenerateSessionsParams carries everything a generator needs: the tournament
// being generated, the enrolled player IDs and a schedule spanning the
// requested campuses.
type GenerateSessionsParams struct {
	Tournament *models.Tournament
	PlayerIDs  []int
	Schedule   *schedule.Schedule
}

// SessionGenerator builds the full dated session set for one tournament
// format. Implementations are pure: they touch no storage and derive all
// timestamps from the supplied schedule.
type SessionGenerator interface {
	GenerateSessions(ctx context.Context, params GenerateSessionsParams) ([]*models.GeneratedSession, error)

	Name() string
}

// ForFormat selects the generator for a tournament format. The switch is
// exhaustive over the declared formats so that adding a format is a
// compile-visible change here rather than a runtime lookup miss.
func ForFormat(format models.TournamentFormat) (SessionGenerator, error) {
	switch format {
	case models.FormatLeague:
		return NewLeagueGenerator(), nil
	case models.FormatKnockout:
		return NewKnockoutGenerator(), nil
	case models.FormatGroupKnockout:
		return NewGroupKnockoutGenerator(), nil
	case models.FormatSwiss:
		return NewSwissGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown tournament format %q", format)
	}
}

// MinPlayers returns the minimum enrolled player count a format needs.
func MinPlayers(format models.TournamentFormat) int {
	switch format {
	case models.FormatGroupKnockout:
		return 6 // two viable groups of three
	default:
		return 2
	}
}
