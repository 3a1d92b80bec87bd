package generators

import (
	"context"

	"github.com/Dosada05/tournament-sessions/models"
)

// SwissGenerator is the declared variant for swiss tournaments. Swiss
// pairings depend on standings after each round, so there is nothing to
// pre-generate; callers get a validation error instead of a silent miss.
type SwissGenerator struct{}

func NewSwissGenerator() SessionGenerator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) Name() string {
	return "Swiss"
}

func (g *SwissGenerator) GenerateSessions(ctx context.Context, params GenerateSessionsParams) ([]*models.GeneratedSession, error) {
	return nil, ErrSwissNotSupported
}
