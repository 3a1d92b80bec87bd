package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-sessions/models"
)

// AuditRecorder — граница с подсистемой аудита: нарушения ограничений
// доступа должны оставлять след в журнале безопасности.
type AuditRecorder interface {
	RecordScopeViolation(ctx context.Context, caller models.Caller, tournamentID int, detail string)
}

type slogAuditRecorder struct {
	logger *slog.Logger
}

func NewSlogAuditRecorder(logger *slog.Logger) AuditRecorder {
	return &slogAuditRecorder{logger: logger}
}

func (a *slogAuditRecorder) RecordScopeViolation(ctx context.Context, caller models.Caller, tournamentID int, detail string) {
	a.logger.Warn("campus scope violation",
		slog.Int("user_id", caller.UserID),
		slog.Int("tournament_id", tournamentID),
		slog.String("detail", detail),
	)
}

// CampusScopeGuard проверяет инвариант уровня запроса: ограниченный
// пользователь может затрагивать максимум один кампус. Проверка идёт
// раньше любой другой валидации и до какой-либо записи в БД.
type CampusScopeGuard struct {
	audit AuditRecorder
}

func NewCampusScopeGuard(audit AuditRecorder) *CampusScopeGuard {
	return &CampusScopeGuard{audit: audit}
}

func (g *CampusScopeGuard) Check(ctx context.Context, caller models.Caller, tournamentID int, req models.GenerationRequest) error {
	if caller.IsAdmin || !caller.SingleCampusRestricted {
		return nil
	}

	if len(req.CampusIDs) > 1 {
		g.audit.RecordScopeViolation(ctx, caller, tournamentID,
			fmt.Sprintf("requested %d campuses", len(req.CampusIDs)))
		return ErrCampusScopeViolation
	}
	if len(req.CampusScheduleOverrides) > 1 {
		g.audit.RecordScopeViolation(ctx, caller, tournamentID,
			fmt.Sprintf("requested overrides for %d campuses", len(req.CampusScheduleOverrides)))
		return ErrCampusScopeViolation
	}
	return nil
}
