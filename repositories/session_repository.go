package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/lib/pq"
)

var (
	ErrSessionNotFound           = errors.New("session not found")
	ErrSessionTournamentInvalid  = errors.New("session tournament conflict or invalid")
	ErrSessionParticipantInvalid = errors.New("session participant conflict or invalid")
)

// bulkInsertChunkSize ограничивает размер одного INSERT при массовой записи,
// чтобы удерживать размер транзакции и время блокировок в разумных пределах.
const bulkInsertChunkSize = 100

const sessionInsertColumns = 13

type SessionRepository interface {
	BulkCreate(ctx context.Context, exec SQLExecutor, sessions []*models.GeneratedSession) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.GeneratedSession, error)
	DeleteAutoGenerated(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error)
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// BulkCreate вставляет сессии пачками по bulkInsertChunkSize строк.
// Вызывается внутри транзакции генерации: либо записываются все сессии,
// либо ни одной.
func (r *postgresSessionRepository) BulkCreate(ctx context.Context, exec SQLExecutor, sessions []*models.GeneratedSession) error {
	executor := r.getExecutor(exec)

	for start := 0; start < len(sessions); start += bulkInsertChunkSize {
		end := start + bulkInsertChunkSize
		if end > len(sessions) {
			end = len(sessions)
		}
		if err := r.insertChunk(ctx, executor, sessions[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresSessionRepository) insertChunk(ctx context.Context, executor SQLExecutor, chunk []*models.GeneratedSession) error {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		INSERT INTO tournament_sessions
			(tournament_id, round, match_number, phase, is_bronze, group_number,
			 participant1_id, participant2_id, campus_id, field_number, starts_at, ends_at, auto_generated)
		VALUES `)

	args := make([]interface{}, 0, len(chunk)*sessionInsertColumns)
	for i, s := range chunk {
		if i > 0 {
			queryBuilder.WriteString(", ")
		}
		queryBuilder.WriteString("(")
		for col := 0; col < sessionInsertColumns; col++ {
			if col > 0 {
				queryBuilder.WriteString(", ")
			}
			fmt.Fprintf(&queryBuilder, "$%d", i*sessionInsertColumns+col+1)
		}
		queryBuilder.WriteString(")")

		args = append(args,
			s.TournamentID, s.Round, s.MatchNumber, s.Phase, s.IsBronze, s.GroupNumber,
			s.Participant1ID, s.Participant2ID, s.CampusID, s.FieldNumber, s.StartsAt, s.EndsAt, s.AutoGenerated,
		)
	}

	if _, err := executor.ExecContext(ctx, queryBuilder.String(), args...); err != nil {
		return r.handleSessionError(err)
	}
	return nil
}

func (r *postgresSessionRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.GeneratedSession, error) {
	query := `
		SELECT id, tournament_id, round, match_number, phase, is_bronze, group_number,
		       participant1_id, participant2_id, campus_id, field_number, starts_at, ends_at,
		       auto_generated, created_at
		FROM tournament_sessions
		WHERE tournament_id = $1
		ORDER BY starts_at ASC, round ASC, match_number ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	sessions := make([]*models.GeneratedSession, 0)
	for rows.Next() {
		var s models.GeneratedSession
		if scanErr := rows.Scan(
			&s.ID,
			&s.TournamentID,
			&s.Round,
			&s.MatchNumber,
			&s.Phase,
			&s.IsBronze,
			&s.GroupNumber,
			&s.Participant1ID,
			&s.Participant2ID,
			&s.CampusID,
			&s.FieldNumber,
			&s.StartsAt,
			&s.EndsAt,
			&s.AutoGenerated,
			&s.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", scanErr)
		}
		sessions = append(sessions, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during session rows iteration: %w", err)
	}
	return sessions, nil
}

// DeleteAutoGenerated удаляет только автосгенерированные сессии турнира
// вместе с зависимыми записями посещаемости. Сессии, созданные вручную,
// не затрагиваются. Ноль удалённых строк — не ошибка.
func (r *postgresSessionRepository) DeleteAutoGenerated(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error) {
	executor := r.getExecutor(exec)

	attendanceQuery := `
		DELETE FROM session_attendance
		WHERE session_id IN (
			SELECT id FROM tournament_sessions
			WHERE tournament_id = $1 AND auto_generated = TRUE
		)`
	if _, err := executor.ExecContext(ctx, attendanceQuery, tournamentID); err != nil {
		return 0, fmt.Errorf("failed to delete attendance for tournament %d sessions: %w", tournamentID, err)
	}

	query := `DELETE FROM tournament_sessions WHERE tournament_id = $1 AND auto_generated = TRUE`
	result, err := executor.ExecContext(ctx, query, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete generated sessions for tournament %d: %w", tournamentID, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check deleted session rows: %w", err)
	}
	return deleted, nil
}

func (r *postgresSessionRepository) handleSessionError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "tournament_sessions_tournament_id_fkey":
			return ErrSessionTournamentInvalid
		case "tournament_sessions_participant1_id_fkey", "tournament_sessions_participant2_id_fkey":
			return ErrSessionParticipantInvalid
		}
	}
	return err
}
