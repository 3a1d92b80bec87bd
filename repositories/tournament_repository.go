package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-sessions/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	CountEnrolledPlayers(ctx context.Context, tournamentID int) (int, error)
	ListEnrolledPlayerIDs(ctx context.Context, tournamentID int) ([]int, error)
	SetSessionsGenerated(ctx context.Context, exec SQLExecutor, tournamentID int, generated bool, generatedAt *time.Time) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, format, status, start_date,
		       default_match_duration_minutes, default_break_duration_minutes, default_parallel_fields,
		       number_of_rounds, sessions_generated, sessions_generated_at, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Format,
		&t.Status,
		&t.StartDate,
		&t.DefaultMatchDurationMinutes,
		&t.DefaultBreakDurationMinutes,
		&t.DefaultParallelFields,
		&t.NumberOfRounds,
		&t.SessionsGenerated,
		&t.SessionsGeneratedAt,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return t, nil
}

// CountEnrolledPlayers — граница с подсистемой регистрации: сервису
// генерации достаточно числа подтверждённых игроков.
func (r *postgresTournamentRepository) CountEnrolledPlayers(ctx context.Context, tournamentID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM tournament_enrollments
		WHERE tournament_id = $1 AND status = 'confirmed'`

	var count int
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count enrolled players for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresTournamentRepository) ListEnrolledPlayerIDs(ctx context.Context, tournamentID int) ([]int, error) {
	query := `
		SELECT player_id
		FROM tournament_enrollments
		WHERE tournament_id = $1 AND status = 'confirmed'
		ORDER BY enrolled_at ASC, player_id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrolled players for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("failed to scan enrolled player row: %w", scanErr)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during enrolled player rows iteration: %w", err)
	}
	return ids, nil
}

func (r *postgresTournamentRepository) SetSessionsGenerated(ctx context.Context, exec SQLExecutor, tournamentID int, generated bool, generatedAt *time.Time) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET sessions_generated = $1, sessions_generated_at = $2 WHERE id = $3`

	result, err := executor.ExecContext(ctx, query, generated, generatedAt, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to update sessions_generated for tournament %d: %w", tournamentID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
