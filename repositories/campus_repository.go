package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/lib/pq"
)

var ErrCampusOverrideInvalid = errors.New("campus schedule override references invalid campus or tournament")

type CampusRepository interface {
	ListScheduleOverrides(ctx context.Context, tournamentID int) ([]*models.CampusScheduleOverride, error)
	ReplaceScheduleOverrides(ctx context.Context, exec SQLExecutor, tournamentID int, overrides []*models.CampusScheduleOverride) error
}

type postgresCampusRepository struct {
	db *sql.DB
}

func NewPostgresCampusRepository(db *sql.DB) CampusRepository {
	return &postgresCampusRepository{db: db}
}

func (r *postgresCampusRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCampusRepository) ListScheduleOverrides(ctx context.Context, tournamentID int) ([]*models.CampusScheduleOverride, error) {
	query := `
		SELECT tournament_id, campus_id, match_duration_minutes, break_duration_minutes, parallel_fields
		FROM campus_schedule_overrides
		WHERE tournament_id = $1
		ORDER BY campus_id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query campus overrides for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	overrides := make([]*models.CampusScheduleOverride, 0)
	for rows.Next() {
		var o models.CampusScheduleOverride
		if scanErr := rows.Scan(
			&o.TournamentID,
			&o.CampusID,
			&o.MatchDurationMinutes,
			&o.BreakDurationMinutes,
			&o.ParallelFields,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan campus override row: %w", scanErr)
		}
		overrides = append(overrides, &o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during campus override rows iteration: %w", err)
	}
	return overrides, nil
}

// ReplaceScheduleOverrides сохраняет переопределения из запроса генерации,
// чтобы сгенерированное расписание можно было воспроизвести по данным БД.
func (r *postgresCampusRepository) ReplaceScheduleOverrides(ctx context.Context, exec SQLExecutor, tournamentID int, overrides []*models.CampusScheduleOverride) error {
	executor := r.getExecutor(exec)

	deleteQuery := `DELETE FROM campus_schedule_overrides WHERE tournament_id = $1`
	if _, err := executor.ExecContext(ctx, deleteQuery, tournamentID); err != nil {
		return fmt.Errorf("failed to clear campus overrides for tournament %d: %w", tournamentID, err)
	}

	insertQuery := `
		INSERT INTO campus_schedule_overrides
			(tournament_id, campus_id, match_duration_minutes, break_duration_minutes, parallel_fields)
		VALUES ($1, $2, $3, $4, $5)`
	for _, o := range overrides {
		if _, err := executor.ExecContext(ctx, insertQuery,
			tournamentID, o.CampusID, o.MatchDurationMinutes, o.BreakDurationMinutes, o.ParallelFields,
		); err != nil {
			return r.handleCampusError(err)
		}
	}
	return nil
}

func (r *postgresCampusRepository) handleCampusError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "campus_schedule_overrides_tournament_id_fkey", "campus_schedule_overrides_campus_id_fkey":
			return ErrCampusOverrideInvalid
		}
	}
	return err
}
