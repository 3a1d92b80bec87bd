package models

import "time"

// TournamentFormat представляет форматы турнира, соответствующие ENUM в БД.
type TournamentFormat string

const (
	FormatLeague        TournamentFormat = "league"
	FormatKnockout      TournamentFormat = "knockout"
	FormatGroupKnockout TournamentFormat = "group_knockout"
	FormatSwiss         TournamentFormat = "swiss"
)

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusRegistration     TournamentStatus = "registration"
	StatusEnrollmentClosed TournamentStatus = "enrollment_closed"
	StatusActive           TournamentStatus = "active"
	StatusCompleted        TournamentStatus = "completed"
	StatusCanceled         TournamentStatus = "canceled"
)

// Tournament представляет турнир. Сущность принадлежит подсистеме регистрации;
// этот сервис только читает её и выставляет флаг sessions_generated.
type Tournament struct {
	ID     int              `json:"id" db:"id"`
	Name   string           `json:"name" db:"name"`
	Format TournamentFormat `json:"format" db:"format"`
	Status TournamentStatus `json:"status" db:"status"`

	StartDate time.Time `json:"start_date" db:"start_date"`

	// Параметры расписания по умолчанию. NULL в БД означает, что значение
	// берётся из параметров запроса на генерацию.
	DefaultMatchDurationMinutes *int `json:"default_match_duration_minutes,omitempty" db:"default_match_duration_minutes"`
	DefaultBreakDurationMinutes *int `json:"default_break_duration_minutes,omitempty" db:"default_break_duration_minutes"`
	DefaultParallelFields       *int `json:"default_parallel_fields,omitempty" db:"default_parallel_fields"`

	// Число туров для форматов, где оно задаётся явно (например, swiss).
	NumberOfRounds *int `json:"number_of_rounds,omitempty" db:"number_of_rounds"`

	SessionsGenerated   bool       `json:"sessions_generated" db:"sessions_generated"`
	SessionsGeneratedAt *time.Time `json:"sessions_generated_at,omitempty" db:"sessions_generated_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
