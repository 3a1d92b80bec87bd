package models

import "time"

// SessionPhase помечает стадию турнира, к которой относится сессия.
type SessionPhase string

const (
	PhaseLeague   SessionPhase = "league"
	PhaseGroup    SessionPhase = "group"
	PhaseKnockout SessionPhase = "knockout"
)

// GeneratedSession — один запланированный матч турнира.
//
// Пара участников либо содержит два различных ID, либо оба поля NULL:
// NULL означает, что участники определятся по результатам предыдущего
// раунда (генератор планирует временные слоты, а не результаты).
type GeneratedSession struct {
	ID           int          `json:"id" db:"id"`
	TournamentID int          `json:"tournament_id" db:"tournament_id"`
	Round        int          `json:"round" db:"round"`
	MatchNumber  int          `json:"match_number" db:"match_number"`
	Phase        SessionPhase `json:"phase" db:"phase"`
	IsBronze     bool         `json:"is_bronze" db:"is_bronze"`

	// Номер группы для сессий группового этапа (1-based), иначе NULL.
	GroupNumber *int `json:"group_number,omitempty" db:"group_number"`

	Participant1ID *int `json:"participant1_id" db:"participant1_id"`
	Participant2ID *int `json:"participant2_id" db:"participant2_id"`

	CampusID    int       `json:"campus_id" db:"campus_id"`
	FieldNumber int       `json:"field_number" db:"field_number"`
	StartsAt    time.Time `json:"starts_at" db:"starts_at"`
	EndsAt      time.Time `json:"ends_at" db:"ends_at"`

	AutoGenerated bool      `json:"auto_generated" db:"auto_generated"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
