package models

// CampusScheduleParams — необязательные переопределения параметров
// расписания для одного кампуса. Отсутствующее поле наследует значение
// из настроек турнира, а затем из параметров запроса.
type CampusScheduleParams struct {
	MatchDurationMinutes *int `json:"match_duration_minutes,omitempty"`
	BreakDurationMinutes *int `json:"break_duration_minutes,omitempty"`
	ParallelFields       *int `json:"parallel_fields,omitempty"`
}

// CampusScheduleOverride — сохранённое переопределение расписания кампуса
// в рамках конкретного турнира.
type CampusScheduleOverride struct {
	TournamentID int `json:"tournament_id" db:"tournament_id"`
	CampusID     int `json:"campus_id" db:"campus_id"`
	CampusScheduleParams
}
