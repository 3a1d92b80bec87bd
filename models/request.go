package models

// GenerationRequest — параметры запроса на генерацию (или предпросмотр)
// сессий турнира.
type GenerationRequest struct {
	ParallelFields         int `json:"parallel_fields"`
	SessionDurationMinutes int `json:"session_duration_minutes"`
	BreakMinutes           int `json:"break_minutes"`
	// Поле опционально: поддерживаемые форматы сами определяют число раундов.
	NumberOfRounds *int `json:"number_of_rounds,omitempty"`

	// Админ может указать любое число кампусов, ограниченный пользователь —
	// не более одного (см. CampusScopeGuard).
	CampusIDs []int `json:"campus_ids,omitempty"`

	// Переопределения расписания по кампусам, ключ — ID кампуса.
	CampusScheduleOverrides map[int]CampusScheduleParams `json:"campus_schedule_overrides,omitempty"`
}
