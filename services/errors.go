package services

import "errors"

// Общие ошибки сервисного слоя, используемые в маппинге HTTP.
var (
	// Ресурсы
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTaskNotFound       = errors.New("generation task not found for this tournament")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed         = errors.New("validation failed")
	ErrEnrollmentNotClosed      = errors.New("tournament enrollment is not closed yet")
	ErrNotEnoughPlayers         = errors.New("not enough enrolled players for this format")
	ErrFormatNotSupported       = errors.New("tournament format does not support session generation")
	ErrSessionsAlreadyGenerated = errors.New("sessions are already generated; delete them before regenerating")

	// Ошибки доступа
	ErrCampusScopeViolation = errors.New("caller is restricted to a single campus")
)
