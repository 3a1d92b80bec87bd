package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/tournament-sessions/middleware"
	"github.com/Dosada05/tournament-sessions/models"
	"github.com/Dosada05/tournament-sessions/services"
	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	generationService *services.GenerationService
}

func NewSessionHandler(generationService *services.GenerationService) *SessionHandler {
	return &SessionHandler{generationService: generationService}
}

func callerFromRequest(r *http.Request) (models.Caller, error) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return models.Caller{}, err
	}
	return models.Caller{
		UserID:                 userID,
		IsAdmin:                middleware.IsAdminFromContext(r.Context()),
		SingleCampusRestricted: middleware.IsSingleCampusFromContext(r.Context()),
	}, nil
}

func tournamentIDFromRequest(r *http.Request) (int, error) {
	idStr := chi.URLParam(r, "tournamentID")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid tournament ID in URL")
	}
	return id, nil
}

// Generate запускает генерацию расписания турнира.
// POST /tournaments/{tournamentID}/sessions/generate
func (h *SessionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDFromRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller, err := callerFromRequest(r)
	if err != nil {
		forbiddenResponse(w, r, err.Error())
		return
	}

	var req models.GenerationRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.generationService.Generate(r.Context(), tournamentID, req, caller)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusOK
	if result.TaskID != "" {
		// Генерация ушла в фон, клиент опрашивает статус по task_id.
		status = http.StatusAccepted
	}
	if err := writeJSON(w, status, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Preview строит расписание без записи в базу.
// POST /tournaments/{tournamentID}/sessions/preview
func (h *SessionHandler) Preview(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDFromRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller, err := callerFromRequest(r)
	if err != nil {
		forbiddenResponse(w, r, err.Error())
		return
	}

	var req models.GenerationRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.generationService.Preview(r.Context(), tournamentID, req, caller)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Status возвращает состояние фоновой задачи генерации.
// GET /tournaments/{tournamentID}/sessions/status/{taskID}
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDFromRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		badRequestResponse(w, r, errors.New("missing task ID in URL"))
		return
	}

	job, err := h.generationService.PollStatus(r.Context(), tournamentID, taskID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, job, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete удаляет автоматически сгенерированные сессии турнира.
// DELETE /tournaments/{tournamentID}/sessions
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDFromRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	deleted, err := h.generationService.DeleteGenerated(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	env := jsonResponse{"deleted_count": deleted}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List возвращает сгенерированное расписание турнира.
// GET /tournaments/{tournamentID}/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDFromRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sessions, err := h.generationService.ListSessions(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	env := jsonResponse{"sessions": sessions, "count": len(sessions)}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
