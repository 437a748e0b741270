package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"queridodiario/internal/models"
	"queridodiario/internal/service"
	"queridodiario/internal/validation"
)

// AdminHandler serves the tenant administration API
type AdminHandler struct {
	diaryService *service.DiaryService
	emailService *service.EmailService
	logger       *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(diaryService *service.DiaryService, emailService *service.EmailService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		diaryService: diaryService,
		emailService: emailService,
		logger:       logger,
	}
}

func (h *AdminHandler) diaryView(d models.Diary) DiaryView {
	return DiaryView{Diary: d, PanelURL: h.emailService.PanelURL(d.AccessToken)}
}

// tenantID returns the signed-in tenant. Routes using it are wrapped in RequireAuth.
func tenantID(r *http.Request) string {
	return GetTenantFromContext(r.Context()).ID
}

// ListDiaries returns the tenant's diaries
func (h *AdminHandler) ListDiaries(w http.ResponseWriter, r *http.Request) {
	diaries, err := h.diaryService.ListDiaries(r.Context(), tenantID(r))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	views := make([]DiaryView, 0, len(diaries))
	for _, d := range diaries {
		views = append(views, h.diaryView(d))
	}
	respondJSON(w, http.StatusOK, views)
}

// GetDiary returns one diary
func (h *AdminHandler) GetDiary(w http.ResponseWriter, r *http.Request) {
	diary, err := h.diaryService.GetDiary(r.Context(), tenantID(r), r.PathValue("diaryID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, h.diaryView(*diary))
}

// CreateDiary creates a diary with the default routines
func (h *AdminHandler) CreateDiary(w http.ResponseWriter, r *http.Request) {
	var req diaryRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	diary, err := h.diaryService.CreateDiary(r.Context(), tenantID(r), req.Name, req.Avatar)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.diaryView(*diary))
}

// UpdateDiary renames a diary or changes its avatar
func (h *AdminHandler) UpdateDiary(w http.ResponseWriter, r *http.Request) {
	var req diaryRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	diary, err := h.diaryService.UpdateDiary(r.Context(), tenantID(r), r.PathValue("diaryID"), req.Name, req.Avatar)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, h.diaryView(*diary))
}

// DeleteDiary removes a diary and everything recorded in it
func (h *AdminHandler) DeleteDiary(w http.ResponseWriter, r *http.Request) {
	if err := h.diaryService.DeleteDiary(r.Context(), tenantID(r), r.PathValue("diaryID")); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegenerateToken replaces the diary access token, revoking the old panel link
func (h *AdminHandler) RegenerateToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.diaryService.RegenerateToken(r.Context(), tenantID(r), r.PathValue("diaryID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"accessToken": token,
		"panelUrl":    h.emailService.PanelURL(token),
	})
}

// ShareDiary emails the panel link to a caregiver
func (h *AdminHandler) ShareDiary(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	diary, err := h.diaryService.GetDiary(r.Context(), tenantID(r), r.PathValue("diaryID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	if !h.emailService.IsEnabled() {
		respondJSON(w, http.StatusServiceUnavailable, errorBody{Error: "Email is not configured"})
		return
	}
	if err := h.emailService.SendPanelLink(r.Context(), req.Email, diary); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ListRoutines returns a diary's routines in order
func (h *AdminHandler) ListRoutines(w http.ResponseWriter, r *http.Request) {
	routines, err := h.diaryService.ListRoutines(r.Context(), tenantID(r), r.PathValue("diaryID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, routines)
}

// CreateRoutine appends a routine to a diary
func (h *AdminHandler) CreateRoutine(w http.ResponseWriter, r *http.Request) {
	var req routineRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	routine, err := h.diaryService.CreateRoutine(r.Context(), tenantID(r), r.PathValue("diaryID"), req.Name, req.Icon)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, routine)
}

// UpdateRoutine edits a routine's name and icon
func (h *AdminHandler) UpdateRoutine(w http.ResponseWriter, r *http.Request) {
	var req routineRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	routine, err := h.diaryService.UpdateRoutine(r.Context(), tenantID(r), r.PathValue("diaryID"), r.PathValue("routineID"), req.Name, req.Icon)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, routine)
}

// DeleteRoutine removes a routine and its activities
func (h *AdminHandler) DeleteRoutine(w http.ResponseWriter, r *http.Request) {
	if err := h.diaryService.DeleteRoutine(r.Context(), tenantID(r), r.PathValue("diaryID"), r.PathValue("routineID")); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveRoutine swaps a routine with its neighbour
func (h *AdminHandler) MoveRoutine(w http.ResponseWriter, r *http.Request) {
	var req moveRoutineRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	diaryID := r.PathValue("diaryID")
	err := h.diaryService.MoveRoutine(r.Context(), tenantID(r), diaryID, r.PathValue("routineID"), service.Direction(req.Direction))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	routines, err := h.diaryService.ListRoutines(r.Context(), tenantID(r), diaryID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, routines)
}

// ListActivities returns a routine's activities with their weekdays
func (h *AdminHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.diaryService.ListActivities(r.Context(), tenantID(r), r.PathValue("diaryID"), r.PathValue("routineID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, activities)
}

func (req activityRequest) input() service.ActivityInput {
	return service.ActivityInput{
		Title:         req.Title,
		Icon:          req.Icon,
		Points:        req.Points,
		Type:          req.Type,
		ScheduledTime: req.ScheduledTime,
		Days:          req.Days,
	}
}

// CreateActivity adds an activity to a routine
func (h *AdminHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	activity, err := h.diaryService.CreateActivity(r.Context(), tenantID(r), r.PathValue("diaryID"), r.PathValue("routineID"), req.input())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, activity)
}

// UpdateActivity edits an activity and its weekday selection
func (h *AdminHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	activity, err := h.diaryService.UpdateActivity(r.Context(), tenantID(r), r.PathValue("diaryID"), r.PathValue("routineID"), r.PathValue("activityID"), req.input())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, activity)
}

// DeleteActivity removes an activity and its completions
func (h *AdminHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	err := h.diaryService.DeleteActivity(r.Context(), tenantID(r), r.PathValue("diaryID"), r.PathValue("routineID"), r.PathValue("activityID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBoard returns the weekday kanban of a routine
func (h *AdminHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.diaryService.Board(r.Context(), tenantID(r), r.PathValue("diaryID"), r.PathValue("routineID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, board)
}

// ReorderWeekday rewrites the order of one weekday column
func (h *AdminHandler) ReorderWeekday(w http.ResponseWriter, r *http.Request) {
	day, err := models.ParseWeekday(r.PathValue("day"))
	if err != nil {
		respondServiceError(w, h.logger, validation.ValidationError{Field: "day", Message: err.Error()})
		return
	}

	var req reorderRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	if err := h.diaryService.ReorderWeekday(r.Context(), tenantID(r), r.PathValue("diaryID"), r.PathValue("routineID"), day, req.ActivityIDs); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	h.GetBoard(w, r)
}

// MoveActivity applies a drag and drop on the board. Drops onto another column
// leave the board unchanged.
func (h *AdminHandler) MoveActivity(w http.ResponseWriter, r *http.Request) {
	var req moveActivityRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	err := h.diaryService.MoveActivity(r.Context(), tenantID(r), r.PathValue("diaryID"), r.PathValue("routineID"), req.Source, req.Dest, req.From, req.To)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	h.GetBoard(w, r)
}
