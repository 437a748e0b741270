package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"queridodiario/internal/service"
)

// PanelHandler serves the token-gated daily panel API
type PanelHandler struct {
	panelService *service.PanelService
	logger       *zap.Logger
}

// NewPanelHandler creates a new panel handler
func NewPanelHandler(panelService *service.PanelService, logger *zap.Logger) *PanelHandler {
	return &PanelHandler{panelService: panelService, logger: logger}
}

// GetSnapshot returns the day snapshot for ?date=, or for the last active day
func (h *PanelHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	diary := GetDiaryFromContext(r.Context())

	snapshot, err := h.panelService.Snapshot(r.Context(), diary, r.URL.Query().Get("date"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

// Complete records a mark or tap on an activity
func (h *PanelHandler) Complete(w http.ResponseWriter, r *http.Request) {
	diary := GetDiaryFromContext(r.Context())

	var in service.CompletionInput
	if err := decodeJSON(r, w, &in); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	result, err := h.panelService.RecordCompletion(r.Context(), diary, in)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// SaveNote stores the day note. Blank content clears it and returns a null note.
func (h *PanelHandler) SaveNote(w http.ResponseWriter, r *http.Request) {
	diary := GetDiaryFromContext(r.Context())

	var req noteRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	note, err := h.panelService.SaveNote(r.Context(), diary, req.Date, req.Content)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"note": note})
}

// CreateExtraActivity adds a one-off activity to a routine for one date
func (h *PanelHandler) CreateExtraActivity(w http.ResponseWriter, r *http.Request) {
	diary := GetDiaryFromContext(r.Context())

	var in service.ExtraActivityInput
	if err := decodeJSON(r, w, &in); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	extra, err := h.panelService.CreateExtraActivity(r.Context(), diary, in)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"extraActivity": extra})
}
