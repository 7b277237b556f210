package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/invoicedesk/invoicedesk/internal/api/middleware"
	"github.com/invoicedesk/invoicedesk/internal/form"
	"github.com/invoicedesk/invoicedesk/internal/service"
	"github.com/invoicedesk/invoicedesk/internal/session"
)

// SessionHandler handles edit-session HTTP requests
type SessionHandler struct {
	upstream    service.UpstreamFactory
	editService *service.EditService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(upstream service.UpstreamFactory, editService *service.EditService) *SessionHandler {
	return &SessionHandler{
		upstream:    upstream,
		editService: editService,
	}
}

// sessionResponse is the common shape returned after any session mutation.
type sessionResponse struct {
	Session *session.Session        `json:"session"`
	Form    []form.Node             `json:"form,omitempty"`
	Errors  form.ValidationErrorMap `json:"errors,omitempty"`
}

// Open handles POST /api/v1/invoices/{uuid}/session
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	invoiceUUID := chi.URLParam(r, "uuid")

	sess, nodes, err := h.editService.Open(r.Context(), h.upstream(claims.UpstreamToken), claims.Username, invoiceUUID)
	if err != nil {
		respondUpstreamError(w, err, "Failed to open edit session")
		return
	}

	respondJSON(w, http.StatusCreated, sessionResponse{Session: sess, Form: nodes})
}

// patchRequest applies one field edit. Path is the mixed key/index array
// form, e.g. ["lines", 2, "start_time"].
type patchRequest struct {
	Path  form.KeyPath `json:"path"`
	Value any          `json:"value"`
}

// Patch handles PATCH /api/v1/sessions/{sid}
func (h *SessionHandler) Patch(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	sid := chi.URLParam(r, "sid")

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.editService.Patch(r.Context(), sid, claims.Username, req.Path, req.Value)
	if err != nil {
		respondUpstreamError(w, err, "Failed to apply patch")
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{Session: sess})
}

// lineRequest addresses a line, or a line item within a line. LineIndex is
// a pointer so "add a top-level line" and "add an item to line 0" stay
// distinguishable.
type lineRequest struct {
	LineIndex *int `json:"line_index,omitempty"`
	ItemIndex *int `json:"item_index,omitempty"`
	Index     *int `json:"index,omitempty"`
}

// AddLine handles POST /api/v1/sessions/{sid}/lines
func (h *SessionHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	sid := chi.URLParam(r, "sid")

	var req lineRequest
	if r.Body != nil {
		// An empty body means "add a top-level line".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var (
		sess *session.Session
		err  error
	)
	if req.LineIndex != nil {
		sess, err = h.editService.AddLineItem(r.Context(), sid, claims.Username, *req.LineIndex)
	} else {
		sess, err = h.editService.AddLine(r.Context(), sid, claims.Username)
	}
	if err != nil {
		respondUpstreamError(w, err, "Failed to add line")
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{Session: sess})
}

// DeleteLine handles DELETE /api/v1/sessions/{sid}/lines
func (h *SessionHandler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	sid := chi.URLParam(r, "sid")

	var req lineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		sess *session.Session
		err  error
	)
	switch {
	case req.LineIndex != nil && req.ItemIndex != nil:
		sess, err = h.editService.DeleteLineItem(r.Context(), sid, claims.Username, *req.LineIndex, *req.ItemIndex)
	case req.Index != nil:
		sess, err = h.editService.DeleteLine(r.Context(), sid, claims.Username, *req.Index)
	default:
		respondError(w, http.StatusBadRequest, "index, or line_index and item_index, are required")
		return
	}
	if err != nil {
		respondUpstreamError(w, err, "Failed to delete line")
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{Session: sess})
}

// Render handles GET /api/v1/sessions/{sid}
func (h *SessionHandler) Render(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	sid := chi.URLParam(r, "sid")

	nodes, err := h.editService.Render(r.Context(), h.upstream(claims.UpstreamToken), sid, claims.Username)
	if err != nil {
		respondUpstreamError(w, err, "Failed to render session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"form": nodes})
}

// Save handles POST /api/v1/sessions/{sid}/save
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	sid := chi.URLParam(r, "sid")

	inv, verrs, err := h.editService.Save(r.Context(), h.upstream(claims.UpstreamToken), sid, claims.Username)
	if errors.Is(err, service.ErrValidation) {
		respondJSON(w, http.StatusUnprocessableEntity, sessionResponse{Errors: verrs})
		return
	}
	if err != nil {
		respondUpstreamError(w, err, "Failed to save invoice")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"invoice": inv})
}

// Cancel handles DELETE /api/v1/sessions/{sid}
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	sid := chi.URLParam(r, "sid")

	if err := h.editService.Cancel(r.Context(), sid, claims.Username); err != nil {
		respondUpstreamError(w, err, "Failed to cancel session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "discarded"})
}
