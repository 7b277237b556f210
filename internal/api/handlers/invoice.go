package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/invoicedesk/invoicedesk/internal/api/middleware"
	"github.com/invoicedesk/invoicedesk/internal/domain"
	"github.com/invoicedesk/invoicedesk/internal/service"
	invoicedesk "github.com/invoicedesk/invoicedesk/sdk/go"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	upstream    service.UpstreamFactory
	editService *service.EditService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(upstream service.UpstreamFactory, editService *service.EditService) *InvoiceHandler {
	return &InvoiceHandler{
		upstream:    upstream,
		editService: editService,
	}
}

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	q := r.URL.Query()

	opts := invoicedesk.ListOptions{
		CreatedBy:   claims.Username,
		Status:      q.Get("status"),
		CreatedAt:   q.Get("created_at"),
		InvoiceType: domain.InvoiceType(q.Get("type")),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = limit
	}

	// Admins may list another user's invoices.
	if by := q.Get("created_by"); by != "" && claims.IsAdmin {
		opts.CreatedBy = by
	}

	resp, err := h.upstream(claims.UpstreamToken).ListInvoices(r.Context(), opts)
	if err != nil {
		respondUpstreamError(w, err, "Failed to list invoices")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// View handles GET /api/v1/invoices/{uuid}/view
func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	invoiceUUID := chi.URLParam(r, "uuid")

	inv, nodes, err := h.editService.View(r.Context(), h.upstream(claims.UpstreamToken), invoiceUUID)
	if err != nil {
		respondUpstreamError(w, err, "Failed to load invoice")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"invoice": inv,
		"form":    nodes,
	})
}

// Delete handles DELETE /api/v1/invoices/{uuid}
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	invoiceUUID := chi.URLParam(r, "uuid")

	err := h.upstream(claims.UpstreamToken).DeleteInvoice(r.Context(), invoiceUUID, claims.Username)
	if err != nil {
		respondUpstreamError(w, err, "Failed to delete invoice")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondUpstreamError maps upstream and service errors onto BFF responses.
func respondUpstreamError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, invoicedesk.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, "Upstream rate limit hit")
	default:
		var apiErr *invoicedesk.APIError
		if errors.As(err, &apiErr) {
			if apiErr.Status == http.StatusNotFound {
				respondError(w, http.StatusNotFound, "Not found")
				return
			}
			respondError(w, http.StatusBadGateway, fallback)
			return
		}
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
