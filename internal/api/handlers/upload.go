package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/invoicedesk/invoicedesk/internal/api/middleware"
	"github.com/invoicedesk/invoicedesk/internal/service"
	"github.com/invoicedesk/invoicedesk/internal/uploader"
)

// UploadHandler handles batch upload HTTP requests
type UploadHandler struct {
	upstream      service.UpstreamFactory
	uploadService *service.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(upstream service.UpstreamFactory, uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{
		upstream:      upstream,
		uploadService: uploadService,
	}
}

// uploadPage is one prepared page image in an upload request.
type uploadPage struct {
	FileName string `json:"file_name"`
	Img      string `json:"img"` // base64, no data-URI prefix
}

type uploadRequest struct {
	Pages []uploadPage `json:"pages"`
}

type uploadResponse struct {
	Total    int                   `json:"total"`
	Uploaded int                   `json:"uploaded"`
	Skipped  int                   `json:"skipped"`
	Pages    []uploader.PageResult `json:"pages"`
}

// Upload handles POST /api/v1/uploads
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Pages) == 0 {
		respondError(w, http.StatusBadRequest, "At least one page is required")
		return
	}

	pages := make([]uploader.Page, 0, len(req.Pages))
	for _, p := range req.Pages {
		pages = append(pages, uploader.Page{
			FileName:  p.FileName,
			Img:       p.Img,
			SizeBytes: int64(base64.StdEncoding.DecodedLen(len(p.Img))),
		})
	}

	client := h.upstream(claims.UpstreamToken)
	result, err := h.uploadService.Upload(r.Context(), client, claims.Username, pages, nil)
	if err != nil {
		// Partial results are still reported: pages accepted upstream before
		// the abort stay accepted.
		resp := uploadResponse{}
		if result != nil {
			resp = uploadResponse{
				Total:    result.Total,
				Uploaded: result.Uploaded,
				Skipped:  result.Skipped,
				Pages:    result.Pages,
			}
		}
		respondJSON(w, http.StatusBadGateway, map[string]any{
			"error":  "Upload aborted",
			"result": resp,
		})
		return
	}

	respondJSON(w, http.StatusOK, uploadResponse{
		Total:    result.Total,
		Uploaded: result.Uploaded,
		Skipped:  result.Skipped,
		Pages:    result.Pages,
	})
}

// History handles GET /api/v1/uploads
func (h *UploadHandler) History(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.uploadService.History(r.Context(), claims.Username, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load upload history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"uploads": records})
}
