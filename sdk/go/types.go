// Package invoicedesk provides a Go client for the upstream invoice
// extraction API consumed by the review service and the CLI.
package invoicedesk

import (
	"errors"
	"fmt"

	"github.com/invoicedesk/invoicedesk/internal/domain"
)

// ErrRateLimited is returned when the upstream responds with HTTP 429.
var ErrRateLimited = errors.New("rate limited by upstream")

// APIError is a non-2xx upstream response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream API error: %s (status %d)", e.Message, e.Status)
}

// TokenResponse is the result of POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// ListOptions are the query parameters of GET /api/v1/invoices.
type ListOptions struct {
	CreatedBy   string
	Status      string
	CreatedAt   string // "asc" or "desc"
	InvoiceType domain.InvoiceType
	Page        int
	Limit       int
}

// ListResponse is a paginated invoice listing.
type ListResponse struct {
	Invoices []domain.Invoice `json:"invoices"`
	Total    int              `json:"total"`
}

// UploadRequest is one page image submitted for extraction.
type UploadRequest struct {
	Img      string `json:"img"` // base64, no data-URI prefix
	UserUUID string `json:"user_uuid"`
	FileName string `json:"file_name,omitempty"`
}

// UpdateRequest replaces the extracted structure of an invoice wholesale.
type UpdateRequest struct {
	UserUUID    string         `json:"user_uuid"`
	InvoiceInfo map[string]any `json:"invoice_info"`
}
