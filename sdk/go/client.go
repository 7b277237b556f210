package invoicedesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/invoicedesk/invoicedesk/internal/domain"
)

// Client is the upstream invoice API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken sets the bearer token used for authenticated calls.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new upstream API client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetToken replaces the bearer token, e.g. after Login.
func (c *Client) SetToken(token string) { c.token = token }

// Login exchanges form-encoded credentials for a bearer token via
// POST /token. The token is retained on the client for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result TokenResponse
	if err := c.send(req, &result); err != nil {
		return nil, err
	}
	c.token = result.AccessToken
	return &result, nil
}

// Me returns the authenticated user via GET /users/me.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var result domain.User
	if err := c.get(ctx, "/users/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FrontendDefines fetches the field-definition table via
// GET /api/v1/frontend_defines.
func (c *Client) FrontendDefines(ctx context.Context) ([]domain.FieldSchema, error) {
	var result domain.FrontendDefines
	if err := c.get(ctx, "/api/v1/frontend_defines", nil, &result); err != nil {
		return nil, err
	}
	return result.Defines, nil
}

// GetInvoice fetches a single invoice by its uuid. The upstream responds
// with a single-element list.
func (c *Client) GetInvoice(ctx context.Context, invoiceUUID string) (*domain.Invoice, error) {
	params := url.Values{}
	params.Set("invoice_uuid", invoiceUUID)

	var result ListResponse
	if err := c.get(ctx, "/api/v1/invoices", params, &result); err != nil {
		return nil, err
	}
	if len(result.Invoices) == 0 {
		return nil, &APIError{Status: http.StatusNotFound, Message: "invoice not found"}
	}
	return &result.Invoices[0], nil
}

// ListInvoices fetches a filtered, paginated invoice listing.
func (c *Client) ListInvoices(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	params := url.Values{}
	if opts.CreatedBy != "" {
		params.Set("created_by", opts.CreatedBy)
	}
	if opts.Status != "" {
		params.Set("invoice_status", opts.Status)
	}
	if opts.CreatedAt != "" {
		params.Set("created_at", opts.CreatedAt)
	}
	if opts.InvoiceType != "" {
		params.Set("invoice_type", string(opts.InvoiceType))
	}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var result ListResponse
	if err := c.get(ctx, "/api/v1/invoices", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadPage submits one base64 page image for extraction via
// POST /api/v1/invoices/upload.
func (c *Client) UploadPage(ctx context.Context, req *UploadRequest) (*domain.Invoice, error) {
	var result domain.Invoice
	if err := c.post(ctx, "/api/v1/invoices/upload", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateInvoice replaces an invoice's extracted structure via
// PUT /api/v1/invoices/{uuid}.
func (c *Client) UpdateInvoice(ctx context.Context, invoiceUUID string, req *UpdateRequest) (*domain.Invoice, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "PUT", c.baseURL+"/api/v1/invoices/"+invoiceUUID, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var result domain.Invoice
	if err := c.send(httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteInvoice removes an invoice via DELETE /api/v1/invoices/{uuid}.
func (c *Client) DeleteInvoice(ctx context.Context, invoiceUUID, userUUID string) error {
	u := c.baseURL + "/api/v1/invoices/" + invoiceUUID + "?user_uuid=" + url.QueryEscape(userUUID)
	req, err := http.NewRequestWithContext(ctx, "DELETE", u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.send(req, nil)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.send(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w (status %d)", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
