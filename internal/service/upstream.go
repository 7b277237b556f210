package service

import (
	"context"

	"github.com/invoicedesk/invoicedesk/internal/domain"
	invoicedesk "github.com/invoicedesk/invoicedesk/sdk/go"
)

// Upstream is the subset of the invoice API client the services depend on.
// *invoicedesk.Client satisfies it; tests substitute fakes.
type Upstream interface {
	Login(ctx context.Context, username, password string) (*invoicedesk.TokenResponse, error)
	Me(ctx context.Context) (*domain.User, error)
	FrontendDefines(ctx context.Context) ([]domain.FieldSchema, error)
	GetInvoice(ctx context.Context, invoiceUUID string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, opts invoicedesk.ListOptions) (*invoicedesk.ListResponse, error)
	UploadPage(ctx context.Context, req *invoicedesk.UploadRequest) (*domain.Invoice, error)
	UpdateInvoice(ctx context.Context, invoiceUUID string, req *invoicedesk.UpdateRequest) (*domain.Invoice, error)
	DeleteInvoice(ctx context.Context, invoiceUUID, userUUID string) error
}

// UpstreamFactory builds a client bound to a caller's bearer token. Each
// request gets its own client so tokens never leak across users.
type UpstreamFactory func(token string) Upstream
