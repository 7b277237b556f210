package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicedesk/invoicedesk/internal/domain"
	"github.com/invoicedesk/invoicedesk/internal/form"
	"github.com/invoicedesk/invoicedesk/internal/session"
	invoicedesk "github.com/invoicedesk/invoicedesk/sdk/go"
)

// fakeUpstream is an in-memory stand-in for the upstream API client.
type fakeUpstream struct {
	invoice *domain.Invoice
	defines []domain.FieldSchema
	updated *invoicedesk.UpdateRequest
}

func (f *fakeUpstream) Login(ctx context.Context, username, password string) (*invoicedesk.TokenResponse, error) {
	return &invoicedesk.TokenResponse{AccessToken: "up-tok"}, nil
}

func (f *fakeUpstream) Me(ctx context.Context) (*domain.User, error) {
	return &domain.User{Username: "alice"}, nil
}

func (f *fakeUpstream) FrontendDefines(ctx context.Context) ([]domain.FieldSchema, error) {
	return f.defines, nil
}

func (f *fakeUpstream) GetInvoice(ctx context.Context, invoiceUUID string) (*domain.Invoice, error) {
	if f.invoice == nil || f.invoice.UUID != invoiceUUID {
		return nil, &invoicedesk.APIError{Status: 404, Message: "invoice not found"}
	}
	inv := *f.invoice
	return &inv, nil
}

func (f *fakeUpstream) ListInvoices(ctx context.Context, opts invoicedesk.ListOptions) (*invoicedesk.ListResponse, error) {
	return &invoicedesk.ListResponse{}, nil
}

func (f *fakeUpstream) UploadPage(ctx context.Context, req *invoicedesk.UploadRequest) (*domain.Invoice, error) {
	return &domain.Invoice{UUID: "inv-new"}, nil
}

func (f *fakeUpstream) UpdateInvoice(ctx context.Context, invoiceUUID string, req *invoicedesk.UpdateRequest) (*domain.Invoice, error) {
	f.updated = req
	inv := *f.invoice
	inv.Info = req.InvoiceInfo
	return &inv, nil
}

func (f *fakeUpstream) DeleteInvoice(ctx context.Context, invoiceUUID, userUUID string) error {
	return nil
}

// fakeSchemas serves a fixed defines table without Redis.
type fakeSchemas struct {
	defines     []domain.FieldSchema
	invalidated bool
}

func (f *fakeSchemas) Defines(ctx context.Context, up Upstream) ([]domain.FieldSchema, error) {
	return f.defines, nil
}

func (f *fakeSchemas) Invalidate(ctx context.Context) error {
	f.invalidated = true
	return nil
}

func timesheetInvoice() *domain.Invoice {
	return &domain.Invoice{
		UUID: "inv-1",
		Type: domain.InvoiceType1,
		Info: map[string]any{
			"invoice_number": "INV-001",
			"lines": []any{
				map[string]any{"date": "2024-03-01", "start_time": "09:00", "end_time": "17:00", "break_time": "0.5"},
			},
		},
	}
}

func newEditFixture(inv *domain.Invoice) (*EditService, *fakeUpstream, session.Store) {
	up := &fakeUpstream{invoice: inv}
	store := session.NewMemoryStore()
	svc := NewEditService(store, &fakeSchemas{})
	return svc, up, store
}

func TestViewRendersReadOnly(t *testing.T) {
	svc, up, _ := newEditFixture(timesheetInvoice())

	inv, nodes, err := svc.View(context.Background(), up, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "inv-1", inv.UUID)
	require.NotEmpty(t, nodes)
}

func TestOpenCreatesSession(t *testing.T) {
	svc, up, store := newEditFixture(timesheetInvoice())

	sess, nodes, err := svc.Open(context.Background(), up, "alice", "inv-1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "alice", sess.UserUUID)
	require.NotEmpty(t, nodes)

	stored, err := store.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "inv-1", stored.Invoice.UUID)
}

func TestPatchUpdatesWorkingCopy(t *testing.T) {
	svc, up, _ := newEditFixture(timesheetInvoice())
	sess, _, err := svc.Open(context.Background(), up, "alice", "inv-1")
	require.NoError(t, err)

	updated, err := svc.Patch(context.Background(), sess.ID, "alice", form.Path("lines", 0, "start_time"), "10:15")
	require.NoError(t, err)

	line := updated.Invoice.Info["lines"].([]any)[0].(map[string]any)
	assert.Equal(t, "10:15", line["start_time"])
}

func TestPatchEnforcesOwnership(t *testing.T) {
	svc, up, _ := newEditFixture(timesheetInvoice())
	sess, _, err := svc.Open(context.Background(), up, "alice", "inv-1")
	require.NoError(t, err)

	_, err = svc.Patch(context.Background(), sess.ID, "mallory", form.Path("invoice_number"), "HACK")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPatchMissingSession(t *testing.T) {
	svc, _, _ := newEditFixture(timesheetInvoice())

	_, err := svc.Patch(context.Background(), "nope", "alice", form.Path("x"), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddAndDeleteLine(t *testing.T) {
	svc, up, _ := newEditFixture(timesheetInvoice())
	sess, _, err := svc.Open(context.Background(), up, "alice", "inv-1")
	require.NoError(t, err)

	added, err := svc.AddLine(context.Background(), sess.ID, "alice")
	require.NoError(t, err)
	lines := added.Invoice.Info["lines"].([]any)
	require.Len(t, lines, 2)
	assert.Equal(t, "", lines[0].(map[string]any)["date"], "new line is prepended")

	removed, err := svc.DeleteLine(context.Background(), sess.ID, "alice", 0)
	require.NoError(t, err)
	lines = removed.Invoice.Info["lines"].([]any)
	require.Len(t, lines, 1)
	assert.Equal(t, "2024-03-01", lines[0].(map[string]any)["date"])
}

func TestSaveBlockedByValidation(t *testing.T) {
	inv := timesheetInvoice()
	inv.Info["lines"] = []any{
		map[string]any{"date": "", "start_time": "09:00"},
	}
	svc, up, store := newEditFixture(inv)
	sess, _, err := svc.Open(context.Background(), up, "alice", "inv-1")
	require.NoError(t, err)

	_, verrs, err := svc.Save(context.Background(), up, sess.ID, "alice")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Date is required", verrs["lines[0].date"])
	assert.Nil(t, up.updated, "nothing is submitted while errors remain")

	// The session survives a blocked save.
	_, err = store.Get(context.Background(), sess.ID)
	assert.NoError(t, err)
}

func TestSavePromotesAndDiscardsSession(t *testing.T) {
	svc, up, store := newEditFixture(timesheetInvoice())
	sess, _, err := svc.Open(context.Background(), up, "alice", "inv-1")
	require.NoError(t, err)

	_, err = svc.Patch(context.Background(), sess.ID, "alice", form.Path("invoice_number"), "INV-002")
	require.NoError(t, err)

	saved, verrs, err := svc.Save(context.Background(), up, sess.ID, "alice")
	require.NoError(t, err)
	assert.Empty(t, verrs)
	assert.Equal(t, "INV-002", saved.Info["invoice_number"])

	require.NotNil(t, up.updated)
	assert.Equal(t, "alice", up.updated.UserUUID)

	_, err = store.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestCancelDiscardsSession(t *testing.T) {
	svc, up, store := newEditFixture(timesheetInvoice())
	sess, _, err := svc.Open(context.Background(), up, "alice", "inv-1")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), sess.ID, "alice"))

	_, err = store.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRenderIncludesValidationErrors(t *testing.T) {
	inv := timesheetInvoice()
	inv.Info["lines"] = []any{
		map[string]any{"date": "2024-03-01", "start_time": ""},
	}
	svc, up, _ := newEditFixture(inv)
	sess, _, err := svc.Open(context.Background(), up, "alice", "inv-1")
	require.NoError(t, err)

	nodes, err := svc.Render(context.Background(), up, sess.ID, "alice")
	require.NoError(t, err)

	var found bool
	var walk func([]form.Node)
	walk = func(ns []form.Node) {
		for _, n := range ns {
			if n.Path == "lines[0].start_time" && n.Error != "" {
				found = true
			}
			walk(n.Children)
		}
	}
	walk(nodes)
	assert.True(t, found, "inline error rendered for the empty required field")
}
