package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicedesk/invoicedesk/internal/domain"
)

func testInvoice() domain.Invoice {
	return domain.Invoice{
		UUID: "inv-1",
		Type: domain.InvoiceType1,
		Info: map[string]any{"invoice_number": "INV-001"},
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess, err := store.Create(ctx, "alice", testInvoice())
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "alice", sess.UserUUID)

	loaded, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Invoice.UUID, loaded.Invoice.UUID)

	loaded.Invoice.Info = map[string]any{"invoice_number": "INV-002"}
	require.NoError(t, store.Put(ctx, loaded))

	reloaded, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-002", reloaded.Invoice.Info["invoice_number"])
	assert.False(t, reloaded.UpdatedAt.Before(reloaded.CreatedAt))

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDeleteMissingIsNoOp(t *testing.T) {
	store := NewMemoryStore()
	assert.NoError(t, store.Delete(context.Background(), "nope"))
}

func TestMemoryStoreCreateIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a, err := store.Create(ctx, "alice", testInvoice())
	require.NoError(t, err)
	b, err := store.Create(ctx, "bob", testInvoice())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}
