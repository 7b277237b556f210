package service

import (
	"context"
	"errors"

	"github.com/invoicedesk/invoicedesk/internal/domain"
	"github.com/invoicedesk/invoicedesk/internal/form"
	"github.com/invoicedesk/invoicedesk/internal/session"
	invoicedesk "github.com/invoicedesk/invoicedesk/sdk/go"
)

// EditService orchestrates the invoice edit lifecycle: fetch, clone into a
// working copy, patch, validate, and either promote (save) or discard
// (cancel). All rendering goes through the form engine; the service itself
// holds no per-field logic.
type EditService struct {
	sessions session.Store
	schemas  SchemaProvider
}

// NewEditService creates a new edit service.
func NewEditService(sessions session.Store, schemas SchemaProvider) *EditService {
	return &EditService{
		sessions: sessions,
		schemas:  schemas,
	}
}

// defines fetches the schema table, degrading to nil (whole-record
// passthrough in the resolver) when the table cannot be loaded.
func (s *EditService) defines(ctx context.Context, up Upstream) []domain.FieldSchema {
	if s.schemas == nil {
		return nil
	}
	defines, err := s.schemas.Defines(ctx, up)
	if err != nil {
		return nil
	}
	return defines
}

// View fetches an invoice and renders its read-only detail tree.
func (s *EditService) View(ctx context.Context, up Upstream, invoiceUUID string) (*domain.Invoice, []form.Node, error) {
	inv, err := up.GetInvoice(ctx, invoiceUUID)
	if err != nil {
		return nil, nil, err
	}

	annotated := form.Resolve(s.defines(ctx, up), inv.Info)
	return inv, form.Render(inv.Type, annotated, form.ModeReadOnly, nil), nil
}

// Open clones the invoice into a new edit session and renders the editable
// tree.
func (s *EditService) Open(ctx context.Context, up Upstream, userUUID, invoiceUUID string) (*session.Session, []form.Node, error) {
	inv, err := up.GetInvoice(ctx, invoiceUUID)
	if err != nil {
		return nil, nil, err
	}

	sess, err := s.sessions.Create(ctx, userUUID, *inv)
	if err != nil {
		return nil, nil, err
	}

	annotated := form.Resolve(s.defines(ctx, up), sess.Invoice.Info)
	return sess, form.Render(sess.Invoice.Type, annotated, form.ModeEdit, nil), nil
}

// get loads a session and enforces that the caller owns it.
func (s *EditService) get(ctx context.Context, sessionID, userUUID string) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sess.UserUUID != userUUID {
		return nil, ErrForbidden
	}
	return sess, nil
}

// Patch applies a single (keyPath, value) edit to the working copy. Edits
// are applied in the order received; each one replaces the stored copy
// wholesale.
func (s *EditService) Patch(ctx context.Context, sessionID, userUUID string, path form.KeyPath, value any) (*session.Session, error) {
	sess, err := s.get(ctx, sessionID, userUUID)
	if err != nil {
		return nil, err
	}

	sess.Invoice.Info = form.Apply(sess.Invoice.Info, path, value)
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// AddLine prepends a zero-valued line of the session's invoice type.
func (s *EditService) AddLine(ctx context.Context, sessionID, userUUID string) (*session.Session, error) {
	sess, err := s.get(ctx, sessionID, userUUID)
	if err != nil {
		return nil, err
	}

	sess.Invoice.Info = form.AddLine(sess.Invoice.Info, sess.Invoice.Type)
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// AddLineItem prepends a zero-valued line item to the given line.
func (s *EditService) AddLineItem(ctx context.Context, sessionID, userUUID string, lineIndex int) (*session.Session, error) {
	sess, err := s.get(ctx, sessionID, userUUID)
	if err != nil {
		return nil, err
	}

	sess.Invoice.Info = form.AddLineItem(sess.Invoice.Info, lineIndex)
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// DeleteLine removes one line; the caller is responsible for confirming the
// action with the user first.
func (s *EditService) DeleteLine(ctx context.Context, sessionID, userUUID string, index int) (*session.Session, error) {
	sess, err := s.get(ctx, sessionID, userUUID)
	if err != nil {
		return nil, err
	}

	sess.Invoice.Info = form.DeleteLine(sess.Invoice.Info, index)
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// DeleteLineItem removes one line item from the given line.
func (s *EditService) DeleteLineItem(ctx context.Context, sessionID, userUUID string, lineIndex, itemIndex int) (*session.Session, error) {
	sess, err := s.get(ctx, sessionID, userUUID)
	if err != nil {
		return nil, err
	}

	sess.Invoice.Info = form.DeleteLineItem(sess.Invoice.Info, lineIndex, itemIndex)
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Render projects the current working copy as an editable tree with inline
// validation errors.
func (s *EditService) Render(ctx context.Context, up Upstream, sessionID, userUUID string) ([]form.Node, error) {
	sess, err := s.get(ctx, sessionID, userUUID)
	if err != nil {
		return nil, err
	}

	defines := s.defines(ctx, up)
	errs := form.Validate(sess.Invoice.Info, sess.Invoice.Type, defines)
	annotated := form.Resolve(defines, sess.Invoice.Info)
	return form.Render(sess.Invoice.Type, annotated, form.ModeEdit, errs), nil
}

// Save validates the working copy and, when clean, submits it upstream as a
// full replacement and promotes it: the session is discarded and the updated
// record returned. A non-empty error map blocks submission entirely and
// leaves the session untouched; a failed upstream save also leaves the
// session untouched.
func (s *EditService) Save(ctx context.Context, up Upstream, sessionID, userUUID string) (*domain.Invoice, form.ValidationErrorMap, error) {
	sess, err := s.get(ctx, sessionID, userUUID)
	if err != nil {
		return nil, nil, err
	}

	errs := form.Validate(sess.Invoice.Info, sess.Invoice.Type, s.defines(ctx, up))
	if len(errs) > 0 {
		return nil, errs, ErrValidation
	}

	updated, err := up.UpdateInvoice(ctx, sess.Invoice.UUID, &invoicedesk.UpdateRequest{
		UserUUID:    sess.UserUUID,
		InvoiceInfo: sess.Invoice.Info,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return nil, nil, err
	}
	return updated, nil, nil
}

// Cancel discards the working copy unconditionally.
func (s *EditService) Cancel(ctx context.Context, sessionID, userUUID string) error {
	sess, err := s.get(ctx, sessionID, userUUID)
	if err != nil {
		return err
	}
	return s.sessions.Delete(ctx, sess.ID)
}
