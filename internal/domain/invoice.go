package domain

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceType identifies one of the three fixed invoice layouts.
type InvoiceType string

const (
	// InvoiceType1 is the timesheet layout: one flat entry per line.
	InvoiceType1 InvoiceType = "invoice 1"
	// InvoiceType2 is the expense layout: title/amount/payment_method lines,
	// plus a non-deletable fixed_lines group.
	InvoiceType2 InvoiceType = "invoice 2"
	// InvoiceType3 is the itemized layout: lines carrying nested lineitems,
	// with a top-level vatitems breakdown.
	InvoiceType3 InvoiceType = "invoice 3"
)

// Reserved top-level array keys inside invoice_info. Elements of these are
// rendered with the per-type line field tables rather than generic key
// enumeration.
const (
	KeyLines      = "lines"
	KeyFixedLines = "fixed_lines"
	KeyVatItems   = "vatitems"
	KeyLineItems  = "lineitems"
)

// PaymentMethodOptions are the allowed values for the payment_method select.
var PaymentMethodOptions = []string{
	"Visa",
	"Self Paid",
	"Invoice to Company",
	"None",
}

// Invoice is the upstream invoice record. Info is the heterogeneous
// extracted structure; its shape depends on Type.
type Invoice struct {
	UUID      string         `json:"invoice_uuid"`
	Type      InvoiceType    `json:"invoice_type"`
	Info      map[string]any `json:"invoice_info"`
	CreatedBy string         `json:"created_by,omitempty"`
	Status    string         `json:"invoice_status,omitempty"`
	CreatedAt string         `json:"created_at,omitempty"`
}

// User is the authenticated upstream identity.
type User struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// UploadRecord is one page of an upload batch, persisted for history.
type UploadRecord struct {
	ID          uuid.UUID `json:"id"`
	UserUUID    string    `json:"user_uuid"`
	FileName    string    `json:"file_name"`
	SizeBytes   int64     `json:"size_bytes"`
	InvoiceUUID string    `json:"invoice_uuid,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Upload record statuses.
const (
	UploadStatusUploaded = "uploaded"
	UploadStatusSkipped  = "skipped"
	UploadStatusFailed   = "failed"
)
