// Package uploader pushes prepared page images to the upstream extraction
// API in fixed-size batches with a static pacing and retry policy.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoicedesk/invoicedesk/internal/domain"
	invoicedesk "github.com/invoicedesk/invoicedesk/sdk/go"
)

// Defaults of the static upload policy.
const (
	DefaultMaxBatchSize = 10
	DefaultBatchDelay   = 2 * time.Second
	DefaultRetryDelay   = 5 * time.Second
	DefaultMaxRetries   = 3
	DefaultMaxFileSize  = 5 * 1024 * 1024 // 5MB per file
)

// PageUploader is the single upstream call the uploader depends on.
type PageUploader interface {
	UploadPage(ctx context.Context, req *invoicedesk.UploadRequest) (*domain.Invoice, error)
}

// Page is one prepared image ready for upload. PDFs are rasterized into
// independent pages before they get here.
type Page struct {
	FileName  string
	Img       string // base64, no data-URI prefix
	SizeBytes int64
}

// PageResult records the outcome for a single page.
type PageResult struct {
	FileName    string
	InvoiceUUID string
	Status      string
}

// Result summarizes a batch upload.
type Result struct {
	Total    int
	Uploaded int
	Skipped  int
	Pages    []PageResult
}

// Progress is called after each completed batch with cumulative counts.
type Progress func(done, total int)

// Config tunes the static pacing policy. Zero values fall back to defaults.
type Config struct {
	MaxBatchSize int
	BatchDelay   time.Duration
	RetryDelay   time.Duration
	MaxRetries   int
	MaxFileSize  int64
}

// Uploader sequences page uploads: per-file size screening, fixed-size
// batches, a fixed inter-batch delay, and a bounded fixed-delay retry on
// rate-limit responses. It is not a general backpressure mechanism.
type Uploader struct {
	cfg Config
	log zerolog.Logger

	// sleep is swappable so tests can observe the pacing policy.
	sleep func(time.Duration)
}

// New creates an uploader with the given policy.
func New(cfg Config, log zerolog.Logger) *Uploader {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = DefaultBatchDelay
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	return &Uploader{cfg: cfg, log: log, sleep: time.Sleep}
}

// SetSleep replaces the pacing sleep; tests use this to run instantly.
func (u *Uploader) SetSleep(fn func(time.Duration)) { u.sleep = fn }

// Upload pushes pages for the given user. Oversized files are rejected
// individually with a skipped status and do not fail their siblings. When a
// page exhausts its rate-limit retries the whole operation aborts; pages
// already accepted upstream stay accepted and are reported in the result.
func (u *Uploader) Upload(ctx context.Context, client PageUploader, userUUID string, pages []Page, onProgress Progress) (*Result, error) {
	result := &Result{}
	accepted := make([]Page, 0, len(pages))

	for _, page := range pages {
		if page.SizeBytes > u.cfg.MaxFileSize {
			u.log.Warn().Str("file", page.FileName).Int64("size", page.SizeBytes).
				Msg("file exceeds size limit, skipping")
			result.Skipped++
			result.Pages = append(result.Pages, PageResult{
				FileName: page.FileName,
				Status:   domain.UploadStatusSkipped,
			})
			continue
		}
		accepted = append(accepted, page)
	}
	result.Total = len(accepted)

	for start := 0; start < len(accepted); start += u.cfg.MaxBatchSize {
		end := min(start+u.cfg.MaxBatchSize, len(accepted))

		for _, page := range accepted[start:end] {
			inv, err := u.uploadWithRetry(ctx, client, userUUID, page)
			if err != nil {
				result.Pages = append(result.Pages, PageResult{
					FileName: page.FileName,
					Status:   domain.UploadStatusFailed,
				})
				return result, fmt.Errorf("upload %s: %w", page.FileName, err)
			}
			pr := PageResult{FileName: page.FileName, Status: domain.UploadStatusUploaded}
			if inv != nil {
				pr.InvoiceUUID = inv.UUID
			}
			result.Pages = append(result.Pages, pr)
			result.Uploaded++
		}

		u.sleep(u.cfg.BatchDelay)
		if onProgress != nil {
			onProgress(result.Uploaded, result.Total)
		}
	}

	return result, nil
}

func (u *Uploader) uploadWithRetry(ctx context.Context, client PageUploader, userUUID string, page Page) (*domain.Invoice, error) {
	req := &invoicedesk.UploadRequest{
		Img:      page.Img,
		UserUUID: userUUID,
		FileName: page.FileName,
	}

	var lastErr error
	for attempt := 0; attempt <= u.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			u.log.Warn().Str("file", page.FileName).Int("attempt", attempt).
				Msg("rate limited, retrying after delay")
			u.sleep(u.cfg.RetryDelay)
		}

		inv, err := client.UploadPage(ctx, req)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, invoicedesk.ErrRateLimited) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}
