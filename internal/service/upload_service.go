package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/invoicedesk/invoicedesk/internal/domain"
	"github.com/invoicedesk/invoicedesk/internal/repository"
	"github.com/invoicedesk/invoicedesk/internal/uploader"
)

// UploadService runs batch uploads and keeps a per-page audit trail. The
// history repository is optional; without it uploads still run, they just
// leave no trace.
type UploadService struct {
	up      *uploader.Uploader
	history *repository.UploadRepository
	log     zerolog.Logger
}

// NewUploadService creates a new upload service. history may be nil.
func NewUploadService(up *uploader.Uploader, history *repository.UploadRepository, log zerolog.Logger) *UploadService {
	return &UploadService{up: up, history: history, log: log}
}

// Upload pushes the pages through the batch uploader and records every page
// outcome. The uploader's result is returned even when the operation aborted
// partway so callers can report partial progress.
func (s *UploadService) Upload(ctx context.Context, client uploader.PageUploader, userUUID string, pages []uploader.Page, onProgress uploader.Progress) (*uploader.Result, error) {
	sizes := make(map[string]int64, len(pages))
	for _, p := range pages {
		sizes[p.FileName] = p.SizeBytes
	}

	result, uploadErr := s.up.Upload(ctx, client, userUUID, pages, onProgress)

	if s.history != nil && result != nil {
		now := time.Now()
		for _, pr := range result.Pages {
			rec := &domain.UploadRecord{
				ID:          uuid.New(),
				UserUUID:    userUUID,
				FileName:    pr.FileName,
				SizeBytes:   sizes[pr.FileName],
				InvoiceUUID: pr.InvoiceUUID,
				Status:      pr.Status,
				CreatedAt:   now,
			}
			if err := s.history.Record(ctx, rec); err != nil {
				s.log.Error().Err(err).Str("file", pr.FileName).
					Msg("failed to record upload history")
			}
		}
	}

	return result, uploadErr
}

// History returns the most recent upload records for a user. Without a
// history repository it returns an empty list.
func (s *UploadService) History(ctx context.Context, userUUID string, limit int) ([]domain.UploadRecord, error) {
	if s.history == nil {
		return []domain.UploadRecord{}, nil
	}
	return s.history.ListByUser(ctx, userUUID, limit)
}
