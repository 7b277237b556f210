package uploader

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicedesk/invoicedesk/internal/domain"
	"github.com/invoicedesk/invoicedesk/internal/logger"
	invoicedesk "github.com/invoicedesk/invoicedesk/sdk/go"
)

// fakeUploader counts calls and can rate-limit selected attempts.
type fakeUploader struct {
	calls       int
	failuresFor map[string]int // file name -> number of 429s before success
	hardErr     error
}

func (f *fakeUploader) UploadPage(ctx context.Context, req *invoicedesk.UploadRequest) (*domain.Invoice, error) {
	f.calls++
	if f.hardErr != nil {
		return nil, f.hardErr
	}
	if left := f.failuresFor[req.FileName]; left > 0 {
		f.failuresFor[req.FileName] = left - 1
		return nil, invoicedesk.ErrRateLimited
	}
	return &domain.Invoice{UUID: "inv-" + req.FileName}, nil
}

func testUploader(cfg Config) *Uploader {
	u := New(cfg, logger.GetLogger())
	u.SetSleep(func(time.Duration) {})
	return u
}

func makePages(n int) []Page {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{FileName: fmt.Sprintf("page-%02d.jpg", i), Img: "aGVsbG8=", SizeBytes: 100}
	}
	return pages
}

func TestUploadBatchesAndProgress(t *testing.T) {
	var sleeps []time.Duration
	u := New(Config{}, logger.GetLogger())
	u.SetSleep(func(d time.Duration) { sleeps = append(sleeps, d) })

	var progress [][2]int
	client := &fakeUploader{}
	result, err := u.Upload(context.Background(), client, "user-1", makePages(25), func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Equal(t, 25, result.Total)
	assert.Equal(t, 25, result.Uploaded)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 25, client.calls)

	// 25 pages at batch size 10 is 3 batches; every batch is followed by
	// the fixed delay, the last one included.
	require.Len(t, sleeps, 3)
	for _, d := range sleeps {
		assert.Equal(t, DefaultBatchDelay, d)
	}

	require.Len(t, progress, 3)
	assert.Equal(t, [2]int{10, 25}, progress[0])
	assert.Equal(t, [2]int{20, 25}, progress[1])
	assert.Equal(t, [2]int{25, 25}, progress[2])
}

func TestUploadSkipsOversizedFiles(t *testing.T) {
	u := testUploader(Config{MaxFileSize: 500})
	client := &fakeUploader{}

	pages := makePages(3)
	pages[1].SizeBytes = 501

	result, err := u.Upload(context.Background(), client, "user-1", pages, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total, "skipped files do not count toward the total")
	assert.Equal(t, 2, result.Uploaded)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Pages, 3)
	assert.Equal(t, domain.UploadStatusSkipped, result.Pages[0].Status)
	assert.Equal(t, "page-01.jpg", result.Pages[0].FileName)
}

func TestUploadRetriesRateLimit(t *testing.T) {
	var sleeps []time.Duration
	u := New(Config{}, logger.GetLogger())
	u.SetSleep(func(d time.Duration) { sleeps = append(sleeps, d) })

	client := &fakeUploader{failuresFor: map[string]int{"page-00.jpg": 2}}
	result, err := u.Upload(context.Background(), client, "user-1", makePages(1), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Uploaded)
	assert.Equal(t, 3, client.calls)

	// Two retry delays plus the trailing batch delay.
	require.Len(t, sleeps, 3)
	assert.Equal(t, DefaultRetryDelay, sleeps[0])
	assert.Equal(t, DefaultRetryDelay, sleeps[1])
	assert.Equal(t, DefaultBatchDelay, sleeps[2])
}

func TestUploadAbortsWhenRetriesExhausted(t *testing.T) {
	u := testUploader(Config{MaxRetries: 2})

	client := &fakeUploader{failuresFor: map[string]int{"page-01.jpg": 10}}
	result, err := u.Upload(context.Background(), client, "user-1", makePages(3), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, invoicedesk.ErrRateLimited)

	// The first page was accepted before the abort and stays reported.
	assert.Equal(t, 1, result.Uploaded)
	require.Len(t, result.Pages, 2)
	assert.Equal(t, domain.UploadStatusUploaded, result.Pages[0].Status)
	assert.Equal(t, domain.UploadStatusFailed, result.Pages[1].Status)
}

func TestUploadNonRateLimitErrorFailsImmediately(t *testing.T) {
	u := testUploader(Config{})

	client := &fakeUploader{hardErr: fmt.Errorf("boom")}
	result, err := u.Upload(context.Background(), client, "user-1", makePages(2), nil)

	require.Error(t, err)
	assert.Equal(t, 1, client.calls, "no retry on non-429 errors")
	assert.Equal(t, 0, result.Uploaded)
}

func TestUploadInvoiceUUIDRecorded(t *testing.T) {
	u := testUploader(Config{})
	client := &fakeUploader{}

	result, err := u.Upload(context.Background(), client, "user-1", makePages(1), nil)
	require.NoError(t, err)
	assert.Equal(t, "inv-page-00.jpg", result.Pages[0].InvoiceUUID)
}

func TestConfigDefaults(t *testing.T) {
	u := New(Config{}, logger.GetLogger())
	assert.Equal(t, DefaultMaxBatchSize, u.cfg.MaxBatchSize)
	assert.Equal(t, DefaultBatchDelay, u.cfg.BatchDelay)
	assert.Equal(t, DefaultRetryDelay, u.cfg.RetryDelay)
	assert.Equal(t, DefaultMaxRetries, u.cfg.MaxRetries)
	assert.Equal(t, int64(DefaultMaxFileSize), u.cfg.MaxFileSize)
}
