package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invoicedesk/invoicedesk/internal/logger"
	"github.com/invoicedesk/invoicedesk/internal/uploader"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [image-file ...]",
	Short: "Upload page images for extraction in paced batches",
	Long: `Upload reads prepared page images (JPEG or PNG), base64-encodes them,
and submits them to the extraction API in fixed-size batches with the
standard pacing policy. Files over the per-file size limit are skipped
individually; a page that exhausts its rate-limit retries aborts the rest
of the run.

PDFs are not rasterized here; convert them to page images first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, creds, err := apiClient()
	if err != nil {
		return err
	}

	pages := make([]uploader.Page, 0, len(args))
	for _, path := range args {
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".pdf" {
			return fmt.Errorf("%s: PDF input is not supported, convert pages to images first", path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		pages = append(pages, uploader.Page{
			FileName:  filepath.Base(path),
			Img:       base64.StdEncoding.EncodeToString(data),
			SizeBytes: int64(len(data)),
		})
	}

	up := uploader.New(uploader.Config{}, logger.WithComponent("uploader"))
	result, err := up.Upload(cmd.Context(), client, creds.Username, pages, func(done, total int) {
		fmt.Printf("uploaded %d/%d\n", done, total)
	})

	if result != nil {
		for _, pr := range result.Pages {
			line := fmt.Sprintf("%-10s %s", pr.Status, pr.FileName)
			if pr.InvoiceUUID != "" {
				line += "  -> " + pr.InvoiceUUID
			}
			fmt.Println(line)
		}
		fmt.Printf("\n%d uploaded, %d skipped\n", result.Uploaded, result.Skipped)
	}
	return err
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
