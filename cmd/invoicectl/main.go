package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/invoicedesk/invoicedesk/internal/logger"
)

var version = "1.0.0"

var (
	flagUpstreamURL string
	flagLogLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "invoicectl",
	Short: "invoicectl - command-line access to the invoice extraction API",
	Long: `invoicectl drives the upstream invoice extraction API from the
terminal: log in, list and inspect invoices, upload page images in paced
batches, and delete records.

Credentials are exchanged once with "invoicectl login"; the bearer token is
cached locally until "invoicectl logout".`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		return logger.Setup(logger.LogConfig{Level: flagLogLevel, Format: "console"})
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagUpstreamURL, "api-url", envOr("UPSTREAM_URL", "http://localhost:8000"), "upstream API base URL")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level (trace..panic)")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
