package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/invoicedesk/invoicedesk/internal/domain"
	invoicedesk "github.com/invoicedesk/invoicedesk/sdk/go"
)

var (
	flagListType   string
	flagListStatus string
	flagListPage   int
	flagListLimit  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your invoices",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	client, creds, err := apiClient()
	if err != nil {
		return err
	}

	resp, err := client.ListInvoices(cmd.Context(), invoicedesk.ListOptions{
		CreatedBy:   creds.Username,
		Status:      flagListStatus,
		InvoiceType: domain.InvoiceType(flagListType),
		CreatedAt:   "desc",
		Page:        flagListPage,
		Limit:       flagListLimit,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UUID\tTYPE\tSTATUS\tCREATED")
	for _, inv := range resp.Invoices {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", inv.UUID, inv.Type, inv.Status, inv.CreatedAt)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d of %d invoice(s)\n", len(resp.Invoices), resp.Total)
	return nil
}

func init() {
	listCmd.Flags().StringVar(&flagListType, "type", "", `filter by invoice type, e.g. "invoice 1"`)
	listCmd.Flags().StringVar(&flagListStatus, "status", "", "filter by invoice status")
	listCmd.Flags().IntVar(&flagListPage, "page", 1, "page number")
	listCmd.Flags().IntVar(&flagListLimit, "limit", 20, "page size")
	rootCmd.AddCommand(listCmd)
}
