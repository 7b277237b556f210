package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invoicedesk/invoicedesk/internal/form"
)

var flagGetJSON bool

var getCmd = &cobra.Command{
	Use:   "get [invoice-uuid]",
	Short: "Show one invoice as a rendered read-only form",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	client, _, err := apiClient()
	if err != nil {
		return err
	}

	inv, err := client.GetInvoice(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if flagGetJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(inv)
	}

	// Schema failures degrade to a passthrough rendering.
	defines, _ := client.FrontendDefines(cmd.Context())

	annotated := form.Resolve(defines, inv.Info)
	nodes := form.Render(inv.Type, annotated, form.ModeReadOnly, nil)

	fmt.Printf("Invoice %s (%s)\n\n", inv.UUID, inv.Type)
	printNodes(nodes, 0)
	return nil
}

func printNodes(nodes []form.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		label := n.Label
		if label == "" {
			label = n.Path
		}
		if n.Group {
			fmt.Printf("%s%s:\n", indent, label)
			printNodes(n.Children, depth+1)
			continue
		}
		fmt.Printf("%s%s: %v\n", indent, label, n.Value)
	}
}

func init() {
	getCmd.Flags().BoolVar(&flagGetJSON, "json", false, "print the raw record as JSON")
	rootCmd.AddCommand(getCmd)
}
