package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var flagDeleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete [invoice-uuid]",
	Short: "Delete an invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, creds, err := apiClient()
	if err != nil {
		return err
	}

	if !flagDeleteYes {
		fmt.Printf("Delete invoice %s? [y/N] ", args[0])
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return err
		}
		if strings.ToLower(strings.TrimSpace(line)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := client.DeleteInvoice(cmd.Context(), args[0], creds.Username); err != nil {
		return err
	}

	fmt.Println("Deleted.")
	return nil
}

func init() {
	deleteCmd.Flags().BoolVarP(&flagDeleteYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
