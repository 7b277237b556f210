package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	invoicedesk "github.com/invoicedesk/invoicedesk/sdk/go"
)

var (
	flagUsername string
	flagPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and cache the API token locally",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the cached API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := clearCredentials(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func runLogin(cmd *cobra.Command, args []string) error {
	username := flagUsername
	password := flagPassword

	reader := bufio.NewReader(os.Stdin)
	if username == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		username = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Print("Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		password = strings.TrimSpace(line)
	}

	client := invoicedesk.NewClient(flagUpstreamURL)
	tok, err := client.Login(cmd.Context(), username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	user, err := client.Me(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to resolve user: %w", err)
	}

	if err := saveCredentials(&credentials{
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		Token:    tok.AccessToken,
	}); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s.\n", user.Username)
	return nil
}

func init() {
	loginCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "username (prompted when omitted)")
	loginCmd.Flags().StringVarP(&flagPassword, "password", "p", "", "password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
