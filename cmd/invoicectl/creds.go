package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	invoicedesk "github.com/invoicedesk/invoicedesk/sdk/go"
)

// credentials is the cached login state, written by "login" and removed by
// "logout".
type credentials struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	Token    string `json:"token"`
}

func credentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".invoicedesk", "credentials.json"), nil
}

func saveCredentials(creds *credentials) error {
	path, err := credentialsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func loadCredentials() (*credentials, error) {
	path, err := credentialsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("not logged in, run \"invoicectl login\" first")
		}
		return nil, err
	}

	var creds credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse cached credentials: %w", err)
	}
	return &creds, nil
}

func clearCredentials() error {
	path, err := credentialsPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// apiClient builds an authenticated client from the cached credentials.
func apiClient() (*invoicedesk.Client, *credentials, error) {
	creds, err := loadCredentials()
	if err != nil {
		return nil, nil, err
	}
	client := invoicedesk.NewClient(flagUpstreamURL, invoicedesk.WithToken(creds.Token))
	return client, creds, nil
}
