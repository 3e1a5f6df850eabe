package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

// Swappable for tests.
var bcryptGenerate = bcrypt.GenerateFromPassword

func main() {
	rootCmd := &cobra.Command{
		Use:   "cardvault-cli",
		Short: "CardVault CLI tool",
		Long:  `A command line interface for interacting with the CardVault API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the CardVault API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("CARDVAULT_TOKEN"), "Bearer token for authenticated endpoints")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check API health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkHealth()
		},
	}
	rootCmd.AddCommand(healthCmd)

	cardsCmd := &cobra.Command{
		Use:   "cards",
		Short: "Card operations",
	}
	cardsCmd.AddCommand(listCardsCmd(), expireSweepCmd())
	rootCmd.AddCommand(cardsCmd)

	transfersCmd := &cobra.Command{
		Use:   "transfers",
		Short: "Transfer operations",
	}
	transfersCmd.AddCommand(getTransferCmd(), cancelTransferCmd())
	rootCmd.AddCommand(transfersCmd)

	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func checkHealth() error {
	body, status, err := request(http.MethodGet, "/ready", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("API not ready (status %d): %s", status, string(body))
	}
	fmt.Println("API is ready")
	return nil
}

func listCardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := request(http.MethodGet, "/api/v1/cards/", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("failed to list cards (status %d): %s", status, string(body))
			}

			var cards []struct {
				ID           string `json:"id"`
				MaskedNumber string `json:"masked_number"`
				HolderName   string `json:"holder_name"`
				Status       string `json:"status"`
				Balance      string `json:"balance"`
			}
			if err := json.Unmarshal(body, &cards); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			for _, c := range cards {
				fmt.Printf("%-28s %s %-24s %-8s %s\n",
					c.ID, c.MaskedNumber, truncate(c.HolderName, 24), c.Status, c.Balance)
			}
			return nil
		},
	}
}

func expireSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire-sweep",
		Short: "Expire all active cards past their expiry date (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := request(http.MethodPost, "/api/v1/cards/expire-sweep", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("sweep failed (status %d): %s", status, string(body))
			}

			var result struct {
				Expired int64 `json:"expired"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			fmt.Printf("Expired %d cards\n", result.Expired)
			return nil
		},
	}
}

func getTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <transfer-id>",
		Short: "Show a transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := request(http.MethodGet, "/api/v1/transfers/"+args[0], nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("failed to get transfer (status %d): %s", status, string(body))
			}

			var transfer map[string]any
			if err := json.Unmarshal(body, &transfer); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			printJSON(transfer)
			return nil
		},
	}
}

func cancelTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <transfer-id>",
		Short: "Cancel a pending transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := request(http.MethodPost, "/api/v1/transfers/"+args[0]+"/cancel", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("failed to cancel transfer (status %d): %s", status, string(body))
			}

			var transfer map[string]any
			if err := json.Unmarshal(body, &transfer); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			printJSON(transfer)
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Hash a password for seeding users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Println(string(hash))
			return nil
		},
	}
}

func request(method, path string, body io.Reader) ([]byte, int, error) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return nil, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}

	return data, resp.StatusCode, nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
