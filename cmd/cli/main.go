package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/odv/mercsync/internal/infrastructure/auth"
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mercsync-cli",
		Short: "MercSync CLI tool",
		Long:  `A command line interface for interacting with the MercSync API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the MercSync API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated endpoints")

	// Policy commands
	policyCmd := &cobra.Command{
		Use:   "policy",
		Short: "Policy operations",
	}

	currentCmd := &cobra.Command{
		Use:   "current <account-id>",
		Short: "Show the currently effective rule for an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON(fmt.Sprintf("/api/v1/accounts/%s/policy", args[0]))
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history <account-id>",
		Short: "Show the policy timeline for an account, newest first",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON(fmt.Sprintf("/api/v1/accounts/%s/policy/history", args[0]))
		},
	}

	policyCmd.AddCommand(currentCmd, historyCmd)
	rootCmd.AddCommand(policyCmd)

	// Receipt evaluation
	var (
		amount         string
		postedAt       string
		hasAttachments bool
	)
	evaluateCmd := &cobra.Command{
		Use:   "evaluate <account-id>",
		Short: "Evaluate a transaction's receipt status under the governing policy",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			evaluate(args[0], amount, postedAt, hasAttachments)
		},
	}
	evaluateCmd.Flags().StringVar(&amount, "amount", "", "Signed transaction amount (negative for charges)")
	evaluateCmd.Flags().StringVar(&postedAt, "posted-at", "", "Posting time, RFC 3339 (defaults to the current rule)")
	evaluateCmd.Flags().BoolVar(&hasAttachments, "has-attachments", false, "Whether the transaction already has a receipt attached")
	_ = evaluateCmd.MarkFlagRequired("amount")
	rootCmd.AddCommand(evaluateCmd)

	// Integrity command
	integrityCmd := &cobra.Command{
		Use:   "integrity",
		Short: "Run an integrity sweep across all accounts",
		Run: func(cmd *cobra.Command, args []string) {
			checkIntegrity()
		},
	}
	rootCmd.AddCommand(integrityCmd)

	// Password hashing for operator bootstrap
	hashCmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Produce a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				fmt.Printf("Failed to hash password: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(hash)
		},
	}
	rootCmd.AddCommand(hashCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getJSON(path string) {
	body, status := doGet(path)
	if status != http.StatusOK {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var pretty any
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
}

func evaluate(accountID, amount, postedAt string, hasAttachments bool) {
	payload := map[string]any{
		"amount":          json.Number(amount),
		"has_attachments": hasAttachments,
	}
	if postedAt != "" {
		if _, err := time.Parse(time.RFC3339, postedAt); err != nil {
			fmt.Printf("Invalid --posted-at value: %v\n", err)
			os.Exit(1)
		}
		payload["posted_at"] = postedAt
	}

	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("Failed to encode request: %v\n", err)
		os.Exit(1)
	}

	respBody, status := doPost(fmt.Sprintf("/api/v1/accounts/%s/receipt-status", accountID), body)
	if status != http.StatusOK {
		fmt.Printf("Evaluation FAILED (Status: %d)\nResponse: %s\n", status, string(respBody))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Status: %s\n", result["status"])
	if required, ok := result["receipt_required"].(bool); ok {
		fmt.Printf("Receipt required: %v\n", required)
	}
}

func checkIntegrity() {
	body, status := doGet("/api/v1/integrity")
	if status != http.StatusOK {
		fmt.Printf("Integrity check FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if consistent, ok := result["consistent"].(bool); ok && consistent {
		fmt.Printf("Integrity check PASSED\n")
	} else {
		fmt.Printf("Integrity check found mismatches\n")
	}
	if checked, ok := result["checked_accounts"].(float64); ok {
		fmt.Printf("Accounts checked: %d\n", int(checked))
	}
	if mismatches, ok := result["mismatches"].([]any); ok && len(mismatches) > 0 {
		out, _ := json.MarshalIndent(mismatches, "", "  ")
		fmt.Println(string(out))
	}
}

func doGet(path string) ([]byte, int) {
	return doRequest(http.MethodGet, path, nil)
}

func doPost(path string, body []byte) ([]byte, int) {
	return doRequest(http.MethodPost, path, body)
}

func doRequest(method, path string, body []byte) ([]byte, int) {
	client := &http.Client{Timeout: timeout}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return respBody, resp.StatusCode
}
