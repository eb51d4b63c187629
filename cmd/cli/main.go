package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/bankdash/internal/adapter/http/dto"
	"github.com/iho/bankdash/internal/infrastructure/seed"
)

var (
	baseURL string
	timeout time.Duration
	output  io.Writer = os.Stdout
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bankdash-cli",
		Short:         "Bankdash CLI tool",
		Long:          `A command line interface for the bankdash dashboard API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the bankdash API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "Request timeout")

	rootCmd.AddCommand(
		accountsCmd(),
		summaryCmd(),
		transactionsCmd(),
		submitCmd(),
		pendingCmd(),
		confirmCmd(),
		cancelCmd(),
		quickCmd(),
		eventsCmd(),
		lastCmd(),
		seedCmd(),
	)

	return rootCmd
}

func accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts and the total balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListAccountsResponse
			if err := call(http.MethodGet, "/api/v1/accounts", nil, &resp); err != nil {
				return err
			}

			w := tabwriter.NewWriter(output, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tNUMBER\tKIND\tBALANCE")
			for _, a := range resp.Accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, truncate(a.Name, 24), a.Number, a.Kind, a.Balance.StringFixed(2))
			}
			fmt.Fprintf(w, "\t\t\tTOTAL\t%s\n", resp.TotalBalance.StringFixed(2))
			return w.Flush()
		},
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the balance cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.SummaryResponse
			if err := call(http.MethodGet, "/api/v1/summary", nil, &resp); err != nil {
				return err
			}
			printJSON(resp)
			return nil
		},
	}
}

func transactionsCmd() *cobra.Command {
	var (
		period int
		search string
		recent int
	)

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List the transaction history",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/transactions"
			query := url.Values{}
			if recent > 0 {
				path += "/recent"
				query.Set("limit", strconv.Itoa(recent))
			} else {
				query.Set("period", strconv.Itoa(period))
				if search != "" {
					query.Set("search", search)
				}
			}

			var resp dto.ListTransactionsResponse
			if err := call(http.MethodGet, path+"?"+query.Encode(), nil, &resp); err != nil {
				return err
			}

			w := tabwriter.NewWriter(output, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tDESCRIPTION\tACCOUNT\tCATEGORY\tAMOUNT")
			for _, t := range resp.Transactions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					t.Timestamp.Format("2006-01-02"), truncate(t.Description, 32), truncate(t.AccountName, 20), t.Category, t.Amount.StringFixed(2))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&period, "period", 30, "Only show the last N days (0 for all)")
	cmd.Flags().StringVar(&search, "search", "", "Filter by description or account name")
	cmd.Flags().IntVar(&recent, "recent", 0, "Show only the N most recent transactions")

	return cmd
}

func submitCmd() *cobra.Command {
	var (
		req     dto.DraftRequest
		confirm bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a transaction draft for confirmation",
		RunE: func(cmd *cobra.Command, args []string) error {
			var summary dto.ConfirmationResponse
			if err := call(http.MethodPost, "/api/v1/drafts", req, &summary); err != nil {
				return err
			}
			fmt.Fprintf(output, "Pending: %s\n", summary.Text)

			if !confirm {
				fmt.Fprintln(output, "Run `confirm` or `cancel` to finish.")
				return nil
			}
			return confirmPending()
		},
	}

	cmd.Flags().StringVar(&req.SourceAccountID, "account", "", "Source account ID")
	cmd.Flags().StringVar(&req.Kind, "kind", "transfer", "transfer, deposit, payment or withdrawal")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "Amount")
	cmd.Flags().StringVar(&req.Destination, "to", "", "Destination (transfers and payments)")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm immediately")

	return cmd
}

func pendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Show the workflow status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.WorkflowStatusResponse
			if err := call(http.MethodGet, "/api/v1/drafts/pending", nil, &resp); err != nil {
				return err
			}
			printJSON(resp)
			return nil
		},
	}
}

func confirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm",
		Short: "Confirm the pending draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			return confirmPending()
		},
	}
}

func confirmPending() error {
	var tx dto.TransactionResponse
	if err := call(http.MethodPost, "/api/v1/drafts/pending/confirm", nil, &tx); err != nil {
		return err
	}
	fmt.Fprintf(output, "Committed %s: %s %s\n", tx.ID, tx.Kind, tx.Amount.StringFixed(2))
	return nil
}

func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the pending draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.CancelResponse
			if err := call(http.MethodPost, "/api/v1/drafts/pending/cancel", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintln(output, resp.Message)
			return nil
		},
	}
}

func quickCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:       "quick <deposit|withdraw|pay>",
		Short:     "Run a quick action without confirmation",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"deposit", "withdraw", "pay"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var tx dto.TransactionResponse
			body := dto.QuickActionRequest{AccountID: account}
			if err := call(http.MethodPost, "/api/v1/quick-actions/"+url.PathEscape(args[0]), body, &tx); err != nil {
				return err
			}
			fmt.Fprintf(output, "Committed %s: %s %s\n", tx.ID, tx.Description, tx.Amount.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account ID (defaults to the server's quick action account)")

	return cmd
}

func eventsCmd() *cobra.Command {
	var (
		limit int
		wait  int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Drain queued UI events",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("max", strconv.Itoa(limit))
			query.Set("wait", strconv.Itoa(wait))

			var resp dto.ListEventsResponse
			if err := call(http.MethodGet, "/api/v1/events?"+query.Encode(), nil, &resp); err != nil {
				return err
			}
			for _, e := range resp.Events {
				switch {
				case e.Level != "":
					fmt.Fprintf(output, "[%s] %s\n", e.Level, e.Message)
				case e.From != "" || e.To != "":
					fmt.Fprintf(output, "%s: %s -> %s\n", e.Type, e.From, e.To)
				default:
					fmt.Fprintln(output, e.Type)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "max", 0, "Maximum number of events (0 for all)")
	cmd.Flags().IntVar(&wait, "wait", 0, "Seconds to wait for the first event")

	return cmd
}

func lastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last <account-id>",
		Short: "Show the last transaction recorded for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.LastTransactionResponse
			if err := call(http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/last-transaction", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintln(output, resp.TransactionID)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <path>",
		Short: "Write the demo ledger to a seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := seed.Save(args[0], seed.Demo(time.Now().UTC())); err != nil {
				return err
			}
			fmt.Fprintf(output, "Seed written to %s\n", args[0])
			return nil
		},
	}
}

// call performs a request against the API and decodes the JSON response into out.
func call(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, strings.TrimRight(baseURL, "/")+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
			}
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(output, "failed to encode output: %v\n", err)
		return
	}
	fmt.Fprintln(output, string(data))
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
