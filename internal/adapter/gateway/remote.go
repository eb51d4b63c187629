package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankdash/internal/domain"
)

const (
	transactionsPath = "/api/transactions"
	healthPath       = "/api/health"

	// DefaultTimeout bounds a single submission.
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 64 << 10
)

// RemoteGateway submits intents to the remote banking API over HTTP.
type RemoteGateway struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// NewRemoteGateway creates a RemoteGateway for baseURL. A nil client uses a
// default http.Client.
func NewRemoteGateway(baseURL string, timeout time.Duration, client *http.Client, logger zerolog.Logger) *RemoteGateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{}
	}

	return &RemoteGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		timeout: timeout,
		logger:  logger.With().Str("component", "remote_gateway").Logger(),
	}
}

type transactionRequest struct {
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	AccountID   string      `json:"account_id"`
}

type transactionResponse struct {
	TransactionID string              `json:"transaction_id"`
	Type          string              `json:"type"`
	Amount        decimal.Decimal     `json:"amount"`
	Description   string              `json:"description"`
	Timestamp     string              `json:"timestamp"`
	NewBalance    decimal.NullDecimal `json:"new_balance"`
	Status        string              `json:"status"`
	Message       string              `json:"message,omitempty"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// Submit posts intent to the remote API. Every failure is a *domain.GatewayError.
func (g *RemoteGateway) Submit(ctx context.Context, intent domain.TransactionIntent) (*domain.CommitReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	payload, err := json.Marshal(transactionRequest{
		Amount:      json.Number(intent.Amount.String()),
		Type:        string(intent.Kind),
		Description: intent.Description,
		AccountID:   intent.AccountID,
	})
	if err != nil {
		return nil, domain.NewGatewayError(domain.GatewayReasonProtocol, fmt.Sprintf("failed to encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+transactionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.NewGatewayError(domain.GatewayReasonNetwork, fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := errorDetail(resp)
		g.logger.Warn().
			Int("status_code", resp.StatusCode).
			Str("detail", detail).
			Str("account_id", intent.AccountID).
			Msg("remote rejected transaction")
		return nil, domain.NewGatewayError(domain.GatewayReasonRemote, detail)
	}

	var body transactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if ctx.Err() != nil {
			return nil, transportError(ctx, err)
		}
		return nil, domain.NewGatewayError(domain.GatewayReasonProtocol, fmt.Sprintf("invalid response body: %v", err))
	}

	if body.TransactionID == "" {
		return nil, domain.NewGatewayError(domain.GatewayReasonProtocol, "response is missing transaction_id")
	}

	if body.Status != string(domain.TransactionStatusCompleted) {
		detail := body.Message
		if detail == "" {
			detail = fmt.Sprintf("transaction status %q", body.Status)
		}
		return nil, domain.NewGatewayError(domain.GatewayReasonRejected, detail)
	}

	kind := domain.TransactionKind(body.Type)
	if !kind.IsValid() {
		kind = intent.Kind
	}

	amount := body.Amount.Abs()
	if amount.IsZero() {
		amount = intent.Amount
	}

	description := body.Description
	if description == "" {
		description = intent.Description
	}

	return &domain.CommitReceipt{
		TransactionID: body.TransactionID,
		Kind:          kind,
		Amount:        amount,
		Description:   description,
		NewBalance:    body.NewBalance,
		Timestamp:     parseTimestamp(body.Timestamp),
		Status:        domain.TransactionStatusCompleted,
	}, nil
}

// Probe checks the remote health endpoint.
func (g *RemoteGateway) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+healthPath, nil)
	if err != nil {
		return domain.NewGatewayError(domain.GatewayReasonUnavailable, err.Error())
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.NewGatewayError(domain.GatewayReasonUnavailable, fmt.Sprintf("health check returned %d", resp.StatusCode))
	}

	return nil
}

// Mode reports the remote path.
func (g *RemoteGateway) Mode() domain.GatewayMode {
	return domain.GatewayModeRemote
}

func transportError(ctx context.Context, err error) *domain.GatewayError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewGatewayError(domain.GatewayReasonTimeout, "remote did not answer in time")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewGatewayError(domain.GatewayReasonTimeout, "remote did not answer in time")
	}

	return domain.NewGatewayError(domain.GatewayReasonNetwork, err.Error())
}

// errorDetail extracts the detail field of an error body. The detail may be a
// string or a structured value; the status text is used when absent.
func errorDetail(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(raw) > 0 {
		var body errorResponse
		if json.Unmarshal(raw, &body) == nil && len(body.Detail) > 0 && string(body.Detail) != "null" {
			var text string
			if json.Unmarshal(body.Detail, &text) == nil {
				return text
			}
			return string(body.Detail)
		}
	}

	return http.StatusText(resp.StatusCode)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp accepts RFC 3339 and zone-less ISO timestamps, the latter
// read as UTC. Unparseable values yield the zero time.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
