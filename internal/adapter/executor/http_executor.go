package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"token-distributor/internal/core/domain"
	"token-distributor/pkg/apperror"
)

// Doer abstracts *http.Client for testing.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type transferRequest struct {
	RequestID     string `json:"request_id"`
	Recipient     string `json:"recipient"`
	Amount        string `json:"amount"`
	FeePayer      string `json:"fee_payer"`
	FundingSource string `json:"funding_source"`
}

type transferResponse struct {
	Receipt string `json:"receipt"`
}

// HTTPExecutor implements ports.TransferExecutor against a transfer
// endpoint speaking JSON. Each dispatch carries a fresh request ID so
// the endpoint can deduplicate retried submissions on its side.
// Timeouts belong to the injected client.
type HTTPExecutor struct {
	endpoint string
	client   Doer
	log      zerolog.Logger
}

// NewHTTPExecutor creates a new HTTPExecutor.
func NewHTTPExecutor(endpoint string, client Doer, log zerolog.Logger) *HTTPExecutor {
	return &HTTPExecutor{
		endpoint: endpoint,
		client:   client,
		log:      log,
	}
}

// Transfer dispatches one transfer and returns the endpoint's receipt.
func (e *HTTPExecutor) Transfer(ctx context.Context, allocation domain.Allocation, signers domain.Signers) (string, error) {
	payload := transferRequest{
		RequestID:     uuid.NewString(),
		Recipient:     allocation.Recipient,
		Amount:        allocation.Amount.String(),
		FeePayer:      signers.FeePayer,
		FundingSource: signers.FundingSource,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperror.ErrTransferFailed(allocation.Recipient, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", apperror.ErrTransferFailed(allocation.Recipient, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	e.log.Debug().
		Str("request_id", payload.RequestID).
		Str("recipient", allocation.Recipient).
		Str("amount", payload.Amount).
		Msg("dispatching transfer")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", apperror.ErrTransferFailed(allocation.Recipient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", apperror.ErrTransferFailed(allocation.Recipient,
			fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, snippet))
	}

	var result transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperror.ErrTransferFailed(allocation.Recipient, fmt.Errorf("decode response: %w", err))
	}
	if result.Receipt == "" {
		return "", apperror.ErrEmptyReceipt(allocation.Recipient)
	}

	return result.Receipt, nil
}
