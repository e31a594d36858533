package bids

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"token-distributor/internal/core/domain"
	"token-distributor/pkg/apperror"
)

const (
	headerAmount    = "amount_dollars"
	headerRecipient = "recipient_address"
)

// Loader reads a CSV bid schedule. A load is all-or-nothing: any
// malformed row aborts the whole load before a single bid is returned.
type Loader struct {
	path string
}

// NewLoader creates a Loader for the given schedule path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load implements ports.BidSource. The file needs a header row naming
// the amount and recipient columns; fields are whitespace-trimmed, row
// order is preserved and duplicate recipients are kept.
func (l *Loader) Load(_ context.Context) ([]domain.Bid, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, apperror.ErrBidScheduleUnreadable(l.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperror.ErrBidHeaderInvalid(l.path, nil)
		}
		return nil, apperror.ErrBidRowMalformed(l.path, 1, err)
	}
	if !headerMatches(header) {
		return nil, apperror.ErrBidHeaderInvalid(l.path, header)
	}

	var loaded []domain.Bid
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperror.ErrBidRowMalformed(l.path, line, err)
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, apperror.ErrBidRowMalformed(l.path, line, fmt.Errorf("amount: %w", err))
		}
		recipient := strings.TrimSpace(row[1])
		if recipient == "" {
			return nil, apperror.ErrBidRowMalformed(l.path, line, errors.New("empty recipient address"))
		}

		loaded = append(loaded, domain.Bid{
			AmountDollars:    amount,
			RecipientAddress: recipient,
		})
	}

	return loaded, nil
}

func headerMatches(header []string) bool {
	if len(header) != 2 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(header[0]), headerAmount) &&
		strings.EqualFold(strings.TrimSpace(header[1]), headerRecipient)
}
