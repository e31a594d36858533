package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("CFG_002", `price must be a positive decimal, got "0"`, ExitConfig),
			expected: `[CFG_002] price must be a positive decimal, got "0"`,
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("IO_004", "cannot append to ledger", ExitIO, fmt.Errorf("disk full")),
			expected: "[IO_004] cannot append to ledger: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("IO_002", "wrapped", ExitIO, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("XFER_002", "test", ExitTransfer)
	assert.Nil(t, appErr.Unwrap())
}

func TestTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		exitCode int
	}{
		{"BidRowMalformed", ErrBidRowMalformed("bids.csv", 3, fmt.Errorf("bad decimal")), "PARSE_001", ExitConfig},
		{"BidHeaderInvalid", ErrBidHeaderInvalid("bids.csv", []string{"x"}), "PARSE_002", ExitConfig},
		{"LedgerRowMalformed", ErrLedgerRowMalformed("ledger.csv", 2, fmt.Errorf("bad decimal")), "PARSE_003", ExitConfig},
		{"BidScheduleUnreadable", ErrBidScheduleUnreadable("bids.csv", fmt.Errorf("no such file")), "IO_001", ExitIO},
		{"LedgerUnreadable", ErrLedgerUnreadable("ledger.csv", fmt.Errorf("permission denied")), "IO_002", ExitIO},
		{"LedgerBackup", ErrLedgerBackup("ledger.csv", fmt.Errorf("disk full")), "IO_003", ExitIO},
		{"LedgerAppend", ErrLedgerAppend(fmt.Errorf("disk full")), "IO_004", ExitIO},
		{"TransferFailed", ErrTransferFailed("addr1", fmt.Errorf("refused")), "XFER_001", ExitTransfer},
		{"EmptyReceipt", ErrEmptyReceipt("addr1"), "XFER_002", ExitTransfer},
		{"ConfigLoad", ErrConfigLoad(fmt.Errorf("bad yaml")), "CFG_001", ExitConfig},
		{"InvalidPrice", ErrInvalidPrice("-1"), "CFG_002", ExitConfig},
		{"UnknownBackend", ErrUnknownBackend("oracle"), "CFG_003", ExitConfig},
		{"UnknownStrategy", ErrUnknownStrategy("alphabetical"), "CFG_004", ExitConfig},
		{"MissingSetting", ErrMissingSetting("bids.path"), "CFG_005", ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.exitCode, tt.err.ExitCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitIO, ExitCodeFor(ErrLedgerAppend(fmt.Errorf("disk full"))))
	assert.Equal(t, ExitTransfer, ExitCodeFor(fmt.Errorf("run: %w", ErrEmptyReceipt("addr1"))))
	assert.Equal(t, ExitFailure, ExitCodeFor(fmt.Errorf("some other error")))
}
