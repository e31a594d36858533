package apperror

import (
	"errors"
	"fmt"
)

// Process exit codes, grouped by failure class. Anything that is not an
// AppError exits with ExitFailure.
const (
	ExitFailure  = 1
	ExitConfig   = 2
	ExitIO       = 3
	ExitTransfer = 4
)

// AppError is a structured error with a stable code and a process exit code.
type AppError struct {
	Code     string `json:"error_code"`
	Message  string `json:"message"`
	ExitCode int    `json:"-"`
	Err      error  `json:"-"` // Wrapped internal error (not shown in Message)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, exitCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		ExitCode: exitCode,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, exitCode int, err error) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		ExitCode: exitCode,
		Err:      err,
	}
}

// ExitCodeFor maps any error to a process exit code.
func ExitCodeFor(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return ExitFailure
}

// ---- Parsing (PARSE) ----

func ErrBidRowMalformed(path string, line int, err error) *AppError {
	return Wrap("PARSE_001", fmt.Sprintf("malformed bid row at %s:%d", path, line), ExitConfig, err)
}

func ErrBidHeaderInvalid(path string, header []string) *AppError {
	return New("PARSE_002", fmt.Sprintf("invalid bid schedule header %v in %s", header, path), ExitConfig)
}

func ErrLedgerRowMalformed(path string, line int, err error) *AppError {
	return Wrap("PARSE_003", fmt.Sprintf("malformed ledger row at %s:%d", path, line), ExitConfig, err)
}

// ---- Ledger & file I/O (IO) ----

func ErrBidScheduleUnreadable(path string, err error) *AppError {
	return Wrap("IO_001", fmt.Sprintf("cannot read bid schedule %s", path), ExitIO, err)
}

func ErrLedgerUnreadable(path string, err error) *AppError {
	return Wrap("IO_002", fmt.Sprintf("cannot read ledger %s", path), ExitIO, err)
}

func ErrLedgerBackup(path string, err error) *AppError {
	return Wrap("IO_003", fmt.Sprintf("cannot back up ledger %s", path), ExitIO, err)
}

func ErrLedgerAppend(err error) *AppError {
	return Wrap("IO_004", "cannot append to ledger", ExitIO, err)
}

// ---- Transfer dispatch (XFER) ----

func ErrTransferFailed(recipient string, err error) *AppError {
	return Wrap("XFER_001", fmt.Sprintf("transfer to %s failed", recipient), ExitTransfer, err)
}

func ErrEmptyReceipt(recipient string) *AppError {
	return New("XFER_002", fmt.Sprintf("executor returned no receipt for transfer to %s", recipient), ExitTransfer)
}

// ---- Configuration (CFG) ----

func ErrConfigLoad(err error) *AppError {
	return Wrap("CFG_001", "cannot load configuration", ExitConfig, err)
}

func ErrInvalidPrice(value string) *AppError {
	return New("CFG_002", fmt.Sprintf("price must be a positive decimal, got %q", value), ExitConfig)
}

func ErrUnknownBackend(backend string) *AppError {
	return New("CFG_003", fmt.Sprintf("unknown ledger backend %q", backend), ExitConfig)
}

func ErrUnknownStrategy(strategy string) *AppError {
	return New("CFG_004", fmt.Sprintf("unknown reconcile strategy %q", strategy), ExitConfig)
}

func ErrMissingSetting(key string) *AppError {
	return New("CFG_005", fmt.Sprintf("required setting %q is not set", key), ExitConfig)
}
