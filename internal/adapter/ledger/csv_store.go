package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"token-distributor/internal/core/domain"
	"token-distributor/pkg/apperror"
)

// BackupSuffix is appended to the ledger path to name the pre-append
// backup copy. The backup is overwritten on every append and exists for
// manual recovery only; nothing reads it back automatically.
const BackupSuffix = ".bak"

var header = []string{"recipient", "amount", "receipt"}

// CSVStore persists transaction records in an append-only CSV file.
// The file carries a header row written once at creation; later appends
// add headerless rows. The store never rewrites or compacts existing
// entries.
type CSVStore struct {
	path string
}

// NewCSVStore creates a CSVStore for the given ledger path. The file
// may not exist yet; the first Append creates it.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// BackupPath returns where the pre-append copy is written.
func (s *CSVStore) BackupPath() string {
	return s.path + BackupSuffix
}

// Load implements ports.LedgerStore. A missing ledger is not an error:
// it means nothing has been disbursed yet.
func (s *CSVStore) Load(_ context.Context) ([]domain.TransactionRecord, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.ErrLedgerUnreadable(s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, apperror.ErrLedgerRowMalformed(s.path, 1, err)
	}

	var history []domain.TransactionRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperror.ErrLedgerRowMalformed(s.path, line, err)
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, apperror.ErrLedgerRowMalformed(s.path, line, fmt.Errorf("amount: %w", err))
		}

		history = append(history, domain.TransactionRecord{
			Recipient: strings.TrimSpace(row[0]),
			Amount:    amount,
			Receipt:   strings.TrimSpace(row[2]),
		})
	}

	return history, nil
}

// Append implements ports.LedgerStore. If the ledger already exists its
// current content is copied to BackupPath first, then the records are
// appended headerless; a fresh ledger is created with the header row
// and no backup. The write is flushed and synced before success is
// reported. There is no rollback: an interrupted append is recovered
// manually from the backup.
func (s *CSVStore) Append(_ context.Context, records []domain.TransactionRecord) error {
	existed := true
	if _, err := os.Stat(s.path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return apperror.ErrLedgerAppend(err)
		}
		existed = false
	}

	if existed {
		if err := s.backup(); err != nil {
			return apperror.ErrLedgerBackup(s.path, err)
		}
	}

	flags := os.O_WRONLY
	if existed {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(s.path, flags, 0o644)
	if err != nil {
		return apperror.ErrLedgerAppend(err)
	}

	w := csv.NewWriter(f)
	if !existed {
		if err := w.Write(header); err != nil {
			f.Close()
			return apperror.ErrLedgerAppend(err)
		}
	}
	for _, record := range records {
		row := []string{record.Recipient, record.Amount.String(), record.Receipt}
		if err := w.Write(row); err != nil {
			f.Close()
			return apperror.ErrLedgerAppend(err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return apperror.ErrLedgerAppend(err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return apperror.ErrLedgerAppend(err)
	}
	if err := f.Close(); err != nil {
		return apperror.ErrLedgerAppend(err)
	}
	return nil
}

func (s *CSVStore) backup() error {
	src, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(s.BackupPath())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
