package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"token-distributor/internal/core/domain"
	"token-distributor/pkg/apperror"
)

// LedgerRepo implements ports.LedgerStore on PostgreSQL. The seq column
// preserves append order for replay; rows are only ever inserted.
// Backup discipline is the database's own concern here — the store
// guarantees ordered, append-only replay and nothing more.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// EnsureSchema creates the transaction_records table if it is missing.
func (r *LedgerRepo) EnsureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS transaction_records (
		seq BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		recipient TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		receipt TEXT NOT NULL)`

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

// Load returns the full ledger history in append order. An empty table
// yields an empty history, never an error.
func (r *LedgerRepo) Load(ctx context.Context) ([]domain.TransactionRecord, error) {
	query := `SELECT recipient, amount::text, receipt FROM transaction_records ORDER BY seq`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperror.ErrLedgerUnreadable("transaction_records", err)
	}
	defer rows.Close()

	var history []domain.TransactionRecord
	for rows.Next() {
		var recipient, amountStr, receipt string
		if err := rows.Scan(&recipient, &amountStr, &receipt); err != nil {
			return nil, apperror.ErrLedgerUnreadable("transaction_records", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, apperror.ErrLedgerUnreadable("transaction_records", fmt.Errorf("amount: %w", err))
		}
		history = append(history, domain.TransactionRecord{
			Recipient: recipient,
			Amount:    amount,
			Receipt:   receipt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.ErrLedgerUnreadable("transaction_records", err)
	}

	return history, nil
}

// Append inserts the records in input order inside one transaction.
func (r *LedgerRepo) Append(ctx context.Context, records []domain.TransactionRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperror.ErrLedgerAppend(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `INSERT INTO transaction_records (recipient, amount, receipt) VALUES ($1, $2, $3)`
	for _, record := range records {
		if _, err := tx.Exec(ctx, query, record.Recipient, record.Amount.String(), record.Receipt); err != nil {
			return apperror.ErrLedgerAppend(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.ErrLedgerAppend(err)
	}
	return nil
}
