package ports

import (
	"context"

	"token-distributor/internal/core/domain"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories.go -package=mocks

// BidSource loads the bid schedule. Loads are all-or-nothing: a single
// malformed row fails the whole load.
type BidSource interface {
	Load(ctx context.Context) ([]domain.Bid, error)
}

// LedgerStore persists the append-only record of completed transfers.
// Load returns the full history in append order, or an empty slice when
// no ledger exists yet. Append writes the given records in order and
// flushes before returning; it never rewrites existing entries.
type LedgerStore interface {
	Load(ctx context.Context) ([]domain.TransactionRecord, error)
	Append(ctx context.Context, records []domain.TransactionRecord) error
}
