package ports

import (
	"context"

	"token-distributor/internal/core/domain"
)

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks

// TransferExecutor dispatches a single value transfer and returns the
// opaque receipt identifying it. Transfers are dispatched one at a time
// so the caller can ledger each confirmed transfer before the next is
// attempted.
type TransferExecutor interface {
	Transfer(ctx context.Context, allocation domain.Allocation, signers domain.Signers) (string, error)
}
