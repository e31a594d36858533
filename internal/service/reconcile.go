package service

import (
	"github.com/shopspring/decimal"

	"token-distributor/internal/core/domain"
)

// Strategy selects how ledger history is replayed against a freshly
// derived allocation list.
type Strategy string

const (
	// StrategyPositional replays each ledger record against the
	// allocation list by position, left to right with partial
	// consumption. This matches the original distribution tool and
	// is only correct while the bid schedule's row order and
	// recipient set stay stable between runs: re-sorting the
	// schedule or adding/removing recipients makes replay attribute
	// prior payments to the wrong recipients.
	StrategyPositional Strategy = "positional"

	// StrategyRecipient keys prior disbursements by recipient
	// address and subtracts per recipient, which survives schedule
	// reordering.
	StrategyRecipient Strategy = "recipient"
)

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyPositional || s == StrategyRecipient
}

// Reconcile subtracts ledger history from allocations and prunes
// entries with nothing left to pay. The returned slice reuses the input
// backing array; surviving entries keep their relative order. Pure
// arithmetic: no I/O, no errors.
func Reconcile(allocations []domain.Allocation, history []domain.TransactionRecord, strategy Strategy) []domain.Allocation {
	if strategy == StrategyRecipient {
		return reconcileByRecipient(allocations, history)
	}
	return reconcilePositional(allocations, history)
}

// reconcilePositional walks each historical record's amount across the
// allocation list in order. The first allocation that can absorb the
// remaining debit takes all of it; smaller allocations are consumed
// entirely and the debit reduced. A debit that outlives the whole list
// is dropped: the recipient was either removed from the schedule or
// already received more than the current schedule allocates.
func reconcilePositional(allocations []domain.Allocation, history []domain.TransactionRecord) []domain.Allocation {
	for _, record := range history {
		debit := record.Amount
		for i := range allocations {
			if allocations[i].Amount.GreaterThanOrEqual(debit) {
				allocations[i].Amount = allocations[i].Amount.Sub(debit)
				break
			}
			debit = debit.Sub(allocations[i].Amount)
			allocations[i].Amount = decimal.Zero
		}
	}
	return prune(allocations)
}

// reconcileByRecipient folds the ledger into per-recipient totals and
// subtracts them from the matching allocations, clamping at zero.
// Disbursements to recipients no longer in the schedule, and amounts
// beyond what the schedule allocates, are dropped just like the
// positional walk drops them.
func reconcileByRecipient(allocations []domain.Allocation, history []domain.TransactionRecord) []domain.Allocation {
	disbursed := domain.DisbursedByRecipient(history)
	for i := range allocations {
		debit := disbursed[allocations[i].Recipient]
		if debit.Sign() <= 0 {
			continue
		}
		if allocations[i].Amount.GreaterThanOrEqual(debit) {
			allocations[i].Amount = allocations[i].Amount.Sub(debit)
			disbursed[allocations[i].Recipient] = decimal.Zero
			continue
		}
		disbursed[allocations[i].Recipient] = debit.Sub(allocations[i].Amount)
		allocations[i].Amount = decimal.Zero
	}
	return prune(allocations)
}

func prune(allocations []domain.Allocation) []domain.Allocation {
	remaining := allocations[:0]
	for _, allocation := range allocations {
		if allocation.Amount.Sign() > 0 {
			remaining = append(remaining, allocation)
		}
	}
	return remaining
}
