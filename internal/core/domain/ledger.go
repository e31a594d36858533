package domain

import "github.com/shopspring/decimal"

// TransactionRecord is one durable ledger entry for a confirmed
// transfer. The ledger is append-only: a record is written if and only
// if its transfer was dispatched, and the sum of a recipient's records
// is the amount already disbursed to them.
type TransactionRecord struct {
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
	Receipt   string          `json:"receipt"`
}

// Signers identifies the fee payer and the source of funds for a run.
// They are opaque to the core and handed to the transfer executor as-is.
type Signers struct {
	FeePayer      string
	FundingSource string
}

// DisbursedByRecipient folds ledger history into a cumulative amount
// per recipient.
func DisbursedByRecipient(history []TransactionRecord) map[string]decimal.Decimal {
	disbursed := make(map[string]decimal.Decimal, len(history))
	for _, record := range history {
		disbursed[record.Recipient] = disbursed[record.Recipient].Add(record.Amount)
	}
	return disbursed
}
