package domain

import "github.com/shopspring/decimal"

// Bid is one row of the bid schedule: a dollar-denominated request tied
// to a recipient address. Bids are read fresh every run and are
// immutable once loaded; duplicate recipients are kept as separate rows.
type Bid struct {
	AmountDollars    decimal.Decimal `json:"amount_dollars"`
	RecipientAddress string          `json:"recipient_address"`
}
