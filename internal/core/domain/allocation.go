package domain

import "github.com/shopspring/decimal"

// Allocation is the remaining native-token amount owed to a recipient.
// Amounts shrink during reconciliation as prior disbursements are
// subtracted; entries that reach zero are pruned from the work list.
type Allocation struct {
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
}

// DeriveAllocations converts bids into token allocations at the given
// price (dollars per token), preserving bid order. The caller validates
// that price is positive before deriving.
func DeriveAllocations(bids []Bid, price decimal.Decimal) []Allocation {
	allocations := make([]Allocation, 0, len(bids))
	for _, bid := range bids {
		allocations = append(allocations, Allocation{
			Recipient: bid.RecipientAddress,
			Amount:    bid.AmountDollars.Div(price),
		})
	}
	return allocations
}

// TotalAmount sums the amounts of the given allocations.
func TotalAmount(allocations []Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.Amount)
	}
	return total
}
