package service

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"token-distributor/internal/core/domain"
	"token-distributor/internal/core/ports"
	"token-distributor/pkg/apperror"
)

// DistributionParams carries the per-run settings the orchestrator
// needs beyond its collaborators.
type DistributionParams struct {
	// Price is the conversion rate in dollars per native token.
	Price decimal.Decimal
	// DryRun stops the pipeline after printing the plan: no
	// transfers are dispatched and nothing is appended to the ledger.
	DryRun bool
	// Strategy selects the ledger replay semantics.
	Strategy Strategy
	// Signers are handed to the transfer executor unchanged.
	Signers domain.Signers
}

// DistributionService wires the pipeline: load bids, derive and
// reconcile allocations, print the plan, then dispatch transfers and
// ledger each one as it is confirmed.
type DistributionService struct {
	bids     ports.BidSource
	ledger   ports.LedgerStore
	executor ports.TransferExecutor
	params   DistributionParams
	out      io.Writer
	log      zerolog.Logger
}

// NewDistributionService creates a new DistributionService. The plan
// table is written to out.
func NewDistributionService(
	bids ports.BidSource,
	ledger ports.LedgerStore,
	executor ports.TransferExecutor,
	params DistributionParams,
	out io.Writer,
	log zerolog.Logger,
) *DistributionService {
	return &DistributionService{
		bids:     bids,
		ledger:   ledger,
		executor: executor,
		params:   params,
		out:      out,
		log:      log,
	}
}

// Run executes one distribution pass. Re-running after any failure is
// safe: every confirmed transfer is already in the ledger, so the next
// pass reconciles it away instead of paying it again.
func (s *DistributionService) Run(ctx context.Context) error {
	if !s.params.Price.IsPositive() {
		return apperror.ErrInvalidPrice(s.params.Price.String())
	}
	if !s.params.Strategy.Valid() {
		return apperror.ErrUnknownStrategy(string(s.params.Strategy))
	}

	bids, err := s.bids.Load(ctx)
	if err != nil {
		return fmt.Errorf("load bids: %w", err)
	}
	allocations := domain.DeriveAllocations(bids, s.params.Price)

	history, err := s.ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	allocations = Reconcile(allocations, history, s.params.Strategy)

	if len(allocations) == 0 {
		s.log.Info().Int("bids", len(bids)).Int("ledger_records", len(history)).Msg("no work to do")
		return nil
	}

	if err := s.writePlan(allocations); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}

	if s.params.DryRun {
		s.log.Info().Int("pending", len(allocations)).Msg("dry run, no transfers dispatched")
		return nil
	}

	for _, allocation := range allocations {
		receipt, err := s.executor.Transfer(ctx, allocation, s.params.Signers)
		if err != nil {
			return apperror.ErrTransferFailed(allocation.Recipient, err)
		}

		record := domain.TransactionRecord{
			Recipient: allocation.Recipient,
			Amount:    allocation.Amount,
			Receipt:   receipt,
		}
		// The record must hit the ledger before the next dispatch.
		// If this append fails the transfer is already irreversible
		// and the ledger is out of sync; the error says so and the
		// operator reconciles manually from the receipt.
		if err := s.ledger.Append(ctx, []domain.TransactionRecord{record}); err != nil {
			s.log.Error().
				Str("recipient", allocation.Recipient).
				Str("receipt", receipt).
				Msg("transfer dispatched but not recorded, ledger is out of sync")
			return apperror.ErrLedgerAppend(err)
		}

		s.log.Info().
			Str("recipient", allocation.Recipient).
			Str("amount", allocation.Amount.String()).
			Str("receipt", receipt).
			Msg("transfer confirmed and recorded")
	}

	s.log.Info().Int("transfers", len(allocations)).Msg("distribution complete")
	return nil
}

func (s *DistributionService) writePlan(allocations []domain.Allocation) error {
	w := tabwriter.NewWriter(s.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Recipient\tAmount")
	for _, allocation := range allocations {
		fmt.Fprintf(w, "%s\t%s\n", allocation.Recipient, allocation.Amount.String())
	}
	fmt.Fprintf(w, "Total\t%s\n", domain.TotalAmount(allocations).String())
	return w.Flush()
}
