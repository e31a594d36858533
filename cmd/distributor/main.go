package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"token-distributor/config"
	"token-distributor/internal/adapter/bids"
	"token-distributor/internal/adapter/executor"
	"token-distributor/internal/adapter/ledger"
	"token-distributor/internal/adapter/postgres"
	"token-distributor/internal/core/domain"
	"token-distributor/internal/core/ports"
	"token-distributor/internal/service"
	"token-distributor/pkg/apperror"
	"token-distributor/pkg/logger"
)

const usage = `Usage: distributor distribute [flags]

Distributes a pool of tokens to the recipients in a bid schedule,
skipping anything the transaction ledger shows as already sent.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 || args[0] != "distribute" {
		fmt.Fprint(os.Stderr, usage)
		return apperror.ExitConfig
	}

	fs := pflag.NewFlagSet("distribute", pflag.ContinueOnError)
	cfgFile := fs.String("config", "", "path to config file")
	fs.String("bids", "bids.csv", "path to the bid schedule CSV")
	fs.String("ledger", "transactions.csv", "path to the transaction ledger CSV")
	fs.String("ledger-backend", config.BackendCSV, "ledger backend: csv or postgres")
	fs.String("endpoint", "", "transfer executor endpoint URL")
	fs.String("price", "", "conversion rate in dollars per token")
	fs.Bool("dry-run", false, "print the plan without dispatching transfers")
	fs.String("fee-payer", "", "identity paying transfer fees")
	fs.String("funding-source", "", "identity funding the transfers")
	fs.String("strategy", string(service.StrategyPositional), "ledger replay strategy: positional or recipient")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.Bool("log-pretty", true, "human-readable log output")
	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return apperror.ExitConfig
	}

	cfg, err := config.Load(*cfgFile, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return apperror.ExitConfig
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	price, err := cfg.Transfer.PriceDecimal()
	if err != nil || !price.IsPositive() {
		log.Error().Str("price", cfg.Transfer.Price).Msg("price must be a positive decimal")
		return apperror.ExitCodeFor(apperror.ErrInvalidPrice(cfg.Transfer.Price))
	}

	strategy := service.Strategy(cfg.Reconcile.Strategy)
	if !strategy.Valid() {
		log.Error().Str("strategy", cfg.Reconcile.Strategy).Msg("unknown reconcile strategy")
		return apperror.ExitConfig
	}

	ctx := context.Background()

	var store ports.LedgerStore
	switch cfg.Ledger.Backend {
	case config.BackendCSV:
		store = ledger.NewCSVStore(cfg.Ledger.Path)
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres, log)
		if err != nil {
			log.Error().Err(err).Msg("failed to connect to postgres")
			return apperror.ExitIO
		}
		defer pool.Close()
		repo := postgres.NewLedgerRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Error().Err(err).Msg("failed to ensure ledger schema")
			return apperror.ExitIO
		}
		store = repo
	default:
		log.Error().Str("backend", cfg.Ledger.Backend).Msg("unknown ledger backend")
		return apperror.ExitConfig
	}

	if !cfg.Transfer.DryRun && cfg.Transfer.Endpoint == "" {
		log.Error().Msg("transfer endpoint is required unless --dry-run is set")
		return apperror.ExitConfig
	}

	httpClient := &http.Client{Timeout: cfg.Transfer.Timeout}
	exec := executor.NewHTTPExecutor(cfg.Transfer.Endpoint, httpClient, log)

	svc := service.NewDistributionService(
		bids.NewLoader(cfg.Bids.Path),
		store,
		exec,
		service.DistributionParams{
			Price:    price,
			DryRun:   cfg.Transfer.DryRun,
			Strategy: strategy,
			Signers: domain.Signers{
				FeePayer:      cfg.Transfer.FeePayer,
				FundingSource: cfg.Transfer.FundingSource,
			},
		},
		os.Stdout,
		log,
	)

	if err := svc.Run(ctx); err != nil {
		log.Error().Err(err).Msg("distribution failed")
		return apperror.ExitCodeFor(err)
	}
	return 0
}
