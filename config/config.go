package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all distributor configuration.
type Config struct {
	Bids      BidsConfig      `mapstructure:"bids"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Transfer  TransferConfig  `mapstructure:"transfer"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Log       LogConfig       `mapstructure:"log"`
}

type BidsConfig struct {
	Path string `mapstructure:"path"`
}

// Ledger backends.
const (
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
)

type LedgerConfig struct {
	Backend string `mapstructure:"backend"` // csv, postgres
	Path    string `mapstructure:"path"`    // csv backend only
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

type TransferConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Price         string        `mapstructure:"price"` // dollars per token, decimal string
	DryRun        bool          `mapstructure:"dry_run"`
	FeePayer      string        `mapstructure:"fee_payer"`
	FundingSource string        `mapstructure:"funding_source"`
}

// PriceDecimal parses the configured conversion rate.
func (t TransferConfig) PriceDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(t.Price)
}

type ReconcileConfig struct {
	Strategy string `mapstructure:"strategy"` // positional, recipient
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output
}

// Load reads configuration from file, environment variables and flags.
// Precedence, lowest to highest: defaults, config file, environment
// (prefix TDIST_, nested keys with underscore: TDIST_LEDGER_PATH), then
// any flags changed on the given flag set.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("bids.path", "bids.csv")
	v.SetDefault("ledger.backend", BackendCSV)
	v.SetDefault("ledger.path", "transactions.csv")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "distributor")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 4)
	v.SetDefault("postgres.min_conns", 1)
	v.SetDefault("postgres.conn_max_lifetime", "30m")
	v.SetDefault("transfer.endpoint", "")
	v.SetDefault("transfer.timeout", "30s")
	v.SetDefault("transfer.price", "")
	v.SetDefault("transfer.dry_run", false)
	v.SetDefault("transfer.fee_payer", "")
	v.SetDefault("transfer.funding_source", "")
	v.SetDefault("reconcile.strategy", "positional")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: TDIST_TRANSFER_PRICE -> transfer.price
	v.SetEnvPrefix("TDIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars and flags can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// flagKeys maps flag names onto config keys.
var flagKeys = map[string]string{
	"bids":           "bids.path",
	"ledger":         "ledger.path",
	"ledger-backend": "ledger.backend",
	"endpoint":       "transfer.endpoint",
	"price":          "transfer.price",
	"dry-run":        "transfer.dry_run",
	"fee-payer":      "transfer.fee_payer",
	"funding-source": "transfer.funding_source",
	"strategy":       "reconcile.strategy",
	"log-level":      "log.level",
	"log-pretty":     "log.pretty",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		// Bind only flags the user set, so file and env values are
		// not clobbered by flag defaults.
		if f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding flag %q: %w", name, err)
			}
		}
	}
	return nil
}
