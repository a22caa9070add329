package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "landau",
		Short:        "Batched AMM settlement host",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("store", "file", "pool store (memory, file, postgres)")
	flags.String("store-dir", "./data/pools", "directory of the file pool store")
	flags.String("pg-dsn", "", "Postgres DSN")
	flags.String("settlements-out", "./data/settlements.jsonl", "settlement log path for the file store")
	flags.String("clock", "system", "slot source (system, chain)")
	flags.String("rpc", "", "JSON-RPC URL for the chain clock")
	flags.String("genesis", "", "system clock genesis (RFC3339)")
	flags.Duration("slot-duration", 400*time.Millisecond, "system clock slot length")
	flags.String("lock", "local", "pool lock (local, redis)")
	flags.String("redis-addr", "localhost:6379", "Redis address")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database")
	flags.Duration("lock-ttl", 10*time.Second, "Redis lock TTL")
	flags.Int("max-retries", 5, "maximum retry attempts on pool contention")
	flags.Duration("retry-backoff", 50*time.Millisecond, "initial retry backoff")

	root.AddCommand(newPoolCommand())
	root.AddCommand(newLiquidityCommand())
	root.AddCommand(newOrderCommand())
	root.AddCommand(newSettleCommand())
	root.AddCommand(newSettlementsCommand())
	root.AddCommand(newQuoteCommand())
	root.AddCommand(newServeCommand())
	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
