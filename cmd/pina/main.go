package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pinacolada-dex/pina-colada/internal/config"
	"github.com/pinacolada-dex/pina-colada/internal/model"
	"github.com/pinacolada-dex/pina-colada/internal/registry"
	"github.com/pinacolada-dex/pina-colada/internal/storage"
	"github.com/pinacolada-dex/pina-colada/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "pina",
		Short:        "Concentrated-liquidity pool engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("store", "./data/pools.json", "pool state file path")
	root.PersistentFlags().String("pg-dsn", "", "Postgres DSN (overrides the file store)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	createCmd := &cobra.Command{
		Use:   "create-pool",
		Short: "Register a new pool",
		RunE:  runCreatePool,
	}
	createCmd.Flags().StringSlice("assets", nil, "pair assets (comma-separated)")
	createCmd.Flags().String("precisions", "6,6", "asset decimal precisions")
	createCmd.Flags().String("price", "", "initial price of the second asset in the first")
	createCmd.Flags().String("amp", "40", "amplification parameter")
	createCmd.Flags().String("gamma", "0.000145", "gamma parameter")
	createCmd.Flags().String("owner", "", "pool owner")
	createCmd.Flags().String("fee-recipient", "", "maker fee recipient")
	createCmd.Flags().String("share-recipient", "", "share fee recipient")
	createCmd.Flags().Bool("track-balances", false, "persist per-asset balance records")
	root.AddCommand(createCmd)

	swapCmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap one asset for another",
		RunE:  runSwap,
	}
	swapCmd.Flags().String("offer", "", "offer asset")
	swapCmd.Flags().String("amount", "", "offer amount (raw integer units)")
	swapCmd.Flags().String("ask", "", "ask asset")
	swapCmd.Flags().String("belief-price", "", "expected price for the spread check")
	swapCmd.Flags().String("max-spread", "", "maximum tolerated spread ratio")
	swapCmd.Flags().String("recipient", "", "output recipient")
	root.AddCommand(swapCmd)

	multiCmd := &cobra.Command{
		Use:   "multi-swap",
		Short: "Swap through a chain of pools",
		RunE:  runMultiSwap,
	}
	multiCmd.Flags().StringSlice("route", nil, "asset route, first to last (comma-separated)")
	multiCmd.Flags().String("amount", "", "input amount (raw integer units)")
	multiCmd.Flags().String("minimum-receive", "", "minimum final output")
	multiCmd.Flags().String("max-spread", "", "maximum tolerated spread ratio per leg")
	multiCmd.Flags().String("recipient", "", "output recipient")
	root.AddCommand(multiCmd)

	provideCmd := &cobra.Command{
		Use:   "provide",
		Short: "Deposit liquidity",
		RunE:  runProvide,
	}
	provideCmd.Flags().StringSlice("deposit", nil, "deposits as asset=amount (repeatable)")
	provideCmd.Flags().String("slippage-tolerance", "", "maximum tolerated deposit slippage")
	provideCmd.Flags().String("receiver", "", "share receiver")
	root.AddCommand(provideCmd)

	withdrawCmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Burn liquidity shares for a proportional refund",
		RunE:  runWithdraw,
	}
	withdrawCmd.Flags().StringSlice("assets", nil, "pair assets (comma-separated)")
	withdrawCmd.Flags().String("shares", "", "share amount to burn (raw integer units)")
	withdrawCmd.Flags().String("receiver", "", "refund receiver")
	root.AddCommand(withdrawCmd)

	root.AddCommand(newQueryCommands()...)
	root.AddCommand(newParamCommands()...)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles what every subcommand needs: config, logger, store, and the
// registry over it.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	reg    *registry.Registry
	close  func()
}

func setup(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var store storage.Backend
	closeStore := func() {}
	if cfg.PgDSN != "" {
		pg, err := postgres.NewStore(cmd.Context(), cfg.PgDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		store, closeStore = pg, pg.Close
	} else {
		f, err := storage.OpenFile(cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open store %s: %w", cfg.StorePath, err)
		}
		store = f
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		reg:    registry.New(store, logger),
		close: func() {
			closeStore()
			logger.Sync()
		},
	}, nil
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

func nowUnix() uint64 {
	return uint64(time.Now().Unix())
}

// parseAsset reads an asset spec: hex addresses become contract assets,
// anything else a native denom.
func parseAsset(s string) (model.AssetRef, error) {
	if s == "" {
		return model.AssetRef{}, fmt.Errorf("empty asset")
	}
	var ref model.AssetRef
	if common.IsHexAddress(s) {
		ref = model.ContractAsset(s)
	} else {
		ref = model.NativeAsset(s)
	}
	if err := ref.Validate(); err != nil {
		return model.AssetRef{}, err
	}
	return ref, nil
}

func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
