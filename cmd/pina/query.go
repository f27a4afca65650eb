package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQueryCommands() []*cobra.Command {
	poolCmd := &cobra.Command{
		Use:   "pool",
		Short: "Show the state of one pool",
		RunE:  runPool,
	}
	poolCmd.Flags().StringSlice("assets", nil, "pair assets (comma-separated)")

	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "List all pools",
		RunE:  runPools,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Price a swap without executing it",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().String("offer", "", "offer asset")
	simulateCmd.Flags().String("amount", "", "offer amount (raw integer units)")
	simulateCmd.Flags().StringSlice("route", nil, "multi-hop asset route (overrides --ask)")
	simulateCmd.Flags().String("ask", "", "ask asset")

	lpPriceCmd := &cobra.Command{
		Use:   "lp-price",
		Short: "Show the value of one liquidity share",
		RunE:  runLpPrice,
	}
	lpPriceCmd.Flags().StringSlice("assets", nil, "pair assets (comma-separated)")

	computeDCmd := &cobra.Command{
		Use:   "compute-d",
		Short: "Show the current invariant value of a pool",
		RunE:  runComputeD,
	}
	computeDCmd.Flags().StringSlice("assets", nil, "pair assets (comma-separated)")

	return []*cobra.Command{poolCmd, poolsCmd, simulateCmd, lpPriceCmd, computeDCmd}
}

func runPool(cmd *cobra.Command, _ []string) error {
	app, err := setup(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	assetSpecs, _ := cmd.Flags().GetStringSlice("assets")
	assets, err := parsePair(assetSpecs)
	if err != nil {
		return err
	}
	info, err := app.reg.Pool(cmd.Context(), assets[0], assets[1])
	if err != nil {
		return err
	}
	return printJSON(info)
}

func runPools(cmd *cobra.Command, _ []string) error {
	app, err := setup(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	pools, err := app.reg.Pools(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(pools)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	app, err := setup(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	amountSpec, _ := cmd.Flags().GetString("amount")
	amount, err := parseAmount(amountSpec)
	if err != nil {
		return err
	}

	if route, _ := cmd.Flags().GetStringSlice("route"); len(route) > 0 {
		ops, err := routeOperations(route)
		if err != nil {
			return err
		}
		out, err := app.reg.SimulateSwapOperations(cmd.Context(), ops, amount, nowUnix())
		if err != nil {
			return err
		}
		return printJSON(map[string]string{"return_amount": out.String()})
	}

	offerSpec, _ := cmd.Flags().GetString("offer")
	askSpec, _ := cmd.Flags().GetString("ask")
	offer, err := parseAsset(offerSpec)
	if err != nil {
		return fmt.Errorf("offer asset: %w", err)
	}
	ask, err := parseAsset(askSpec)
	if err != nil {
		return fmt.Errorf("ask asset: %w", err)
	}
	result, err := app.reg.Simulate(cmd.Context(), offer, amount, ask, nowUnix())
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runLpPrice(cmd *cobra.Command, _ []string) error {
	app, err := setup(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	assetSpecs, _ := cmd.Flags().GetStringSlice("assets")
	assets, err := parsePair(assetSpecs)
	if err != nil {
		return err
	}
	price, err := app.reg.LpPrice(cmd.Context(), assets[0], assets[1], nowUnix())
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"lp_price": price.String()})
}

func runComputeD(cmd *cobra.Command, _ []string) error {
	app, err := setup(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	assetSpecs, _ := cmd.Flags().GetStringSlice("assets")
	assets, err := parsePair(assetSpecs)
	if err != nil {
		return err
	}
	d, err := app.reg.ComputeD(cmd.Context(), assets[0], assets[1], nowUnix())
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"d": d.String()})
}
