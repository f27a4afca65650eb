package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
)

func newParamCommands() []*cobra.Command {
	promoteCmd := &cobra.Command{
		Use:   "promote-params",
		Short: "Start an amp/gamma ramp on a pool",
		RunE:  runPromoteParams,
	}
	promoteCmd.Flags().StringSlice("assets", nil, "pair assets (comma-separated)")
	promoteCmd.Flags().String("amp", "", "target amplification parameter")
	promoteCmd.Flags().String("gamma", "", "target gamma parameter")
	promoteCmd.Flags().Uint64("future-time", 0, "unix time at which the ramp completes")

	stopCmd := &cobra.Command{
		Use:   "stop-ramp",
		Short: "Freeze amp/gamma at their current values",
		RunE:  runStopRamp,
	}
	stopCmd.Flags().StringSlice("assets", nil, "pair assets (comma-separated)")

	return []*cobra.Command{promoteCmd, stopCmd}
}

func runPromoteParams(cmd *cobra.Command, _ []string) error {
	app, err := setup(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	assetSpecs, _ := cmd.Flags().GetStringSlice("assets")
	ampSpec, _ := cmd.Flags().GetString("amp")
	gammaSpec, _ := cmd.Flags().GetString("gamma")
	futureTime, _ := cmd.Flags().GetUint64("future-time")

	assets, err := parsePair(assetSpecs)
	if err != nil {
		return err
	}
	amp, err := curve.DecFromString(ampSpec)
	if err != nil {
		return fmt.Errorf("amp: %w", err)
	}
	gamma, err := curve.DecFromString(gammaSpec)
	if err != nil {
		return fmt.Errorf("gamma: %w", err)
	}

	return app.reg.PromoteParams(cmd.Context(), assets, model.AmpGamma{Amp: amp, Gamma: gamma}, futureTime, nowUnix())
}

func runStopRamp(cmd *cobra.Command, _ []string) error {
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
	return app.reg.StopRamp(cmd.Context(), assets, nowUnix())
}
