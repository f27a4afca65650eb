package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
)

func parsePair(specs []string) ([2]model.AssetRef, error) {
	var pair [2]model.AssetRef
	if len(specs) != 2 {
		return pair, fmt.Errorf("exactly two assets required, got %d", len(specs))
	}
	for i, spec := range specs {
		asset, err := parseAsset(spec)
		if err != nil {
			return pair, err
		}
		pair[i] = asset
	}
	return pair, nil
}

func runCreatePool(cmd *cobra.Command, _ []string) error {
	app, err := setup(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	assetSpecs, _ := cmd.Flags().GetStringSlice("assets")
	precisionSpec, _ := cmd.Flags().GetString("precisions")
	priceSpec, _ := cmd.Flags().GetString("price")
	ampSpec, _ := cmd.Flags().GetString("amp")
	gammaSpec, _ := cmd.Flags().GetString("gamma")
	owner, _ := cmd.Flags().GetString("owner")
	feeRecipient, _ := cmd.Flags().GetString("fee-recipient")
	shareRecipient, _ := cmd.Flags().GetString("share-recipient")
	trackBalances, _ := cmd.Flags().GetBool("track-balances")

	assets, err := parsePair(assetSpecs)
	if err != nil {
		return err
	}

	var precisions [2]uint8
	parts := strings.Split(precisionSpec, ",")
	if len(parts) != 2 {
		return fmt.Errorf("precisions must be two comma-separated integers")
	}
	for i, part := range parts {
		p, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return fmt.Errorf("precision %q: %w", part, err)
		}
		precisions[i] = uint8(p)
	}

	price, err := curve.DecFromString(priceSpec)
	if err != nil {
		return fmt.Errorf("initial price: %w", err)
	}
	amp, err := curve.DecFromString(ampSpec)
	if err != nil {
		return fmt.Errorf("amp: %w", err)
	}
	gamma, err := curve.DecFromString(gammaSpec)
	if err != nil {
		return fmt.Errorf("gamma: %w", err)
	}

	info, err := app.reg.CreatePool(cmd.Context(), &model.CreatePoolRequest{
		Assets:             assets,
		Precisions:         precisions,
		InitialPrice:       price,
		AmpGamma:           model.AmpGamma{Amp: amp, Gamma: gamma},
		Owner:              owner,
		FeeRecipient:       feeRecipient,
		ShareRecipient:     shareRecipient,
		TrackAssetBalances: trackBalances,
	}, nowUnix())
	if err != nil {
		return err
	}
	return printJSON(info)
}

func runProvide(cmd *cobra.Command, _ []string) error {
	app, err := setup(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	depositSpecs, _ := cmd.Flags().GetStringSlice("deposit")
	toleranceSpec, _ := cmd.Flags().GetString("slippage-tolerance")
	receiver, _ := cmd.Flags().GetString("receiver")

	deposits := make([]model.AssetAmount, 0, len(depositSpecs))
	for _, spec := range depositSpecs {
		asset, amount, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("deposit %q: want asset=amount", spec)
		}
		ref, err := parseAsset(asset)
		if err != nil {
			return err
		}
		value, err := parseAmount(amount)
		if err != nil {
			return err
		}
		deposits = append(deposits, model.AssetAmount{Asset: ref, Amount: value})
	}

	tolerance, err := parseOptionalDec(toleranceSpec)
	if err != nil {
		return fmt.Errorf("slippage tolerance: %w", err)
	}

	result, err := app.reg.Provide(cmd.Context(), &model.ProvideRequest{
		Deposits:          deposits,
		SlippageTolerance: tolerance,
		Receiver:          receiver,
	}, nowUnix())
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runWithdraw(cmd *cobra.Command, _ []string) error {
	app, err := setup(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	assetSpecs, _ := cmd.Flags().GetStringSlice("assets")
	shareSpec, _ := cmd.Flags().GetString("shares")
	receiver, _ := cmd.Flags().GetString("receiver")

	assets, err := parsePair(assetSpecs)
	if err != nil {
		return err
	}
	shares, err := parseAmount(shareSpec)
	if err != nil {
		return fmt.Errorf("shares: %w", err)
	}

	result, err := app.reg.Withdraw(cmd.Context(), &model.WithdrawRequest{
		Assets:      assets,
		ShareAmount: shares,
		Receiver:    receiver,
	}, nowUnix())
	if err != nil {
		return err
	}
	return printJSON(result)
}
