package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
)

// parseOptionalDec reads a decimal flag, nil when unset.
func parseOptionalDec(s string) (*curve.Dec, error) {
	if s == "" {
		return nil, nil
	}
	d, err := curve.DecFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func runSwap(cmd *cobra.Command, _ []string) error {
	app, err := setup(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	offerSpec, _ := cmd.Flags().GetString("offer")
	askSpec, _ := cmd.Flags().GetString("ask")
	amountSpec, _ := cmd.Flags().GetString("amount")
	beliefSpec, _ := cmd.Flags().GetString("belief-price")
	spreadSpec, _ := cmd.Flags().GetString("max-spread")
	recipient, _ := cmd.Flags().GetString("recipient")

	offer, err := parseAsset(offerSpec)
	if err != nil {
		return fmt.Errorf("offer asset: %w", err)
	}
	ask, err := parseAsset(askSpec)
	if err != nil {
		return fmt.Errorf("ask asset: %w", err)
	}
	amount, err := parseAmount(amountSpec)
	if err != nil {
		return err
	}
	belief, err := parseOptionalDec(beliefSpec)
	if err != nil {
		return fmt.Errorf("belief price: %w", err)
	}
	maxSpread, err := parseOptionalDec(spreadSpec)
	if err != nil {
		return fmt.Errorf("max spread: %w", err)
	}

	result, err := app.reg.Swap(cmd.Context(), &model.SwapRequest{
		OfferAsset:  offer,
		OfferAmount: amount,
		AskAsset:    ask,
		BeliefPrice: belief,
		MaxSpread:   maxSpread,
		Recipient:   recipient,
	}, nowUnix())
	if err != nil {
		return err
	}
	return printJSON(result)
}

// routeOperations turns an asset route into chained swap legs.
func routeOperations(route []string) ([]model.SwapOperation, error) {
	if len(route) < 2 {
		return nil, fmt.Errorf("route needs at least two assets, got %d", len(route))
	}
	ops := make([]model.SwapOperation, 0, len(route)-1)
	prev, err := parseAsset(route[0])
	if err != nil {
		return nil, err
	}
	for _, spec := range route[1:] {
		next, err := parseAsset(spec)
		if err != nil {
			return nil, err
		}
		ops = append(ops, model.SwapOperation{OfferAsset: prev, AskAsset: next})
		prev = next
	}
	return ops, nil
}

func runMultiSwap(cmd *cobra.Command, _ []string) error {
	app, err := setup(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	route, _ := cmd.Flags().GetStringSlice("route")
	amountSpec, _ := cmd.Flags().GetString("amount")
	minSpec, _ := cmd.Flags().GetString("minimum-receive")
	spreadSpec, _ := cmd.Flags().GetString("max-spread")
	recipient, _ := cmd.Flags().GetString("recipient")

	ops, err := routeOperations(route)
	if err != nil {
		return err
	}
	amount, err := parseAmount(amountSpec)
	if err != nil {
		return err
	}
	req := &model.MultiSwapRequest{
		Operations:  ops,
		InputAmount: amount,
		Recipient:   recipient,
	}
	if minSpec != "" {
		if req.MinimumReceive, err = parseAmount(minSpec); err != nil {
			return fmt.Errorf("minimum receive: %w", err)
		}
	}
	if req.MaxSpread, err = parseOptionalDec(spreadSpec); err != nil {
		return fmt.Errorf("max spread: %w", err)
	}

	result, err := app.reg.MultiSwap(cmd.Context(), req, nowUnix())
	if err != nil {
		return err
	}
	return printJSON(result)
}
