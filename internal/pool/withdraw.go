package pool

import (
	"fmt"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
)

// oneShareUnit is a single raw share token at LP precision.
var oneShareUnit = curve.MustDec("0.000001")

// Withdraw burns shareAmount of liquidity for a proportional refund of both
// reserves and applies the resulting state changes to cfg. pools are the
// external-unit balances before the withdrawal. Only proportional
// withdrawal exists; asset-selective requests are rejected upstream.
//
// One raw share unit is shaved off the burned amount before the pro-rata
// split, so the refund ratio can never round up to the entire pool.
func Withdraw(shareAmount curve.Dec, pools [2]curve.Dec, cfg *model.Config, now uint64) ([2]curve.Dec, error) {
	if !shareAmount.IsPos() {
		return [2]curve.Dec{}, ErrZeroAmount
	}
	totalShare := cfg.TotalShare
	// The permanent lock can never be withdrawn, so the burnable supply
	// excludes it.
	if shareAmount.GT(totalShare.Sub(MinimumLiquidityAmount)) {
		return [2]curve.Dec{}, fmt.Errorf("share amount %s exceeds withdrawable supply", shareAmount)
	}

	effective := shareAmount.Sub(oneShareUnit)
	if effective.IsNeg() {
		effective = curve.ZeroDec()
	}
	ratio := effective.Quo(totalShare)
	refunds := [2]curve.Dec{pools[0].Mul(ratio), pools[1].Mul(ratio)}

	remaining := [2]curve.Dec{
		pools[0].Sub(refunds[0]),
		pools[1].Sub(refunds[1]).Mul(cfg.PriceState.PriceScale),
	}
	ampGamma := CurrentAmpGamma(cfg.Ramp, now)
	d, err := curve.CalcD(remaining[0], remaining[1], ampGamma.Amp, ampGamma.Gamma)
	if err != nil {
		return [2]curve.Dec{}, fmt.Errorf("invariant after withdraw: %w", err)
	}

	shareAfter := totalShare.Sub(shareAmount)
	cfg.PriceState.XcpProfitReal = curve.GetXcp(d, cfg.PriceState.PriceScale).Quo(shareAfter)
	cfg.TotalShare = shareAfter

	return refunds, nil
}
