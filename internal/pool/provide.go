package pool

import (
	"fmt"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
)

var (
	defaultSlippageTolerance = curve.MustDec("0.02")
	maxSlippageTolerance     = curve.MustDec("0.5")
)

// ProvideOutcome is the result of a deposit computation.
type ProvideOutcome struct {
	// Share minted to the provider, net of fees and of the permanent lock
	// on a first deposit.
	Share curve.Dec
	// Locked is the permanently locked share amount, nonzero only on the
	// first deposit.
	Locked curve.Dec
	// Slippage realized against an ideally balanced deposit.
	Slippage curve.Dec
}

// Provide computes the share mint for a deposit and applies the resulting
// state changes to cfg (total share, price state). deposits and pools are
// external-unit values in canonical asset order; pools are the balances
// before the deposit.
func Provide(deposits, pools [2]curve.Dec, cfg *model.Config, now uint64, slippageTolerance *curve.Dec) (ProvideOutcome, error) {
	if deposits[0].IsNeg() || deposits[1].IsNeg() {
		return ProvideOutcome{}, fmt.Errorf("negative deposit amount")
	}
	if deposits[0].IsZero() && deposits[1].IsZero() {
		return ProvideOutcome{}, fmt.Errorf("nothing to provide: %w", ErrZeroAmount)
	}

	totalShare := cfg.TotalShare
	// An initial provide cannot be one-sided.
	if totalShare.IsZero() && (deposits[0].IsZero() || deposits[1].IsZero()) {
		return ProvideOutcome{}, ErrZeroAmount
	}

	scale := cfg.PriceState.PriceScale
	ampGamma := CurrentAmpGamma(cfg.Ramp, now)

	newXp := [2]curve.Dec{
		pools[0].Add(deposits[0]),
		pools[1].Add(deposits[1]).Mul(scale),
	}
	newD, err := curve.CalcD(newXp[0], newXp[1], ampGamma.Amp, ampGamma.Gamma)
	if err != nil {
		return ProvideOutcome{}, fmt.Errorf("invariant after deposit: %w", err)
	}

	var share, locked curve.Dec
	if totalShare.IsZero() {
		xcp := curve.GetXcp(newD, scale)
		share = xcp.Sub(MinimumLiquidityAmount)
		if !share.IsPos() {
			return ProvideOutcome{}, ErrMinimumLiquidity
		}
		locked = MinimumLiquidityAmount
		cfg.PriceState.XcpProfit = curve.OneDec()
		cfg.PriceState.XcpProfitReal = curve.OneDec()
	} else {
		oldXp := [2]curve.Dec{pools[0], pools[1].Mul(scale)}
		oldD, err := curve.CalcD(oldXp[0], oldXp[1], ampGamma.Amp, ampGamma.Gamma)
		if err != nil {
			return ProvideOutcome{}, fmt.Errorf("invariant before deposit: %w", err)
		}
		share = totalShare.Mul(newD).Quo(oldD).Sub(totalShare)
		if share.IsNeg() {
			share = curve.ZeroDec()
		}
		ideposits := [2]curve.Dec{deposits[0], deposits[1].Mul(scale)}
		share = share.Mul(curve.OneDec().Sub(ProvideFee(ideposits, newXp, cfg.PoolParams)))
		locked = curve.ZeroDec()
	}

	supplyAfter := totalShare.Add(share).Add(locked)

	slippage, err := assertSlippageTolerance(deposits, share, &cfg.PriceState, slippageTolerance)
	if err != nil {
		return ProvideOutcome{}, err
	}

	// Price scale only reacts when the deposit diverges from the balanced
	// split by at least the minimum trade size on both legs.
	shareRatio := share.Quo(supplyAfter)
	balanced := [2]curve.Dec{
		newXp[0].Mul(shareRatio),
		newXp[1].Mul(shareRatio).Quo(scale),
	}
	diff := [2]curve.Dec{
		deposits[0].Diff(balanced[0]),
		deposits[1].Diff(balanced[1]),
	}
	if diff[0].GTE(MinTradeSize) && diff[1].GTE(MinTradeSize) {
		lastPrice := diff[0].Quo(diff[1])
		if err := UpdatePrice(cfg, now, supplyAfter, newXp, lastPrice); err != nil {
			return ProvideOutcome{}, err
		}
	}

	cfg.TotalShare = supplyAfter

	return ProvideOutcome{Share: share, Locked: locked, Slippage: slippage}, nil
}

// assertSlippageTolerance measures the minted share against the share an
// ideally balanced deposit of the same value would have earned.
func assertSlippageTolerance(deposits [2]curve.Dec, share curve.Dec, ps *model.PriceState, tolerance *curve.Dec) (curve.Dec, error) {
	tol := defaultSlippageTolerance
	if tolerance != nil {
		tol = *tolerance
	}
	if tol.GT(maxSlippageTolerance) {
		return curve.Dec{}, fmt.Errorf("slippage tolerance exceeds allowed limit %s", maxSlippageTolerance)
	}

	depositValue := deposits[0].Add(deposits[1].Mul(ps.PriceScale))
	if !depositValue.IsPos() || ps.XcpProfitReal.IsZero() {
		return curve.ZeroDec(), nil
	}
	idealShare := depositValue.Quo(ps.PriceScale.Sqrt().MulInt64(2)).Quo(ps.XcpProfitReal)
	if share.GTE(idealShare) {
		return curve.ZeroDec(), nil
	}
	slippage := idealShare.Sub(share).Quo(idealShare)
	if slippage.GT(tol) {
		return curve.Dec{}, &SlippageError{Slippage: slippage, Tolerance: tol}
	}
	return slippage, nil
}
