package pool

import (
	"fmt"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
)

// maxBalanceRatio bounds how far a single offer may push the pool before
// the invariant solve is even attempted.
var maxBalanceRatio = curve.NewDec(100000000)

var (
	defaultMaxSpread = curve.MustDec("0.005")
	maxAllowedSpread = curve.MustDec("0.5")
)

// ErrAllowedSpread is returned when the caller-supplied spread bound itself
// exceeds the protocol maximum.
var ErrAllowedSpread = fmt.Errorf("provided spread exceeds allowed limit %s", maxAllowedSpread)

// SwapResult is the internal-precision outcome of one swap computation.
type SwapResult struct {
	Dy        curve.Dec
	SpreadFee curve.Dec
	TotalFee  curve.Dec
	MakerFee  curve.Dec
	ShareFee  curve.Dec
}

// TotalOut is the amount leaving the ask reserve: net output plus the fee
// cuts that are paid out rather than retained.
func (r SwapResult) TotalOut() curve.Dec {
	return r.Dy.Add(r.MakerFee).Add(r.ShareFee)
}

// CalcLastPrice derives the trade price (asset 1 denominated in asset 0)
// from the executed amounts.
func (r SwapResult) CalcLastPrice(offerAmount curve.Dec, offerIdx int) curve.Dec {
	total := r.TotalOut()
	if offerIdx == 0 {
		return offerAmount.Quo(total)
	}
	return total.Quo(offerAmount)
}

// BeforeSwapCheck verifies the pool can absorb the offer at all: both
// reserves populated, a positive offer, and an offer size the solver can
// handle. Violations are reported before any invariant math runs so they
// are never conflated with convergence failures.
func BeforeSwapCheck(xs [2]curve.Dec, offerAmount curve.Dec, offerIdx int) error {
	if !offerAmount.IsPos() {
		return ErrZeroAmount
	}
	if !xs[0].IsPos() || !xs[1].IsPos() {
		return ErrOneCoinPool
	}
	if offerAmount.GT(xs[offerIdx].Mul(maxBalanceRatio)) {
		return ErrSwapTooLarge
	}
	return nil
}

// ComputeSwap prices offerAmount of the offer asset against the pool and
// returns the output and fee breakdown, all in external ask-asset units.
// xs are the pre-trade balances in external units (not yet price-scaled).
// The pool state is not mutated here; the caller applies the result.
func ComputeSwap(xs [2]curve.Dec, offerAmount curve.Dec, askIdx int, cfg *model.Config, now uint64) (SwapResult, error) {
	offerIdx := 1 - askIdx
	scale := cfg.PriceState.PriceScale

	ixs := [2]curve.Dec{xs[0], xs[1].Mul(scale)}
	ampGamma := CurrentAmpGamma(cfg.Ramp, now)

	d, err := curve.CalcD(ixs[0], ixs[1], ampGamma.Amp, ampGamma.Gamma)
	if err != nil {
		return SwapResult{}, fmt.Errorf("invariant before swap: %w", err)
	}

	offerInternal := offerAmount
	if offerIdx == 1 {
		offerInternal = offerAmount.Mul(scale)
	}
	ixs[offerIdx] = ixs[offerIdx].Add(offerInternal)

	newAsk, err := curve.CalcY(ixs[offerIdx], d, ampGamma.Amp, ampGamma.Gamma, askIdx)
	if err != nil {
		return SwapResult{}, fmt.Errorf("solve ask balance: %w", err)
	}

	dy := ixs[askIdx].Sub(newAsk)
	if !dy.IsPos() {
		return SwapResult{}, fmt.Errorf("swap produced no output")
	}
	ixs[askIdx] = newAsk

	if askIdx == 1 {
		dy = dy.Quo(scale)
	}

	// Spread is the price impact: the shortfall of the curve output against
	// the pre-trade reserve ratio. Offering the abundant side of a drifted
	// pool can pay above that ratio, so the spread floors at zero.
	spread := offerAmount.Mul(xs[askIdx]).Quo(xs[offerIdx]).Sub(dy)
	if spread.IsNeg() {
		spread = curve.ZeroDec()
	}

	feeRate := Fee(ixs, cfg.PoolParams)
	totalFee := feeRate.Mul(dy)

	return SwapResult{
		Dy:        dy.Sub(totalFee),
		SpreadFee: spread,
		TotalFee:  totalFee,
		MakerFee:  totalFee.Mul(cfg.PoolParams.MakerFeeShare),
		ShareFee:  totalFee.Mul(cfg.PoolParams.ShareFeeShare),
	}, nil
}

// AssertMaxSpread enforces the caller's spread bound on a computed swap.
// With a belief price the realized return is compared against the
// expected one; otherwise the spread fee itself is measured against
// gross output.
func AssertMaxSpread(beliefPrice, maxSpread *curve.Dec, offerAmount, returnAmount, spreadAmount curve.Dec) error {
	spreadBound := defaultMaxSpread
	if maxSpread != nil {
		spreadBound = *maxSpread
	}
	if spreadBound.GT(maxAllowedSpread) {
		return ErrAllowedSpread
	}

	if beliefPrice != nil {
		if !beliefPrice.IsPos() {
			return fmt.Errorf("belief price must be positive")
		}
		expected := offerAmount.Quo(*beliefPrice)
		if returnAmount.LT(expected) &&
			expected.Sub(returnAmount).Quo(expected).GT(spreadBound) {
			return ErrMaxSpread
		}
		return nil
	}

	gross := returnAmount.Add(spreadAmount)
	if gross.IsPos() && spreadAmount.Quo(gross).GT(spreadBound) {
		return ErrMaxSpread
	}
	return nil
}
