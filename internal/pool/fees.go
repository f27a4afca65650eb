package pool

import (
	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
)

// Fee interpolates the swap fee between MidFee near balance and OutFee far
// from it. xp are internal-unit balances (asset 1 already scaled).
//
// The imbalance term k = 4*x0*x1/(x0+x1)^2 is 1 for a balanced pool and
// approaches 0 as one side empties; FeeGamma sharpens the transition.
func Fee(xp [2]curve.Dec, params model.PoolParams) curve.Dec {
	sum := xp[0].Add(xp[1])
	if sum.IsZero() {
		return params.MidFee
	}
	k := xp[0].Mul(xp[1]).MulInt64(4).Quo(sum.Mul(sum))
	k = params.FeeGamma.Quo(params.FeeGamma.Add(curve.OneDec()).Sub(k))
	return k.Mul(params.MidFee).Add(curve.OneDec().Sub(k).Mul(params.OutFee))
}

// ProvideFee discounts a deposit by how far it deviates from a perfectly
// balanced one: zero for a symmetric deposit, the full swap fee for a
// one-sided deposit. deposits and xp are internal-unit values after the
// deposit is applied.
func ProvideFee(deposits, xp [2]curve.Dec, params model.PoolParams) curve.Dec {
	sum := deposits[0].Add(deposits[1])
	if sum.IsZero() {
		return curve.ZeroDec()
	}
	avg := sum.QuoInt64(2)
	deviation := deposits[0].Diff(avg).Add(deposits[1].Diff(avg))
	return Fee(xp, params).Mul(deviation).Quo(sum)
}
