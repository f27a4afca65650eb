package pool

import (
	"fmt"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
)

// UpdatePrice folds a trade price into the pool's EMA oracle, refreshes the
// profit counters, and repegs the price scale when both the accumulated
// profit and the oracle divergence clear their thresholds.
//
// ixs are the post-trade balances in the internal common unit (asset 1
// already multiplied by the current price scale); totalShare is the share
// supply after the operation; lastPrice is the realized trade price.
// Callers skip this entirely for trades under MinTradeSize.
func UpdatePrice(cfg *model.Config, now uint64, totalShare curve.Dec, ixs [2]curve.Dec, lastPrice curve.Dec) error {
	ps := &cfg.PriceState
	ampGamma := CurrentAmpGamma(cfg.Ramp, now)

	// EMA over the old last price first, then record the new one.
	if now > ps.LastPriceUpdate {
		elapsed, err := curve.DecFromRatio(int64(now-ps.LastPriceUpdate), int64(cfg.PoolParams.MAHalfTime))
		if err != nil {
			return err
		}
		alpha := curve.HalfPow(elapsed)
		ps.OraclePrice = ps.LastPrice.Mul(curve.OneDec().Sub(alpha)).Add(ps.OraclePrice.Mul(alpha))
		ps.LastPriceUpdate = now
	}
	ps.LastPrice = lastPrice

	d, err := curve.CalcD(ixs[0], ixs[1], ampGamma.Amp, ampGamma.Gamma)
	if err != nil {
		return fmt.Errorf("invariant for price update: %w", err)
	}
	xcp := curve.GetXcp(d, ps.PriceScale)

	if !ps.XcpProfitReal.IsZero() && totalShare.IsPos() {
		virtualPrice := xcp.Quo(totalShare)
		ps.XcpProfit = ps.XcpProfit.Mul(virtualPrice).Quo(ps.XcpProfitReal)
		ps.XcpProfitReal = virtualPrice
	}

	norm := ps.OraclePrice.Quo(ps.PriceScale).Diff(curve.OneDec())
	if norm.LT(cfg.PoolParams.MinPriceScaleDelta) {
		return nil
	}
	// Realized profit must exceed half the accumulated profit plus the
	// configured threshold before a repeg is considered.
	baseline := ps.XcpProfit.Sub(curve.OneDec()).QuoInt64(2).Add(cfg.PoolParams.RepegProfitThreshold)
	if ps.XcpProfitReal.Sub(curve.OneDec()).LTE(baseline) {
		return nil
	}

	// Damped step toward the oracle price.
	step := norm.QuoInt64(10)
	if step.LT(cfg.PoolParams.MinPriceScaleDelta) {
		step = cfg.PoolParams.MinPriceScaleDelta
	}
	if step.GT(norm) {
		step = norm
	}
	scaleNew := ps.PriceScale.Mul(norm.Sub(step)).Add(step.Mul(ps.OraclePrice)).Quo(norm)

	// The repeg only commits if pool value at the new scale keeps realized
	// profit above half of the accumulated profit.
	rescaled := [2]curve.Dec{ixs[0], ixs[1].Quo(ps.PriceScale).Mul(scaleNew)}
	newD, err := curve.CalcD(rescaled[0], rescaled[1], ampGamma.Amp, ampGamma.Gamma)
	if err != nil {
		return fmt.Errorf("invariant at repegged scale: %w", err)
	}
	newProfitReal := curve.GetXcp(newD, scaleNew).Quo(totalShare)
	if newProfitReal.MulInt64(2).GT(ps.XcpProfit.Add(curve.OneDec())) {
		ps.PriceScale = scaleNew
		ps.XcpProfitReal = newProfitReal
	}
	return nil
}
