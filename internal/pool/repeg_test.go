package pool

import (
	"testing"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
)

func TestUpdatePriceEMA(t *testing.T) {
	cfg := testConfig("1")
	cfg.PriceState.LastPriceUpdate = 0
	totalShare := curve.NewDec(1000)
	ixs := [2]curve.Dec{curve.NewDec(1100), curve.NewDec(1100)}
	lastPrice := curve.MustDec("1.1")

	// First trade: the EMA folds in the previous last price (still 1), so
	// the oracle holds while the new trade price is recorded.
	if err := UpdatePrice(cfg, 600, totalShare, ixs, lastPrice); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if !cfg.PriceState.OraclePrice.Equal(curve.OneDec()) {
		t.Fatalf("oracle moved early: %s", cfg.PriceState.OraclePrice)
	}
	if !cfg.PriceState.LastPrice.Equal(lastPrice) {
		t.Fatalf("last price not recorded: %s", cfg.PriceState.LastPrice)
	}
	if cfg.PriceState.LastPriceUpdate != 600 {
		t.Fatalf("update time not recorded: %d", cfg.PriceState.LastPriceUpdate)
	}

	// Second trade one half-life later: oracle moves halfway to 1.1.
	if err := UpdatePrice(cfg, 1200, totalShare, ixs, lastPrice); err != nil {
		t.Fatalf("second update: %v", err)
	}
	tolerance := curve.MustDec("0.000000001")
	if cfg.PriceState.OraclePrice.Diff(curve.MustDec("1.05")).GT(tolerance) {
		t.Fatalf("oracle after one half-life: got %s, want 1.05", cfg.PriceState.OraclePrice)
	}
}

func TestUpdatePriceProfitCounters(t *testing.T) {
	cfg := testConfig("1")
	totalShare := curve.NewDec(1000)
	// Pool value 1100 per side against 1000 shares: virtual price 1.1.
	ixs := [2]curve.Dec{curve.NewDec(1100), curve.NewDec(1100)}

	if err := UpdatePrice(cfg, 600, totalShare, ixs, curve.OneDec()); err != nil {
		t.Fatalf("update: %v", err)
	}
	tolerance := curve.MustDec("0.0001")
	if cfg.PriceState.XcpProfitReal.Diff(curve.MustDec("1.1")).GT(tolerance) {
		t.Fatalf("xcp_profit_real: got %s", cfg.PriceState.XcpProfitReal)
	}
	if cfg.PriceState.XcpProfit.Diff(curve.MustDec("1.1")).GT(tolerance) {
		t.Fatalf("xcp_profit: got %s", cfg.PriceState.XcpProfit)
	}
}

func TestUpdatePriceRepegsTowardOracle(t *testing.T) {
	cfg := testConfig("1")
	cfg.PriceState.LastPriceUpdate = 0
	totalShare := curve.NewDec(1000)
	ixs := [2]curve.Dec{curve.NewDec(1100), curve.NewDec(1100)}
	lastPrice := curve.MustDec("1.1")

	if err := UpdatePrice(cfg, 600, totalShare, ixs, lastPrice); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if err := UpdatePrice(cfg, 1200, totalShare, ixs, lastPrice); err != nil {
		t.Fatalf("second update: %v", err)
	}

	scale := cfg.PriceState.PriceScale
	if !scale.GT(curve.OneDec()) {
		t.Fatalf("scale did not repeg: %s", scale)
	}
	if scale.GTE(cfg.PriceState.OraclePrice) {
		t.Fatalf("scale %s overshot oracle %s", scale, cfg.PriceState.OraclePrice)
	}
	// Damped step: a tenth of the divergence.
	if scale.Diff(curve.MustDec("1.005")).GT(curve.MustDec("0.0005")) {
		t.Fatalf("scale: got %s, want about 1.005", scale)
	}
}

func TestUpdatePriceHoldsWithoutDivergence(t *testing.T) {
	cfg := testConfig("1")
	totalShare := curve.NewDec(1000)
	ixs := [2]curve.Dec{curve.NewDec(1100), curve.NewDec(1100)}

	// Trade at the current scale: no divergence, no repeg.
	if err := UpdatePrice(cfg, 600, totalShare, ixs, curve.OneDec()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := UpdatePrice(cfg, 1200, totalShare, ixs, curve.OneDec()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !cfg.PriceState.PriceScale.Equal(curve.OneDec()) {
		t.Fatalf("scale moved without divergence: %s", cfg.PriceState.PriceScale)
	}
}
