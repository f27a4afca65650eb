package pool

import (
	"errors"
	"testing"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
)

// testConfig builds a pool at the given price scale with identity ramp and
// default parameters.
func testConfig(scale string) *model.Config {
	ag := model.AmpGamma{Amp: curve.NewDec(40), Gamma: curve.MustDec("0.000145")}
	price := curve.MustDec(scale)
	return &model.Config{
		Assets: [2]model.AssetRef{model.NativeAsset("uusd"), model.NativeAsset("uluna")},
		Ramp:   model.Ramp{Initial: ag, Future: ag},
		PriceState: model.PriceState{
			OraclePrice:   price,
			LastPrice:     price,
			PriceScale:    price,
			XcpProfit:     curve.OneDec(),
			XcpProfitReal: curve.OneDec(),
		},
		PoolParams: DefaultPoolParams(),
		TotalShare: curve.NewDec(1_000_000),
	}
}

func TestBeforeSwapCheck(t *testing.T) {
	xs := [2]curve.Dec{curve.NewDec(1000), curve.NewDec(1000)}

	if err := BeforeSwapCheck(xs, curve.NewDec(10), 0); err != nil {
		t.Fatalf("valid swap rejected: %v", err)
	}
	if err := BeforeSwapCheck(xs, curve.ZeroDec(), 0); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("zero offer: got %v", err)
	}
	empty := [2]curve.Dec{curve.NewDec(1000), curve.ZeroDec()}
	if err := BeforeSwapCheck(empty, curve.NewDec(10), 0); !errors.Is(err, ErrOneCoinPool) {
		t.Fatalf("one-coin pool: got %v", err)
	}
	huge := curve.NewDec(1000).Mul(maxBalanceRatio).Add(curve.OneDec())
	if err := BeforeSwapCheck(xs, huge, 0); !errors.Is(err, ErrSwapTooLarge) {
		t.Fatalf("outsized offer: got %v", err)
	}
}

func TestComputeSwapBalancedPool(t *testing.T) {
	// Reserves 1,000,000 / 2,000,000 at price scale 0.5 are balanced in the
	// internal unit.
	cfg := testConfig("0.5")
	xs := [2]curve.Dec{curve.NewDec(1_000_000), curve.NewDec(2_000_000)}
	offer := curve.NewDec(1000)

	res, err := ComputeSwap(xs, offer, 1, cfg, 0)
	if err != nil {
		t.Fatalf("compute swap: %v", err)
	}

	// The ideal rate is 1/scale = 2 ask units per offer unit; real output
	// must be positive and below it.
	if !res.Dy.IsPos() {
		t.Fatalf("dy not positive: %s", res.Dy)
	}
	ideal := offer.Quo(cfg.PriceState.PriceScale)
	if res.TotalOut().GTE(ideal) {
		t.Fatalf("output %s not below ideal %s", res.TotalOut(), ideal)
	}
	if res.SpreadFee.IsNeg() {
		t.Fatalf("negative spread fee: %s", res.SpreadFee)
	}
	if !res.TotalFee.IsPos() {
		t.Fatalf("total fee not positive: %s", res.TotalFee)
	}
	// Default pool keeps the whole fee.
	if !res.MakerFee.IsZero() || !res.ShareFee.IsZero() {
		t.Fatalf("unexpected fee cuts: maker %s share %s", res.MakerFee, res.ShareFee)
	}
	// dy + total fee is what the curve produced before the fee.
	gross := res.Dy.Add(res.TotalFee)
	if gross.Add(res.SpreadFee).Diff(ideal).GT(curve.NewDec(1)) {
		t.Fatalf("gross %s plus spread %s far from ideal %s", gross, res.SpreadFee, ideal)
	}
}

func TestComputeSwapDriftedPoolSpread(t *testing.T) {
	// Reserves have drifted to 1:2 while the price scale still says 1:1.
	cfg := testConfig("1")
	xs := [2]curve.Dec{curve.NewDec(1_000_000), curve.NewDec(2_000_000)}
	offer := curve.NewDec(1000)

	res, err := ComputeSwap(xs, offer, 1, cfg, 0)
	if err != nil {
		t.Fatalf("compute swap: %v", err)
	}
	if !res.Dy.IsPos() || res.Dy.GTE(curve.NewDec(2000)) {
		t.Fatalf("dy out of range: %s", res.Dy)
	}
	// The drifted pool pays below its own reserve ratio, so the price
	// impact shows up as a positive spread.
	if !res.SpreadFee.IsPos() {
		t.Fatalf("spread fee not positive: %s", res.SpreadFee)
	}
	baseline := offer.Mul(xs[1]).Quo(xs[0])
	if !res.Dy.Add(res.TotalFee).Add(res.SpreadFee).Equal(baseline) {
		t.Fatalf("dy %s + fee %s + spread %s does not reconstruct baseline %s",
			res.Dy, res.TotalFee, res.SpreadFee, baseline)
	}
}

func TestComputeSwapFeeSplit(t *testing.T) {
	cfg := testConfig("1")
	cfg.PoolParams.MakerFeeShare = curve.MustDec("0.3")
	cfg.PoolParams.ShareFeeShare = curve.MustDec("0.1")
	xs := [2]curve.Dec{curve.NewDec(1_000_000), curve.NewDec(1_000_000)}

	res, err := ComputeSwap(xs, curve.NewDec(1000), 1, cfg, 0)
	if err != nil {
		t.Fatalf("compute swap: %v", err)
	}
	if !res.MakerFee.IsPos() || !res.ShareFee.IsPos() {
		t.Fatalf("fee cuts not positive: maker %s share %s", res.MakerFee, res.ShareFee)
	}
	if res.MakerFee.Add(res.ShareFee).GTE(res.TotalFee) {
		t.Fatalf("cuts %s exceed total fee %s", res.MakerFee.Add(res.ShareFee), res.TotalFee)
	}
}

func TestComputeSwapRoundTripLoses(t *testing.T) {
	cfg := testConfig("1")
	xs := [2]curve.Dec{curve.NewDec(1_000_000), curve.NewDec(1_000_000)}
	offer := curve.NewDec(1000)

	out, err := ComputeSwap(xs, offer, 1, cfg, 0)
	if err != nil {
		t.Fatalf("forward swap: %v", err)
	}
	forward := [2]curve.Dec{xs[0].Add(offer), xs[1].Sub(out.TotalOut())}

	back, err := ComputeSwap(forward, out.Dy, 0, cfg, 0)
	if err != nil {
		t.Fatalf("backward swap: %v", err)
	}
	if back.Dy.GTE(offer) {
		t.Fatalf("round trip gained: %s from %s", back.Dy, offer)
	}
	// The loss is fees plus slippage, well under 1% for this trade size.
	if offer.Sub(back.Dy).GT(offer.Quo(curve.NewDec(100))) {
		t.Fatalf("round trip lost too much: %s", offer.Sub(back.Dy))
	}
}

func TestComputeSwapBothDirections(t *testing.T) {
	cfg := testConfig("0.5")
	xs := [2]curve.Dec{curve.NewDec(1_000_000), curve.NewDec(2_000_000)}

	fromZero, err := ComputeSwap(xs, curve.NewDec(1000), 1, cfg, 0)
	if err != nil {
		t.Fatalf("offer asset 0: %v", err)
	}
	fromOne, err := ComputeSwap(xs, curve.NewDec(1000), 0, cfg, 0)
	if err != nil {
		t.Fatalf("offer asset 1: %v", err)
	}
	// At scale 0.5 asset 1 is worth half an asset 0 unit.
	if fromZero.Dy.LTE(curve.NewDec(1900)) {
		t.Fatalf("asset0 offer returned %s, expected near 2000", fromZero.Dy)
	}
	if fromOne.Dy.GTE(curve.NewDec(510)) || fromOne.Dy.LTE(curve.NewDec(490)) {
		t.Fatalf("asset1 offer returned %s, expected near 500", fromOne.Dy)
	}
}

func TestCalcLastPriceDirections(t *testing.T) {
	res := SwapResult{Dy: curve.NewDec(500)}

	// Offering asset 0: price of asset 1 is offer/output.
	got := res.CalcLastPrice(curve.NewDec(1000), 0)
	if !got.Equal(curve.NewDec(2)) {
		t.Fatalf("offer idx 0: got %s", got)
	}
	// Offering asset 1: price is output/offer.
	got = res.CalcLastPrice(curve.NewDec(1000), 1)
	if !got.Equal(curve.MustDec("0.5")) {
		t.Fatalf("offer idx 1: got %s", got)
	}
}

func TestAssertMaxSpread(t *testing.T) {
	offer := curve.NewDec(1000)

	// Spread within the default bound.
	if err := AssertMaxSpread(nil, nil, offer, curve.NewDec(998), curve.NewDec(2)); err != nil {
		t.Fatalf("small spread rejected: %v", err)
	}
	// Spread above the default bound.
	if err := AssertMaxSpread(nil, nil, offer, curve.NewDec(990), curve.NewDec(10)); !errors.Is(err, ErrMaxSpread) {
		t.Fatalf("large spread: got %v", err)
	}
	// Caller-raised bound admits it.
	wide := curve.MustDec("0.02")
	if err := AssertMaxSpread(nil, &wide, offer, curve.NewDec(990), curve.NewDec(10)); err != nil {
		t.Fatalf("raised bound rejected: %v", err)
	}
	// Bound beyond the protocol cap.
	tooWide := curve.MustDec("0.6")
	if err := AssertMaxSpread(nil, &tooWide, offer, curve.NewDec(998), curve.NewDec(2)); !errors.Is(err, ErrAllowedSpread) {
		t.Fatalf("over-cap bound: got %v", err)
	}
}

func TestAssertMaxSpreadBeliefPrice(t *testing.T) {
	offer := curve.NewDec(1000)
	belief := curve.OneDec()

	// Return matches the belief price.
	if err := AssertMaxSpread(&belief, nil, offer, curve.NewDec(999), curve.ZeroDec()); err != nil {
		t.Fatalf("fair return rejected: %v", err)
	}
	// Return far below the belief price.
	if err := AssertMaxSpread(&belief, nil, offer, curve.NewDec(900), curve.ZeroDec()); !errors.Is(err, ErrMaxSpread) {
		t.Fatalf("poor return: got %v", err)
	}
	bad := curve.ZeroDec()
	if err := AssertMaxSpread(&bad, nil, offer, curve.NewDec(999), curve.ZeroDec()); err == nil {
		t.Fatal("zero belief price accepted")
	}
}
