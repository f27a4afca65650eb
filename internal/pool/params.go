package pool

import (
	"fmt"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
)

// Parameter bounds. A Config never holds values outside these ranges.
var (
	AmpMin   = curve.OneDec()
	AmpMax   = curve.NewDec(10000)
	GammaMin = curve.MustDec("0.00000001")
	GammaMax = curve.MustDec("0.02")
	FeeMax   = curve.MustDec("0.999999999999999999") // fees live in [0,1)
)

const (
	// MinRampTime is both the ramp cooldown and the minimum ramp duration,
	// in seconds.
	MinRampTime uint64 = 86400
	// MaxParamChange caps how far a single ramp may move amp or gamma.
	MaxParamChange int64 = 10
)

// MinTradeSize is the internal-unit threshold below which trades do not
// feed the price oracle; micro trades would skew it through rounding.
var MinTradeSize = curve.MustDec("0.000001")

// MinimumLiquidityAmount is permanently locked out of the first mint
// (1000 raw share units at LP precision 6).
var MinimumLiquidityAmount = curve.MustDec("0.001")

// DefaultPoolParams returns the fee/repeg configuration applied when the
// pool creator does not override individual values.
func DefaultPoolParams() model.PoolParams {
	return model.PoolParams{
		MidFee:               curve.MustDec("0.0026"),
		OutFee:               curve.MustDec("0.0045"),
		FeeGamma:             curve.MustDec("0.00023"),
		RepegProfitThreshold: curve.MustDec("0.000002"),
		MinPriceScaleDelta:   curve.MustDec("0.000146"),
		MAHalfTime:           600,
		MakerFeeShare:        curve.ZeroDec(),
		ShareFeeShare:        curve.ZeroDec(),
	}
}

// ValidateAmpGamma checks the protocol bounds on a curve parameter pair.
func ValidateAmpGamma(ag model.AmpGamma) error {
	if ag.Amp.LT(AmpMin) || ag.Amp.GT(AmpMax) {
		return &ParamError{Name: "amp", Value: ag.Amp, Min: AmpMin, Max: AmpMax}
	}
	if ag.Gamma.LT(GammaMin) || ag.Gamma.GT(GammaMax) {
		return &ParamError{Name: "gamma", Value: ag.Gamma, Min: GammaMin, Max: GammaMax}
	}
	return nil
}

// ValidatePoolParams checks the fee/repeg configuration bounds.
func ValidatePoolParams(p model.PoolParams) error {
	fees := []struct {
		name  string
		value curve.Dec
	}{
		{"mid_fee", p.MidFee},
		{"out_fee", p.OutFee},
		{"maker_fee_share", p.MakerFeeShare},
		{"share_fee_share", p.ShareFeeShare},
	}
	for _, f := range fees {
		if f.value.IsNeg() || f.value.GT(FeeMax) {
			return &ParamError{Name: f.name, Value: f.value, Min: curve.ZeroDec(), Max: FeeMax}
		}
	}
	if p.OutFee.LT(p.MidFee) {
		return fmt.Errorf("out_fee %s must not be below mid_fee %s", p.OutFee, p.MidFee)
	}
	if !p.FeeGamma.IsPos() || p.FeeGamma.GT(curve.OneDec()) {
		return &ParamError{Name: "fee_gamma", Value: p.FeeGamma, Min: curve.ZeroDec(), Max: curve.OneDec()}
	}
	if p.RepegProfitThreshold.IsNeg() {
		return &ParamError{Name: "repeg_profit_threshold", Value: p.RepegProfitThreshold, Min: curve.ZeroDec(), Max: FeeMax}
	}
	if !p.MinPriceScaleDelta.IsPos() {
		return &ParamError{Name: "min_price_scale_delta", Value: p.MinPriceScaleDelta, Min: curve.ZeroDec(), Max: FeeMax}
	}
	if p.MAHalfTime == 0 {
		return fmt.Errorf("ma_half_time must be greater than zero")
	}
	if combined := p.MakerFeeShare.Add(p.ShareFeeShare); combined.GT(curve.OneDec()) {
		return fmt.Errorf("maker and share fee cuts exceed the whole fee: %s", combined)
	}
	return nil
}
