package model

import (
	"math/big"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
)

// LPPrecision is the decimal precision of liquidity share accounting.
const LPPrecision uint8 = 6

// AmpGamma is one point of the curve parameter pair.
type AmpGamma struct {
	Amp   curve.Dec `json:"amp"`
	Gamma curve.Dec `json:"gamma"`
}

// Ramp interpolates AmpGamma linearly from Initial at InitialTime to Future
// at FutureTime. Outside the window the respective endpoint applies.
type Ramp struct {
	Initial     AmpGamma `json:"initial"`
	Future      AmpGamma `json:"future"`
	InitialTime uint64   `json:"initial_time"`
	FutureTime  uint64   `json:"future_time"`
}

// PriceState is the oracle and repeg bookkeeping of one pool.
type PriceState struct {
	OraclePrice     curve.Dec `json:"oracle_price"`
	LastPrice       curve.Dec `json:"last_price"`
	PriceScale      curve.Dec `json:"price_scale"`
	LastPriceUpdate uint64    `json:"last_price_update"`
	XcpProfit       curve.Dec `json:"xcp_profit"`
	XcpProfitReal   curve.Dec `json:"xcp_profit_real"`
}

// PoolParams holds the fee and repeg configuration.
type PoolParams struct {
	MidFee               curve.Dec `json:"mid_fee"`
	OutFee               curve.Dec `json:"out_fee"`
	FeeGamma             curve.Dec `json:"fee_gamma"`
	RepegProfitThreshold curve.Dec `json:"repeg_profit_threshold"`
	MinPriceScaleDelta   curve.Dec `json:"min_price_scale_delta"`
	MAHalfTime           uint64    `json:"ma_half_time"`
	// MakerFeeShare and ShareFeeShare carve the corresponding cuts out of
	// the total swap fee. Zero when the pool has no maker/fee-share setup.
	MakerFeeShare curve.Dec `json:"maker_fee_share"`
	ShareFeeShare curve.Dec `json:"share_fee_share"`
}

// Config is the full persistent state of one pool, stored under the
// canonical pair key together with its Reserves record.
type Config struct {
	Assets             [2]AssetRef `json:"assets"`
	Ramp               Ramp        `json:"ramp"`
	PriceState         PriceState  `json:"price_state"`
	PoolParams         PoolParams  `json:"pool_params"`
	TotalShare         curve.Dec   `json:"total_share"`
	Owner              string      `json:"owner,omitempty"`
	FeeRecipient       string      `json:"fee_recipient,omitempty"`
	ShareRecipient     string      `json:"share_recipient,omitempty"`
	TrackAssetBalances bool        `json:"track_asset_balances"`
}

// AssetIndex returns the position of the asset inside the pair, or -1.
func (c *Config) AssetIndex(a AssetRef) int {
	for i, info := range c.Assets {
		if info.Equal(a) {
			return i
		}
	}
	return -1
}

// Reserves are the raw integer balances of a pool, in canonical asset
// order. Never negative.
type Reserves struct {
	Amounts [2]*big.Int `json:"amounts"`
}

// NewReserves returns a zeroed reserve record.
func NewReserves() Reserves {
	return Reserves{Amounts: [2]*big.Int{new(big.Int), new(big.Int)}}
}
