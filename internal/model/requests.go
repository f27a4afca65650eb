package model

import (
	"math/big"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
)

// AssetAmount pairs an asset reference with a raw integer amount.
type AssetAmount struct {
	Asset  AssetRef `json:"asset"`
	Amount *big.Int `json:"amount"`
}

// Transfer is an opaque outbound instruction: the engine computes amounts
// and recipients, the caller builds and sends the actual messages.
type Transfer struct {
	Asset     AssetRef `json:"asset"`
	Amount    *big.Int `json:"amount"`
	Recipient string   `json:"recipient"`
}

// CreatePoolRequest registers a new pool. Params defaults apply when nil.
// InitialPrice is the price of the second listed asset in units of the
// first, in the caller's asset order.
type CreatePoolRequest struct {
	Assets             [2]AssetRef `json:"assets"`
	Precisions         [2]uint8    `json:"precisions"`
	InitialPrice       curve.Dec   `json:"initial_price"`
	AmpGamma           AmpGamma    `json:"amp_gamma"`
	Params             *PoolParams `json:"params,omitempty"`
	Owner              string      `json:"owner,omitempty"`
	FeeRecipient       string      `json:"fee_recipient,omitempty"`
	ShareRecipient     string      `json:"share_recipient,omitempty"`
	TrackAssetBalances bool        `json:"track_asset_balances,omitempty"`
}

// SwapRequest asks for a single-pool trade of OfferAsset into AskAsset.
type SwapRequest struct {
	OfferAsset  AssetRef   `json:"offer_asset"`
	OfferAmount *big.Int   `json:"offer_amount"`
	AskAsset    AssetRef   `json:"ask_asset"`
	BeliefPrice *curve.Dec `json:"belief_price,omitempty"`
	MaxSpread   *curve.Dec `json:"max_spread,omitempty"`
	Recipient   string     `json:"recipient,omitempty"`
}

// SwapResult reports the trade outcome and fee breakdown in raw units of
// the ask asset.
type SwapResult struct {
	ReturnAmount *big.Int   `json:"return_amount"`
	SpreadFee    *big.Int   `json:"spread_fee"`
	MakerFee     *big.Int   `json:"maker_fee"`
	ShareFee     *big.Int   `json:"share_fee"`
	Transfers    []Transfer `json:"transfers,omitempty"`
}

// SwapOperation is one leg of a multi-hop swap.
type SwapOperation struct {
	OfferAsset AssetRef `json:"offer_asset"`
	AskAsset   AssetRef `json:"ask_asset"`
}

// MultiSwapRequest chains swap legs; each leg consumes the previous leg's
// output and prices against that pool's already-updated reserves.
type MultiSwapRequest struct {
	Operations     []SwapOperation `json:"operations"`
	InputAmount    *big.Int        `json:"input_amount"`
	MinimumReceive *big.Int        `json:"minimum_receive,omitempty"`
	MaxSpread      *curve.Dec      `json:"max_spread,omitempty"`
	Recipient      string          `json:"recipient,omitempty"`
}

// MultiSwapResult reports the final leg's output.
type MultiSwapResult struct {
	ReturnAmount *big.Int   `json:"return_amount"`
	Transfers    []Transfer `json:"transfers,omitempty"`
}

// ProvideRequest deposits one or two assets into a pool. A single-entry
// request is completed with a zero amount for the omitted pool asset.
type ProvideRequest struct {
	Deposits          []AssetAmount `json:"deposits"`
	SlippageTolerance *curve.Dec    `json:"slippage_tolerance,omitempty"`
	Receiver          string        `json:"receiver,omitempty"`
}

// ProvideResult reports minted shares and the deposits actually applied,
// in canonical asset order.
type ProvideResult struct {
	MintedShares *big.Int    `json:"minted_shares"`
	Deposits     [2]*big.Int `json:"deposits"`
	Slippage     curve.Dec   `json:"slippage"`
}

// WithdrawRequest burns share tokens for a proportional refund. ExactAssets
// would request specific refund amounts instead of the pro-rata split; the
// engine rejects such requests, the field exists so they fail loudly rather
// than silently losing the amounts.
type WithdrawRequest struct {
	Assets      [2]AssetRef   `json:"assets"`
	ShareAmount *big.Int      `json:"share_amount"`
	ExactAssets []AssetAmount `json:"exact_assets,omitempty"`
	Receiver    string        `json:"receiver,omitempty"`
}

// WithdrawResult reports the refunded amounts in canonical asset order.
type WithdrawResult struct {
	Refunds   [2]AssetAmount `json:"refunds"`
	Transfers []Transfer     `json:"transfers,omitempty"`
}

// PoolInfo is the query view of one pool.
type PoolInfo struct {
	Config     Config   `json:"config"`
	Reserves   Reserves `json:"reserves"`
	TotalShare *big.Int `json:"total_share"`
}

// SimulationResult mirrors SwapResult for a dry-run swap.
type SimulationResult struct {
	ReturnAmount *big.Int `json:"return_amount"`
	SpreadAmount *big.Int `json:"spread_amount"`
	Commission   *big.Int `json:"commission"`
}
