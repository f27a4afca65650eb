package pool

import (
	"errors"
	"fmt"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
)

var (
	// ErrZeroAmount is returned when a quantity that must be positive is zero.
	ErrZeroAmount = errors.New("amount must be greater than zero")

	// ErrMinimumLiquidity is returned when a first deposit does not clear
	// the permanent liquidity lock.
	ErrMinimumLiquidity = errors.New("initial liquidity must exceed the minimum lock amount")

	// ErrMaxSpread is returned when a swap moves the price beyond the
	// caller's spread bound.
	ErrMaxSpread = errors.New("operation exceeds max spread limit")

	// ErrRampCooldown is returned when amp/gamma are changed more often
	// than the minimum ramp interval allows.
	ErrRampCooldown = fmt.Errorf("amp and gamma cannot be changed more often than once per %d seconds", MinRampTime)

	// ErrImbalancedWithdraw is returned for non-proportional withdrawal
	// requests, which this engine does not support.
	ErrImbalancedWithdraw = errors.New("imbalanced withdraw is not supported")

	// ErrSwapTooLarge is returned by the pre-swap solvency check when the
	// offered amount is outsized relative to pool reserves.
	ErrSwapTooLarge = errors.New("offer amount is too large relative to pool reserves")

	// ErrOneCoinPool is returned when a swap is attempted against a pool
	// with an empty side.
	ErrOneCoinPool = errors.New("pool has an empty reserve")
)

// InvalidAssetError marks an asset that does not belong to the pool.
type InvalidAssetError struct {
	Asset string
}

func (e *InvalidAssetError) Error() string {
	return fmt.Sprintf("asset %s does not belong to the pair", e.Asset)
}

// InvalidNumberOfAssetsError marks a provide request with a wrong number
// of deposit entries.
type InvalidNumberOfAssetsError struct {
	Got int
}

func (e *InvalidNumberOfAssetsError) Error() string {
	return fmt.Sprintf("invalid number of assets: pair supports 2, got %d", e.Got)
}

// SlippageError reports a provide whose realized slippage exceeded the
// caller's tolerance.
type SlippageError struct {
	Slippage  curve.Dec
	Tolerance curve.Dec
}

func (e *SlippageError) Error() string {
	return fmt.Sprintf("slippage %s exceeds tolerance %s", e.Slippage, e.Tolerance)
}

// ParamError reports a pool parameter outside its allowed range.
type ParamError struct {
	Name     string
	Value    curve.Dec
	Min, Max curve.Dec
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("incorrect pool param %s=%s: must be within [%s, %s]", e.Name, e.Value, e.Min, e.Max)
}

// MaxChangeError reports a ramp target too far from the current value.
type MaxChangeError struct {
	Name   string
	Factor int64
}

func (e *MaxChangeError) Error() string {
	return fmt.Sprintf("%s change exceeds the allowed factor of %d per ramp", e.Name, e.Factor)
}
