package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
	"github.com/pinacolada-dex/pina-colada/internal/pool"
	"github.com/pinacolada-dex/pina-colada/internal/storage"
)

// Pool returns the stored state of one pool.
func (r *Registry) Pool(ctx context.Context, a, b model.AssetRef) (*model.PoolInfo, error) {
	ps, err := loadPool(ctx, r.store, a, b)
	if err != nil {
		return nil, err
	}
	return poolInfo(ps)
}

// Pools lists every registered pool.
func (r *Registry) Pools(ctx context.Context) ([]model.PoolInfo, error) {
	entries, err := r.store.Scan(ctx, poolPrefix)
	if err != nil {
		return nil, fmt.Errorf("scan pools: %w", err)
	}
	out := make([]model.PoolInfo, 0, len(entries))
	for _, e := range entries {
		var cfg model.Config
		if err := json.Unmarshal(e.Value, &cfg); err != nil {
			return nil, fmt.Errorf("decode pool config: %w", err)
		}
		ps, err := loadPool(ctx, r.store, cfg.Assets[0], cfg.Assets[1])
		if err != nil {
			return nil, err
		}
		info, err := poolInfo(ps)
		if err != nil {
			return nil, err
		}
		out = append(out, *info)
	}
	return out, nil
}

// Simulate prices a single swap without mutating any state.
func (r *Registry) Simulate(ctx context.Context, offer model.AssetRef, offerAmount *big.Int, ask model.AssetRef, now uint64) (*model.SimulationResult, error) {
	// The leg runs against a throwaway overlay, so its writes evaporate.
	ov := storage.NewOverlay(r.store)
	leg, err := swapLeg(ctx, ov, offer, offerAmount, ask, nil, nil, now)
	if err != nil {
		return nil, err
	}
	return &model.SimulationResult{
		ReturnAmount: leg.dy,
		SpreadAmount: leg.spread,
		Commission:   leg.commission,
	}, nil
}

// SimulateSwapOperations prices a multi-hop chain without mutating any
// state. Intermediate legs still see each other's reserve changes, the
// same way the executing path does.
func (r *Registry) SimulateSwapOperations(ctx context.Context, ops []model.SwapOperation, inputAmount *big.Int, now uint64) (*big.Int, error) {
	if err := assertOperations(ops); err != nil {
		return nil, err
	}
	ov := storage.NewOverlay(r.store)
	amount := inputAmount
	for _, op := range ops {
		leg, err := swapLeg(ctx, ov, op.OfferAsset, amount, op.AskAsset, nil, nil, now)
		if err != nil {
			return nil, fmt.Errorf("simulate %s -> %s: %w", op.OfferAsset, op.AskAsset, err)
		}
		amount = leg.dy
	}
	return amount, nil
}

// ComputeD returns the current invariant value of a pool at the internal
// common unit.
func (r *Registry) ComputeD(ctx context.Context, a, b model.AssetRef, now uint64) (curve.Dec, error) {
	ps, err := loadPool(ctx, r.store, a, b)
	if err != nil {
		return curve.Dec{}, err
	}
	xs, err := ps.balances()
	if err != nil {
		return curve.Dec{}, err
	}
	ampGamma := pool.CurrentAmpGamma(ps.cfg.Ramp, now)
	scale := ps.cfg.PriceState.PriceScale
	return curve.CalcD(xs[0], xs[1].Mul(scale), ampGamma.Amp, ampGamma.Gamma)
}

// LpPrice returns the value of one liquidity share in units of the first
// pool asset, zero for an empty pool.
func (r *Registry) LpPrice(ctx context.Context, a, b model.AssetRef, now uint64) (curve.Dec, error) {
	ps, err := loadPool(ctx, r.store, a, b)
	if err != nil {
		return curve.Dec{}, err
	}
	if !ps.cfg.TotalShare.IsPos() {
		return curve.ZeroDec(), nil
	}
	d, err := r.ComputeD(ctx, a, b, now)
	if err != nil {
		return curve.Dec{}, err
	}
	xcp := curve.GetXcp(d, ps.cfg.PriceState.PriceScale)
	return xcp.Quo(ps.cfg.TotalShare), nil
}

// TrackedBalance returns the persisted balance record of one pool asset.
// Only pools created with balance tracking carry these records.
func (r *Registry) TrackedBalance(ctx context.Context, a, b model.AssetRef, asset model.AssetRef) (*big.Int, uint64, error) {
	pair := model.PairKey(a, b)
	raw, ok, err := r.store.Load(ctx, balanceKey(pair, asset))
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, fmt.Errorf("no tracked balance for asset %s", asset)
	}
	var rec balanceRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, 0, fmt.Errorf("decode balance record for %s: %w", asset, err)
	}
	return rec.Amount, rec.UpdatedAt, nil
}
