package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
	"github.com/pinacolada-dex/pina-colada/internal/pool"
	"github.com/pinacolada-dex/pina-colada/internal/storage"
)

// resolveSingleAsset finds the one pool containing the asset. A deposit
// naming a single asset only resolves when exactly one pool lists it.
func resolveSingleAsset(ctx context.Context, st storage.Backend, asset model.AssetRef) ([2]model.AssetRef, error) {
	entries, err := st.Scan(ctx, poolPrefix)
	if err != nil {
		return [2]model.AssetRef{}, fmt.Errorf("scan pools: %w", err)
	}
	var matches [][2]model.AssetRef
	for _, e := range entries {
		var cfg model.Config
		if err := json.Unmarshal(e.Value, &cfg); err != nil {
			return [2]model.AssetRef{}, fmt.Errorf("decode pool config: %w", err)
		}
		if cfg.AssetIndex(asset) >= 0 {
			matches = append(matches, cfg.Assets)
		}
	}
	switch len(matches) {
	case 0:
		return [2]model.AssetRef{}, fmt.Errorf("asset %s: %w", asset, ErrPoolNotFound)
	case 1:
		return matches[0], nil
	default:
		return [2]model.AssetRef{}, fmt.Errorf("asset %s belongs to %d pools, name both pair assets", asset, len(matches))
	}
}

// Provide deposits one or two assets into a pool and mints liquidity
// shares. A single-entry request is completed with a zero amount for the
// omitted pool asset.
func (r *Registry) Provide(ctx context.Context, req *model.ProvideRequest, now uint64) (*model.ProvideResult, error) {
	if n := len(req.Deposits); n < 1 || n > 2 {
		return nil, &pool.InvalidNumberOfAssetsError{Got: n}
	}
	ov := storage.NewOverlay(r.store)

	var pair [2]model.AssetRef
	if len(req.Deposits) == 2 {
		pair = [2]model.AssetRef{req.Deposits[0].Asset, req.Deposits[1].Asset}
	} else {
		resolved, err := resolveSingleAsset(ctx, ov, req.Deposits[0].Asset)
		if err != nil {
			return nil, err
		}
		pair = resolved
	}

	ps, err := loadPool(ctx, ov, pair[0], pair[1])
	if err != nil {
		return nil, err
	}
	cfg := ps.cfg

	// Deposits mapped into canonical asset order, zero for an omitted leg.
	raw := [2]*big.Int{new(big.Int), new(big.Int)}
	for _, d := range req.Deposits {
		idx := cfg.AssetIndex(d.Asset)
		if idx < 0 {
			return nil, &pool.InvalidAssetError{Asset: d.Asset.String()}
		}
		if d.Amount != nil {
			raw[idx] = raw[idx].Add(raw[idx], d.Amount)
		}
	}

	var deposits [2]curve.Dec
	for i := range deposits {
		deposits[i], err = curve.DecFromInt(raw[i], ps.prec[i])
		if err != nil {
			return nil, fmt.Errorf("deposit %s: %w", cfg.Assets[i], err)
		}
	}
	pools, err := ps.balances()
	if err != nil {
		return nil, err
	}

	outcome, err := pool.Provide(deposits, pools, cfg, now, req.SlippageTolerance)
	if err != nil {
		return nil, err
	}

	for i := range ps.res.Amounts {
		ps.res.Amounts[i] = new(big.Int).Add(ps.res.Amounts[i], raw[i])
	}
	if err := savePool(ctx, ov, ps, now); err != nil {
		return nil, err
	}
	if err := ov.Commit(ctx); err != nil {
		return nil, err
	}

	minted, err := outcome.Share.ToInt(model.LPPrecision)
	if err != nil {
		return nil, err
	}
	r.log.Info("provide",
		zap.String("asset0", cfg.Assets[0].String()),
		zap.String("asset1", cfg.Assets[1].String()),
		zap.String("deposit0", raw[0].String()),
		zap.String("deposit1", raw[1].String()),
		zap.String("minted_shares", minted.String()),
		zap.String("slippage", outcome.Slippage.String()),
	)
	return &model.ProvideResult{
		MintedShares: minted,
		Deposits:     raw,
		Slippage:     outcome.Slippage,
	}, nil
}
