package registry

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
	"github.com/pinacolada-dex/pina-colada/internal/pool"
	"github.com/pinacolada-dex/pina-colada/internal/storage"
)

// Withdraw burns liquidity shares for a proportional refund of both
// reserves. Requests naming exact refund amounts are rejected; only the
// pro-rata split exists.
func (r *Registry) Withdraw(ctx context.Context, req *model.WithdrawRequest, now uint64) (*model.WithdrawResult, error) {
	if len(req.ExactAssets) > 0 {
		return nil, pool.ErrImbalancedWithdraw
	}
	ov := storage.NewOverlay(r.store)

	ps, err := loadPool(ctx, ov, req.Assets[0], req.Assets[1])
	if err != nil {
		return nil, err
	}
	cfg := ps.cfg

	share, err := curve.DecFromInt(req.ShareAmount, model.LPPrecision)
	if err != nil {
		return nil, fmt.Errorf("share amount: %w", err)
	}
	pools, err := ps.balances()
	if err != nil {
		return nil, err
	}

	refunds, err := pool.Withdraw(share, pools, cfg, now)
	if err != nil {
		return nil, err
	}

	result := &model.WithdrawResult{}
	for i := range refunds {
		raw, err := refunds[i].ToInt(ps.prec[i])
		if err != nil {
			return nil, err
		}
		remaining := new(big.Int).Sub(ps.res.Amounts[i], raw)
		if remaining.Sign() < 0 {
			return nil, fmt.Errorf("refund exceeds reserve of %s", cfg.Assets[i])
		}
		ps.res.Amounts[i] = remaining
		result.Refunds[i] = model.AssetAmount{Asset: cfg.Assets[i], Amount: raw}
		if raw.Sign() > 0 {
			result.Transfers = append(result.Transfers, model.Transfer{
				Asset:     cfg.Assets[i],
				Amount:    raw,
				Recipient: req.Receiver,
			})
		}
	}

	if err := savePool(ctx, ov, ps, now); err != nil {
		return nil, err
	}
	if err := ov.Commit(ctx); err != nil {
		return nil, err
	}

	r.log.Info("withdraw",
		zap.String("asset0", cfg.Assets[0].String()),
		zap.String("asset1", cfg.Assets[1].String()),
		zap.String("share_amount", req.ShareAmount.String()),
		zap.String("refund0", result.Refunds[0].Amount.String()),
		zap.String("refund1", result.Refunds[1].Amount.String()),
	)
	return result, nil
}

// PromoteParams starts an amp/gamma ramp on a pool, subject to the ramp
// cooldown and change bounds.
func (r *Registry) PromoteParams(ctx context.Context, assets [2]model.AssetRef, next model.AmpGamma, futureTime, now uint64) error {
	ov := storage.NewOverlay(r.store)
	ps, err := loadPool(ctx, ov, assets[0], assets[1])
	if err != nil {
		return err
	}
	if err := pool.PromoteParams(ps.cfg, next, futureTime, now); err != nil {
		return err
	}
	if err := savePool(ctx, ov, ps, now); err != nil {
		return err
	}
	if err := ov.Commit(ctx); err != nil {
		return err
	}
	r.log.Info("params ramp started",
		zap.String("asset0", ps.cfg.Assets[0].String()),
		zap.String("asset1", ps.cfg.Assets[1].String()),
		zap.String("amp", next.Amp.String()),
		zap.String("gamma", next.Gamma.String()),
		zap.Uint64("future_time", futureTime),
	)
	return nil
}

// StopRamp freezes a pool's amp/gamma at their current interpolated
// values.
func (r *Registry) StopRamp(ctx context.Context, assets [2]model.AssetRef, now uint64) error {
	ov := storage.NewOverlay(r.store)
	ps, err := loadPool(ctx, ov, assets[0], assets[1])
	if err != nil {
		return err
	}
	pool.StopRamp(ps.cfg, now)
	if err := savePool(ctx, ov, ps, now); err != nil {
		return err
	}
	if err := ov.Commit(ctx); err != nil {
		return err
	}
	r.log.Info("params ramp stopped",
		zap.String("asset0", ps.cfg.Assets[0].String()),
		zap.String("asset1", ps.cfg.Assets[1].String()),
	)
	return nil
}
