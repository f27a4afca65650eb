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

// maxSwapOperations caps the number of legs in one multi-hop request.
const maxSwapOperations = 50

// legOutcome is the committed effect of one swap leg, in raw ask-asset
// units.
type legOutcome struct {
	ask        model.AssetRef
	dy         *big.Int
	spread     *big.Int
	commission *big.Int
	maker      *big.Int
	share      *big.Int
	cfg        *model.Config
}

// swapLeg executes one swap against st: prices the trade, applies the
// reserve changes, feeds the oracle, and persists the pool. st is typically
// an overlay, so a later leg in the same request sees these writes.
func swapLeg(ctx context.Context, st storage.Backend, offer model.AssetRef, offerAmount *big.Int, ask model.AssetRef, beliefPrice, maxSpread *curve.Dec, now uint64) (*legOutcome, error) {
	if offer.Equal(ask) {
		return nil, &pool.InvalidAssetError{Asset: ask.String()}
	}
	ps, err := loadPool(ctx, st, offer, ask)
	if err != nil {
		return nil, err
	}
	cfg := ps.cfg

	offerIdx := cfg.AssetIndex(offer)
	if offerIdx < 0 {
		return nil, &pool.InvalidAssetError{Asset: offer.String()}
	}
	askIdx := 1 - offerIdx

	offerDec, err := curve.DecFromInt(offerAmount, ps.prec[offerIdx])
	if err != nil {
		return nil, fmt.Errorf("offer amount: %w", err)
	}
	xs, err := ps.balances()
	if err != nil {
		return nil, err
	}
	if err := pool.BeforeSwapCheck(xs, offerDec, offerIdx); err != nil {
		return nil, err
	}

	res, err := pool.ComputeSwap(xs, offerDec, askIdx, cfg, now)
	if err != nil {
		return nil, err
	}
	if err := pool.AssertMaxSpread(beliefPrice, maxSpread, offerDec, res.Dy, res.SpreadFee); err != nil {
		return nil, err
	}

	askPrec := ps.prec[askIdx]
	dyRaw, err := res.Dy.ToInt(askPrec)
	if err != nil {
		return nil, err
	}
	makerRaw, err := res.MakerFee.ToInt(askPrec)
	if err != nil {
		return nil, err
	}
	shareRaw, err := res.ShareFee.ToInt(askPrec)
	if err != nil {
		return nil, err
	}
	spreadRaw, err := res.SpreadFee.ToInt(askPrec)
	if err != nil {
		return nil, err
	}
	feeRaw, err := res.TotalFee.ToInt(askPrec)
	if err != nil {
		return nil, err
	}

	// The ask reserve drops by exactly what leaves the pool: the net
	// output plus the fee cuts paid out.
	outRaw := new(big.Int).Add(dyRaw, makerRaw)
	outRaw.Add(outRaw, shareRaw)
	newAsk := new(big.Int).Sub(ps.res.Amounts[askIdx], outRaw)
	if newAsk.Sign() < 0 {
		return nil, fmt.Errorf("ask reserve underflow for %s", ask)
	}
	ps.res.Amounts[askIdx] = newAsk
	ps.res.Amounts[offerIdx] = new(big.Int).Add(ps.res.Amounts[offerIdx], offerAmount)

	// Micro trades never feed the oracle.
	if offerDec.GTE(pool.MinTradeSize) && res.TotalOut().GTE(pool.MinTradeSize) {
		after, err := ps.balances()
		if err != nil {
			return nil, err
		}
		ixs := [2]curve.Dec{after[0], after[1].Mul(cfg.PriceState.PriceScale)}
		lastPrice := res.CalcLastPrice(offerDec, offerIdx)
		if err := pool.UpdatePrice(cfg, now, cfg.TotalShare, ixs, lastPrice); err != nil {
			return nil, err
		}
	}

	if err := savePool(ctx, st, ps, now); err != nil {
		return nil, err
	}
	return &legOutcome{
		ask:        cfg.Assets[askIdx],
		dy:         dyRaw,
		spread:     spreadRaw,
		commission: feeRaw,
		maker:      makerRaw,
		share:      shareRaw,
		cfg:        cfg,
	}, nil
}

// feeTransfers builds the outbound instructions for the fee cuts of one
// leg.
func (l *legOutcome) feeTransfers() []model.Transfer {
	var out []model.Transfer
	if l.maker.Sign() > 0 && l.cfg.FeeRecipient != "" {
		out = append(out, model.Transfer{Asset: l.ask, Amount: l.maker, Recipient: l.cfg.FeeRecipient})
	}
	if l.share.Sign() > 0 && l.cfg.ShareRecipient != "" {
		out = append(out, model.Transfer{Asset: l.ask, Amount: l.share, Recipient: l.cfg.ShareRecipient})
	}
	return out
}

// Swap executes a single-pool trade and commits it atomically.
func (r *Registry) Swap(ctx context.Context, req *model.SwapRequest, now uint64) (*model.SwapResult, error) {
	ov := storage.NewOverlay(r.store)
	leg, err := swapLeg(ctx, ov, req.OfferAsset, req.OfferAmount, req.AskAsset, req.BeliefPrice, req.MaxSpread, now)
	if err != nil {
		return nil, err
	}
	if err := ov.Commit(ctx); err != nil {
		return nil, err
	}

	transfers := append([]model.Transfer{
		{Asset: leg.ask, Amount: leg.dy, Recipient: req.Recipient},
	}, leg.feeTransfers()...)

	r.log.Info("swap",
		zap.String("offer_asset", req.OfferAsset.String()),
		zap.String("offer_amount", req.OfferAmount.String()),
		zap.String("ask_asset", leg.ask.String()),
		zap.String("return_amount", leg.dy.String()),
		zap.String("spread_fee", leg.spread.String()),
	)
	return &model.SwapResult{
		ReturnAmount: leg.dy,
		SpreadFee:    leg.spread,
		MakerFee:     leg.maker,
		ShareFee:     leg.share,
		Transfers:    transfers,
	}, nil
}

// assertOperations validates a multi-hop chain: leg count within bounds,
// no self-pairs, and each leg consuming the previous leg's output asset.
func assertOperations(ops []model.SwapOperation) error {
	if len(ops) == 0 || len(ops) > maxSwapOperations {
		return fmt.Errorf("must provide between 1 and %d swap operations, got %d", maxSwapOperations, len(ops))
	}
	for i, op := range ops {
		if op.OfferAsset.Equal(op.AskAsset) {
			return fmt.Errorf("operation %d swaps %s against itself", i, op.OfferAsset)
		}
		if i > 0 && !ops[i-1].AskAsset.Equal(op.OfferAsset) {
			return fmt.Errorf("operation %d offers %s but the previous leg returns %s", i, op.OfferAsset, ops[i-1].AskAsset)
		}
	}
	return nil
}

// MultiSwap executes a chain of swap legs. Each leg prices against the
// reserves already updated by the preceding legs, and the whole chain
// commits atomically or not at all.
func (r *Registry) MultiSwap(ctx context.Context, req *model.MultiSwapRequest, now uint64) (*model.MultiSwapResult, error) {
	if err := assertOperations(req.Operations); err != nil {
		return nil, err
	}
	ov := storage.NewOverlay(r.store)

	amount := req.InputAmount
	var transfers []model.Transfer
	var last *legOutcome
	for _, op := range req.Operations {
		leg, err := swapLeg(ctx, ov, op.OfferAsset, amount, op.AskAsset, nil, req.MaxSpread, now)
		if err != nil {
			return nil, fmt.Errorf("swap %s -> %s: %w", op.OfferAsset, op.AskAsset, err)
		}
		transfers = append(transfers, leg.feeTransfers()...)
		amount = leg.dy
		last = leg
	}
	if req.MinimumReceive != nil && amount.Cmp(req.MinimumReceive) < 0 {
		return nil, fmt.Errorf("got %s, want at least %s: %w", amount, req.MinimumReceive, ErrMinimumReceive)
	}
	if err := ov.Commit(ctx); err != nil {
		return nil, err
	}

	transfers = append(transfers, model.Transfer{Asset: last.ask, Amount: amount, Recipient: req.Recipient})

	r.log.Info("multi-hop swap",
		zap.Int("operations", len(req.Operations)),
		zap.String("offer_asset", req.Operations[0].OfferAsset.String()),
		zap.String("offer_amount", req.InputAmount.String()),
		zap.String("ask_asset", last.ask.String()),
		zap.String("return_amount", amount.String()),
	)
	return &model.MultiSwapResult{ReturnAmount: amount, Transfers: transfers}, nil
}
