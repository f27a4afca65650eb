package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
	"github.com/pinacolada-dex/pina-colada/internal/pool"
	"github.com/pinacolada-dex/pina-colada/internal/storage"
)

var (
	// ErrPoolNotFound is returned when no pool exists for the asset pair.
	ErrPoolNotFound = errors.New("pool not found")

	// ErrPoolExists is returned when creating a pool over an existing pair.
	ErrPoolExists = errors.New("pool already exists for this pair")

	// ErrMinimumReceive is returned when a multi-hop swap's final output
	// falls short of the caller's bound.
	ErrMinimumReceive = errors.New("swap output is below minimum receive amount")

	// ErrDoubledAssets is returned when a pool is created over one asset.
	ErrDoubledAssets = errors.New("pool assets must be distinct")
)

// Registry owns every pool's persistent state and executes operations
// against it. Each top-level operation runs on a write overlay over the
// backing store, so either all of its mutations commit or none do, and a
// multi-leg swap reads each leg against the previous leg's writes.
//
// The registry assumes serial invocation; it performs no locking.
type Registry struct {
	store storage.Backend
	log   *zap.Logger
}

// New builds a registry over the given store. A nil logger disables
// logging.
func New(store storage.Backend, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{store: store, log: log}
}

// poolState bundles everything one operation needs about a pool: its
// config, raw reserves, asset precisions, and the reserves as external-unit
// decimals.
type poolState struct {
	pair []byte
	cfg  *model.Config
	res  model.Reserves
	prec [2]uint8
}

// balances converts the raw reserves to external-unit decimals.
func (ps *poolState) balances() ([2]curve.Dec, error) {
	var xs [2]curve.Dec
	for i, amount := range ps.res.Amounts {
		x, err := curve.DecFromInt(amount, ps.prec[i])
		if err != nil {
			return xs, fmt.Errorf("reserve %s: %w", ps.cfg.Assets[i], err)
		}
		xs[i] = x
	}
	return xs, nil
}

func loadPool(ctx context.Context, st storage.Backend, a, b model.AssetRef) (*poolState, error) {
	pair := model.PairKey(a, b)
	raw, ok, err := st.Load(ctx, poolKey(pair))
	if err != nil {
		return nil, fmt.Errorf("load pool %s/%s: %w", a, b, err)
	}
	if !ok {
		return nil, fmt.Errorf("pair %s/%s: %w", a, b, ErrPoolNotFound)
	}
	ps := &poolState{pair: pair, cfg: &model.Config{}}
	if err := json.Unmarshal(raw, ps.cfg); err != nil {
		return nil, fmt.Errorf("decode pool config %s/%s: %w", a, b, err)
	}

	raw, ok, err = st.Load(ctx, reservesKey(pair))
	if err != nil {
		return nil, fmt.Errorf("load reserves %s/%s: %w", a, b, err)
	}
	if !ok {
		return nil, fmt.Errorf("reserves missing for pair %s/%s", a, b)
	}
	ps.res = model.NewReserves()
	if err := json.Unmarshal(raw, &ps.res); err != nil {
		return nil, fmt.Errorf("decode reserves %s/%s: %w", a, b, err)
	}

	for i, asset := range ps.cfg.Assets {
		prec, err := loadPrecision(ctx, st, asset)
		if err != nil {
			return nil, err
		}
		ps.prec[i] = prec
	}
	return ps, nil
}

func savePool(ctx context.Context, st storage.Backend, ps *poolState, now uint64) error {
	raw, err := json.Marshal(ps.cfg)
	if err != nil {
		return fmt.Errorf("encode pool config: %w", err)
	}
	if err := st.Save(ctx, poolKey(ps.pair), raw); err != nil {
		return fmt.Errorf("save pool config: %w", err)
	}
	raw, err = json.Marshal(ps.res)
	if err != nil {
		return fmt.Errorf("encode reserves: %w", err)
	}
	if err := st.Save(ctx, reservesKey(ps.pair), raw); err != nil {
		return fmt.Errorf("save reserves: %w", err)
	}
	if ps.cfg.TrackAssetBalances {
		for i, asset := range ps.cfg.Assets {
			rec, err := json.Marshal(balanceRecord{Amount: ps.res.Amounts[i], UpdatedAt: now})
			if err != nil {
				return err
			}
			if err := st.Save(ctx, balanceKey(ps.pair, asset), rec); err != nil {
				return fmt.Errorf("save balance record for %s: %w", asset, err)
			}
		}
	}
	return nil
}

// balanceRecord is the persisted form of one tracked asset balance.
type balanceRecord struct {
	Amount    *big.Int `json:"amount"`
	UpdatedAt uint64   `json:"updated_at"`
}

// CreatePool registers a new pool with zero reserves, an identity ramp, and
// oracle, last, and scale prices all set to the initial price. One pool
// exists per canonical pair; creating over an existing pair fails.
func (r *Registry) CreatePool(ctx context.Context, req *model.CreatePoolRequest, now uint64) (*model.PoolInfo, error) {
	for _, asset := range req.Assets {
		if err := asset.Validate(); err != nil {
			return nil, err
		}
	}
	if req.Assets[0].Equal(req.Assets[1]) {
		return nil, ErrDoubledAssets
	}
	if !req.InitialPrice.IsPos() {
		return nil, fmt.Errorf("initial price must be positive")
	}
	if err := pool.ValidateAmpGamma(req.AmpGamma); err != nil {
		return nil, err
	}
	params := pool.DefaultPoolParams()
	if req.Params != nil {
		params = *req.Params
	}
	if err := pool.ValidatePoolParams(params); err != nil {
		return nil, err
	}

	a0, a1, swapped := model.SortAssets(req.Assets[0], req.Assets[1])
	p0, p1 := req.Precisions[0], req.Precisions[1]
	price := req.InitialPrice
	if swapped {
		p0, p1 = p1, p0
		// InitialPrice quotes the caller's second asset in the first; the
		// canonical order flips the quote direction.
		price = curve.OneDec().Quo(price)
	}

	pair := model.PairKey(a0, a1)
	ov := storage.NewOverlay(r.store)
	if _, ok, err := ov.Load(ctx, poolKey(pair)); err != nil {
		return nil, err
	} else if ok {
		return nil, fmt.Errorf("pair %s/%s: %w", a0, a1, ErrPoolExists)
	}
	if err := registerPrecision(ctx, ov, a0, p0); err != nil {
		return nil, err
	}
	if err := registerPrecision(ctx, ov, a1, p1); err != nil {
		return nil, err
	}

	cfg := &model.Config{
		Assets: [2]model.AssetRef{a0, a1},
		Ramp: model.Ramp{
			Initial:     req.AmpGamma,
			Future:      req.AmpGamma,
			InitialTime: now,
			FutureTime:  now,
		},
		PriceState: model.PriceState{
			OraclePrice:     price,
			LastPrice:       price,
			PriceScale:      price,
			LastPriceUpdate: now,
		},
		PoolParams:         params,
		TotalShare:         curve.ZeroDec(),
		Owner:              req.Owner,
		FeeRecipient:       req.FeeRecipient,
		ShareRecipient:     req.ShareRecipient,
		TrackAssetBalances: req.TrackAssetBalances,
	}
	ps := &poolState{
		pair: pair,
		cfg:  cfg,
		res:  model.NewReserves(),
		prec: [2]uint8{p0, p1},
	}
	if err := savePool(ctx, ov, ps, now); err != nil {
		return nil, err
	}
	if err := ov.Commit(ctx); err != nil {
		return nil, err
	}

	r.log.Info("pool created",
		zap.String("asset0", a0.String()),
		zap.String("asset1", a1.String()),
		zap.String("price_scale", price.String()),
		zap.String("amp", req.AmpGamma.Amp.String()),
		zap.String("gamma", req.AmpGamma.Gamma.String()),
	)
	return poolInfo(ps)
}

func poolInfo(ps *poolState) (*model.PoolInfo, error) {
	share, err := ps.cfg.TotalShare.ToInt(model.LPPrecision)
	if err != nil {
		return nil, err
	}
	return &model.PoolInfo{
		Config:     *ps.cfg,
		Reserves:   ps.res,
		TotalShare: share,
	}, nil
}
