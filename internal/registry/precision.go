package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pinacolada-dex/pina-colada/internal/curve"
	"github.com/pinacolada-dex/pina-colada/internal/model"
	"github.com/pinacolada-dex/pina-colada/internal/storage"
)

type precisionRecord struct {
	Precision uint8 `json:"precision"`
}

// registerPrecision records the decimal precision of an asset. A precision
// is write-once: re-registering the same value is a no-op, a conflicting
// value is rejected.
func registerPrecision(ctx context.Context, st storage.Backend, asset model.AssetRef, precision uint8) error {
	key := precisionKey(asset)
	raw, ok, err := st.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load precision for %s: %w", asset, err)
	}
	if ok {
		var rec precisionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("decode precision for %s: %w", asset, err)
		}
		if rec.Precision != precision {
			return fmt.Errorf("asset %s already registered with precision %d", asset, rec.Precision)
		}
		return nil
	}
	if precision > curve.DecPrecision {
		return fmt.Errorf("precision %d for %s exceeds maximum %d", precision, asset, curve.DecPrecision)
	}
	raw, err = json.Marshal(precisionRecord{Precision: precision})
	if err != nil {
		return err
	}
	return st.Save(ctx, key, raw)
}

// loadPrecision returns the recorded precision of an asset.
func loadPrecision(ctx context.Context, st storage.Backend, asset model.AssetRef) (uint8, error) {
	raw, ok, err := st.Load(ctx, precisionKey(asset))
	if err != nil {
		return 0, fmt.Errorf("load precision for %s: %w", asset, err)
	}
	if !ok {
		return 0, fmt.Errorf("no precision registered for asset %s", asset)
	}
	var rec precisionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return 0, fmt.Errorf("decode precision for %s: %w", asset, err)
	}
	return rec.Precision, nil
}
