package storage

import (
	"bytes"
	"context"
	"sort"
)

// Overlay buffers writes on top of a base Backend. Reads see the buffered
// writes immediately, the base only after Commit. One overlay wraps one
// top-level operation: a multi-leg swap reads each leg against the previous
// leg's writes, and either every mutation reaches the base or none does.
type Overlay struct {
	base  Backend
	dirty map[string][]byte
	order []string
}

func NewOverlay(base Backend) *Overlay {
	return &Overlay{base: base, dirty: make(map[string][]byte)}
}

func (o *Overlay) Load(ctx context.Context, key []byte) ([]byte, bool, error) {
	if value, ok := o.dirty[string(key)]; ok {
		out := make([]byte, len(value))
		copy(out, value)
		return out, true, nil
	}
	return o.base.Load(ctx, key)
}

func (o *Overlay) Save(_ context.Context, key, value []byte) error {
	k := string(key)
	if _, seen := o.dirty[k]; !seen {
		o.order = append(o.order, k)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	o.dirty[k] = stored
	return nil
}

func (o *Overlay) Scan(ctx context.Context, prefix []byte) ([]Entry, error) {
	entries, err := o.base.Scan(ctx, prefix)
	if err != nil {
		return nil, err
	}
	merged := make(map[string][]byte, len(entries))
	for _, e := range entries {
		merged[string(e.Key)] = e.Value
	}
	for k, v := range o.dirty {
		if bytes.HasPrefix([]byte(k), prefix) {
			merged[k] = v
		}
	}
	out := make([]Entry, 0, len(merged))
	for k, v := range merged {
		out = append(out, Entry{Key: []byte(k), Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Key, out[j].Key) < 0
	})
	return out, nil
}

// Commit flushes the buffered writes to the base in write order.
func (o *Overlay) Commit(ctx context.Context) error {
	for _, k := range o.order {
		if err := o.base.Save(ctx, []byte(k), o.dirty[k]); err != nil {
			return err
		}
	}
	o.dirty = make(map[string][]byte)
	o.order = nil
	return nil
}
