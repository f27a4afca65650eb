package storage

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func testBackendSemantics(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := b.Load(ctx, []byte("missing")); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := b.Save(ctx, []byte("pool/aa"), []byte("one")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := b.Save(ctx, []byte("pool/bb"), []byte("two")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := b.Save(ctx, []byte("other/cc"), []byte("three")); err != nil {
		t.Fatalf("save: %v", err)
	}

	value, ok, err := b.Load(ctx, []byte("pool/aa"))
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(value) != "one" {
		t.Fatalf("load: got %q", value)
	}

	// Overwrite.
	if err := b.Save(ctx, []byte("pool/aa"), []byte("uno")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, _, _ = b.Load(ctx, []byte("pool/aa"))
	if string(value) != "uno" {
		t.Fatalf("after overwrite: got %q", value)
	}

	entries, err := b.Scan(ctx, []byte("pool/"))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("scan: got %d entries", len(entries))
	}
	if !bytes.Equal(entries[0].Key, []byte("pool/aa")) || !bytes.Equal(entries[1].Key, []byte("pool/bb")) {
		t.Fatalf("scan order: %q, %q", entries[0].Key, entries[1].Key)
	}
}

func TestMemoryBackend(t *testing.T) {
	testBackendSemantics(t, NewMemory())
}

func TestFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pools.json")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	testBackendSemantics(t, f)

	// A second open sees the flushed state.
	again, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	value, ok, err := again.Load(context.Background(), []byte("pool/aa"))
	if err != nil || !ok {
		t.Fatalf("load after reopen: ok=%v err=%v", ok, err)
	}
	if string(value) != "uno" {
		t.Fatalf("load after reopen: got %q", value)
	}
}

func TestOverlayReadsOwnWrites(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	if err := base.Save(ctx, []byte("k1"), []byte("base")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ov := NewOverlay(base)
	if err := ov.Save(ctx, []byte("k1"), []byte("dirty")); err != nil {
		t.Fatalf("save: %v", err)
	}

	value, ok, err := ov.Load(ctx, []byte("k1"))
	if err != nil || !ok {
		t.Fatalf("overlay load: ok=%v err=%v", ok, err)
	}
	if string(value) != "dirty" {
		t.Fatalf("overlay read: got %q", value)
	}

	// The base only changes on commit.
	value, _, _ = base.Load(ctx, []byte("k1"))
	if string(value) != "base" {
		t.Fatalf("base changed before commit: %q", value)
	}
	if err := ov.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	value, _, _ = base.Load(ctx, []byte("k1"))
	if string(value) != "dirty" {
		t.Fatalf("base after commit: %q", value)
	}
}

func TestOverlayFallsThroughToBase(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	if err := base.Save(ctx, []byte("k1"), []byte("base")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ov := NewOverlay(base)
	value, ok, err := ov.Load(ctx, []byte("k1"))
	if err != nil || !ok {
		t.Fatalf("fallthrough load: ok=%v err=%v", ok, err)
	}
	if string(value) != "base" {
		t.Fatalf("fallthrough read: got %q", value)
	}
}

func TestOverlayScanMerges(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	base.Save(ctx, []byte("p/a"), []byte("1"))
	base.Save(ctx, []byte("p/c"), []byte("3"))

	ov := NewOverlay(base)
	ov.Save(ctx, []byte("p/b"), []byte("2"))
	ov.Save(ctx, []byte("p/c"), []byte("updated"))

	entries, err := ov.Scan(ctx, []byte("p/"))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("scan: got %d entries", len(entries))
	}
	if string(entries[1].Value) != "2" || string(entries[2].Value) != "updated" {
		t.Fatalf("merged scan values: %q, %q", entries[1].Value, entries[2].Value)
	}
}

func TestOverlayDiscardWithoutCommit(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()

	ov := NewOverlay(base)
	ov.Save(ctx, []byte("k1"), []byte("dirty"))
	// Overlay dropped, base untouched.
	if _, ok, _ := base.Load(ctx, []byte("k1")); ok {
		t.Fatal("uncommitted write reached the base")
	}
}
