package model

import (
	"bytes"
	"testing"
)

func TestPairKeyOrderIndependent(t *testing.T) {
	a := NativeAsset("uusd")
	b := ContractAsset("0x1111111111111111111111111111111111111111")

	if !bytes.Equal(PairKey(a, b), PairKey(b, a)) {
		t.Fatal("pair key depends on argument order")
	}
}

func TestPairKeyDistinguishesPairs(t *testing.T) {
	a := NativeAsset("uusd")
	b := NativeAsset("uluna")
	c := NativeAsset("uatom")

	if bytes.Equal(PairKey(a, b), PairKey(a, c)) {
		t.Fatal("different pairs share a key")
	}
}

func TestSortAssets(t *testing.T) {
	a := NativeAsset("uatom")
	b := NativeAsset("uusd")

	x, y, swapped := SortAssets(b, a)
	if !swapped || !x.Equal(a) || !y.Equal(b) {
		t.Fatalf("sort: got %s, %s, swapped=%v", x, y, swapped)
	}
	x, y, swapped = SortAssets(a, b)
	if swapped || !x.Equal(a) {
		t.Fatalf("already sorted: got %s, %s, swapped=%v", x, y, swapped)
	}
}

func TestAssetValidate(t *testing.T) {
	if err := NativeAsset("uusd").Validate(); err != nil {
		t.Fatalf("native: %v", err)
	}
	if err := NativeAsset("").Validate(); err == nil {
		t.Fatal("empty denom accepted")
	}
	if err := ContractAsset("0x1111111111111111111111111111111111111111").Validate(); err != nil {
		t.Fatalf("contract: %v", err)
	}
	if err := ContractAsset("not-an-address").Validate(); err == nil {
		t.Fatal("bad address accepted")
	}
	if err := (AssetRef{Kind: "weird", ID: "x"}).Validate(); err == nil {
		t.Fatal("unknown kind accepted")
	}
}

func TestConfigAssetIndex(t *testing.T) {
	cfg := Config{Assets: [2]AssetRef{NativeAsset("uluna"), NativeAsset("uusd")}}

	if got := cfg.AssetIndex(NativeAsset("uusd")); got != 1 {
		t.Fatalf("asset index: got %d", got)
	}
	if got := cfg.AssetIndex(NativeAsset("uatom")); got != -1 {
		t.Fatalf("foreign asset index: got %d", got)
	}
}
