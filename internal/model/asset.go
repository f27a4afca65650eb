package model

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// AssetKind distinguishes chain-native denominations from contract tokens.
type AssetKind string

const (
	KindNative   AssetKind = "native"
	KindContract AssetKind = "contract"
)

// AssetRef identifies one asset: a native denom string or a contract
// address. The ID is the identity used in pool keys and precision records.
type AssetRef struct {
	Kind AssetKind `json:"kind"`
	ID   string    `json:"id"`
}

// NativeAsset returns a reference to a native denomination.
func NativeAsset(denom string) AssetRef {
	return AssetRef{Kind: KindNative, ID: denom}
}

// ContractAsset returns a reference to a token contract.
func ContractAsset(addr string) AssetRef {
	return AssetRef{Kind: KindContract, ID: addr}
}

// Validate checks the reference is well formed. Contract IDs must be hex
// addresses; native denoms just need to be non-empty.
func (a AssetRef) Validate() error {
	switch a.Kind {
	case KindNative:
		if a.ID == "" {
			return fmt.Errorf("empty native denom")
		}
	case KindContract:
		if !common.IsHexAddress(a.ID) {
			return fmt.Errorf("invalid contract address %q", a.ID)
		}
	default:
		return fmt.Errorf("unknown asset kind %q", a.Kind)
	}
	return nil
}

// Bytes returns the key material of the asset identity.
func (a AssetRef) Bytes() []byte {
	return []byte(a.ID)
}

// Equal reports whether two references name the same asset.
func (a AssetRef) Equal(b AssetRef) bool {
	return a.Kind == b.Kind && a.ID == b.ID
}

func (a AssetRef) String() string {
	return a.ID
}

// PairKey builds the canonical pool key of two assets: their identity
// bytes sorted and concatenated, so (a, b) and (b, a) map to one pool.
func PairKey(a, b AssetRef) []byte {
	x, y := a.Bytes(), b.Bytes()
	if bytes.Compare(x, y) > 0 {
		x, y = y, x
	}
	key := make([]byte, 0, len(x)+len(y))
	key = append(key, x...)
	return append(key, y...)
}

// SortAssets returns the pair in canonical order together with whether the
// input order was swapped.
func SortAssets(a, b AssetRef) (AssetRef, AssetRef, bool) {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		return b, a, true
	}
	return a, b, false
}
