package registry

import (
	"github.com/pinacolada-dex/pina-colada/internal/model"
)

// Storage key prefixes. Pool state lives under three namespaces: the Config
// and Reserves records keyed by the canonical pair key, and the write-once
// precision records keyed by asset identity.
var (
	poolPrefix      = []byte("pool/")
	reservesPrefix  = []byte("reserves/")
	precisionPrefix = []byte("precision/")
	balancePrefix   = []byte("balance/")
)

func poolKey(pair []byte) []byte {
	return append(append([]byte{}, poolPrefix...), pair...)
}

func reservesKey(pair []byte) []byte {
	return append(append([]byte{}, reservesPrefix...), pair...)
}

func precisionKey(asset model.AssetRef) []byte {
	return append(append([]byte{}, precisionPrefix...), asset.Bytes()...)
}

func balanceKey(pair []byte, asset model.AssetRef) []byte {
	key := append(append([]byte{}, balancePrefix...), pair...)
	key = append(key, '/')
	return append(key, asset.Bytes()...)
}
