package chain

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Keyring holds signing keys in configuration order.
type Keyring struct {
	addresses []common.Address
	keys      map[common.Address]*ecdsa.PrivateKey
}

// NewKeyring parses hex private keys, with or without 0x prefix. Duplicates are dropped.
func NewKeyring(hexKeys []string) (*Keyring, error) {
	k := &Keyring{keys: make(map[common.Address]*ecdsa.PrivateKey, len(hexKeys))}
	for i, hexKey := range hexKeys {
		hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
		if hexKey == "" {
			continue
		}
		key, err := crypto.HexToECDSA(hexKey)
		if err != nil {
			return nil, fmt.Errorf("parse private key %d: %w", i, err)
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)
		if _, ok := k.keys[addr]; ok {
			continue
		}
		k.keys[addr] = key
		k.addresses = append(k.addresses, addr)
	}
	return k, nil
}

// Addresses returns a copy of the account list.
func (k *Keyring) Addresses() []common.Address {
	out := make([]common.Address, len(k.addresses))
	copy(out, k.addresses)
	return out
}

// Key returns the private key for addr.
func (k *Keyring) Key(addr common.Address) (*ecdsa.PrivateKey, bool) {
	if k.keys == nil {
		return nil, false
	}
	key, ok := k.keys[addr]
	return key, ok
}
