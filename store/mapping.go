// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/vechain/stakevault/vault"
)

type Key interface {
	Bytes() []byte
}

// Uint64Key adapts an uint64 to be used as mapping key.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	return vault.BytesToBytes32(new(big.Int).SetUint64(uint64(k)).Bytes()).Bytes()
}

// Mapping is a key/value storage abstraction, similar to the mapping in Solidity.
// Values are RLP encoded. A missing key yields the zero value of V.
type Mapping[K Key, V any] struct {
	context *Context
	basePos vault.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos vault.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) vault.Bytes32 {
	return vault.Blake2b(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete clears the value of key.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRaw(m.context.address, m.position(key), nil)
}
