// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"github.com/vechain/stakevault/vault"
)

// Array is an append-only dynamic array, similar to a storage array in Solidity.
// The length lives at pos, elements at blake2b(pos, index).
type Array[V any] struct {
	length   *Value[uint64]
	elements *Mapping[Uint64Key, V]
}

func NewArray[V any](context *Context, pos vault.Bytes32) *Array[V] {
	return &Array[V]{
		length:   NewValue[uint64](context, pos),
		elements: NewMapping[Uint64Key, V](context, pos),
	}
}

func (a *Array[V]) Len() (uint64, error) {
	return a.length.Get()
}

// Get returns the element at index. ok is false when index is out of range.
func (a *Array[V]) Get(index uint64) (value V, ok bool, err error) {
	n, err := a.length.Get()
	if err != nil {
		return value, false, err
	}
	if index >= n {
		return value, false, nil
	}
	value, err = a.elements.Get(Uint64Key(index))
	if err != nil {
		return value, false, err
	}
	return value, true, nil
}

// Set overwrites the element at an existing index.
func (a *Array[V]) Set(index uint64, value V) error {
	return a.elements.Set(Uint64Key(index), value)
}

// Push appends value and returns its index.
func (a *Array[V]) Push(value V) (uint64, error) {
	n, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	if err := a.elements.Set(Uint64Key(n), value); err != nil {
		return 0, err
	}
	if err := a.length.Set(n + 1); err != nil {
		return 0, err
	}
	return n, nil
}
