// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/vechain/stakevault/cache"
	"github.com/vechain/stakevault/kv"
	"github.com/vechain/stakevault/stackedmap"
	"github.com/vechain/stakevault/vault"
)

const (
	storagePrefix = "s"

	defaultCacheSize = 4096
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr vault.Address
	key  vault.Bytes32
}

func (k storageKey) dbKey() []byte {
	buf := make([]byte, 0, len(storagePrefix)+len(k.addr)+len(k.key))
	buf = append(buf, storagePrefix...)
	buf = append(buf, k.addr[:]...)
	return append(buf, k.key[:]...)
}

// State manages the vault storage.
type State struct {
	db    kv.Store
	cache *cache.LRU             // cache of committed slots
	sm    *stackedmap.StackedMap // keeps revisions of uncommitted slots
}

// New create state object.
// cacheSize falls back to a default value if not positive.
func New(db kv.Store, cacheSize int) *State {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	c, _ := cache.NewLRU(cacheSize)

	state := State{
		db:    db,
		cache: c,
	}
	state.resetStack()
	return &state
}

func (s *State) resetStack() {
	s.sm = stackedmap.New(func(key any) (any, bool, error) {
		return s.cacheGetter(key)
	})
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (value any, exist bool, err error) {
	switch k := key.(type) {
	case storageKey:
		v, cached, err := s.cache.GetOrLoad(k, func(any) (any, error) {
			data, err := s.db.Get(k.dbKey())
			if err != nil {
				if s.db.IsNotFound(err) {
					return []byte(nil), nil
				}
				return nil, err
			}
			return data, nil
		})
		if err != nil {
			return nil, false, err
		}
		if cached {
			metricStorageCounter().AddWithLabel(1, map[string]string{"type": "read", "target": "cache"})
		} else {
			metricStorageCounter().AddWithLabel(1, map[string]string{"type": "read", "target": "db"})
		}
		return v, true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// GetRaw returns the raw bytes stored in the slot.
// An empty slot returns nil.
func (s *State) GetRaw(addr vault.Address, key vault.Bytes32) ([]byte, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return v.([]byte), nil
}

// SetRaw sets the raw bytes of the slot.
// Setting empty bytes clears the slot.
func (s *State) SetRaw(addr vault.Address, key vault.Bytes32, value []byte) {
	if len(value) == 0 {
		value = nil
	}
	s.sm.Put(storageKey{addr, key}, value)
}

// GetStorage returns the slot value decoded as a bytes32.
func (s *State) GetStorage(addr vault.Address, key vault.Bytes32) (vault.Bytes32, error) {
	raw, err := s.GetRaw(addr, key)
	if err != nil {
		return vault.Bytes32{}, err
	}
	if len(raw) == 0 {
		return vault.Bytes32{}, nil
	}
	_, content, _, err := rlp.Split(raw)
	if err != nil {
		return vault.Bytes32{}, &Error{err}
	}
	return vault.BytesToBytes32(content), nil
}

// SetStorage sets the slot value as a bytes32. Leading zeros are trimmed before encoding.
func (s *State) SetStorage(addr vault.Address, key, value vault.Bytes32) {
	if value.IsZero() {
		s.SetRaw(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRaw(addr, key, v)
}

// DecodeStorage get and decode the slot value.
func (s *State) DecodeStorage(addr vault.Address, key vault.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRaw(addr, key)
	if err != nil {
		return err
	}
	return dec(raw)
}

// EncodeStorage encode and set the slot value.
func (s *State) EncodeStorage(addr vault.Address, key vault.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRaw(addr, key, raw)
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Dirty reports the number of pending writes.
func (s *State) Dirty() int {
	n := 0
	s.sm.Journal(func(any, any) bool {
		n++
		return true
	})
	return n
}

// Commit writes all pending changes into the kv store in one batch.
// On failure the pending changes are left intact.
func (s *State) Commit() error {
	changes := make(map[storageKey][]byte)
	s.sm.Journal(func(k, v any) bool {
		changes[k.(storageKey)] = v.([]byte)
		return true
	})
	if len(changes) == 0 {
		return nil
	}

	bulk := s.db.Bulk()
	for k, v := range changes {
		var err error
		if len(v) == 0 {
			err = bulk.Delete(k.dbKey())
		} else {
			err = bulk.Put(k.dbKey(), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}

	for k, v := range changes {
		s.cache.Add(k, v)
	}
	metricStorageCounter().AddWithLabel(int64(len(changes)), map[string]string{"type": "write", "target": "db"})
	metricCommitCounter().Add(1)

	s.resetStack()
	return nil
}
