// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakevault/staker/reverts"
	"github.com/vechain/stakevault/store"
	"github.com/vechain/stakevault/vault"
)

var (
	slotStakes         = vault.BytesToBytes32([]byte("stakes"))
	slotTotalPrincipal = vault.BytesToBytes32([]byte("total-principal"))
)

// Stake is a stake record. Records are appended and never removed.
// Once Active is false, Principal stays zero.
type Stake struct {
	Principal    *big.Int
	Start        uint64 // unix seconds
	LockDuration uint64 // seconds
	FixedRate    uint64 // daily percent, frozen at creation
	Claimed      *big.Int
	Active       bool
	Expired      bool
}

// Withdrawn reports whether the principal has been returned.
func (s *Stake) Withdrawn() bool {
	return !s.Active && s.Principal.Sign() == 0
}

// Clone returns a deep copy.
func (s *Stake) Clone() *Stake {
	c := *s
	c.Principal = new(big.Int).Set(s.Principal)
	c.Claimed = new(big.Int).Set(s.Claimed)
	return &c
}

// Service is the per account stake records repository.
type Service struct {
	sctx           *store.Context
	totalPrincipal *store.Uint256
}

func New(sctx *store.Context) *Service {
	return &Service{
		sctx:           sctx,
		totalPrincipal: store.NewUint256(sctx, slotTotalPrincipal),
	}
}

func (s *Service) records(account vault.Address) *store.Array[*Stake] {
	return store.NewArray[*Stake](s.sctx, vault.Blake2b(account.Bytes(), slotStakes.Bytes()))
}

// Count returns the number of records owned by account.
func (s *Service) Count(account vault.Address) (uint64, error) {
	n, err := s.records(account).Len()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get stake count")
	}
	return n, nil
}

// Get returns a record. An out of range index is a validation revert.
func (s *Service) Get(account vault.Address, index uint64) (*Stake, error) {
	stake, ok, err := s.records(account).Get(index)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake")
	}
	if !ok {
		return nil, reverts.NewValidation("stake index %d out of range", index)
	}
	if stake.Principal == nil {
		stake.Principal = new(big.Int)
	}
	if stake.Claimed == nil {
		stake.Claimed = new(big.Int)
	}
	return stake, nil
}

// Add appends a new active record and returns its index.
func (s *Service) Add(account vault.Address, principal *big.Int, start, lockDuration, rate uint64) (uint64, error) {
	stake := &Stake{
		Principal:    new(big.Int).Set(principal),
		Start:        start,
		LockDuration: lockDuration,
		FixedRate:    rate,
		Claimed:      new(big.Int),
		Active:       true,
	}
	index, err := s.records(account).Push(stake)
	if err != nil {
		return 0, errors.Wrap(err, "failed to add stake")
	}
	if err := s.totalPrincipal.Add(principal); err != nil {
		return 0, errors.Wrap(err, "failed to update total principal")
	}
	return index, nil
}

// Update writes back a record.
func (s *Service) Update(account vault.Address, index uint64, stake *Stake) error {
	return errors.Wrap(s.records(account).Set(index, stake), "failed to update stake")
}

// ReleasePrincipal zeroes the principal, deactivates the record and returns the released amount.
func (s *Service) ReleasePrincipal(stake *Stake) (*big.Int, error) {
	principal := new(big.Int).Set(stake.Principal)
	if err := s.totalPrincipal.Sub(principal); err != nil {
		return nil, errors.Wrap(err, "failed to update total principal")
	}
	stake.Principal = new(big.Int)
	stake.Active = false
	return principal, nil
}

// TotalPrincipal returns the sum of principal not yet released.
func (s *Service) TotalPrincipal() (*big.Int, error) {
	total, err := s.totalPrincipal.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get total principal")
	}
	return total, nil
}
