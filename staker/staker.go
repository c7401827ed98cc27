// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/stakevault/event"
	"github.com/vechain/stakevault/log"
	"github.com/vechain/stakevault/staker/control"
	"github.com/vechain/stakevault/staker/policy"
	"github.com/vechain/stakevault/staker/pool"
	"github.com/vechain/stakevault/staker/reverts"
	"github.com/vechain/stakevault/staker/reward"
	"github.com/vechain/stakevault/staker/stakes"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/store"
	"github.com/vechain/stakevault/vault"
)

var (
	logger = log.WithContext("pkg", "staker")

	slotEvents = vault.BytesToBytes32([]byte("events"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// Gateway moves the staked asset in and out of the vault. Each call is atomic.
type Gateway interface {
	// Pull transfers amount from an account into the vault.
	Pull(from vault.Address, amount *big.Int) error
	// Push transfers amount from the vault to an account.
	Push(to vault.Address, amount *big.Int) error
	BalanceOf(holder vault.Address) (*big.Int, error)
}

// Staker implements the stake lifecycle of the vault.
type Staker struct {
	addr    vault.Address
	state   *state.State
	gateway Gateway
	calc    *reward.Calculator

	policyService  *policy.Service
	poolService    *pool.Service
	stakesService  *stakes.Service
	controlService *control.Service
	events         *store.Array[*event.Event]

	mu     sync.Mutex
	locked bool // reentrancy guard
}

// New create a new instance.
func New(addr vault.Address, state *state.State, gateway Gateway, calc *reward.Calculator) *Staker {
	if calc == nil {
		calc = reward.Default()
	}
	sctx := store.NewContext(addr, state)

	return &Staker{
		addr:    addr,
		state:   state,
		gateway: gateway,
		calc:    calc,

		policyService:  policy.New(sctx),
		poolService:    pool.New(sctx),
		stakesService:  stakes.New(sctx),
		controlService: control.New(sctx),
		events:         store.NewArray[*event.Event](sctx, slotEvents),
	}
}

func (s *Staker) enter() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return reverts.NewState("reentrant call")
	}
	s.locked = true
	return nil
}

func (s *Staker) leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = false
}

// exec runs op under the reentrancy guard inside a state checkpoint.
// Any failure reverts every write made by op, and success commits them in one batch.
func (s *Staker) exec(name string, op func() error) (err error) {
	if err := s.enter(); err != nil {
		return err
	}
	defer s.leave()

	checkpoint := s.state.NewCheckpoint()
	defer func() {
		result := "success"
		if err != nil {
			result = "reverted"
			if !reverts.IsRevertErr(err) {
				result = "failed"
			}
		}
		metricOperationCount().AddWithLabel(1, map[string]string{"op": name, "result": result})
	}()

	if err := op(); err != nil {
		s.state.RevertTo(checkpoint)
		if errors.Is(err, reward.ErrOverflow) {
			return reverts.NewValidation("%s: %v", name, err)
		}
		return err
	}
	if err := s.state.Commit(); err != nil {
		s.state.RevertTo(checkpoint)
		return errors.Wrap(err, "commit")
	}
	return nil
}

func (s *Staker) emit(ev *event.Event, now uint64) error {
	seq, err := s.events.Len()
	if err != nil {
		return errors.Wrap(err, "failed to append event")
	}
	ev.Seq = seq
	ev.Time = now
	if _, err := s.events.Push(ev); err != nil {
		return errors.Wrap(err, "failed to append event")
	}
	return nil
}

func (s *Staker) pull(from vault.Address, amount *big.Int) error {
	if err := s.gateway.Pull(from, amount); err != nil {
		return errors.WithMessage(err, "pull")
	}
	return nil
}

func (s *Staker) push(to vault.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := s.gateway.Push(to, amount); err != nil {
		return errors.WithMessage(err, "push")
	}
	return nil
}

//
// Getters - no state change
//

// Address returns the vault's own address.
func (s *Staker) Address() vault.Address {
	return s.addr
}

// Calculator returns the reward calculator in use.
func (s *Staker) Calculator() *reward.Calculator {
	return s.calc
}

// StakeCount returns the number of stake records of account.
func (s *Staker) StakeCount(account vault.Address) (uint64, error) {
	return s.stakesService.Count(account)
}

// GetStake returns a stake record.
func (s *Staker) GetStake(account vault.Address, index uint64) (*stakes.Stake, error) {
	return s.stakesService.Get(account, index)
}

// Claimed returns the cumulative reward paid for a stake.
func (s *Staker) Claimed(account vault.Address, index uint64) (*big.Int, error) {
	stake, err := s.stakesService.Get(account, index)
	if err != nil {
		return nil, err
	}
	return stake.Claimed, nil
}

// ClaimableReward returns the reward claimable at now.
func (s *Staker) ClaimableReward(account vault.Address, index uint64, now uint64) (*big.Int, error) {
	stake, err := s.stakesService.Get(account, index)
	if err != nil {
		return nil, err
	}
	return s.calc.Claimable(stake, now)
}

// MaxReward returns the reward ceiling of a stake.
func (s *Staker) MaxReward(account vault.Address, index uint64) (*big.Int, error) {
	stake, err := s.stakesService.Get(account, index)
	if err != nil {
		return nil, err
	}
	return s.calc.MaxReward(stake)
}

// RewardPool returns the current reward pool.
func (s *Staker) RewardPool() (*big.Int, error) {
	return s.poolService.Balance()
}

// PoolTotals returns the cumulative flows of the reward pool.
func (s *Staker) PoolTotals() (*pool.Totals, error) {
	return s.poolService.Totals()
}

// TotalPrincipal returns the principal held for all unreleased stakes.
func (s *Staker) TotalPrincipal() (*big.Int, error) {
	return s.stakesService.TotalPrincipal()
}

// VaultBalance returns the asset balance held by the vault.
func (s *Staker) VaultBalance() (*big.Int, error) {
	return s.gateway.BalanceOf(s.addr)
}

func (s *Staker) IsPaused() (bool, error) {
	return s.controlService.IsPaused()
}

func (s *Staker) Admin() (vault.Address, error) {
	return s.controlService.Admin()
}

// LockPolicy returns the policy of a lock duration.
func (s *Staker) LockPolicy(duration uint64) (*policy.Policy, error) {
	return s.policyService.Get(duration)
}

// LockDurations returns all configured lock durations.
func (s *Staker) LockDurations() ([]uint64, error) {
	return s.policyService.Durations()
}

// EventCount returns the number of events emitted so far.
func (s *Staker) EventCount() (uint64, error) {
	return s.events.Len()
}

// Event returns the event at seq.
func (s *Staker) Event(seq uint64) (*event.Event, error) {
	ev, ok, err := s.events.Get(seq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get event")
	}
	if !ok {
		return nil, reverts.NewValidation("event %d out of range", seq)
	}
	return ev, nil
}
