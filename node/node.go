// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node hosts a vault: it serializes calls, stamps them with the host clock and
// keeps the event index in step with the vault state.
package node

import (
	"context"
	"math/big"
	"sync"

	"github.com/vechain/stakevault/co"
	"github.com/vechain/stakevault/event"
	"github.com/vechain/stakevault/eventdb"
	"github.com/vechain/stakevault/ledger"
	"github.com/vechain/stakevault/log"
	"github.com/vechain/stakevault/staker"
	"github.com/vechain/stakevault/staker/reward"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/vault"
)

var logger = log.WithContext("pkg", "node")

type Options struct {
	VaultAddress vault.Address
	Calculator   *reward.Calculator
	// EventDB is optional. Without it events are only kept in state.
	EventDB *eventdb.EventDB
}

type Node struct {
	goes    co.Goes
	clock   vault.Clock
	eventDB *eventdb.EventDB

	mu     sync.Mutex
	now    uint64 // time of the call in progress
	staker *staker.Staker
	ledger *ledger.Ledger

	syncMu       sync.Mutex
	nextEvent    uint64
	nextTransfer uint64

	committed co.Signal
}

// New creates a node over st. Readings of clock are forced to be non-decreasing.
func New(st *state.State, clock vault.Clock, opts Options) *Node {
	n := &Node{
		clock:   vault.NewMonotonicClock(clock),
		eventDB: opts.EventDB,
	}
	n.ledger = ledger.New(st, vault.ClockFunc(n.callTime))
	n.staker = staker.New(opts.VaultAddress, st, ledger.NewGateway(n.ledger, opts.VaultAddress), opts.Calculator)
	return n
}

func (n *Node) callTime() uint64 {
	return n.now
}

// Run keeps the event index up to date until ctx is canceled.
func (n *Node) Run(ctx context.Context) error {
	defer n.goes.Wait()

	if n.eventDB != nil {
		waiter := n.NewWaiter()
		if err := n.Sync(ctx); err != nil {
			return err
		}
		n.goes.Go(func() { n.indexLoop(ctx, waiter) })
	}
	<-ctx.Done()
	return nil
}

// execute runs op exclusively with the time of the call.
func (n *Node) execute(op func(now uint64) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.now = n.clock.Now()
	if err := op(n.now); err != nil {
		return err
	}
	n.committed.Broadcast()
	return nil
}

// Read runs fn with exclusive access to the vault.
func (n *Node) Read(fn func(s *staker.Staker, l *ledger.Ledger, now uint64) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return fn(n.staker, n.ledger, n.clock.Now())
}

// NewWaiter returns a waiter woken after every successful call.
func (n *Node) NewWaiter() co.Waiter {
	return n.committed.NewWaiter()
}

// EventsFrom returns at most limit events starting from seq.
func (n *Node) EventsFrom(seq uint64, limit int) ([]*event.Event, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	count, err := n.staker.EventCount()
	if err != nil {
		return nil, err
	}
	var events []*event.Event
	for ; seq < count && len(events) < limit; seq++ {
		ev, err := n.staker.Event(seq)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (n *Node) transfersFrom(seq uint64, limit int) ([]*event.Transfer, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	count, err := n.ledger.TransferCount()
	if err != nil {
		return nil, err
	}
	var transfers []*event.Transfer
	for ; seq < count && len(transfers) < limit; seq++ {
		tr, err := n.ledger.TransferAt(seq)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, tr)
	}
	return transfers, nil
}

func (n *Node) Initialize(admin vault.Address) error {
	return n.execute(func(uint64) error {
		return n.staker.Initialize(admin)
	})
}

func (n *Node) Stake(caller vault.Address, amount *big.Int, duration uint64) (index uint64, err error) {
	err = n.execute(func(now uint64) (err error) {
		index, err = n.staker.Stake(caller, amount, duration, now)
		return
	})
	return
}

func (n *Node) ClaimReward(caller vault.Address, index uint64) (reward *big.Int, err error) {
	err = n.execute(func(now uint64) (err error) {
		reward, err = n.staker.ClaimReward(caller, index, now)
		return
	})
	return
}

func (n *Node) Unstake(caller vault.Address, index uint64) (payout *big.Int, err error) {
	err = n.execute(func(now uint64) (err error) {
		payout, err = n.staker.Unstake(caller, index, now)
		return
	})
	return
}

func (n *Node) CleanUpExpiredStake(caller, account vault.Address, index uint64) error {
	return n.execute(func(now uint64) error {
		return n.staker.CleanUpExpiredStake(caller, account, index, now)
	})
}

func (n *Node) EmergencyWithdraw(caller vault.Address, index uint64) (principal *big.Int, err error) {
	err = n.execute(func(now uint64) (err error) {
		principal, err = n.staker.EmergencyWithdraw(caller, index, now)
		return
	})
	return
}

func (n *Node) Fund(caller vault.Address, amount *big.Int) error {
	return n.execute(func(now uint64) error {
		return n.staker.Fund(caller, amount, now)
	})
}

func (n *Node) WithdrawExcess(caller vault.Address) (excess *big.Int, err error) {
	err = n.execute(func(now uint64) (err error) {
		excess, err = n.staker.WithdrawExcess(caller, now)
		return
	})
	return
}

func (n *Node) SetLockParameters(caller vault.Address, duration, dailyRate, penaltyRate uint64) error {
	return n.execute(func(now uint64) error {
		return n.staker.SetLockParameters(caller, duration, dailyRate, penaltyRate, now)
	})
}

func (n *Node) Pause(caller vault.Address) error {
	return n.execute(func(uint64) error {
		return n.staker.Pause(caller)
	})
}

func (n *Node) Unpause(caller vault.Address) error {
	return n.execute(func(uint64) error {
		return n.staker.Unpause(caller)
	})
}

// Mint credits amount to an account out of thin air. Dev hosts only.
func (n *Node) Mint(to vault.Address, amount *big.Int) error {
	return n.execute(func(uint64) error {
		return n.ledger.Mint(to, amount)
	})
}
