// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package event defines the vault's domain events and ledger transfer records.
package event

import (
	"math/big"

	"github.com/vechain/stakevault/vault"
)

// Event names.
const (
	Staked                 = "Staked"
	ClaimedReward          = "ClaimedReward"
	UnstakeAfterLock       = "UnstakeAfterLock"
	EarlyUnstake           = "EarlyUnstake"
	StakeExpired           = "StakeExpired"
	EmergencyWithdrawal    = "EmergencyWithdrawal"
	RewardFunded           = "RewardFunded"
	ExcessRewardsWithdrawn = "ExcessRewardsWithdrawn"
	LockParametersUpdated  = "LockParametersUpdated"
)

// Names lists all event names.
var Names = []string{
	Staked,
	ClaimedReward,
	UnstakeAfterLock,
	EarlyUnstake,
	StakeExpired,
	EmergencyWithdrawal,
	RewardFunded,
	ExcessRewardsWithdrawn,
	LockParametersUpdated,
}

// IsKnown reports whether name is a defined event name.
func IsKnown(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Event is a flattened domain event. Fields not carried by an event kind are zero.
// Account is the staker, or the admin for RewardFunded and ExcessRewardsWithdrawn.
// Amount is the staked amount, the withdrawn principal or the funded amount.
type Event struct {
	Seq          uint64
	Time         uint64
	Name         string
	Account      vault.Address
	StakeIndex   uint64
	Amount       *big.Int
	Reward       *big.Int
	Penalty      *big.Int
	LockDuration uint64
	DailyRate    uint64
	PenaltyRate  uint64
}

func newEvent(name string, account vault.Address) *Event {
	return &Event{
		Name:    name,
		Account: account,
		Amount:  new(big.Int),
		Reward:  new(big.Int),
		Penalty: new(big.Int),
	}
}

func amount(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

func NewStaked(account vault.Address, index uint64, amt *big.Int, lockDuration uint64) *Event {
	ev := newEvent(Staked, account)
	ev.StakeIndex = index
	ev.Amount = amount(amt)
	ev.LockDuration = lockDuration
	return ev
}

func NewClaimedReward(account vault.Address, index uint64, reward *big.Int) *Event {
	ev := newEvent(ClaimedReward, account)
	ev.StakeIndex = index
	ev.Reward = amount(reward)
	return ev
}

func NewUnstakeAfterLock(account vault.Address, index uint64, principal, reward *big.Int) *Event {
	ev := newEvent(UnstakeAfterLock, account)
	ev.StakeIndex = index
	ev.Amount = amount(principal)
	ev.Reward = amount(reward)
	return ev
}

func NewEarlyUnstake(account vault.Address, index uint64, principal, penalty *big.Int) *Event {
	ev := newEvent(EarlyUnstake, account)
	ev.StakeIndex = index
	ev.Amount = amount(principal)
	ev.Penalty = amount(penalty)
	return ev
}

func NewStakeExpired(account vault.Address, index uint64) *Event {
	ev := newEvent(StakeExpired, account)
	ev.StakeIndex = index
	return ev
}

func NewEmergencyWithdrawal(account vault.Address, index uint64, principal *big.Int) *Event {
	ev := newEvent(EmergencyWithdrawal, account)
	ev.StakeIndex = index
	ev.Amount = amount(principal)
	return ev
}

func NewRewardFunded(admin vault.Address, amt *big.Int) *Event {
	ev := newEvent(RewardFunded, admin)
	ev.Amount = amount(amt)
	return ev
}

func NewExcessRewardsWithdrawn(admin vault.Address, amt *big.Int) *Event {
	ev := newEvent(ExcessRewardsWithdrawn, admin)
	ev.Amount = amount(amt)
	return ev
}

func NewLockParametersUpdated(lockDuration, dailyRate, penaltyRate uint64) *Event {
	ev := newEvent(LockParametersUpdated, vault.Address{})
	ev.LockDuration = lockDuration
	ev.DailyRate = dailyRate
	ev.PenaltyRate = penaltyRate
	return ev
}

// Transfer is a ledger transfer record. A zero Sender marks a mint.
type Transfer struct {
	Seq       uint64
	Time      uint64
	Sender    vault.Address
	Recipient vault.Address
	Amount    *big.Int
}
