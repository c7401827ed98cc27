// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/vechain/stakevault/event"
	"github.com/vechain/stakevault/staker/reverts"
	"github.com/vechain/stakevault/staker/reward"
	"github.com/vechain/stakevault/vault"
)

//
// Setters - state change
//

// Initialize sets the admin identity. It can only succeed once.
func (s *Staker) Initialize(admin vault.Address) error {
	logger.Debug("initializing", "admin", admin)

	err := s.exec("initialize", func() error {
		return s.controlService.Initialize(admin)
	})
	if err != nil {
		logger.Info("initialize failed", "admin", admin, "error", err)
		return err
	}

	logger.Info("initialized", "admin", admin)
	return nil
}

// Stake pulls amount from caller and opens a new stake locked for duration.
// It returns the index of the new stake.
func (s *Staker) Stake(caller vault.Address, amount *big.Int, duration uint64, now uint64) (uint64, error) {
	logger.Debug("staking", "caller", caller, "amount", amount, "duration", duration)

	var index uint64
	err := s.exec("stake", func() error {
		if err := s.controlService.RequireUnpaused(); err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.NewValidation("stake amount must be greater than zero")
		}
		p, err := s.policyService.Get(duration)
		if err != nil {
			return err
		}
		if !p.Offered() {
			return reverts.NewValidation("lock duration %d is not offered", duration)
		}
		if err := s.calc.CheckBounds(amount, p.DailyRate); err != nil {
			return err
		}

		index, err = s.stakesService.Add(caller, amount, now, duration, p.DailyRate)
		if err != nil {
			return err
		}
		if err := s.emit(event.NewStaked(caller, index, amount, duration), now); err != nil {
			return err
		}
		return s.pull(caller, amount)
	})
	if err != nil {
		logger.Info("stake failed", "caller", caller, "error", err)
		return 0, err
	}

	logger.Info("staked", "caller", caller, "index", index, "amount", amount)
	return index, nil
}

// ClaimReward pays the claimable reward of a stake to its owner.
func (s *Staker) ClaimReward(caller vault.Address, index uint64, now uint64) (*big.Int, error) {
	logger.Debug("claiming reward", "caller", caller, "index", index)

	var claimable *big.Int
	err := s.exec("claim", func() error {
		if err := s.controlService.RequireUnpaused(); err != nil {
			return err
		}
		stake, err := s.stakesService.Get(caller, index)
		if err != nil {
			return err
		}
		if !stake.Active {
			return reverts.NewState("stake %d is inactive", index)
		}
		claimable, err = s.calc.Claimable(stake, now)
		if err != nil {
			return err
		}
		if claimable.Sign() == 0 {
			return reverts.NewState("no reward to claim")
		}
		if err := s.poolService.Pay(claimable); err != nil {
			return err
		}
		stake.Claimed = new(big.Int).Add(stake.Claimed, claimable)
		if err := s.stakesService.Update(caller, index, stake); err != nil {
			return err
		}
		if err := s.emit(event.NewClaimedReward(caller, index, claimable), now); err != nil {
			return err
		}
		return s.push(caller, claimable)
	})
	if err != nil {
		logger.Info("claim failed", "caller", caller, "index", index, "error", err)
		return nil, err
	}

	logger.Info("claimed reward", "caller", caller, "index", index, "reward", claimable)
	return claimable, nil
}

// Unstake closes a stake and returns the payout sent to the owner.
// After the lock the payout is principal plus claimable reward. Before, it is principal minus penalty.
func (s *Staker) Unstake(caller vault.Address, index uint64, now uint64) (*big.Int, error) {
	logger.Debug("unstaking", "caller", caller, "index", index)

	var payout *big.Int
	err := s.exec("unstake", func() error {
		if err := s.controlService.RequireUnpaused(); err != nil {
			return err
		}
		stake, err := s.stakesService.Get(caller, index)
		if err != nil {
			return err
		}
		if stake.Withdrawn() {
			return reverts.NewState("stake %d is already withdrawn", index)
		}
		if !stake.Active && !stake.Expired {
			return reverts.NewState("stake %d is inactive", index)
		}
		if s.calc.IsExpired(stake, now) {
			stake.Expired = true
		}

		var ev *event.Event
		if s.calc.IsUnlocked(stake, now) {
			claimable, err := s.calc.Claimable(stake, now)
			if err != nil {
				return err
			}
			if claimable.Sign() > 0 {
				if err := s.poolService.Pay(claimable); err != nil {
					return err
				}
				stake.Claimed = new(big.Int).Add(stake.Claimed, claimable)
			}
			principal, err := s.stakesService.ReleasePrincipal(stake)
			if err != nil {
				return err
			}
			payout = new(big.Int).Add(principal, claimable)
			ev = event.NewUnstakeAfterLock(caller, index, principal, claimable)
		} else {
			p, err := s.policyService.Get(stake.LockDuration)
			if err != nil {
				return err
			}
			penalty, err := reward.Penalty(stake.Principal, p.PenaltyRate)
			if err != nil {
				return err
			}
			if penalty.Cmp(stake.Principal) > 0 {
				return reverts.NewValidation("penalty %s exceeds principal %s", penalty, stake.Principal)
			}
			if err := s.poolService.CreditPenalty(penalty); err != nil {
				return err
			}
			principal, err := s.stakesService.ReleasePrincipal(stake)
			if err != nil {
				return err
			}
			payout = new(big.Int).Sub(principal, penalty)
			ev = event.NewEarlyUnstake(caller, index, principal, penalty)
		}

		if err := s.stakesService.Update(caller, index, stake); err != nil {
			return err
		}
		if err := s.emit(ev, now); err != nil {
			return err
		}
		return s.push(caller, payout)
	})
	if err != nil {
		logger.Info("unstake failed", "caller", caller, "index", index, "error", err)
		return nil, err
	}

	logger.Info("unstaked", "caller", caller, "index", index, "payout", payout)
	return payout, nil
}

// CleanUpExpiredStake flags a stake past its grace period as expired. Nothing is transferred,
// the owner recovers the principal with Unstake.
func (s *Staker) CleanUpExpiredStake(caller, account vault.Address, index uint64, now uint64) error {
	logger.Debug("cleaning up expired stake", "account", account, "index", index)

	err := s.exec("cleanup", func() error {
		if err := s.controlService.RequireAdmin(caller); err != nil {
			return err
		}
		stake, err := s.stakesService.Get(account, index)
		if err != nil {
			return err
		}
		if !stake.Active {
			return reverts.NewState("stake %d is inactive", index)
		}
		if !s.calc.IsExpired(stake, now) {
			return reverts.NewState("stake %d is not expired", index)
		}
		stake.Active = false
		stake.Expired = true
		if err := s.stakesService.Update(account, index, stake); err != nil {
			return err
		}
		return s.emit(event.NewStakeExpired(account, index), now)
	})
	if err != nil {
		logger.Info("clean up failed", "account", account, "index", index, "error", err)
		return err
	}

	logger.Info("cleaned up expired stake", "account", account, "index", index)
	return nil
}

// EmergencyWithdraw returns the principal of an active stake while paused. The reward is forfeited.
func (s *Staker) EmergencyWithdraw(caller vault.Address, index uint64, now uint64) (*big.Int, error) {
	logger.Debug("emergency withdrawing", "caller", caller, "index", index)

	var principal *big.Int
	err := s.exec("emergency-withdraw", func() error {
		if err := s.controlService.RequirePaused(); err != nil {
			return err
		}
		stake, err := s.stakesService.Get(caller, index)
		if err != nil {
			return err
		}
		if !stake.Active {
			return reverts.NewState("stake %d is inactive", index)
		}
		principal, err = s.stakesService.ReleasePrincipal(stake)
		if err != nil {
			return err
		}
		if err := s.stakesService.Update(caller, index, stake); err != nil {
			return err
		}
		if err := s.emit(event.NewEmergencyWithdrawal(caller, index, principal), now); err != nil {
			return err
		}
		return s.push(caller, principal)
	})
	if err != nil {
		logger.Info("emergency withdraw failed", "caller", caller, "index", index, "error", err)
		return nil, err
	}

	logger.Info("emergency withdrew", "caller", caller, "index", index, "principal", principal)
	return principal, nil
}
