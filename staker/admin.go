// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/vechain/stakevault/event"
	"github.com/vechain/stakevault/staker/reverts"
	"github.com/vechain/stakevault/vault"
)

// Pause sets the global pause flag.
func (s *Staker) Pause(caller vault.Address) error {
	return s.setPaused(caller, true)
}

// Unpause clears the global pause flag.
func (s *Staker) Unpause(caller vault.Address) error {
	return s.setPaused(caller, false)
}

func (s *Staker) setPaused(caller vault.Address, paused bool) error {
	name := "unpause"
	if paused {
		name = "pause"
	}
	logger.Debug("setting paused", "paused", paused)

	err := s.exec(name, func() error {
		if err := s.controlService.RequireAdmin(caller); err != nil {
			return err
		}
		return s.controlService.SetPaused(paused)
	})
	if err != nil {
		logger.Info("set paused failed", "paused", paused, "error", err)
		return err
	}

	logger.Info("set paused", "paused", paused)
	return nil
}

// Fund pulls amount from the admin into the reward pool.
func (s *Staker) Fund(caller vault.Address, amount *big.Int, now uint64) error {
	logger.Debug("funding reward pool", "amount", amount)

	err := s.exec("fund", func() error {
		if err := s.controlService.RequireAdmin(caller); err != nil {
			return err
		}
		if err := s.controlService.RequireUnpaused(); err != nil {
			return err
		}
		if amount == nil {
			return reverts.NewValidation("fund amount must be greater than zero")
		}
		if err := s.poolService.Fund(amount); err != nil {
			return err
		}
		if err := s.emit(event.NewRewardFunded(caller, amount), now); err != nil {
			return err
		}
		return s.pull(caller, amount)
	})
	if err != nil {
		logger.Info("fund failed", "amount", amount, "error", err)
		return err
	}

	logger.Info("funded reward pool", "amount", amount)
	return nil
}

// WithdrawExcess pushes to the admin whatever the vault holds beyond principal and reward pool.
// It is only allowed while paused.
func (s *Staker) WithdrawExcess(caller vault.Address, now uint64) (*big.Int, error) {
	logger.Debug("withdrawing excess rewards")

	var excess *big.Int
	err := s.exec("withdraw-excess", func() error {
		if err := s.controlService.RequireAdmin(caller); err != nil {
			return err
		}
		if err := s.controlService.RequirePaused(); err != nil {
			return err
		}
		holdings, err := s.gateway.BalanceOf(s.addr)
		if err != nil {
			return err
		}
		principal, err := s.stakesService.TotalPrincipal()
		if err != nil {
			return err
		}
		excess, err = s.poolService.Excess(holdings, principal)
		if err != nil {
			return err
		}
		if excess.Sign() <= 0 {
			return reverts.NewState("no excess rewards to withdraw")
		}
		if err := s.poolService.Withdraw(excess); err != nil {
			return err
		}
		if err := s.emit(event.NewExcessRewardsWithdrawn(caller, excess), now); err != nil {
			return err
		}
		return s.push(caller, excess)
	})
	if err != nil {
		logger.Info("withdraw excess failed", "error", err)
		return nil, err
	}

	logger.Info("withdrew excess rewards", "amount", excess)
	return excess, nil
}

// SetLockParameters configures the rates of a lock duration. Existing stakes keep their frozen rate.
func (s *Staker) SetLockParameters(caller vault.Address, duration, dailyRate, penaltyRate uint64, now uint64) error {
	logger.Debug("setting lock parameters", "duration", duration, "dailyRate", dailyRate, "penaltyRate", penaltyRate)

	err := s.exec("lock-parameters", func() error {
		if err := s.controlService.RequireAdmin(caller); err != nil {
			return err
		}
		if err := s.policyService.Set(duration, dailyRate, penaltyRate); err != nil {
			return err
		}
		return s.emit(event.NewLockParametersUpdated(duration, dailyRate, penaltyRate), now)
	})
	if err != nil {
		logger.Info("set lock parameters failed", "duration", duration, "error", err)
		return err
	}

	logger.Info("set lock parameters", "duration", duration, "dailyRate", dailyRate, "penaltyRate", penaltyRate)
	return nil
}
