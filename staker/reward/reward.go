// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward computes time-linear, rate-capped stake rewards.
package reward

import (
	"errors"
	"math"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/stakevault/staker/stakes"
	"github.com/vechain/stakevault/vault"
)

// ErrOverflow is returned when an intermediate product exceeds 256 bits.
var ErrOverflow = errors.New("reward: arithmetic overflow")

var (
	percentBase = uint256.NewInt(vault.PercentBase)
	rateBase    = uint256.NewInt(vault.PercentBase * vault.SecondsPerDay)
)

// Calculator is a pure reward calculator.
type Calculator struct {
	grace         uint64
	maxRewardTime uint64
}

// New creates a calculator with the given grace period and accrual horizon, both in seconds.
func New(grace, maxRewardTime uint64) *Calculator {
	return &Calculator{grace: grace, maxRewardTime: maxRewardTime}
}

// Default returns the calculator with the standard constants.
func Default() *Calculator {
	return New(vault.GracePeriod, vault.MaxRewardTime)
}

func (c *Calculator) Grace() uint64         { return c.grace }
func (c *Calculator) MaxRewardTime() uint64 { return c.maxRewardTime }

func addSat(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// UnlockTime returns start + lock, saturating.
func (c *Calculator) UnlockTime(stake *stakes.Stake) uint64 {
	return addSat(stake.Start, stake.LockDuration)
}

// Deadline returns start + lock + grace, saturating.
func (c *Calculator) Deadline(stake *stakes.Stake) uint64 {
	return addSat(c.UnlockTime(stake), c.grace)
}

// IsUnlocked reports whether the lock has elapsed.
func (c *Calculator) IsUnlocked(stake *stakes.Stake, now uint64) bool {
	return now >= c.UnlockTime(stake)
}

// IsExpired reports whether the grace period has elapsed.
func (c *Calculator) IsExpired(stake *stakes.Stake, now uint64) bool {
	return now >= c.Deadline(stake)
}

func toUint256(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, ErrOverflow
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrOverflow
	}
	return u, nil
}

// TotalEarned returns principal × rate × elapsed / (100 × 86400) where elapsed is capped at the accrual horizon.
func (c *Calculator) TotalEarned(stake *stakes.Stake, now uint64) (*big.Int, error) {
	if !stake.Active || stake.Expired || c.IsExpired(stake, now) {
		return new(big.Int), nil
	}
	var elapsed uint64
	if now > stake.Start {
		elapsed = min(now-stake.Start, c.maxRewardTime)
	}

	principal, err := toUint256(stake.Principal)
	if err != nil {
		return nil, err
	}
	product, overflow := new(uint256.Int).MulOverflow(principal, uint256.NewInt(stake.FixedRate))
	if overflow {
		return nil, ErrOverflow
	}
	if _, overflow = product.MulOverflow(product, uint256.NewInt(elapsed)); overflow {
		return nil, ErrOverflow
	}
	return product.Div(product, rateBase).ToBig(), nil
}

// CheckBounds reports ErrOverflow if a stake of principal at rate could overflow while accruing.
func (c *Calculator) CheckBounds(principal *big.Int, rate uint64) error {
	p, err := toUint256(principal)
	if err != nil {
		return err
	}
	product, overflow := new(uint256.Int).MulOverflow(p, uint256.NewInt(rate))
	if overflow {
		return ErrOverflow
	}
	if _, overflow = product.MulOverflow(product, uint256.NewInt(c.maxRewardTime)); overflow {
		return ErrOverflow
	}
	return nil
}

// Claimable returns max(totalEarned - claimed, 0).
func (c *Calculator) Claimable(stake *stakes.Stake, now uint64) (*big.Int, error) {
	earned, err := c.TotalEarned(stake, now)
	if err != nil {
		return nil, err
	}
	if stake.Claimed == nil {
		return earned, nil
	}
	if earned.Cmp(stake.Claimed) <= 0 {
		return new(big.Int), nil
	}
	return earned.Sub(earned, stake.Claimed), nil
}

// MaxReward returns principal × rate / 100, the reward ceiling of a stake.
func (c *Calculator) MaxReward(stake *stakes.Stake) (*big.Int, error) {
	principal, err := toUint256(stake.Principal)
	if err != nil {
		return nil, err
	}
	product, overflow := new(uint256.Int).MulOverflow(principal, uint256.NewInt(stake.FixedRate))
	if overflow {
		return nil, ErrOverflow
	}
	return product.Div(product, percentBase).ToBig(), nil
}

// Penalty returns principal × penaltyRate / 100.
func Penalty(principal *big.Int, penaltyRate uint64) (*big.Int, error) {
	p, err := toUint256(principal)
	if err != nil {
		return nil, err
	}
	product, overflow := new(uint256.Int).MulOverflow(p, uint256.NewInt(penaltyRate))
	if overflow {
		return nil, ErrOverflow
	}
	return product.Div(product, percentBase).ToBig(), nil
}
