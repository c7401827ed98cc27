// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakevault/event"
	"github.com/vechain/stakevault/ledger"
	"github.com/vechain/stakevault/staker/reverts"
	"github.com/vechain/stakevault/staker/reward"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/vault"
)

func TestExampleScenario(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Fund(1000, 0).
		Stake(alice, 100, 600, 0, 0).
		Claim(alice, 0, 12*hour, 5).
		Claim(alice, 0, 24*hour, 5).
		Reverts(reverts.State, func(s *Staker) error {
			_, err := s.ClaimReward(alice, 0, 48*hour)
			return err
		}).
		Run(t)

	AssertStake(test, alice, 0).Principal(100).Claimed(10).Active(true).Assert(t)
	assert.Equal(t, big.NewInt(990), test.Pool())

	claimable, err := test.ClaimableReward(alice, 0, 48*hour)
	require.NoError(t, err)
	assert.Equal(t, 0, claimable.Sign())

	maxReward, err := test.MaxReward(alice, 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), maxReward)
}

func TestEarlyUnstake(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Stake(bob, 100, 600, 0, 0).
		Unstake(bob, 0, 599, 90).
		Run(t)

	AssertStake(test, bob, 0).Principal(0).Active(false).Expired(false).Claimed(0).Assert(t)
	assert.Equal(t, big.NewInt(10), test.Pool())
	assert.Equal(t, big.NewInt(1_000_000-10), test.Balance(bob))

	totals, err := test.PoolTotals()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), totals.TotalPenalties)
	assert.Equal(t, 0, totals.TotalPaid.Sign())
}

func TestUnstakeRightAfterLock(t *testing.T) {
	test := newTest(t)

	// at start+lock+1 the lock has elapsed, the accrued reward truncates to zero
	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Stake(bob, 100, 600, 0, 0).
		Unstake(bob, 0, 601, 100).
		Run(t)

	assert.Equal(t, 0, test.Pool().Sign())
}

func TestUnstakeAfterLock(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Fund(1000, 0).
		Stake(alice, 100, 600, 0, 0).
		Claim(alice, 0, 6*hour, 2).
		Unstake(alice, 0, 12*hour, 103).
		Run(t)

	AssertStake(test, alice, 0).Principal(0).Claimed(5).Active(false).Assert(t)
	assert.Equal(t, big.NewInt(995), test.Pool())
	assert.Equal(t, big.NewInt(1_000_000+5), test.Balance(alice))

	total, err := test.TotalPrincipal()
	require.NoError(t, err)
	assert.Equal(t, 0, total.Sign())
}

func TestUnstakeAfterGrace(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Fund(1000, 0).
		Stake(alice, 100, 600, 0, 0).
		Unstake(alice, 0, 600+2*day, 100).
		Reverts(reverts.State, func(s *Staker) error {
			_, err := s.Unstake(alice, 0, 600+2*day)
			return err
		}).
		Run(t)

	AssertStake(test, alice, 0).Principal(0).Claimed(0).Active(false).Expired(true).Assert(t)
	assert.Equal(t, big.NewInt(1000), test.Pool())
}

func TestUnstakeInsolvent(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Stake(alice, 100, 600, 0, 0).
		Reverts(reverts.Solvency, func(s *Staker) error {
			_, err := s.Unstake(alice, 0, 12*hour)
			return err
		}).
		Run(t)

	AssertStake(test, alice, 0).Principal(100).Active(true).Assert(t)
}

func TestPenaltyAbovePrincipal(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 150).
		Stake(alice, 100, 600, 0, 0).
		Reverts(reverts.Validation, func(s *Staker) error {
			_, err := s.Unstake(alice, 0, 10)
			return err
		}).
		Run(t)

	AssertStake(test, alice, 0).Principal(100).Active(true).Assert(t)
}

func TestFullPenalty(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 100).
		Stake(alice, 100, 600, 0, 0).
		Unstake(alice, 0, 10, 0).
		Run(t)

	assert.Equal(t, big.NewInt(100), test.Pool())
}

func TestCleanUpExpiredStake(t *testing.T) {
	test := newTest(t)
	deadline := 600 + 2*day

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Stake(alice, 100, 600, 0, 0).
		Reverts(reverts.Authorization, func(s *Staker) error {
			return s.CleanUpExpiredStake(bob, alice, 0, deadline)
		}).
		Reverts(reverts.State, func(s *Staker) error {
			return s.CleanUpExpiredStake(admin, alice, 0, deadline-1)
		}).
		Reverts(reverts.Validation, func(s *Staker) error {
			return s.CleanUpExpiredStake(admin, alice, 1, deadline)
		}).
		AddFunc(func(t *testing.T) {
			require.NoError(t, test.CleanUpExpiredStake(admin, alice, 0, deadline))
		}).
		Reverts(reverts.State, func(s *Staker) error {
			return s.CleanUpExpiredStake(admin, alice, 0, deadline)
		}).
		Run(t)

	AssertStake(test, alice, 0).Principal(100).Active(false).Expired(true).Assert(t)
	assert.Equal(t, big.NewInt(1_000_000-100), test.Balance(alice))

	// principal is recovered with a later unstake
	NewSequence(test).
		Unstake(alice, 0, deadline+10, 100).
		Reverts(reverts.State, func(s *Staker) error {
			_, err := s.Unstake(alice, 0, deadline+20)
			return err
		}).
		Run(t)

	AssertStake(test, alice, 0).Principal(0).Active(false).Expired(true).Assert(t)
	assert.Equal(t, big.NewInt(1_000_000), test.Balance(alice))
}

func TestEmergencyWithdraw(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Fund(1000, 0).
		Stake(alice, 100, 600, 0, 0).
		Reverts(reverts.State, func(s *Staker) error {
			_, err := s.EmergencyWithdraw(alice, 0, hour)
			return err
		}).
		Pause().
		AddFunc(func(t *testing.T) {
			principal, err := test.EmergencyWithdraw(alice, 0, 12*hour)
			require.NoError(t, err)
			assert.Equal(t, big.NewInt(100), principal)
		}).
		Reverts(reverts.State, func(s *Staker) error {
			_, err := s.EmergencyWithdraw(alice, 0, 12*hour)
			return err
		}).
		Run(t)

	AssertStake(test, alice, 0).Principal(0).Claimed(0).Active(false).Assert(t)
	assert.Equal(t, big.NewInt(1_000_000), test.Balance(alice))
	assert.Equal(t, big.NewInt(1000), test.Pool())
}

func TestPauseGating(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Fund(1000, 0).
		Stake(alice, 100, 600, 0, 0).
		Reverts(reverts.State, func(s *Staker) error {
			_, err := s.WithdrawExcess(admin, 0)
			return err
		}).
		Reverts(reverts.State, func(s *Staker) error { return s.Unpause(admin) }).
		Pause().
		Reverts(reverts.State, func(s *Staker) error { return s.Pause(admin) }).
		Reverts(reverts.State, func(s *Staker) error {
			_, err := s.Stake(alice, big.NewInt(1), 600, 0)
			return err
		}).
		Reverts(reverts.State, func(s *Staker) error {
			_, err := s.ClaimReward(alice, 0, hour)
			return err
		}).
		Reverts(reverts.State, func(s *Staker) error {
			_, err := s.Unstake(alice, 0, hour)
			return err
		}).
		Reverts(reverts.State, func(s *Staker) error { return s.Fund(admin, big.NewInt(1), 0) }).
		// admin configuration is not gated
		SetLockParameters(1200, 5, 5).
		Unpause().
		Claim(alice, 0, 12*hour, 5).
		Run(t)

	paused, err := test.IsPaused()
	require.NoError(t, err)
	assert.False(t, paused)
}

func TestAuthorization(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		Reverts(reverts.Authorization, func(s *Staker) error { return s.Pause(alice) }).
		Reverts(reverts.Authorization, func(s *Staker) error { return s.Unpause(alice) }).
		Reverts(reverts.Authorization, func(s *Staker) error { return s.Fund(alice, big.NewInt(1), 0) }).
		Reverts(reverts.Authorization, func(s *Staker) error { return s.SetLockParameters(alice, 600, 1, 1, 0) }).
		Reverts(reverts.Authorization, func(s *Staker) error {
			_, err := s.WithdrawExcess(alice, 0)
			return err
		}).
		Reverts(reverts.State, func(s *Staker) error { return s.Initialize(alice) }).
		Run(t)

	got, err := test.Admin()
	require.NoError(t, err)
	assert.Equal(t, admin, got)
}

func TestValidation(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Reverts(reverts.Validation, func(s *Staker) error {
			_, err := s.Stake(alice, big.NewInt(0), 600, 0)
			return err
		}).
		Reverts(reverts.Validation, func(s *Staker) error {
			_, err := s.Stake(alice, big.NewInt(100), 601, 0)
			return err
		}).
		Reverts(reverts.Validation, func(s *Staker) error {
			_, err := s.ClaimReward(alice, 0, 0)
			return err
		}).
		Reverts(reverts.Validation, func(s *Staker) error { return s.SetLockParameters(admin, 0, 1, 1, 0) }).
		Reverts(reverts.Validation, func(s *Staker) error { return s.Fund(admin, big.NewInt(0), 0) }).
		Reverts(reverts.Validation, func(s *Staker) error {
			huge := new(big.Int).Lsh(big.NewInt(1), 250)
			_, err := s.Stake(alice, huge, 600, 0)
			return err
		}).
		// withdrawn offer
		SetLockParameters(600, 0, 10).
		Reverts(reverts.Validation, func(s *Staker) error {
			_, err := s.Stake(alice, big.NewInt(100), 600, 0)
			return err
		}).
		Run(t)

	count, err := test.StakeCount(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestClaimInsolvent(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Fund(4, 0).
		Stake(alice, 100, 600, 0, 0).
		Reverts(reverts.Solvency, func(s *Staker) error {
			_, err := s.ClaimReward(alice, 0, 12*hour)
			return err
		}).
		Run(t)

	AssertStake(test, alice, 0).Claimed(0).Assert(t)
	assert.Equal(t, big.NewInt(4), test.Pool())
}

func TestClaimIdempotent(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Fund(1000, 0).
		Stake(alice, 100, 600, 0, 0).
		Claim(alice, 0, 12*hour, 5).
		Reverts(reverts.State, func(s *Staker) error {
			_, err := s.ClaimReward(alice, 0, 12*hour)
			return err
		}).
		Run(t)
}

func TestRateFrozenAtStake(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Fund(1000, 0).
		Stake(alice, 100, 600, 0, 0).
		SetLockParameters(600, 50, 10).
		Stake(alice, 100, 600, 0, 1).
		Claim(alice, 0, day, 10).
		Claim(alice, 1, day, 50).
		Run(t)
}

func TestWithdrawExcess(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Fund(1000, 0).
		Stake(alice, 100, 600, 0, 0).
		Pause().
		Reverts(reverts.State, func(s *Staker) error {
			_, err := s.WithdrawExcess(admin, 0)
			return err
		}).
		Run(t)

	// a direct transfer to the vault is excess
	require.NoError(t, test.ledger.Transfer(bob, vaultAddr, big.NewInt(50)))

	excess, err := test.WithdrawExcess(admin, 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), excess)

	assert.Equal(t, big.NewInt(1000), test.Pool())
	balance, err := test.VaultBalance()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1100), balance)

	totals, err := test.PoolTotals()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), totals.TotalWithdrawn)

	// principal is still recoverable
	principal, err := test.EmergencyWithdraw(alice, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), principal)
}

func TestAtomicOnGatewayFailure(t *testing.T) {
	test := newTest(t)
	poor := vault.BytesToAddress([]byte("poor"))

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Reverts(reverts.Validation, func(s *Staker) error {
			_, err := s.Stake(poor, big.NewInt(100), 600, 0)
			return err
		}).
		Run(t)

	count, err := test.StakeCount(poor)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	total, err := test.TotalPrincipal()
	require.NoError(t, err)
	assert.Equal(t, 0, total.Sign())

	// only LockParametersUpdated was emitted
	n, err := test.EventCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestEvents(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Fund(1000, 5).
		Stake(alice, 100, 600, 10, 0).
		Claim(alice, 0, 12*hour+10, 5).
		Unstake(alice, 0, 24*hour+10, 105).
		Run(t)

	expected := []string{
		event.LockParametersUpdated,
		event.RewardFunded,
		event.Staked,
		event.ClaimedReward,
		event.UnstakeAfterLock,
	}
	n, err := test.EventCount()
	require.NoError(t, err)
	require.Equal(t, uint64(len(expected)), n)

	for i, name := range expected {
		ev, err := test.Event(uint64(i))
		require.NoError(t, err)
		assert.Equal(t, uint64(i), ev.Seq)
		assert.Equal(t, name, ev.Name)
	}

	staked, _ := test.Event(2)
	assert.Equal(t, alice, staked.Account)
	assert.Equal(t, big.NewInt(100), staked.Amount)
	assert.Equal(t, uint64(600), staked.LockDuration)
	assert.Equal(t, uint64(10), staked.Time)

	unstaked, _ := test.Event(4)
	assert.Equal(t, big.NewInt(100), unstaked.Amount)
	assert.Equal(t, big.NewInt(5), unstaked.Reward)

	_, err = test.Event(5)
	assert.Equal(t, reverts.Validation, reverts.KindOf(err))
}

func TestPersistence(t *testing.T) {
	test := newTest(t)

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Fund(1000, 0).
		Stake(alice, 100, 600, 0, 0).
		Run(t)

	st := state.New(test.db, 0)
	l := ledger.New(st, vault.SystemClock)
	reopened := New(vaultAddr, st, ledger.NewGateway(l, vaultAddr), nil)

	stake, err := reopened.GetStake(alice, 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), stake.Principal)

	pool, err := reopened.RewardPool()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), pool)

	durations, err := reopened.LockDurations()
	require.NoError(t, err)
	assert.Equal(t, []uint64{600}, durations)

	p, err := reopened.LockPolicy(600)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), p.DailyRate)
}

// reentrantGateway calls back into the staker while pushing funds out.
type reentrantGateway struct {
	Gateway
	staker *Staker
	errs   []error
}

func (g *reentrantGateway) Push(to vault.Address, amount *big.Int) error {
	_, err := g.staker.ClaimReward(to, 0, 12*hour)
	g.errs = append(g.errs, err)
	return g.Gateway.Push(to, amount)
}

func TestReentrancy(t *testing.T) {
	test := newTest(t)
	gw := &reentrantGateway{Gateway: test.gateway}
	test.gateway = gw
	gw.staker = test.Staker

	NewSequence(test).
		SetLockParameters(600, 10, 10).
		Fund(1000, 0).
		Stake(alice, 100, 600, 0, 0).
		Claim(alice, 0, 12*hour, 5).
		Run(t)

	require.Len(t, gw.errs, 1)
	assert.Equal(t, reverts.State, reverts.KindOf(gw.errs[0]))
	assert.EqualError(t, gw.errs[0], "reentrant call")

	AssertStake(test, alice, 0).Claimed(5).Assert(t)
	assert.Equal(t, big.NewInt(995), test.Pool())
}

func TestCustomCalculator(t *testing.T) {
	db := newTest(t).db
	st := state.New(db, 0)
	l := ledger.New(st, vault.SystemClock)
	s := New(vault.BytesToAddress([]byte("vault2")), st, ledger.NewGateway(l, vaultAddr), reward.New(100, 50))
	assert.Equal(t, uint64(100), s.Calculator().Grace())
	assert.Equal(t, uint64(50), s.Calculator().MaxRewardTime())
}
