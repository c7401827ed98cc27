// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakevault/kv"
	"github.com/vechain/stakevault/ledger"
	"github.com/vechain/stakevault/staker/reverts"
	"github.com/vechain/stakevault/staker/reward"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/vault"
)

const (
	hour = uint64(3600)
	day  = 24 * hour
)

var (
	vaultAddr = vault.BytesToAddress([]byte("vault"))
	admin     = vault.BytesToAddress([]byte("admin"))
	alice     = vault.BytesToAddress([]byte("alice"))
	bob       = vault.BytesToAddress([]byte("bob"))
)

type StakerTest struct {
	*Staker
	t      *testing.T
	db     kv.Store
	ledger *ledger.Ledger
}

// newTest returns an initialized staker backed by the in-state ledger, with the admin and users funded.
func newTest(t *testing.T) *StakerTest {
	db, err := kv.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db, 0)
	l := ledger.New(st, vault.ClockFunc(func() uint64 { return 0 }))
	staker := New(vaultAddr, st, ledger.NewGateway(l, vaultAddr), reward.Default())

	require.NoError(t, staker.Initialize(admin))
	for _, acc := range []vault.Address{admin, alice, bob} {
		require.NoError(t, l.Mint(acc, big.NewInt(1_000_000)))
	}

	return &StakerTest{Staker: staker, t: t, db: db, ledger: l}
}

func (ts *StakerTest) Balance(acc vault.Address) *big.Int {
	bal, err := ts.ledger.BalanceOf(acc)
	require.NoError(ts.t, err)
	return bal
}

func (ts *StakerTest) Pool() *big.Int {
	pool, err := ts.RewardPool()
	require.NoError(ts.t, err)
	return pool
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	staker *StakerTest

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(staker *StakerTest) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), staker: staker}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) SetLockParameters(duration, dailyRate, penaltyRate uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		err := st.staker.SetLockParameters(admin, duration, dailyRate, penaltyRate, 0)
		if err != nil {
			t.Fatalf("failed to set lock parameters for %d: %v", duration, err)
		}
		t.Logf("set lock parameters %d: %d/%d", duration, dailyRate, penaltyRate)
	})
}

func (st *TestSequence) Fund(amount int64, now uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.staker.Fund(admin, big.NewInt(amount), now); err != nil {
			t.Fatalf("failed to fund %d: %v", amount, err)
		}
		t.Logf("funded %d", amount)
	})
}

func (st *TestSequence) Stake(acc vault.Address, amount int64, duration, now uint64, expectedIndex uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		index, err := st.staker.Stake(acc, big.NewInt(amount), duration, now)
		if err != nil {
			t.Fatalf("failed to stake %d for %s: %v", amount, acc, err)
		}
		assert.Equal(t, expectedIndex, index)
		t.Logf("staked %d for %s at index %d", amount, acc, index)
	})
}

func (st *TestSequence) Claim(acc vault.Address, index, now uint64, expected int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		claimed, err := st.staker.ClaimReward(acc, index, now)
		if err != nil {
			t.Fatalf("failed to claim stake %d of %s at %d: %v", index, acc, now, err)
		}
		assert.Equal(t, 0, big.NewInt(expected).Cmp(claimed), "claim at %d: expected %d, got %s", now, expected, claimed)
		t.Logf("claimed %s from stake %d of %s", claimed, index, acc)
	})
}

func (st *TestSequence) Unstake(acc vault.Address, index, now uint64, expected int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		payout, err := st.staker.Unstake(acc, index, now)
		if err != nil {
			t.Fatalf("failed to unstake %d of %s at %d: %v", index, acc, now, err)
		}
		assert.Equal(t, 0, big.NewInt(expected).Cmp(payout), "unstake at %d: expected %d, got %s", now, expected, payout)
		t.Logf("unstaked %d of %s, payout %s", index, acc, payout)
	})
}

func (st *TestSequence) Pause() *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.staker.Pause(admin); err != nil {
			t.Fatalf("failed to pause: %v", err)
		}
	})
}

func (st *TestSequence) Unpause() *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.staker.Unpause(admin); err != nil {
			t.Fatalf("failed to unpause: %v", err)
		}
	})
}

// Reverts expects op to fail with a revert of kind.
func (st *TestSequence) Reverts(kind reverts.Kind, op func(s *Staker) error) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		err := op(st.staker.Staker)
		require.Error(t, err)
		assert.Equal(t, kind, reverts.KindOf(err), "unexpected error: %v", err)
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}

	t.Logf("All test functions executed successfully")
}

type StakeAssertions struct {
	staker *StakerTest
	acc    vault.Address
	index  uint64

	principal *big.Int
	claimed   *big.Int
	active    *bool
	expired   *bool
}

func AssertStake(staker *StakerTest, acc vault.Address, index uint64) *StakeAssertions {
	return &StakeAssertions{staker: staker, acc: acc, index: index}
}

func (sa *StakeAssertions) Principal(expected int64) *StakeAssertions {
	sa.principal = big.NewInt(expected)
	return sa
}

func (sa *StakeAssertions) Claimed(expected int64) *StakeAssertions {
	sa.claimed = big.NewInt(expected)
	return sa
}

func (sa *StakeAssertions) Active(expected bool) *StakeAssertions {
	sa.active = &expected
	return sa
}

func (sa *StakeAssertions) Expired(expected bool) *StakeAssertions {
	sa.expired = &expected
	return sa
}

func (sa *StakeAssertions) Assert(t *testing.T) {
	stake, err := sa.staker.GetStake(sa.acc, sa.index)
	require.NoError(t, err)

	if sa.principal != nil {
		assert.Equal(t, 0, sa.principal.Cmp(stake.Principal), "principal: expected %s, got %s", sa.principal, stake.Principal)
	}
	if sa.claimed != nil {
		assert.Equal(t, 0, sa.claimed.Cmp(stake.Claimed), "claimed: expected %s, got %s", sa.claimed, stake.Claimed)
	}
	if sa.active != nil {
		assert.Equal(t, *sa.active, stake.Active, "active")
	}
	if sa.expired != nil {
		assert.Equal(t, *sa.expired, stake.Expired, "expired")
	}
}
