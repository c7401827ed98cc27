// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakevault/staker/reverts"
	"github.com/vechain/stakevault/store"
	"github.com/vechain/stakevault/vault"
)

var (
	slotBalance        = vault.BytesToBytes32([]byte("reward-pool"))
	slotTotalFunded    = vault.BytesToBytes32([]byte("reward-pool-funded"))
	slotTotalPenalties = vault.BytesToBytes32([]byte("reward-pool-penalties"))
	slotTotalPaid      = vault.BytesToBytes32([]byte("reward-pool-paid"))
	slotTotalWithdrawn = vault.BytesToBytes32([]byte("reward-pool-withdrawn"))
)

// Totals are the cumulative flows of the reward pool.
// Balance = TotalFunded + TotalPenalties - TotalPaid.
type Totals struct {
	TotalFunded    *big.Int
	TotalPenalties *big.Int
	TotalPaid      *big.Int
	TotalWithdrawn *big.Int
}

// Service is the reward pool accountant.
// The pool never holds principal.
type Service struct {
	balance        *store.Uint256
	totalFunded    *store.Uint256
	totalPenalties *store.Uint256
	totalPaid      *store.Uint256
	totalWithdrawn *store.Uint256
}

func New(sctx *store.Context) *Service {
	return &Service{
		balance:        store.NewUint256(sctx, slotBalance),
		totalFunded:    store.NewUint256(sctx, slotTotalFunded),
		totalPenalties: store.NewUint256(sctx, slotTotalPenalties),
		totalPaid:      store.NewUint256(sctx, slotTotalPaid),
		totalWithdrawn: store.NewUint256(sctx, slotTotalWithdrawn),
	}
}

// Balance returns the current pool.
func (s *Service) Balance() (*big.Int, error) {
	balance, err := s.balance.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward pool")
	}
	return balance, nil
}

// Fund increases the pool by an amount transferred in by the admin.
func (s *Service) Fund(amount *big.Int) error {
	if amount.Sign() <= 0 {
		return reverts.NewValidation("fund amount must be greater than zero")
	}
	if err := s.balance.Add(amount); err != nil {
		return errors.Wrap(err, "failed to fund reward pool")
	}
	return errors.Wrap(s.totalFunded.Add(amount), "failed to fund reward pool")
}

// CreditPenalty increases the pool unconditionally.
func (s *Service) CreditPenalty(amount *big.Int) error {
	if err := s.balance.Add(amount); err != nil {
		return errors.Wrap(err, "failed to credit penalty")
	}
	return errors.Wrap(s.totalPenalties.Add(amount), "failed to credit penalty")
}

// Pay debits a reward from the pool. A reward larger than the pool is a solvency revert.
func (s *Service) Pay(reward *big.Int) error {
	balance, err := s.Balance()
	if err != nil {
		return err
	}
	if reward.Cmp(balance) > 0 {
		return reverts.NewSolvency("insufficient reward pool: need %s, have %s", reward, balance)
	}
	if err := s.balance.Sub(reward); err != nil {
		return errors.Wrap(err, "failed to pay reward")
	}
	return errors.Wrap(s.totalPaid.Add(reward), "failed to pay reward")
}

// Withdraw records an excess withdrawal. The pool itself is not touched.
func (s *Service) Withdraw(amount *big.Int) error {
	return errors.Wrap(s.totalWithdrawn.Add(amount), "failed to record excess withdrawal")
}

// Excess returns holdings - principal - pool. A non-positive result means there is nothing to withdraw.
// Principal is deducted on purpose so an excess withdrawal can never take staked funds.
func (s *Service) Excess(holdings, principal *big.Int) (*big.Int, error) {
	balance, err := s.Balance()
	if err != nil {
		return nil, err
	}
	excess := new(big.Int).Sub(holdings, principal)
	return excess.Sub(excess, balance), nil
}

// Totals returns the cumulative flows.
func (s *Service) Totals() (*Totals, error) {
	var (
		totals Totals
		err    error
	)
	if totals.TotalFunded, err = s.totalFunded.Get(); err != nil {
		return nil, errors.Wrap(err, "failed to get pool totals")
	}
	if totals.TotalPenalties, err = s.totalPenalties.Get(); err != nil {
		return nil, errors.Wrap(err, "failed to get pool totals")
	}
	if totals.TotalPaid, err = s.totalPaid.Get(); err != nil {
		return nil, errors.Wrap(err, "failed to get pool totals")
	}
	if totals.TotalWithdrawn, err = s.totalWithdrawn.Get(); err != nil {
		return nil, errors.Wrap(err, "failed to get pool totals")
	}
	return &totals, nil
}
