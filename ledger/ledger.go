// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements a minimal fungible asset ledger kept in the vault state.
package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakevault/event"
	"github.com/vechain/stakevault/log"
	"github.com/vechain/stakevault/staker/reverts"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/store"
	"github.com/vechain/stakevault/vault"
)

var (
	logger = log.WithContext("pkg", "ledger")

	// Address is the storage owner of the ledger.
	Address = vault.BytesToAddress([]byte("ledger"))

	slotBalances    = vault.BytesToBytes32([]byte("balances"))
	slotTotalSupply = vault.BytesToBytes32([]byte("total-supply"))
	slotTransfers   = vault.BytesToBytes32([]byte("transfers"))
)

// Ledger keeps balances and an append-only transfer log.
type Ledger struct {
	state       *state.State
	clock       vault.Clock
	balances    *store.Mapping[vault.Address, *big.Int]
	totalSupply *store.Uint256
	transfers   *store.Array[*event.Transfer]
}

// New create a ledger over state. clock stamps transfer records.
func New(state *state.State, clock vault.Clock) *Ledger {
	sctx := store.NewContext(Address, state)
	return &Ledger{
		state:       state,
		clock:       clock,
		balances:    store.NewMapping[vault.Address, *big.Int](sctx, slotBalances),
		totalSupply: store.NewUint256(sctx, slotTotalSupply),
		transfers:   store.NewArray[*event.Transfer](sctx, slotTransfers),
	}
}

// BalanceOf returns the balance of holder.
func (l *Ledger) BalanceOf(holder vault.Address) (*big.Int, error) {
	bal, err := l.balances.Get(holder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return bal, nil
}

func (l *Ledger) TotalSupply() (*big.Int, error) {
	supply, err := l.totalSupply.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get total supply")
	}
	return supply, nil
}

// TransferCount returns the number of transfer records.
func (l *Ledger) TransferCount() (uint64, error) {
	return l.transfers.Len()
}

// TransferAt returns the transfer record at seq.
func (l *Ledger) TransferAt(seq uint64) (*event.Transfer, error) {
	tr, ok, err := l.transfers.Get(seq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transfer")
	}
	if !ok {
		return nil, reverts.NewValidation("transfer %d out of range", seq)
	}
	return tr, nil
}

// Mint creates amount for to and commits.
func (l *Ledger) Mint(to vault.Address, amount *big.Int) error {
	return l.commit(func() error {
		if amount == nil || amount.Sign() <= 0 {
			return reverts.NewValidation("mint amount must be greater than zero")
		}
		bal, err := l.BalanceOf(to)
		if err != nil {
			return err
		}
		if err := l.balances.Set(to, bal.Add(bal, amount)); err != nil {
			return errors.Wrap(err, "failed to set balance")
		}
		if err := l.totalSupply.Add(amount); err != nil {
			return errors.Wrap(err, "failed to set total supply")
		}
		return l.record(vault.Address{}, to, amount)
	})
}

// Transfer moves amount between accounts and commits.
func (l *Ledger) Transfer(from, to vault.Address, amount *big.Int) error {
	return l.commit(func() error {
		return l.transfer(from, to, amount)
	})
}

func (l *Ledger) commit(op func() error) error {
	checkpoint := l.state.NewCheckpoint()
	if err := op(); err != nil {
		l.state.RevertTo(checkpoint)
		return err
	}
	if err := l.state.Commit(); err != nil {
		l.state.RevertTo(checkpoint)
		return errors.Wrap(err, "commit")
	}
	return nil
}

// transfer moves amount without committing, so it joins the enclosing checkpoint.
func (l *Ledger) transfer(from, to vault.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.NewValidation("transfer amount must be greater than zero")
	}
	fromBal, err := l.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return reverts.NewValidation("insufficient balance: need %s, have %s", amount, fromBal)
	}
	if err := l.balances.Set(from, fromBal.Sub(fromBal, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	toBal, err := l.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := l.balances.Set(to, toBal.Add(toBal, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	logger.Trace("transferred", "from", from, "to", to, "amount", amount)
	return l.record(from, to, amount)
}

func (l *Ledger) record(from, to vault.Address, amount *big.Int) error {
	seq, err := l.transfers.Len()
	if err != nil {
		return errors.Wrap(err, "failed to record transfer")
	}
	tr := &event.Transfer{
		Seq:       seq,
		Time:      l.clock.Now(),
		Sender:    from,
		Recipient: to,
		Amount:    new(big.Int).Set(amount),
	}
	if _, err := l.transfers.Push(tr); err != nil {
		return errors.Wrap(err, "failed to record transfer")
	}
	return nil
}
