// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/vechain/stakevault/vault"
)

// Gateway moves funds between accounts and a vault account.
// Transfers join the caller's state checkpoint and are committed with it.
type Gateway struct {
	ledger *Ledger
	vault  vault.Address
}

func NewGateway(ledger *Ledger, vaultAddr vault.Address) *Gateway {
	return &Gateway{ledger: ledger, vault: vaultAddr}
}

func (g *Gateway) Pull(from vault.Address, amount *big.Int) error {
	return g.ledger.transfer(from, g.vault, amount)
}

func (g *Gateway) Push(to vault.Address, amount *big.Int) error {
	return g.ledger.transfer(g.vault, to, amount)
}

func (g *Gateway) BalanceOf(holder vault.Address) (*big.Int, error) {
	return g.ledger.BalanceOf(holder)
}
