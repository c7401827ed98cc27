// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package store provides typed storage slots on top of state, in the manner of solidity state variables.
package store

import (
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/vault"
)

// Context binds an owner address to the state its slots live in.
type Context struct {
	address vault.Address
	state   *state.State
}

func NewContext(address vault.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() vault.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
