// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import "github.com/vechain/stakevault/vault"

type RangeType string

const (
	Seq  RangeType = "seq"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive range. A To lower than From leaves the range open ended.
type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventFilter selects events. Names are OR-ed, other criteria are AND-ed.
type EventFilter struct {
	Names      []string
	Account    *vault.Address
	StakeIndex *uint64
	Range      *Range
	Options    *Options
	Order      Order // default asc
}

type TransferFilter struct {
	Sender    *vault.Address
	Recipient *vault.Address
	Range     *Range
	Options   *Options
	Order     Order // default asc
}
