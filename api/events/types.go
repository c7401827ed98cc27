// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakevault/event"
	"github.com/vechain/stakevault/eventdb"
	"github.com/vechain/stakevault/vault"
)

// sqlite integers are signed
const maxRangeValue = 1<<63 - 1

type Range struct {
	Unit string  `json:"unit"` // "seq" or "time"
	From *uint64 `json:"from,omitempty"`
	To   *uint64 `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	Names      []string       `json:"names,omitempty"`
	Account    *vault.Address `json:"account,omitempty"`
	StakeIndex *uint64        `json:"stakeIndex,omitempty"`
	Range      *Range         `json:"range,omitempty"`
	Options    *Options       `json:"options,omitempty"`
	Order      string         `json:"order,omitempty"`
}

type FilteredEvent struct {
	Seq          uint64                `json:"seq"`
	Time         uint64                `json:"time"`
	Name         string                `json:"name"`
	Account      vault.Address         `json:"account"`
	StakeIndex   uint64                `json:"stakeIndex"`
	Amount       *math.HexOrDecimal256 `json:"amount"`
	Reward       *math.HexOrDecimal256 `json:"reward"`
	Penalty      *math.HexOrDecimal256 `json:"penalty"`
	LockDuration uint64                `json:"lockDuration"`
	DailyRate    uint64                `json:"dailyRate"`
	PenaltyRate  uint64                `json:"penaltyRate"`
}

func amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

// ConvertEvent converts an event into its api form.
func ConvertEvent(ev *event.Event) *FilteredEvent {
	return &FilteredEvent{
		Seq:          ev.Seq,
		Time:         ev.Time,
		Name:         ev.Name,
		Account:      ev.Account,
		StakeIndex:   ev.StakeIndex,
		Amount:       amount(ev.Amount),
		Reward:       amount(ev.Reward),
		Penalty:      amount(ev.Penalty),
		LockDuration: ev.LockDuration,
		DailyRate:    ev.DailyRate,
		PenaltyRate:  ev.PenaltyRate,
	}
}

func convertRange(r *Range) (*eventdb.Range, error) {
	if r == nil {
		return nil, nil
	}
	var unit eventdb.RangeType
	switch r.Unit {
	case "", string(eventdb.Seq):
		unit = eventdb.Seq
	case string(eventdb.Time):
		unit = eventdb.Time
	default:
		return nil, fmt.Errorf("unknown range unit %q", r.Unit)
	}
	out := &eventdb.Range{Unit: unit, To: maxRangeValue}
	if r.From != nil {
		out.From = *r.From
	}
	if r.To != nil {
		out.To = *r.To
	}
	if out.From > maxRangeValue || out.To > maxRangeValue {
		return nil, fmt.Errorf("range exceeds the maximum allowed value of %d", uint64(maxRangeValue))
	}
	if out.From > out.To {
		return nil, errors.New("range.to must be greater than or equal to range.from")
	}
	return out, nil
}

func convertOrder(order string) (eventdb.Order, error) {
	switch order {
	case "", string(eventdb.ASC):
		return eventdb.ASC, nil
	case string(eventdb.DESC):
		return eventdb.DESC, nil
	default:
		return "", fmt.Errorf("unknown order %q", order)
	}
}

// ConvertEventFilter validates filter and converts it into the event db form.
func ConvertEventFilter(filter *EventFilter) (*eventdb.EventFilter, error) {
	for _, name := range filter.Names {
		if !event.IsKnown(name) {
			return nil, fmt.Errorf("unknown event name %q", name)
		}
	}
	r, err := convertRange(filter.Range)
	if err != nil {
		return nil, err
	}
	order, err := convertOrder(filter.Order)
	if err != nil {
		return nil, err
	}
	f := &eventdb.EventFilter{
		Names:      filter.Names,
		Account:    filter.Account,
		StakeIndex: filter.StakeIndex,
		Range:      r,
		Order:      order,
	}
	if filter.Options != nil {
		f.Options = &eventdb.Options{
			Offset: filter.Options.Offset,
			Limit:  filter.Options.Limit,
		}
	}
	return f, nil
}
