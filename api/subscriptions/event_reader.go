// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/vechain/stakevault/api/events"
	"github.com/vechain/stakevault/event"
	"github.com/vechain/stakevault/vault"
)

const readBatchSize = 100

// EventFilter selects the events pushed to a subscriber. Empty criteria match everything.
type EventFilter struct {
	Name    string
	Account *vault.Address
}

func (f *EventFilter) Match(ev *event.Event) bool {
	if f.Name != "" && f.Name != ev.Name {
		return false
	}
	if f.Account != nil && *f.Account != ev.Account {
		return false
	}
	return true
}

type eventSource interface {
	EventsFrom(seq uint64, limit int) ([]*event.Event, error)
}

type eventReader struct {
	source eventSource
	next   uint64
	filter *EventFilter
}

func newEventReader(source eventSource, position uint64, filter *EventFilter) *eventReader {
	return &eventReader{
		source: source,
		next:   position,
		filter: filter,
	}
}

// Read returns the matched events since the last read. ok is false when nothing new was committed.
func (er *eventReader) Read() ([]any, bool, error) {
	evs, err := er.source.EventsFrom(er.next, readBatchSize)
	if err != nil {
		return nil, false, err
	}
	var msgs []any
	for _, ev := range evs {
		if er.filter.Match(ev) {
			msgs = append(msgs, events.ConvertEvent(ev))
		}
	}
	er.next += uint64(len(evs))
	return msgs, len(evs) > 0, nil
}
