// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vechain/stakevault/co"
)

const syncBatchSize = 256

func (n *Node) indexLoop(ctx context.Context, waiter co.Waiter) {
	logger.Debug("enter index loop")
	defer logger.Debug("leave index loop")

	for {
		select {
		case <-ctx.Done():
			return
		case <-waiter.C():
			if err := n.Sync(ctx); err != nil {
				logger.Warn("failed to sync event db", "err", err)
			}
		}
	}
}

// Sync writes events and transfers not yet indexed into the event db.
func (n *Node) Sync(ctx context.Context) error {
	if n.eventDB == nil {
		return nil
	}
	n.syncMu.Lock()
	defer n.syncMu.Unlock()

	// resume from the index after restarts
	if n.nextEvent == 0 && n.nextTransfer == 0 {
		events, transfers, err := n.eventDB.NextSeq(ctx)
		if err != nil {
			return errors.Wrap(err, "event db next seq")
		}
		n.nextEvent, n.nextTransfer = events, transfers
	}

	for {
		events, err := n.EventsFrom(n.nextEvent, syncBatchSize)
		if err != nil {
			return err
		}
		transfers, err := n.transfersFrom(n.nextTransfer, syncBatchSize)
		if err != nil {
			return err
		}

		batch := n.eventDB.NewBatch().AddEvents(events...).AddTransfers(transfers...)
		if batch.Len() == 0 {
			return nil
		}
		if err := batch.Commit(); err != nil {
			return err
		}
		n.nextEvent += uint64(len(events))
		n.nextTransfer += uint64(len(transfers))
		logger.Debug("event db synced", "events", n.nextEvent, "transfers", n.nextTransfer)
	}
}
