// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
)

// maxClockOffset is the offset beyond which a warning is logged.
const maxClockOffset = 5 * time.Second

// NTPClock is the local wall clock corrected by the offset reported by an NTP server.
type NTPClock struct {
	server string
	query  func(host string) (time.Duration, error)
	offset atomic.Int64
}

func NewNTPClock(server string) *NTPClock {
	return &NTPClock{
		server: server,
		query: func(host string) (time.Duration, error) {
			resp, err := ntp.Query(host)
			if err != nil {
				return 0, err
			}
			return resp.ClockOffset, nil
		},
	}
}

func (c *NTPClock) Now() uint64 {
	return uint64(time.Now().Add(c.Offset()).Unix())
}

func (c *NTPClock) Offset() time.Duration {
	return time.Duration(c.offset.Load())
}

// Update queries the server once. The previous offset is kept on failure.
func (c *NTPClock) Update() error {
	offset, err := c.query(c.server)
	if err != nil {
		return err
	}
	c.offset.Store(int64(offset))
	if offset > maxClockOffset || offset < -maxClockOffset {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(offset))
	}
	return nil
}

// Run refreshes the offset every interval until ctx is canceled.
func (c *NTPClock) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := c.Update(); err != nil {
			logger.Debug("failed to access NTP", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
