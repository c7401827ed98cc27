// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"sync"
	"time"
)

// Clock supplies the current time in unix seconds.
type Clock interface {
	Now() uint64
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() uint64

func (f ClockFunc) Now() uint64 { return f() }

// SystemClock reads the local wall clock.
var SystemClock Clock = ClockFunc(func() uint64 {
	return uint64(time.Now().Unix())
})

// MonotonicClock never returns a reading lower than the previous one.
type MonotonicClock struct {
	src  Clock
	mu   sync.Mutex
	last uint64
}

// NewMonotonicClock wraps src.
func NewMonotonicClock(src Clock) *MonotonicClock {
	return &MonotonicClock{src: src}
}

func (c *MonotonicClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now := c.src.Now(); now > c.last {
		c.last = now
	}
	return c.last
}
