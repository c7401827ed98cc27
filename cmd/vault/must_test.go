// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := newLogHandler(&buf, 3, true, false)
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))

	slog.New(h).Info("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	verbose := newLogHandler(&buf, 5, false, false)
	assert.True(t, verbose.Enabled(context.Background(), slog.LevelDebug))
}

func TestStateCacheEntries(t *testing.T) {
	assert.Equal(t, 0, stateCacheEntries(0))
	assert.Equal(t, 2048, stateCacheEntries(1))
	assert.Equal(t, 512*2048, stateCacheEntries(512))
}

func TestDefaultVaultAddress(t *testing.T) {
	assert.False(t, defaultVaultAddress.IsZero())
	assert.Equal(t, vaultAddressFlag.Value, defaultVaultAddress.String())
}
