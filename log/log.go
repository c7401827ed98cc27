// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides package loggers that follow changes of the output handler.
//
// Loggers derived from the go-ethereum root logger capture its handler when created.
// Package level loggers are created before the command line is parsed, so the root
// logger installed here forwards to a handler that can be replaced at any time.
package log

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"

	ethlog "github.com/ethereum/go-ethereum/log"
)

type Logger = ethlog.Logger

var current atomic.Pointer[slog.Handler]

func init() {
	SetHandler(ethlog.DiscardHandler())
	ethlog.SetDefault(ethlog.NewLogger(&swapHandler{}))
}

// SetHandler replaces the handler of every logger created by WithContext or Root.
func SetHandler(h slog.Handler) {
	current.Store(&h)
}

// Root returns the root logger.
func Root() Logger {
	return ethlog.Root()
}

// WithContext returns a logger with ctx attached to every record.
func WithContext(ctx ...any) Logger {
	return ethlog.Root().With(ctx...)
}

// swapHandler forwards records to the current handler.
type swapHandler struct {
	attrs []slog.Attr
}

func (h *swapHandler) inner() slog.Handler {
	inner := *current.Load()
	if len(h.attrs) > 0 {
		inner = inner.WithAttrs(h.attrs)
	}
	return inner
}

func (h *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return (*current.Load()).Enabled(ctx, level)
}

func (h *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner().Handle(ctx, r)
}

func (h *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &swapHandler{attrs: append(slices.Clone(h.attrs), attrs...)}
}

// WithGroup is not supported, groups are flattened.
func (h *swapHandler) WithGroup(string) slog.Handler {
	return h
}
