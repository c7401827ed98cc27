// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakevault/api/events"
	"github.com/vechain/stakevault/api/subscriptions"
	"github.com/vechain/stakevault/api/vault"
	"github.com/vechain/stakevault/eventdb"
	"github.com/vechain/stakevault/log"
	"github.com/vechain/stakevault/metrics"
	"github.com/vechain/stakevault/node"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	BacktraceLimit  uint64
	LogsLimit       uint64
	EnableReqLogger bool
	EnableMetrics   bool
	SoloMode        bool
}

// New return api router. eventDB may be nil, in which case event filtering is not served.
func New(n *node.Node, eventDB *eventdb.EventDB, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	vault.New(n, opts.SoloMode).
		Mount(router, "/vault", "/ledger")
	if eventDB != nil {
		events.New(eventDB, opts.LogsLimit).
			Mount(router, "/logs/event")
	}
	subs := subscriptions.New(n, origins, opts.BacktraceLimit)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Path("/metrics").
			Methods(http.MethodGet).
			Name("GET /metrics").
			Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
