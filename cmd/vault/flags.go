// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakevault/vault"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for vault databases",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "save vault data to disk (default to memory)",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Usage: "megabytes of ram allocated to internal caching",
		Value: 512,
	}
	vaultAddressFlag = cli.StringFlag{
		Name:  "vault-address",
		Usage: "address the vault holds its assets under",
		Value: defaultVaultAddress.String(),
	}
	adminFlag = cli.StringFlag{
		Name:  "admin",
		Usage: "admin address, required on first start",
	}
	policiesFlag = cli.StringFlag{
		Name:  "policies",
		Usage: "path to a YAML file of lock policies, applied on start by the admin",
	}
	gracePeriodFlag = cli.Uint64Flag{
		Name:  "grace-period",
		Value: vault.GracePeriod,
		Usage: "seconds after unlock during which rewards can still be claimed",
	}
	maxRewardTimeFlag = cli.Uint64Flag{
		Name:  "max-reward-time",
		Value: vault.MaxRewardTime,
		Usage: "cap of the elapsed seconds accruing reward",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Usage: "NTP server used to correct the local clock (disabled if empty)",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8680",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiBacktraceLimitFlag = cli.Uint64Flag{
		Name:  "api-backtrace-limit",
		Value: 1000,
		Usage: "limit the distance between 'pos' and the latest event for subscriptions",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of events returned by /logs API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	skipLogsFlag = cli.BoolFlag{
		Name:  "skip-logs",
		Usage: "skip indexing events (/logs API will be disabled)",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	soloFlag = cli.BoolFlag{
		Name:  "solo",
		Usage: "development mode, serves vault operations for any caller and the ledger faucet",
	}
)
