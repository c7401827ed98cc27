// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakevault/api"
	"github.com/vechain/stakevault/eventdb"
	"github.com/vechain/stakevault/kv"
	"github.com/vechain/stakevault/ledger"
	"github.com/vechain/stakevault/log"
	"github.com/vechain/stakevault/metrics"
	"github.com/vechain/stakevault/node"
	"github.com/vechain/stakevault/staker"
	"github.com/vechain/stakevault/staker/reward"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/vault"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "vault")
)

const ntpInterval = 10 * time.Minute

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "StakeVault",
		Usage:     "Custodial staking vault with fixed rate rewards",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			persistFlag,
			cacheFlag,
			vaultAddressFlag,
			adminFlag,
			policiesFlag,
			gracePeriodFlag,
			maxRewardTimeFlag,
			ntpServerFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiBacktraceLimitFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			skipLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			verbosityFlag,
			jsonLogsFlag,
			soloFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitCtx := handleExitSignal()
	defer func() { logger.Info("exited") }()

	initLogger(ctx)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	logger.Debug("cache size(MB)", "size", cacheMB)

	var (
		mainDB   *kv.LevelDB
		eventDB  *eventdb.EventDB
		dataDir  = "Memory"
		skipLogs = ctx.Bool(skipLogsFlag.Name)
	)
	if ctx.Bool(persistFlag.Name) {
		dataDir = makeDataDir(ctx)
		mainDB = openMainDB(ctx, dataDir, cacheMB)
		if !skipLogs {
			eventDB = openEventDB(dataDir)
		}
	} else {
		mainDB = openMemMainDB()
		if !skipLogs {
			eventDB = openMemEventDB()
		}
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	if eventDB != nil {
		defer func() { logger.Info("closing event database..."); eventDB.Close() }()
	}

	vaultAddr, _ := parseAddressFlag(ctx, vaultAddressFlag)

	var clock vault.Clock = vault.SystemClock
	var ntpClock *node.NTPClock
	if server := ctx.String(ntpServerFlag.Name); server != "" {
		ntpClock = node.NewNTPClock(server)
		clock = ntpClock
	}

	n := node.New(state.New(mainDB, stateCacheEntries(cacheMB/2)), clock, node.Options{
		VaultAddress: vaultAddr,
		Calculator:   reward.New(ctx.Uint64(gracePeriodFlag.Name), ctx.Uint64(maxRewardTimeFlag.Name)),
		EventDB:      eventDB,
	})

	admin, err := setupAdmin(ctx, n)
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(exitCtx)

	if ntpClock != nil {
		group.Go(func() error {
			ntpClock.Run(groupCtx, ntpInterval)
			return nil
		})
	}
	group.Go(func() error {
		return n.Run(groupCtx)
	})

	handler, closeSubs := api.New(n, eventDB, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		BacktraceLimit:  ctx.Uint64(apiBacktraceLimitFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		SoloMode:        ctx.Bool(soloFlag.Name),
	})
	apiListener := listen(ctx.String(apiAddrFlag.Name))
	apiSrv := newAPIServer(ctx, handler)
	serve(group, groupCtx, "API", apiSrv, apiListener, closeSubs)

	if ctx.Bool(enableMetricsFlag.Name) {
		metricsListener := listen(ctx.String(metricsAddrFlag.Name))
		serve(group, groupCtx, "metrics", newMetricsServer(), metricsListener, nil)
	}

	printStartupMessage(vaultAddr, admin, dataDir, "http://"+apiListener.Addr().String()+"/", ctx.Bool(soloFlag.Name))

	return group.Wait()
}

// serve runs srv in group until ctx is done.
func serve(group *errgroup.Group, ctx context.Context, name string, srv *http.Server, listener net.Listener, onClose func()) {
	group.Go(func() error {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			return errors.Wrapf(err, "%s server", name)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info(fmt.Sprintf("stopping %s server...", name))
		if onClose != nil {
			onClose()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// setupAdmin initializes the admin on first start and applies the configured lock policies.
func setupAdmin(ctx *cli.Context, n *node.Node) (vault.Address, error) {
	var current vault.Address
	if err := n.Read(func(s *staker.Staker, _ *ledger.Ledger, _ uint64) (err error) {
		current, err = s.Admin()
		return
	}); err != nil {
		return vault.Address{}, err
	}

	flagAdmin, ok := parseAddressFlag(ctx, adminFlag)
	if current.IsZero() {
		if !ok {
			return vault.Address{}, errors.Errorf("-%s required to initialize the vault", adminFlag.Name)
		}
		if err := n.Initialize(flagAdmin); err != nil {
			return vault.Address{}, errors.WithMessage(err, "initialize")
		}
		current = flagAdmin
	} else if ok && flagAdmin != current {
		logger.Warn("admin already initialized, flag ignored", "admin", current, "flag", flagAdmin)
	}

	if path := strings.TrimSpace(ctx.String(policiesFlag.Name)); path != "" {
		policies, err := loadPolicies(path)
		if err != nil {
			return vault.Address{}, err
		}
		changed, err := applyPolicies(n, current, policies)
		if err != nil {
			return vault.Address{}, err
		}
		logger.Info("lock policies applied", "total", len(policies), "changed", changed)
	}
	return current, nil
}
