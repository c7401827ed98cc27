// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/elastic/gosigar"
	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakevault/eventdb"
	"github.com/vechain/stakevault/kv"
	"github.com/vechain/stakevault/log"
	"github.com/vechain/stakevault/metrics"
	"github.com/vechain/stakevault/vault"
)

var defaultVaultAddress = vault.BytesToAddress([]byte("stakevault"))

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func fatalf(format string, args ...any) {
	fatal(fmt.Sprintf(format, args...))
}

func newLogHandler(w io.Writer, verbosity int, jsonLogs bool, useColor bool) slog.Handler {
	level := ethlog.FromLegacyLevel(verbosity)
	if jsonLogs {
		return ethlog.JSONHandlerWithLevel(w, level)
	}
	return ethlog.NewTerminalHandlerWithLevel(w, level, useColor)
}

func initLogger(ctx *cli.Context) {
	fd := os.Stderr.Fd()
	useColor := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
	log.SetHandler(newLogHandler(os.Stderr, ctx.Int(verbosityFlag.Name), ctx.Bool(jsonLogsFlag.Name), useColor))
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func defaultDataDir() string {
	home := homeDir()
	if home == "" {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "org.vechain.stakevault")
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "org.vechain.stakevault")
	default:
		return filepath.Join(home, ".org.vechain.stakevault")
	}
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatalf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fatalf("create data dir [%v]: %v", dataDir, err)
	}
	return dataDir
}

// normalizeCacheSize limits the cache to half of the physical memory.
func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 64 {
		sizeMB = 64
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

// stateCacheEntries converts a cache budget into a number of cached slots.
func stateCacheEntries(cacheMB int) int {
	// about 512 bytes per slot with keys and bookkeeping
	return cacheMB * 1024 * 1024 / 512
}

func openMainDB(ctx *cli.Context, dataDir string, cacheMB int) *kv.LevelDB {
	dir := filepath.Join(dataDir, "main.db")
	db, err := kv.New(dir, kv.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: 64,
	})
	if err != nil {
		fatalf("open main database [%v]: %v", dir, err)
	}
	return db
}

func openMemMainDB() *kv.LevelDB {
	db, err := kv.NewMem()
	if err != nil {
		fatalf("open main database: %v", err)
	}
	return db
}

func openEventDB(dataDir string) *eventdb.EventDB {
	dir := filepath.Join(dataDir, "events.db")
	db, err := eventdb.New(dir)
	if err != nil {
		fatalf("open event database [%v]: %v", dir, err)
	}
	return db
}

func openMemEventDB() *eventdb.EventDB {
	db, err := eventdb.NewMem()
	if err != nil {
		fatalf("open event database: %v", err)
	}
	return db
}

func parseAddressFlag(ctx *cli.Context, flag cli.StringFlag) (vault.Address, bool) {
	s := ctx.String(flag.Name)
	if s == "" {
		return vault.Address{}, false
	}
	addr, err := vault.ParseAddress(s)
	if err != nil {
		fatalf("invalid -%s: %v", flag.Name, err)
	}
	return addr, true
}

func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestBodyLimit limits the body size to 200kb.
func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 200*1024)
		h.ServeHTTP(w, r)
	})
}

func listen(addr string) net.Listener {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatalf("listen [%v]: %v", addr, err)
	}
	return listener
}

func newAPIServer(ctx *cli.Context, handler http.Handler) *http.Server {
	if timeout := ctx.Uint64(apiTimeoutFlag.Name); timeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(timeout)*time.Millisecond)
	}
	handler = requestBodyLimit(handler)
	return &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
}

func newMetricsServer() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler())
	return &http.Server{Handler: mux, ReadHeaderTimeout: time.Second}
}

// handleExitSignal returns a context canceled on interrupt or termination.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func printStartupMessage(vaultAddr, admin vault.Address, dataDir, apiURL string, solo bool) {
	mode := "vault"
	if solo {
		mode = "solo"
	}
	fmt.Printf(`Starting %v
    Vault address  [ %v ]
    Admin          [ %v ]
    Instance dir   [ %v ]
    API portal     [ %v ]
`,
		mode,
		vaultAddr,
		admin,
		dataDir,
		apiURL)
}
