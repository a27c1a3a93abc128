// Copyright 2024 The cauchy Authors
// This file is part of the cauchy library.
//
// The cauchy library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The cauchy library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the cauchy library. If not, see <http://www.gnu.org/licenses/>.

// Command cauchy runs one p2p probabilistic-consensus node: it accepts
// inbound peer connections, mines against the current site, and runs the
// heartbeat loop that samples peers and reconciles against the elected
// winner.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cauchy-team/cauchy/internal/config"
	"github.com/cauchy-team/cauchy/internal/log"
	"github.com/cauchy-team/cauchy/mining"
	"github.com/cauchy-team/cauchy/player"
	"github.com/cauchy-team/cauchy/rpcapi"
	"gopkg.in/urfave/cli.v1"
)

const clientIdentifier = "cauchy"

var gitCommit = "" // set via -ldflags at build time

var (
	bindFlag = cli.StringFlag{
		Name:  "bind",
		Usage: "peer listening address",
		Value: config.Default().Bind,
	}
	rpcBindFlag = cli.StringFlag{
		Name:  "rpc-bind",
		Usage: "management RPC listening address",
		Value: config.Default().RPCBind,
	}
	miningThreadsFlag = cli.IntFlag{
		Name:  "mining-threads",
		Usage: "mining worker pool size",
		Value: config.Default().MiningThreads,
	}
	radiusFlag = cli.IntFlag{
		Name:  "radius",
		Usage: "sketch capacity (oddsketch = 4*radius bytes, minisketch = 8*radius bytes)",
		Value: config.Default().Radius,
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "optional TOML configuration file",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = clientIdentifier
	app.Usage = "the cauchy p2p probabilistic-consensus node"
	app.Version = fmt.Sprintf("0.1.0-%s", gitCommit)
	app.Flags = []cli.Flag{bindFlag, rpcBindFlag, miningThreadsFlag, radiusFlag, configFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Crit("fatal error running cauchy", "err", err)
	}
}

func run(ctx *cli.Context) error {
	cfg := config.Default()
	if path := ctx.String(configFlag.Name); path != "" {
		if err := config.LoadFile(path, &cfg); err != nil {
			return fmt.Errorf("loading config file: %w", err)
		}
	}
	if ctx.IsSet(bindFlag.Name) {
		cfg.Bind = ctx.String(bindFlag.Name)
	}
	if ctx.IsSet(rpcBindFlag.Name) {
		cfg.RPCBind = ctx.String(rpcBindFlag.Name)
	}
	if ctx.IsSet(miningThreadsFlag.Name) {
		cfg.MiningThreads = ctx.Int(miningThreadsFlag.Name)
	}
	if ctx.IsSet(radiusFlag.Name) {
		cfg.Radius = ctx.Int(radiusFlag.Name)
	}

	coordinator := mining.NewCoordinator(cfg.MiningThreads)
	p := player.New(cfg.Radius, coordinator, player.NopVMFactory{})

	ln, err := net.Listen("tcp", cfg.Bind)
	if err != nil {
		return fmt.Errorf("binding peer listener: %w", err)
	}
	log.Info("listening for peers", "addr", ln.Addr())

	rpcServer := rpcapi.NewServer(p, rpcapi.Versions{
		Daemon:    "0.1.0",
		Consensus: "0.1.0",
		Network:   "0.1.0",
		RPC:       "0.1.0",
		Miner:     "0.1.0",
		Crypto:    "0.1.0",
	})
	httpServer := &http.Server{Addr: cfg.RPCBind, Handler: rpcServer.Handler()}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go p.BeginAcceptor(runCtx, ln)
	go p.BeginHeartbeat(runCtx, time.Duration(cfg.HeartbeatMS)*time.Millisecond, cfg.SampleSize)
	go func() {
		log.Info("listening for management RPC", "addr", cfg.RPCBind)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("rpc server stopped", "err", err)
		}
	}()

	// The genesis site is a fixed all-zero value until a real Merkle
	// accumulator collaborator supplies the executed-state root to mine
	// against.
	coordinator.NewSession(mining.Site{})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
