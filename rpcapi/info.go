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

package rpcapi

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

// versionResponse mirrors the six version fields the info service has
// always reported (daemon, consensus, network, rpc, miner, crypto).
type versionResponse struct {
	DaemonVersion    string `json:"daemon_version"`
	ConsensusVersion string `json:"consensus_version"`
	NetworkVersion   string `json:"network_version"`
	RPCVersion       string `json:"rpc_version"`
	MinerVersion     string `json:"miner_version"`
	CryptoVersion    string `json:"crypto_version"`
}

type uptimeResponse struct {
	UptimeMillis int64 `json:"uptime_ms"`
}

func (s *Server) registerInfoRoutes() {
	s.router.GET("/v1/info/version", s.handleVersion)
	s.router.GET("/v1/info/uptime", s.handleUptime)
	s.router.GET("/v1/info/ping", s.handlePing)
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, versionResponse{
		DaemonVersion:    s.versions.Daemon,
		ConsensusVersion: s.versions.Consensus,
		NetworkVersion:   s.versions.Network,
		RPCVersion:       s.versions.RPC,
		MinerVersion:     s.versions.Miner,
		CryptoVersion:    s.versions.Crypto,
	})
}

func (s *Server) handleUptime(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, uptimeResponse{
		UptimeMillis: time.Since(s.startTime).Milliseconds(),
	})
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, nil)
}
