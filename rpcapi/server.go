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

// Package rpcapi exposes the node's player/arena operations over HTTP, as
// thin adapters with no business logic of their own: info, peering,
// mining and transactions, matching the four management-RPC services of
// the node's external interface.
package rpcapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cauchy-team/cauchy/internal/log"
	"github.com/cauchy-team/cauchy/player"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

var logger = log.New("pkg", "rpcapi")

// Versions reports the version strings the info service advertises.
type Versions struct {
	Daemon    string
	Consensus string
	Network   string
	RPC       string
	Miner     string
	Crypto    string
}

// Server wires httprouter routes for the four thin RPC services over one
// Player, and wraps them with a permissive CORS policy matching a node
// meant to be polled by a local wallet/explorer UI.
type Server struct {
	player    *player.Player
	versions  Versions
	startTime time.Time
	router    *httprouter.Router
}

// NewServer builds a Server with all routes registered.
func NewServer(p *player.Player, versions Versions) *Server {
	s := &Server{
		player:    p,
		versions:  versions,
		startTime: time.Now(),
		router:    httprouter.New(),
	}
	s.registerInfoRoutes()
	s.registerPeeringRoutes()
	s.registerMiningRoutes()
	s.registerTransactionsRoutes()
	return s
}

// Handler returns the CORS-wrapped http.Handler to bind a listener to.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"*"},
	}).Handler(s.router)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed encoding response", "err", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
