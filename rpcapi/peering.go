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
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cauchy-team/cauchy/arena"
	"github.com/cauchy-team/cauchy/peer"
	"github.com/cauchy-team/cauchy/wire"
	"github.com/julienschmidt/httprouter"
)

const dialTimeout = 5 * time.Second

type peerView struct {
	Address   string `json:"address"`
	StartTime int64  `json:"start_time_ms"`
}

type listPeersResponse struct {
	Peers []peerView `json:"peers"`
}

type pollResponse struct {
	Oddsketch []byte `json:"oddsketch"`
	Root      []byte `json:"root"`
	Nonce     uint64 `json:"nonce"`
}

type addressRequest struct {
	Address string `json:"address"`
}

func (s *Server) registerPeeringRoutes() {
	s.router.GET("/v1/peers", s.handleListPeers)
	s.router.POST("/v1/peers/poll", s.handlePollPeer)
	s.router.POST("/v1/peers/connect", s.handleConnectPeer)
	s.router.DELETE("/v1/peers/:addr", s.handleDisconnectPeer)
	s.router.POST("/v1/peers/:addr/ban", s.handleBanPeer)
}

func (s *Server) handleListPeers(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	metadata := arena.All(s.player.Arena, func(c *peer.Client) (peer.Metadata, error) {
		return c.GetMetadata(), nil
	})
	resp := listPeersResponse{Peers: make([]peerView, 0, len(metadata))}
	for addr, md := range metadata {
		resp.Peers = append(resp.Peers, peerView{Address: addr, StartTime: md.StartTime.UnixMilli()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePollPeer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	status, err := arena.Directed(s.player.Arena, req.Address, func(c *peer.Client) (wire.Status, error) {
		ctx, cancel := context.WithTimeout(r.Context(), dialTimeout)
		defer cancel()
		return c.PollStatus(ctx)
	})
	if err != nil {
		if errors.Is(err, arena.ErrMissing) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, pollResponse{Oddsketch: status.Oddsketch, Root: status.Root[:], Nonce: status.Nonce})
}

func (s *Server) handleConnectPeer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(r.Context(), "tcp", req.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.player.NewPeer(conn); err != nil {
		conn.Close()
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDisconnectPeer(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	s.player.RemovePeer(ps.ByName("addr"))
	writeJSON(w, http.StatusOK, nil)
}

// handleBanPeer is, as in the reference implementation, a stub: the core
// node does not implement ban-list persistence or enforcement. It drops
// the current connection (if any) and reports success.
func (s *Server) handleBanPeer(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	s.player.RemovePeer(ps.ByName("addr"))
	writeJSON(w, http.StatusOK, nil)
}
