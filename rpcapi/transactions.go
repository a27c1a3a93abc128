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
	"encoding/json"
	"net/http"
	"time"

	"github.com/cauchy-team/cauchy/wire"
	"github.com/julienschmidt/httprouter"
)

type broadcastRequest struct {
	Timestamp uint64 `json:"timestamp"`
	Binary    []byte `json:"binary"`
	AuxData   []byte `json:"aux_data"`
}

func (s *Server) registerTransactionsRoutes() {
	s.router.POST("/v1/transactions", s.handleBroadcastTransaction)
	s.router.GET("/v1/transactions/stream", s.handleTransactionStream)
}

func (s *Server) handleBroadcastTransaction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tx := wire.Transaction{Timestamp: req.Timestamp, Binary: req.Binary, Aux: req.AuxData}
	if req.Timestamp == 0 {
		tx.Timestamp = uint64(time.Now().UnixMilli())
	}

	if err := s.player.BroadcastTransaction(tx); err != nil {
		// A VM failure does not roll back the mempool/snapshot update
		// (see player.BroadcastTransaction); it is still surfaced to
		// the RPC caller as a failed-precondition-shaped error.
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
