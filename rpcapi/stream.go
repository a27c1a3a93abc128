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

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const streamPushInterval = time.Second

type transactionStreamEvent struct {
	ConnectionID string `json:"connection_id"`
	MempoolLen   int    `json:"mempool_len"`
	Nonce        uint64 `json:"nonce"`
}

// handleTransactionStream upgrades to a websocket and pushes a periodic
// snapshot of mempool size and current best nonce, so a local wallet/
// explorer UI can watch broadcast_transaction's effect on node state
// without polling. Each connection is tagged with a uuid for correlating
// log lines across reconnects; the connection is dropped as soon as the
// client closes it or a write fails.
func (s *Server) handleTransactionStream(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	connID := uuid.New().String()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			_, status, err := s.player.GetStatus()
			if err != nil {
				continue
			}
			event := transactionStreamEvent{
				ConnectionID: connID,
				MempoolLen:   s.player.Mempool.Len(),
				Nonce:        status.Nonce,
			}
			if err := conn.WriteJSON(event); err != nil {
				logger.Debug("websocket write failed", "connection_id", connID, "err", err)
				return
			}
		}
	}
}
