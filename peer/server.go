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

package peer

import (
	"sync"

	"github.com/cauchy-team/cauchy/wire"
)

// server answers remotely-initiated requests (Poll, TransactionInv,
// Reconcile) by calling into the player, and forwards everything else
// (the response kinds) to the client half's responses channel.
type server struct {
	player Player

	perceptionMu sync.Mutex
	perception   []byte // nil when no Poll has been served yet
}

func newServer(player Player) *server {
	return &server{player: player}
}

// dispatch handles one inbound frame. It returns a non-nil reply when the
// message was a request that warrants one, and isResponse=true when the message
// was itself a response that the caller should push onto the client
// half's responses channel instead.
func (s *server) dispatch(msg wire.Message) (reply wire.Message, isResponse bool, err error) {
	switch m := msg.(type) {
	case wire.Status, wire.Transactions, wire.ReconcileResponse, wire.Transaction:
		return nil, true, nil

	case wire.Poll:
		minisketch, status, err := s.player.GetStatus()
		if err != nil {
			return nil, false, err
		}
		s.perceptionMu.Lock()
		s.perception = minisketch
		s.perceptionMu.Unlock()
		return status, false, nil

	case wire.TransactionInv:
		txs := s.player.GetTransactionsByFullID(m.IDs)
		return wire.Transactions{Txs: txs}, false, nil

	case wire.Reconcile:
		s.perceptionMu.Lock()
		perceived := s.perception
		s.perception = nil
		s.perceptionMu.Unlock()

		if perceived == nil {
			return nil, false, ErrUnexpectedReconcile
		}
		txs, err := s.player.ReconcileAgainst(perceived, m.Sketch)
		if err != nil {
			return nil, false, err
		}
		return wire.ReconcileResponse{Txs: txs}, false, nil

	default:
		return nil, false, wire.ErrUnexpectedType
	}
}
