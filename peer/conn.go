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
	"context"
	"net"
	"time"

	"github.com/cauchy-team/cauchy/internal/log"
	"github.com/cauchy-team/cauchy/wire"
)

var logger = log.New("pkg", "peer")

// Peer owns one framed bidirectional socket and runs the read/write loops
// that back its Client and server halves.
type Peer struct {
	Client *Client

	conn   net.Conn
	server *server

	requests      chan wire.Message
	responses     chan wire.Message
	serverReplies chan wire.Message

	ctx    context.Context
	cancel context.CancelFunc
}

// New wraps an established connection as a Peer, starting its read and
// write loops. player answers the remotely-initiated request kinds.
func New(conn net.Conn, player Player) *Peer {
	ctx, cancelCtx := context.WithCancel(context.Background())
	p := &Peer{
		conn:          conn,
		server:        newServer(player),
		requests:      make(chan wire.Message, BufferSize),
		responses:     make(chan wire.Message, BufferSize),
		serverReplies: make(chan wire.Message, BufferSize),
		ctx:           ctx,
	}
	p.cancel = func() {
		cancelCtx()
		conn.Close()
	}

	metadata := Metadata{StartTime: time.Now(), Addr: conn.RemoteAddr()}
	p.Client = newClient(metadata, p.requests, p.responses, ctx, p.cancel)

	go p.readLoop()
	go p.writeLoop()
	return p
}

// Close terminates the connection; equivalent to dropping the client half.
func (p *Peer) Close() { p.Client.Close() }

func (p *Peer) readLoop() {
	defer p.cancel()

	dec := wire.NewDecoder()
	buf := make([]byte, 64*1024)
	for {
		for {
			msg, ok, err := dec.Next()
			if err != nil {
				logger.Debug("decode error, terminating peer", "err", err)
				return
			}
			if !ok {
				break
			}
			if !p.handle(msg) {
				return
			}
		}

		n, err := p.conn.Read(buf)
		if err != nil {
			return
		}
		dec.Feed(buf[:n])
	}
}

// handle routes one decoded frame. It returns false when the peer should
// terminate.
func (p *Peer) handle(msg wire.Message) bool {
	reply, isResponse, err := p.server.dispatch(msg)
	if isResponse {
		select {
		case p.responses <- msg:
		case <-p.ctx.Done():
			return false
		}
		return true
	}
	if err != nil {
		logger.Debug("protocol error handling message", "kind", msg.Kind(), "err", err)
		// Protocol errors (e.g. UnexpectedReconcile) terminate only the
		// exchange, not the peer, except for unknown tags which are fatal.
		if err == wire.ErrUnexpectedType {
			return false
		}
		return true
	}
	if reply == nil {
		return true
	}
	select {
	case p.serverReplies <- reply:
	case <-p.ctx.Done():
		return false
	}
	return true
}

func (p *Peer) writeLoop() {
	defer p.cancel()

	for {
		var msg wire.Message
		select {
		case msg = <-p.requests:
		case msg = <-p.serverReplies:
		case <-p.ctx.Done():
			return
		}

		raw, err := wire.Encode(nil, msg)
		if err != nil {
			logger.Debug("encode error, terminating peer", "err", err)
			return
		}
		if _, err := p.conn.Write(raw); err != nil {
			return
		}
	}
}
