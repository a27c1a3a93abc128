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

package player

import (
	"context"
	"net"
)

// BeginAcceptor runs ln.Accept in a loop, handing every accepted
// connection to NewPeer, until ctx is cancelled or Accept returns an error.
// Cancellation closes the listener so the blocked Accept call returns
// promptly.
func (p *Player) BeginAcceptor(ctx context.Context, ln net.Listener) {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.Warn("accept failed", "err", err)
				return
			}
		}
		if err := p.NewPeer(conn); err != nil {
			logger.Debug("rejecting inbound peer", "addr", conn.RemoteAddr(), "err", err)
			conn.Close()
		}
	}
}
