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
	"sync"

	"github.com/cauchy-team/cauchy/wire"
)

// Client is the locally-facing half of a peer connection: it issues
// Poll/Reconcile requests and pairs their responses in FIFO order, and
// caches the peer's metadata and last-seen status.
type Client struct {
	metadata Metadata

	requests  chan wire.Message
	responses chan wire.Message

	statusMu   sync.RWMutex
	lastStatus *wire.Status

	connCtx context.Context
	cancel  context.CancelFunc
}

func newClient(metadata Metadata, requests chan wire.Message, responses chan wire.Message, connCtx context.Context, cancel context.CancelFunc) *Client {
	return &Client{
		metadata:  metadata,
		requests:  requests,
		responses: responses,
		connCtx:   connCtx,
		cancel:    cancel,
	}
}

// GetMetadata returns the peer's immutable metadata.
func (c *Client) GetMetadata() Metadata { return c.metadata }

// Done returns a channel that closes once this peer's connection has
// terminated, whether by an explicit Close, an I/O or decode error on the
// server half, or the remote end hanging up. Callers (e.g. the player's
// new-peer handler) use this to learn a connection has died without
// polling the peer.
func (c *Client) Done() <-chan struct{} { return c.connCtx.Done() }

// Closed reports whether this peer's connection has already terminated.
func (c *Client) Closed() bool {
	select {
	case <-c.connCtx.Done():
		return true
	default:
		return false
	}
}

// GetStatus returns the cached last-seen status, or ErrMissingStatus if
// this peer has never been successfully polled.
func (c *Client) GetStatus() (wire.Status, error) {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	if c.lastStatus == nil {
		return wire.Status{}, ErrMissingStatus
	}
	return *c.lastStatus, nil
}

// PollStatus sends Poll and awaits the paired Status response, updating
// the cached last_status on success.
func (c *Client) PollStatus(ctx context.Context) (wire.Status, error) {
	resp, err := c.roundTrip(ctx, wire.Poll{})
	if err != nil {
		return wire.Status{}, err
	}
	status, ok := resp.(wire.Status)
	if !ok {
		return wire.Status{}, ErrUnexpectedResponse
	}
	c.statusMu.Lock()
	c.lastStatus = &status
	c.statusMu.Unlock()
	return status, nil
}

// Reconcile sends Reconcile(sketch) and awaits the transactions it
// uncovers. The responder may reply with either ReconcileResponse or
// Transactions; both carry the same shape.
func (c *Client) Reconcile(ctx context.Context, sketch []byte) ([]wire.Transaction, error) {
	resp, err := c.roundTrip(ctx, wire.Reconcile{Sketch: sketch})
	if err != nil {
		return nil, err
	}
	switch m := resp.(type) {
	case wire.ReconcileResponse:
		return m.Txs, nil
	case wire.Transactions:
		return m.Txs, nil
	default:
		return nil, ErrUnexpectedResponse
	}
}

// roundTrip sends a request and waits for its paired response, honoring
// ctx cancellation and connection closure.
func (c *Client) roundTrip(ctx context.Context, req wire.Message) (wire.Message, error) {
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.connCtx.Done():
		return nil, ErrClosed
	}

	select {
	case resp, ok := <-c.responses:
		if !ok {
			return nil, ErrClosed
		}
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.connCtx.Done():
		return nil, ErrClosed
	}
}

// Close cancels the peer's server half and stops accepting new requests.
// Per §4.2, dropping the client half must synchronously signal
// cancellation of the server half.
func (c *Client) Close() {
	c.cancel()
}
