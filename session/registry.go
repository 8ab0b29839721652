/*
 * skjaere session registry
 *
 * Copyright (c) 2026 Telenor Norge AS
 * Author(s):
 *  - Kristian Lyngstøl <kly@kly.no>
 *
 * This library is free software; you can redistribute it and/or
 * modify it under the terms of the GNU Lesser General Public
 * License as published by the Free Software Foundation; either
 * version 2.1 of the License, or (at your option) any later version.
 *
 * This library is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public
 * License along with this library; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
 * 02110-1301  USA
 */

package session

import (
	"net"
	"sync"

	"github.com/gosnmp/gosnmp"
)

// slot is one outstanding request. resp is buffered so the reader never
// blocks on a requester that has already given up.
type slot struct {
	id   uint32
	peer net.IP
	resp chan *gosnmp.SnmpPacket
}

// registry maps request ids to outstanding requests. A slot leaves the
// registry exactly once: either the reader takes it to deliver a response,
// or the requester removes it on timeout/cancel. Whoever removes it owns
// it, which is what guarantees at most one completion per request.
type registry struct {
	mu    sync.Mutex
	next  uint32
	slots map[uint32]*slot
}

func newRegistry() *registry {
	return &registry{slots: make(map[uint32]*slot)}
}

// add registers a new slot under a fresh request id. Ids stay within
// 1..2^31-1 since the request-id is a signed INTEGER on the wire.
func (r *registry) add(peer net.IP) *slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		r.next = (r.next + 1) & 0x7fffffff
		if r.next == 0 {
			continue
		}
		if _, busy := r.slots[r.next]; !busy {
			break
		}
	}
	s := &slot{id: r.next, peer: peer, resp: make(chan *gosnmp.SnmpPacket, 1)}
	r.slots[s.id] = s
	pendingGauge.Inc()
	return s
}

// take removes and returns the slot for id if the response came from the
// peer the request was sent to.
func (r *registry) take(id uint32, from net.IP) (*slot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, false
	}
	if s.peer != nil && from != nil && !s.peer.Equal(from) {
		return nil, false
	}
	delete(r.slots, id)
	pendingGauge.Dec()
	return s, true
}

// remove drops the slot if it is still there. Reports whether it was.
func (r *registry) remove(id uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[id]; !ok {
		return false
	}
	delete(r.slots, id)
	pendingGauge.Dec()
	return true
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

// drain removes everything, used on close.
func (r *registry) drain() []*slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*slot, 0, len(r.slots))
	for id, s := range r.slots {
		out = append(out, s)
		delete(r.slots, id)
		pendingGauge.Dec()
	}
	return out
}
