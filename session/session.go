/*
 * skjaere session
 *
 * Copyright (c) 2022 Telenor Norge AS
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

/*
Package session owns the UDP socket used for all outbound SNMP traffic.

A single Session is shared by every query in the process. Requests get a
fresh request id and a slot in the pending registry; one reader goroutine
decodes everything arriving on the socket and hands each response to the
slot with the matching request id. Retries and timeouts are handled here,
so the state machines above only ever see a response or a timeout.
*/
package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/telenornms/skjaere"
)

const rxBufSize = 65535

type Session struct {
	conn    *net.UDPConn
	pending *registry
	decoder gosnmp.GoSNMP
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewSession binds the socket to laddr ("0.0.0.0:0" for any) and starts
// the reader.
func NewSession(laddr string) (*Session, error) {
	addr, err := net.ResolveUDPAddr("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve local address %s: %w", laddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("snmp listen: %w", err)
	}
	s := &Session{
		conn:    conn,
		pending: newRegistry(),
		done:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.readLoop()
	skjaere.Debugf("session bound to %s", conn.LocalAddr())
	return s, nil
}

// Finalize closes the socket. Outstanding requests complete with a
// transport error.
func (s *Session) Finalize() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
		s.wg.Wait()
		for _, sl := range s.pending.drain() {
			skjaere.Debugf("dropping pending request %d on close", sl.id)
		}
	})
}

// Pending returns the number of requests waiting for a response.
func (s *Session) Pending() int {
	return s.pending.len()
}

// LocalAddr is the address the socket is bound to.
func (s *Session) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// Send implements skjaere.Transport.
func (s *Session) Send(ctx context.Context, t skjaere.Target, p *gosnmp.SnmpPacket) (<-chan skjaere.Reply, error) {
	select {
	case <-s.done:
		return nil, skjaere.TransportErrorf("session closed")
	default:
	}
	addr, err := net.ResolveUDPAddr("udp", t.String())
	if err != nil {
		return nil, skjaere.TransportErrorf("unable to resolve %s: %w", t, err)
	}
	out := *p
	out.Variables = append([]gosnmp.SnmpPDU(nil), p.Variables...)
	out.Version = t.Version
	out.Community = t.Community

	sl := s.pending.add(addr.IP)
	out.RequestID = sl.id
	buf, err := out.MarshalMsg()
	if err != nil {
		s.pending.remove(sl.id)
		return nil, skjaere.ApplicationErrorf("unable to encode request for %s: %w", t, err)
	}
	reply := make(chan skjaere.Reply, 1)
	requestsSent.Inc()
	go s.await(ctx, t, sl, addr, buf, reply)
	return reply, nil
}

// await sends buf up to 1+t.Retries times and posts exactly one Reply.
// Every exit path leaves the slot out of the registry.
func (s *Session) await(ctx context.Context, t skjaere.Target, sl *slot, addr *net.UDPAddr, buf []byte, reply chan<- skjaere.Reply) {
	defer close(reply)
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = skjaere.Config.Timeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for attempt := 0; attempt <= t.Retries; attempt++ {
		if attempt > 0 {
			retriesSent.Inc()
			timer.Reset(timeout)
		}
		if _, err := s.conn.WriteToUDP(buf, addr); err != nil {
			s.pending.remove(sl.id)
			reply <- skjaere.Reply{Err: skjaere.TransportErrorf("send to %s failed: %w", t, err)}
			return
		}
		select {
		case pkt := <-sl.resp:
			responses.Inc()
			reply <- skjaere.Reply{Packet: pkt}
			return
		case <-timer.C:
			skjaere.Debugf("%s: request %d attempt %d timed out after %s", t, sl.id, attempt+1, timeout)
		case <-ctx.Done():
			s.pending.remove(sl.id)
			reply <- skjaere.Reply{Err: skjaere.TransportErrorf("request to %s aborted: %w", t, ctx.Err())}
			return
		case <-s.done:
			s.pending.remove(sl.id)
			reply <- skjaere.Reply{Err: skjaere.TransportErrorf("request to %s aborted: session closed", t)}
			return
		}
	}
	if !s.pending.remove(sl.id) {
		// The reader took the slot after the last timer fired, the
		// response is on its way.
		responses.Inc()
		reply <- skjaere.Reply{Packet: <-sl.resp}
		return
	}
	timeouts.Inc()
	reply <- skjaere.Reply{}
}

func (s *Session) readLoop() {
	defer s.wg.Done()
	buf := make([]byte, rxBufSize)
	for {
		n, from, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			skjaere.Logf("session read failed: %v", err)
			continue
		}
		pkt, err := s.decoder.SnmpDecodePacket(append([]byte(nil), buf[:n]...))
		if err != nil || pkt == nil {
			dropped.WithLabelValues("undecodable").Inc()
			skjaere.Debugf("undecodable datagram from %s: %v", from, err)
			continue
		}
		if pkt.PDUType != gosnmp.GetResponse {
			dropped.WithLabelValues("unexpected_pdu").Inc()
			skjaere.Debugf("ignoring %v from %s", pkt.PDUType, from)
			continue
		}
		sl, ok := s.pending.take(pkt.RequestID, from.IP)
		if !ok {
			dropped.WithLabelValues("unmatched").Inc()
			skjaere.Debugf("no pending request %d for response from %s", pkt.RequestID, from)
			continue
		}
		sl.resp <- pkt
	}
}
