/*
 * skjaere gosnmp handler transport
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

package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"
	"github.com/telenornms/skjaere"
)

// HandlerTransport is a Transport that gives every request its own
// gosnmp.Handler (and thus its own socket), leaving retries and request id
// matching to gosnmp. It is slower than a shared Session but useful when
// talking to agents that insist on replying from another address than the
// one queried.
type HandlerTransport struct {
	// Dial returns a configured, unconnected handler for the target.
	Dial func(t skjaere.Target) gosnmp.Handler
}

func NewHandlerTransport() *HandlerTransport {
	return &HandlerTransport{Dial: newHandler}
}

func newHandler(t skjaere.Target) gosnmp.Handler {
	gs := gosnmp.NewHandler()
	gs.SetTarget(t.Address)
	gs.SetPort(t.Port)
	gs.SetCommunity(t.Community)
	gs.SetVersion(t.Version)
	gs.SetTimeout(t.Timeout)
	gs.SetRetries(t.Retries)
	gs.SetMaxOids(gosnmp.MaxOids)
	return gs
}

// Send implements skjaere.Transport.
func (h *HandlerTransport) Send(ctx context.Context, t skjaere.Target, p *gosnmp.SnmpPacket) (<-chan skjaere.Reply, error) {
	if len(p.Variables) == 0 {
		return nil, skjaere.ApplicationErrorf("refusing to send %v with 0 variables", p.PDUType)
	}
	reply := make(chan skjaere.Reply, 1)
	requestsSent.Inc()
	pendingGauge.Inc()
	go func() {
		defer close(reply)
		defer pendingGauge.Dec()
		r := h.do(t, p)
		select {
		case <-ctx.Done():
			reply <- skjaere.Reply{Err: skjaere.TransportErrorf("request to %s aborted: %w", t, ctx.Err())}
		default:
			reply <- r
		}
	}()
	return reply, nil
}

func (h *HandlerTransport) do(t skjaere.Target, p *gosnmp.SnmpPacket) skjaere.Reply {
	gs := h.Dial(t)
	if err := gs.Connect(); err != nil {
		return skjaere.Reply{Err: skjaere.TransportErrorf("snmp connect: %w", err)}
	}
	defer gs.Close()

	names := make([]string, 0, len(p.Variables))
	for _, v := range p.Variables {
		names = append(names, v.Name)
	}
	var result *gosnmp.SnmpPacket
	var err error
	switch p.PDUType {
	case gosnmp.GetRequest:
		result, err = gs.Get(names)
	case gosnmp.GetNextRequest:
		result, err = gs.GetNext(names)
	case gosnmp.GetBulkRequest:
		result, err = gs.GetBulk(names, p.NonRepeaters, p.MaxRepetitions)
	case gosnmp.SetRequest:
		result, err = gs.Set(p.Variables)
	default:
		return skjaere.Reply{Err: skjaere.ApplicationErrorf("unsupported pdu type %v", p.PDUType)}
	}
	if err != nil {
		if isTimeout(err) {
			timeouts.Inc()
			return skjaere.Reply{}
		}
		return skjaere.Reply{Err: skjaere.TransportErrorf("%v to %s failed: %w", p.PDUType, t, err)}
	}
	responses.Inc()
	return skjaere.Reply{Packet: result}
}

// gosnmp reports timeouts as plain fmt errors.
func isTimeout(err error) bool {
	return strings.Contains(strings.ToLower(fmt.Sprint(err)), "timeout")
}
