/*
 * skjaere common types
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

package skjaere

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/telenornms/skjaere/oid"
)

// DefaultPort is the SNMP agent port
const DefaultPort = 161

// Node is a rendered SMI node, e.g.: the result of a lookup. Usually
// handled by the smierte sub-package, but needs to be defined up here to
// avoid circular dependencies
type Node struct {
	Key       string // original input key, kept for posterity
	Name      string
	Numeric   string // the object itself, no instance suffix
	Qualified string // Numeric plus whatever instance suffix was asked for
	Lookedup  bool   // true if the key was symbolic and had to be resolved
}

// Target is everything needed to talk to one agent. A Target is built per
// logical query and never shared or modified afterwards.
type Target struct {
	Address   string
	Port      uint16
	Community string
	Version   gosnmp.SnmpVersion
	Retries   int           // resends after the first attempt
	Timeout   time.Duration // per attempt
}

// NewTarget builds a v2c target, filling in defaults from Config for
// zero-valued port and community.
func NewTarget(address string, port uint16, community string) Target {
	if port == 0 {
		port = DefaultPort
	}
	if community == "" {
		community = Config.DefaultCommunity
	}
	return Target{
		Address:   address,
		Port:      port,
		Community: community,
		Version:   gosnmp.Version2c,
		Retries:   Config.Retries,
		Timeout:   Config.Timeout,
	}
}

func (t Target) String() string {
	return net.JoinHostPort(t.Address, strconv.Itoa(int(t.Port)))
}

// Binding is one variable binding from a response, with the name parsed.
type Binding struct {
	OID oid.OID
	PDU gosnmp.SnmpPDU
}

// Reply is what a Transport delivers for a request. A nil Packet with a
// nil Err means the request timed out after all retries.
type Reply struct {
	Packet *gosnmp.SnmpPacket
	Err    error
}

// TimedOut reports whether the reply is the no-response sentinel.
func (r Reply) TimedOut() bool {
	return r.Packet == nil && r.Err == nil
}

// Transport sends one request packet to a target. Send does not block on
// the agent: it returns a channel that receives exactly one Reply once the
// agent answers, the retries are exhausted or ctx is done. The transport
// fills in the request id, version and community of the packet.
type Transport interface {
	Send(ctx context.Context, t Target, p *gosnmp.SnmpPacket) (<-chan Reply, error)
}
