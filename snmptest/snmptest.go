/*
 * skjaere test transports
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

/*
Package snmptest provides in-memory Transports for testing code that talks
SNMP, in the spirit of net/http/httptest.

Transport replays whatever its Respond function returns, which is handy
for exercising a state machine one reply at a time. Agent is a tiny
in-memory MIB view that answers GET, GETNEXT, GETBULK and SET the way a
real agent would, for tests that want whole walks and tables.
*/
package snmptest

import (
	"context"
	"sort"
	"sync"

	"github.com/gosnmp/gosnmp"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/oid"
)

// Transport is a scripted skjaere.Transport. Respond is called once per
// request with the zero-based request number and the packet as sent.
type Transport struct {
	Respond func(n int, p *gosnmp.SnmpPacket) skjaere.Reply

	mu   sync.Mutex
	sent []*gosnmp.SnmpPacket
}

// Send implements skjaere.Transport.
func (t *Transport) Send(ctx context.Context, target skjaere.Target, p *gosnmp.SnmpPacket) (<-chan skjaere.Reply, error) {
	t.mu.Lock()
	n := len(t.sent)
	cp := *p
	cp.Variables = append([]gosnmp.SnmpPDU(nil), p.Variables...)
	cp.Community = target.Community
	cp.Version = target.Version
	t.sent = append(t.sent, &cp)
	t.mu.Unlock()

	ch := make(chan skjaere.Reply, 1)
	ch <- t.Respond(n, &cp)
	close(ch)
	return ch, nil
}

// Sent returns copies of every packet sent so far, in order.
func (t *Transport) Sent() []*gosnmp.SnmpPacket {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*gosnmp.SnmpPacket(nil), t.sent...)
}

// Queried returns the name of the first variable of every packet sent.
func (t *Transport) Queried() []string {
	sent := t.Sent()
	out := make([]string, 0, len(sent))
	for _, p := range sent {
		if len(p.Variables) > 0 {
			out = append(out, p.Variables[0].Name)
		} else {
			out = append(out, "")
		}
	}
	return out
}

// Response builds a successful reply carrying vars.
func Response(vars ...gosnmp.SnmpPDU) skjaere.Reply {
	return skjaere.Reply{Packet: &gosnmp.SnmpPacket{
		Version:   gosnmp.Version2c,
		PDUType:   gosnmp.GetResponse,
		Variables: vars,
	}}
}

// ErrorResponse builds a reply with a non-zero error status.
func ErrorResponse(status gosnmp.SNMPError, index uint8, vars ...gosnmp.SnmpPDU) skjaere.Reply {
	r := Response(vars...)
	r.Packet.Error = status
	r.Packet.ErrorIndex = index
	return r
}

// Timeout is the reply a Transport posts when the agent never answered.
func Timeout() skjaere.Reply {
	return skjaere.Reply{}
}

func Octets(name, value string) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: name, Type: gosnmp.OctetString, Value: []byte(value)}
}

func Integer(name string, value int) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: name, Type: gosnmp.Integer, Value: value}
}

func Counter32(name string, value uint) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: name, Type: gosnmp.Counter32, Value: value}
}

func Gauge32(name string, value uint) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: name, Type: gosnmp.Gauge32, Value: value}
}

func Counter64(name string, value uint64) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: name, Type: gosnmp.Counter64, Value: value}
}

func TimeTicks(name string, value uint32) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: name, Type: gosnmp.TimeTicks, Value: value}
}

func IPAddress(name, value string) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: name, Type: gosnmp.IPAddress, Value: value}
}

func ObjectIdentifier(name, value string) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: name, Type: gosnmp.ObjectIdentifier, Value: value}
}

// SetFunc decides the fate of a SET. Returning NoError accepts it.
type SetFunc func(vars []gosnmp.SnmpPDU) (gosnmp.SNMPError, uint8)

// Agent is an in-memory agent. Add variables with Add before sending; the
// view is read-only once requests are in flight unless OnSet stores values.
type Agent struct {
	// PageSize caps the bindings of a GETBULK response, like an agent
	// bounded by its message size. 0 means 10.
	PageSize int
	// Silent lists subtrees the agent never answers for; requests whose
	// first variable is inside one time out.
	Silent []oid.OID
	// OnSet handles SET requests. nil accepts everything and stores it.
	OnSet SetFunc

	mu   sync.Mutex
	vars []entry
	sets [][]gosnmp.SnmpPDU
	reqs int
}

type entry struct {
	oid oid.OID
	pdu gosnmp.SnmpPDU
}

// Add stores variables in the view. Names must parse as OIDs.
func (a *Agent) Add(vars ...gosnmp.SnmpPDU) *Agent {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, v := range vars {
		o := oid.MustParse(v.Name)
		v.Name = o.Wire()
		a.store(entry{oid: o, pdu: v})
	}
	return a
}

func (a *Agent) store(e entry) {
	i := sort.Search(len(a.vars), func(i int) bool { return a.vars[i].oid.Compare(e.oid) >= 0 })
	if i < len(a.vars) && a.vars[i].oid.Equal(e.oid) {
		a.vars[i] = e
		return
	}
	a.vars = append(a.vars, entry{})
	copy(a.vars[i+1:], a.vars[i:])
	a.vars[i] = e
}

// Requests is the number of packets the agent has received.
func (a *Agent) Requests() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reqs
}

// Sets returns the variable lists of every SET received, in order.
func (a *Agent) Sets() [][]gosnmp.SnmpPDU {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([][]gosnmp.SnmpPDU(nil), a.sets...)
}

// Send implements skjaere.Transport.
func (a *Agent) Send(ctx context.Context, t skjaere.Target, p *gosnmp.SnmpPacket) (<-chan skjaere.Reply, error) {
	ch := make(chan skjaere.Reply, 1)
	ch <- a.answer(p)
	close(ch)
	return ch, nil
}

func (a *Agent) answer(p *gosnmp.SnmpPacket) skjaere.Reply {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reqs++
	if len(p.Variables) > 0 {
		if o, err := oid.Parse(p.Variables[0].Name); err == nil {
			for _, s := range a.Silent {
				if s.IsPrefixOf(o) {
					return Timeout()
				}
			}
		}
	}
	switch p.PDUType {
	case gosnmp.GetRequest:
		return a.get(p)
	case gosnmp.GetNextRequest:
		return a.getNext(p)
	case gosnmp.GetBulkRequest:
		return a.getBulk(p)
	case gosnmp.SetRequest:
		return a.set(p)
	}
	return ErrorResponse(gosnmp.GenErr, 0, p.Variables...)
}

func (a *Agent) get(p *gosnmp.SnmpPacket) skjaere.Reply {
	out := make([]gosnmp.SnmpPDU, 0, len(p.Variables))
	for _, v := range p.Variables {
		o, err := oid.Parse(v.Name)
		if err != nil {
			out = append(out, gosnmp.SnmpPDU{Name: v.Name, Type: gosnmp.NoSuchObject})
			continue
		}
		i := a.search(o)
		if i < len(a.vars) && a.vars[i].oid.Equal(o) {
			out = append(out, a.vars[i].pdu)
			continue
		}
		out = append(out, gosnmp.SnmpPDU{Name: o.Wire(), Type: gosnmp.NoSuchInstance})
	}
	return Response(out...)
}

func (a *Agent) getNext(p *gosnmp.SnmpPacket) skjaere.Reply {
	out := make([]gosnmp.SnmpPDU, 0, len(p.Variables))
	for _, v := range p.Variables {
		out = append(out, a.next(v.Name))
	}
	return Response(out...)
}

func (a *Agent) getBulk(p *gosnmp.SnmpPacket) skjaere.Reply {
	page := a.PageSize
	if page <= 0 {
		page = 10
	}
	if p.MaxRepetitions > 0 && int(p.MaxRepetitions) < page {
		page = int(p.MaxRepetitions)
	}
	if len(p.Variables) == 0 {
		return Response()
	}
	out := make([]gosnmp.SnmpPDU, 0, page)
	cursor := p.Variables[0].Name
	for i := 0; i < page; i++ {
		v := a.next(cursor)
		out = append(out, v)
		if v.Type == gosnmp.EndOfMibView {
			break
		}
		cursor = v.Name
	}
	return Response(out...)
}

// next is the first variable strictly after name, or endOfMibView.
func (a *Agent) next(name string) gosnmp.SnmpPDU {
	o, err := oid.Parse(name)
	if err != nil {
		return gosnmp.SnmpPDU{Name: name, Type: gosnmp.EndOfMibView}
	}
	i := a.search(o)
	if i < len(a.vars) && a.vars[i].oid.Equal(o) {
		i++
	}
	if i >= len(a.vars) {
		return gosnmp.SnmpPDU{Name: o.Wire(), Type: gosnmp.EndOfMibView}
	}
	return a.vars[i].pdu
}

func (a *Agent) search(o oid.OID) int {
	return sort.Search(len(a.vars), func(i int) bool { return a.vars[i].oid.Compare(o) >= 0 })
}

func (a *Agent) set(p *gosnmp.SnmpPacket) skjaere.Reply {
	vars := append([]gosnmp.SnmpPDU(nil), p.Variables...)
	a.sets = append(a.sets, vars)
	if a.OnSet != nil {
		if status, index := a.OnSet(vars); status != gosnmp.NoError {
			return ErrorResponse(status, index, vars...)
		}
	}
	for _, v := range vars {
		if o, err := oid.Parse(v.Name); err == nil {
			v.Name = o.Wire()
			a.store(entry{oid: o, pdu: v})
		}
	}
	return Response(vars...)
}
