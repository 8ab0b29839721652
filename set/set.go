/*
 * skjaere set state machine
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
Package set issues SNMP SET requests.

Value is the untyped form: the caller hands us a string and we have to
guess the wire type. It starts out as an OctetString and, every time the
agent answers wrongType, reinterprets the same string as the next type on
the ladder: OctetString, Integer32, UnsignedInteger32, Counter64. Each
rung is tried once.

Typed takes the types from the caller and sends everything in one PDU.
There is no guessing, so wrongType is just another error.
*/
package set

import (
	"context"
	"fmt"

	"github.com/gosnmp/gosnmp"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/oid"
)

// Var is one variable of a typed SET.
type Var struct {
	OID   oid.OID
	Value string
	Type  Type
}

var ladder = []Type{OctetString, Integer32, UnsignedInteger32, Counter64}

func errUnknownType() *skjaere.Error {
	return skjaere.ApplicationErrorf("SnmpSET failed. Unknown object set type")
}

func errTimedOut() *skjaere.Error {
	return &skjaere.Error{Kind: skjaere.Transport, Msg: "SNMP set timed out.", Err: skjaere.ErrTimeout}
}

func errStatus(p *gosnmp.SnmpPacket) *skjaere.Error {
	return skjaere.ApplicationErrorf("SnmpSET failed with error status: %d, error index: %d. StatusText: %v", int(p.Error), p.ErrorIndex, p.Error)
}

// Value sets o to value, climbing the type ladder on wrongType. A nil
// return means the agent accepted the value.
func Value(ctx context.Context, tr skjaere.Transport, t skjaere.Target, o oid.OID, value string) error {
	for _, typ := range ladder {
		pdu, err := typ.pdu(o, value)
		if err != nil {
			skjaere.Debugf("set %s@%s: giving up at %s: %v", o, t, typ, err)
			return errUnknownType()
		}
		resp, serr := send(ctx, tr, t, pdu)
		if serr != nil {
			return serr
		}
		switch resp.Error {
		case gosnmp.NoError:
			skjaere.Debugf("set %s@%s = %q as %s", o, t, value, typ)
			return nil
		case gosnmp.WrongType:
			skjaere.Debugf("set %s@%s: agent rejected %s, trying next type", o, t, typ)
		default:
			return errStatus(resp)
		}
	}
	return errUnknownType()
}

// Typed sets every variable in one PDU.
func Typed(ctx context.Context, tr skjaere.Transport, t skjaere.Target, vars []Var) error {
	if len(vars) == 0 {
		return skjaere.ApplicationErrorf("set with no variables")
	}
	pdus := make([]gosnmp.SnmpPDU, 0, len(vars))
	for _, v := range vars {
		if len(v.OID) == 0 {
			return skjaere.ApplicationErrorf("set: empty oid")
		}
		pdu, err := v.Type.pdu(v.OID, v.Value)
		if err != nil {
			return skjaere.ApplicationErrorf("set %s: %w", v.OID, err)
		}
		pdus = append(pdus, pdu)
	}
	resp, err := send(ctx, tr, t, pdus...)
	if err != nil {
		return err
	}
	if resp.Error != gosnmp.NoError {
		return errStatus(resp)
	}
	return nil
}

// send issues one SET and waits for the answer. The returned packet is
// never nil when the error is.
func send(ctx context.Context, tr skjaere.Transport, t skjaere.Target, pdus ...gosnmp.SnmpPDU) (*gosnmp.SnmpPacket, *skjaere.Error) {
	p := &gosnmp.SnmpPacket{
		Version:   gosnmp.Version2c,
		PDUType:   gosnmp.SetRequest,
		Variables: pdus,
	}
	ch, err := tr.Send(ctx, t, p)
	if err != nil {
		return nil, skjaere.AsError(err)
	}
	select {
	case r := <-ch:
		switch {
		case r.Err != nil:
			return nil, skjaere.AsError(r.Err)
		case r.TimedOut():
			return nil, errTimedOut()
		}
		return r.Packet, nil
	case <-ctx.Done():
		return nil, skjaere.TransportErrorf("set to %s: %w", t, ctx.Err())
	}
}

// String renders vars the way they are logged.
func (v Var) String() string {
	return fmt.Sprintf("%s=%s:%q", v.OID, v.Type, v.Value)
}
