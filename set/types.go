/*
 * skjaere set value types
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

package set

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/gosnmp/gosnmp"

	"github.com/telenornms/skjaere/oid"
)

// Type is the wire type a SET value is encoded as.
type Type int

const (
	OctetString Type = iota
	Integer32
	UnsignedInteger32
	Counter32
	Gauge32
	TimeTicks
	Counter64
	IPAddress
	ObjectIdentifier
)

var typeNames = map[Type]string{
	OctetString:       "OctetString",
	Integer32:         "Integer32",
	UnsignedInteger32: "UnsignedInteger32",
	Counter32:         "Counter32",
	Gauge32:           "Gauge32",
	TimeTicks:         "TimeTicks",
	Counter64:         "Counter64",
	IPAddress:         "IpAddress",
	ObjectIdentifier:  "ObjectIdentifier",
}

var typeAliases = map[string]Type{
	"string":   OctetString,
	"int":      Integer32,
	"integer":  Integer32,
	"unsigned": UnsignedInteger32,
	"uint":     UnsignedInteger32,
	"ip":       IPAddress,
	"oid":      ObjectIdentifier,
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType accepts the type names case-insensitively, plus a few short
// aliases ("int", "string", "oid", ...).
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, n := range typeNames {
		if strings.ToLower(n) == s {
			return t, nil
		}
	}
	if t, ok := typeAliases[s]; ok {
		return t, nil
	}
	return OctetString, fmt.Errorf("unknown set type %q", s)
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	n, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = n
	return nil
}

// pdu encodes value as t. UnsignedInteger32 uses the Gauge32 tag, which
// is what Unsigned32 is on the wire.
func (t Type) pdu(o oid.OID, value string) (gosnmp.SnmpPDU, error) {
	p := gosnmp.SnmpPDU{Name: o.Wire()}
	switch t {
	case OctetString:
		p.Type = gosnmp.OctetString
		p.Value = value
	case Integer32:
		n, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return p, fmt.Errorf("%q is not an Integer32: %w", value, err)
		}
		p.Type = gosnmp.Integer
		p.Value = int(n)
	case UnsignedInteger32, Counter32, Gauge32, TimeTicks:
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return p, fmt.Errorf("%q is not a %s: %w", value, t, err)
		}
		p.Type = map[Type]gosnmp.Asn1BER{
			UnsignedInteger32: gosnmp.Gauge32,
			Counter32:         gosnmp.Counter32,
			Gauge32:           gosnmp.Gauge32,
			TimeTicks:         gosnmp.TimeTicks,
		}[t]
		p.Value = uint32(n)
	case Counter64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return p, fmt.Errorf("%q is not a Counter64: %w", value, err)
		}
		p.Type = gosnmp.Counter64
		p.Value = n
	case IPAddress:
		ip := net.ParseIP(strings.TrimSpace(value)).To4()
		if ip == nil {
			return p, fmt.Errorf("%q is not an IPv4 address", value)
		}
		p.Type = gosnmp.IPAddress
		p.Value = ip.String()
	case ObjectIdentifier:
		v, err := oid.Parse(value)
		if err != nil {
			return p, err
		}
		p.Type = gosnmp.ObjectIdentifier
		p.Value = v.Wire()
	default:
		return p, fmt.Errorf("unknown set type %s", t)
	}
	return p, nil
}
