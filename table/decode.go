/*
 * skjaere table column decoding
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

package table

import (
	"fmt"
	"math"
	"math/big"
	"net"
	"strings"

	"github.com/gosnmp/gosnmp"

	"github.com/telenornms/skjaere/oid"
)

// Kind is the semantic type a column decodes to.
type Kind int

const (
	String      Kind = iota // string
	Integer                 // int32
	Long                    // int64
	Index                   // int32, interface index and friends
	Counter32               // uint32
	Gauge32                 // uint32
	Counter64               // *big.Int
	PhysAddress             // string, colon separated hex
	MacAddress              // string, colon separated hex
	IPv4                    // string, dotted quad
	Enum                    // string, Column.Enum[value]
	TimeTicks               // uint64 milliseconds
	Timestamp               // uint32, raw ticks
	ObjectID                // string, dotted
)

var kindNames = []string{"String", "Integer", "Long", "Index", "Counter32", "Gauge32", "Counter64",
	"PhysAddress", "MacAddress", "IPv4", "Enum", "TimeTicks", "Timestamp", "ObjectID"}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Decode converts one wire value to what the column says it is.
func Decode(c Column, pdu gosnmp.SnmpPDU) (any, error) {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return nil, fmt.Errorf("%s: no value (%v)", c.Name, pdu.Type)
	}
	switch c.Kind {
	case String:
		return octets(pdu)
	case Integer, Index:
		n, err := number(pdu)
		if err != nil {
			return nil, err
		}
		if !n.IsInt64() || n.Int64() < math.MinInt32 || n.Int64() > math.MaxInt32 {
			return nil, fmt.Errorf("%s: %s overflows int32", c.Name, n)
		}
		return int32(n.Int64()), nil
	case Long:
		n, err := number(pdu)
		if err != nil {
			return nil, err
		}
		if !n.IsInt64() {
			return nil, fmt.Errorf("%s: %s overflows int64", c.Name, n)
		}
		return n.Int64(), nil
	case Counter32, Gauge32, Timestamp:
		n, err := number(pdu)
		if err != nil {
			return nil, err
		}
		if !n.IsUint64() || n.Uint64() > math.MaxUint32 {
			return nil, fmt.Errorf("%s: %s is not a 32 bit unsigned value", c.Name, n)
		}
		return uint32(n.Uint64()), nil
	case Counter64:
		// Parse the decimal form so nothing on the way gets to truncate.
		n, ok := new(big.Int).SetString(fmt.Sprint(pdu.Value), 10)
		if !ok || n.Sign() < 0 {
			return nil, fmt.Errorf("%s: %v is not a counter", c.Name, pdu.Value)
		}
		return n, nil
	case PhysAddress, MacAddress:
		b, ok := pdu.Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("%s: %T is not an octet string", c.Name, pdu.Value)
		}
		return HexString(b), nil
	case IPv4:
		switch v := pdu.Value.(type) {
		case string:
			ip := net.ParseIP(v).To4()
			if ip == nil {
				return nil, fmt.Errorf("%s: %q is not an IPv4 address", c.Name, v)
			}
			return ip.String(), nil
		case []byte:
			if len(v) != net.IPv4len {
				return nil, fmt.Errorf("%s: %d bytes is not an IPv4 address", c.Name, len(v))
			}
			return net.IP(v).String(), nil
		}
		return nil, fmt.Errorf("%s: %T is not an address", c.Name, pdu.Value)
	case Enum:
		n, err := number(pdu)
		if err != nil {
			return nil, err
		}
		if !n.IsInt64() || n.Int64() < 0 || n.Int64() >= int64(len(c.Enum)) || c.Enum[n.Int64()] == "" {
			return nil, fmt.Errorf("%s: %s is not a known value", c.Name, n)
		}
		return c.Enum[n.Int64()], nil
	case TimeTicks:
		n, err := number(pdu)
		if err != nil {
			return nil, err
		}
		if !n.IsUint64() {
			return nil, fmt.Errorf("%s: negative time ticks %s", c.Name, n)
		}
		return n.Uint64() * 10, nil
	case ObjectID:
		s, ok := pdu.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%s: %T is not an oid", c.Name, pdu.Value)
		}
		o, err := oid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		return o.String(), nil
	}
	return nil, fmt.Errorf("%s: unknown column kind %s", c.Name, c.Kind)
}

func number(pdu gosnmp.SnmpPDU) (*big.Int, error) {
	switch pdu.Value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return gosnmp.ToBigInt(pdu.Value), nil
	}
	return nil, fmt.Errorf("%s: %T (%v) is not a number", pdu.Name, pdu.Value, pdu.Type)
}

func octets(pdu gosnmp.SnmpPDU) (string, error) {
	switch v := pdu.Value.(type) {
	case []byte:
		return string(v), nil
	case string:
		return v, nil
	}
	return "", fmt.Errorf("%s: %T is not a string", pdu.Name, pdu.Value)
}

// HexString renders b as lower case hex pairs separated by colons.
func HexString(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02x", c)
	}
	return strings.Join(parts, ":")
}
