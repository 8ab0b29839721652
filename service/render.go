/*
 * skjaere value rendering
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

package service

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gosnmp/gosnmp"

	"github.com/telenornms/skjaere/table"
)

// Render turns a wire value into the string handed to callers. Octet
// strings are shown as text if they are printable and as colon separated
// hex otherwise.
func Render(pdu gosnmp.SnmpPDU) string {
	switch pdu.Type {
	case gosnmp.OctetString:
		var b []byte
		switch v := pdu.Value.(type) {
		case []byte:
			b = v
		case string:
			b = []byte(v)
		}
		if printable(b) {
			return string(b)
		}
		return table.HexString(b)
	case gosnmp.TimeTicks:
		n := gosnmp.ToBigInt(pdu.Value)
		if !n.IsUint64() {
			return n.String()
		}
		return Ticks(n.Uint64())
	case gosnmp.ObjectIdentifier:
		return strings.TrimPrefix(fmt.Sprint(pdu.Value), ".")
	case gosnmp.NoSuchObject:
		return "noSuchObject"
	case gosnmp.NoSuchInstance:
		return "noSuchInstance"
	case gosnmp.EndOfMibView:
		return "endOfMibView"
	case gosnmp.Null:
		return "Null"
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Gauge32, gosnmp.Uinteger32, gosnmp.Counter64:
		return gosnmp.ToBigInt(pdu.Value).String()
	}
	return fmt.Sprint(pdu.Value)
}

func printable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && r != '\t' && r != '\r' && r != '\n' {
			return false
		}
	}
	return true
}

// Ticks formats hundredths of a second as "[N days, ]h:mm:ss.cc".
func Ticks(t uint64) string {
	cs := t % 100
	s := t / 100
	days := s / 86400
	s %= 86400
	clock := fmt.Sprintf("%d:%02d:%02d.%02d", s/3600, (s/60)%60, s%60, cs)
	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	}
	return fmt.Sprintf("%d days, %s", days, clock)
}

// Native is the value as a number where the type is numeric, which is
// what metric outputs want. Everything else is rendered with Render.
func Native(pdu gosnmp.SnmpPDU) any {
	switch pdu.Type {
	case gosnmp.Integer:
		n := gosnmp.ToBigInt(pdu.Value)
		if n.IsInt64() {
			return n.Int64()
		}
	case gosnmp.Counter32, gosnmp.Gauge32, gosnmp.Uinteger32, gosnmp.Counter64, gosnmp.TimeTicks:
		n := gosnmp.ToBigInt(pdu.Value)
		if n.IsUint64() {
			return n.Uint64()
		}
	}
	return Render(pdu)
}
