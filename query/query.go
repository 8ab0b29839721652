/*
 * skjaere query types
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
Package query drives one logical SNMP read (GET, GETNEXT, GETBULK or a
full WALK) to completion over a skjaere.Transport.

A query is a small state machine: issue a request, wait for the reply or
the timeout sentinel, validate the reply against the base OID, then either
continue from the last accepted binding or stop. Only WALK ever does more
than one round trip.
*/
package query

import (
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/oid"
)

type Kind int

const (
	Get Kind = iota
	GetNext
	GetBulk
	Walk
)

func (k Kind) String() string {
	switch k {
	case Get:
		return "GET"
	case GetNext:
		return "GETNEXT"
	case GetBulk:
		return "GETBULK"
	case Walk:
		return "WALK"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts the kind names case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GET":
		return Get, nil
	case "GETNEXT":
		return GetNext, nil
	case "GETBULK":
		return GetBulk, nil
	case "WALK", "GETWALK":
		return Walk, nil
	}
	return Get, fmt.Errorf("unknown query kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(k.String())), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	n, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = n
	return nil
}

func (k Kind) pduType() gosnmp.PDUType {
	switch k {
	case Get:
		return gosnmp.GetRequest
	case GetNext:
		return gosnmp.GetNextRequest
	}
	return gosnmp.GetBulkRequest
}

// Request is consumed by exactly one query. MaxRepetitions 0 means
// Config.MaxRepetitions.
type Request struct {
	Kind           Kind
	Base           oid.OID
	Target         skjaere.Target
	MaxRepetitions uint32
	NonRepeaters   uint8
}

func (r Request) String() string {
	return fmt.Sprintf("%s %s@%s", r.Kind, r.Base, r.Target)
}

// Result is the outcome of a query. Bindings are kept on failure too:
// check Success, not len(Bindings).
type Result struct {
	Success    bool
	Bindings   []skjaere.Binding
	RoundTrips int
	Err        *skjaere.Error
}
