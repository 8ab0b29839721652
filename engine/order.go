/*
 * skjaere orders
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

package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/telenornms/skjaere/set"
)

// Order is the central object for kicking skjaere into action. An order
// always operates on a target (a host/switch, either IP address or
// hostname) and using a mode. Depending on the mode, skjaere can request
// OIDs from the target, set values, read the interface table or the node
// properties, build element maps or clear the map cache.
//
// OIDs can be provided either as numeric IDs or by their symbolic names,
// optionally with an instance suffix: .1.3.6.1.2.1.1.5.0 is valid, and so
// are sysName.0 and ifHCInOctets.
//
// If the Elements array is populated, an element map is used to fetch the
// oids for every matching element. More plainly: Elements match interface
// names and skjaere builds GET requests for the provided OIDs for each
// matching index. Key is the column the element map is built from, ifName
// by default.
//
// Community is the community to use to connect to the host. Blank means
// whatever the inventory has for it.
//
// ID is not used by skjaere at all, but included in the result to allow a
// caller to match the order to the result.
//
// Result determines how the result is formatted. By default it matches
// the input: numeric OIDs give numeric results, symbolic names give
// resolved results, grouped per element. "OID" leaves OIDs unresolved and
// "Resolve" always tries.
//
// Value is the value of a Set. Vars are the variables of a SetTyped.
type Order struct {
	Target    string
	Port      uint16   `json:",omitempty"`
	Oids      []string `json:",omitempty"`
	Elements  []string `json:",omitempty"`
	Key       string   `json:",omitempty"`
	Mode      Mode
	Community string    `json:",omitempty"`
	ID        string    `json:",omitempty"`
	Result    ResolveM  `json:",omitempty"`
	Value     string    `json:",omitempty"`
	Vars      []set.Var `json:",omitempty"`
}

func (o Order) String() string {
	return o.Target
}

// ParseOrder decodes a JSON order. Unknown fields are an error, since an
// order with a misspelled Mode or Oids silently doing something else is
// worse than no order at all.
func ParseOrder(b []byte) (Order, error) {
	var o Order
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&o); err != nil {
		return o, fmt.Errorf("unable to parse order: %w", err)
	}
	if o.Target == "" {
		return o, fmt.Errorf("order has no target")
	}
	return o, nil
}

type ResolveM int

const (
	Auto ResolveM = iota
	OID
	Resolve
)

func (r *ResolveM) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.ToLower(s)
	switch s {
	case "auto", "":
		*r = Auto
	case "oid":
		*r = OID
	case "resolve":
		*r = Resolve
	default:
		return fmt.Errorf("invalid resolver mode: %s", s)
	}
	return nil
}

func (r ResolveM) MarshalJSON() ([]byte, error) {
	switch r {
	case Auto:
		return []byte("\"Auto\""), nil
	case OID:
		return []byte("\"OID\""), nil
	case Resolve:
		return []byte("\"Resolve\""), nil
	default:
		return []byte("\"\""), fmt.Errorf("invalid resolve mode %d!", r)
	}
}

type Mode int

const (
	Walk        Mode = iota // Do a walk
	Get                     // Get just these oids
	GetNext                 // The successor of each oid
	GetBulk                 // One GETBULK page per oid
	GetElements             // Get these specific oids, but per elements
	Set                     // Set Oids[0] to Value, guessing the type
	SetTyped                // Set Vars in one request
	Interfaces              // The ifTable, one metric per interface
	Properties              // Name, vendor and friends
	BuildMap                // Build an OMap
	ClearMap                // Clear the OMap cache
)

var modeNames = map[Mode]string{
	Walk:        "Walk",
	Get:         "Get",
	GetNext:     "GetNext",
	GetBulk:     "GetBulk",
	GetElements: "GetElements",
	Set:         "Set",
	SetTyped:    "SetTyped",
	Interfaces:  "Interfaces",
	Properties:  "Properties",
	BuildMap:    "BuildMap",
	ClearMap:    "ClearMap",
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func (m *Mode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for mode, name := range modeNames {
		if strings.EqualFold(name, s) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("invalid mode: %s", s)
}

func (m Mode) MarshalJSON() ([]byte, error) {
	n, ok := modeNames[m]
	if !ok {
		return []byte("\"\""), fmt.Errorf("invalid mode %d!", m)
	}
	return json.Marshal(n)
}
