/*
 * skjaere object identifiers
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
Package oid implements numeric SNMP object identifiers.

We used to pass OIDs around as strings and do strings.HasPrefix() on them,
which is wrong for 1.3.6.1.2.1.1.1 vs 1.3.6.1.2.1.1.10 and sorts 1.10
before 1.9. An OID here is a slice of components, compared component by
component.
*/
package oid

import (
	"fmt"
	"strconv"
	"strings"
)

// OID is an object identifier. Treat it as immutable: everything that
// derives a new OID copies.
type OID []uint32

// Parse parses a dotted OID, with or without a leading dot.
func Parse(s string) (OID, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), ".")
	if s == "" {
		return nil, fmt.Errorf("empty oid")
	}
	parts := strings.Split(s, ".")
	o := make(OID, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid oid %q: component %q: %w", s, p, err)
		}
		o = append(o, uint32(n))
	}
	return o, nil
}

// MustParse is Parse for constants. Panics on error.
func MustParse(s string) OID {
	o, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return o
}

// String renders the OID in dotted form without a leading dot.
func (o OID) String() string {
	var sb strings.Builder
	for i, c := range o {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.FormatUint(uint64(c), 10))
	}
	return sb.String()
}

// Wire renders the OID the way gosnmp wants and returns it, with a leading
// dot.
func (o OID) Wire() string {
	return "." + o.String()
}

// Compare returns -1, 0 or 1. A strict prefix sorts before the longer OID.
func (o OID) Compare(other OID) int {
	for i := 0; i < len(o) && i < len(other); i++ {
		switch {
		case o[i] < other[i]:
			return -1
		case o[i] > other[i]:
			return 1
		}
	}
	switch {
	case len(o) < len(other):
		return -1
	case len(o) > len(other):
		return 1
	}
	return 0
}

func (o OID) Equal(other OID) bool {
	return o.Compare(other) == 0
}

// IsPrefixOf reports whether other is o or lives in o's subtree.
func (o OID) IsPrefixOf(other OID) bool {
	if len(other) < len(o) {
		return false
	}
	for i := range o {
		if o[i] != other[i] {
			return false
		}
	}
	return true
}

// InSubtree is the scope test of a walk rooted at base: o is at or below
// base and does not sort before it.
func (o OID) InSubtree(base OID) bool {
	return len(o) > 0 && base.IsPrefixOf(o) && o.Compare(base) >= 0
}

// Last returns the final component, the row index of a table column
// instance.
func (o OID) Last() (uint32, bool) {
	if len(o) == 0 {
		return 0, false
	}
	return o[len(o)-1], true
}

// Suffix returns the components following base, or nil if base is not a
// prefix.
func (o OID) Suffix(base OID) OID {
	if !base.IsPrefixOf(o) {
		return nil
	}
	return append(OID(nil), o[len(base):]...)
}

// Append returns a new OID with the components added.
func (o OID) Append(c ...uint32) OID {
	n := make(OID, 0, len(o)+len(c))
	n = append(n, o...)
	return append(n, c...)
}

// MarshalText renders the OID as a dotted string, so it shows up as
// "1.3.6.1.2.1.1.5.0" in JSON rather than as an array.
func (o OID) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *OID) UnmarshalText(b []byte) error {
	n, err := Parse(string(b))
	if err != nil {
		return err
	}
	*o = n
	return nil
}
