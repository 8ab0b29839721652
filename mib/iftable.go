/*
 * skjaere IF-MIB ifTable
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

package mib

import (
	"github.com/telenornms/skjaere/oid"
	"github.com/telenornms/skjaere/table"
)

// IfEntryBase is ifTable.ifEntry. Column N is IfEntryBase.N.
var IfEntryBase = oid.MustParse("1.3.6.1.2.1.2.2.1")

var AdminStatus = []string{"", "up", "down", "testing"}

var OperStatus = []string{"", "up", "down", "testing", "unknown", "dormant", "notPresent", "lowerLayerDown"}

func col(name string, n uint32, kind table.Kind) table.Column {
	return table.Column{Name: name, OID: IfEntryBase.Append(n), Kind: kind}
}

// IfTable is the schema of IF-MIB::ifTable.
var IfTable = table.Schema{
	Name: "ifTable",
	Columns: []table.Column{
		col("ifIndex", 1, table.Index),
		col("ifDescr", 2, table.String),
		col("ifType", 3, table.Integer),
		col("ifMtu", 4, table.Integer),
		col("ifSpeed", 5, table.Gauge32),
		col("ifPhysAddress", 6, table.PhysAddress),
		{Name: "ifAdminStatus", OID: IfEntryBase.Append(7), Kind: table.Enum, Enum: AdminStatus},
		{Name: "ifOperStatus", OID: IfEntryBase.Append(8), Kind: table.Enum, Enum: OperStatus},
		col("ifLastChange", 9, table.TimeTicks),
		col("ifInOctets", 10, table.Counter32),
		col("ifInUcastPkts", 11, table.Counter32),
		col("ifInNUcastPkts", 12, table.Counter32),
		col("ifInDiscards", 13, table.Counter32),
		col("ifInErrors", 14, table.Counter32),
		col("ifInUnknownProtos", 15, table.Counter32),
		col("ifOutOctets", 16, table.Counter32),
		col("ifOutUcastPkts", 17, table.Counter32),
		col("ifOutNUcastPkts", 18, table.Counter32),
		col("ifOutDiscards", 19, table.Counter32),
		col("ifOutErrors", 20, table.Counter32),
		col("ifOutQLen", 21, table.Gauge32),
		col("ifSpecific", 22, table.ObjectID),
	},
}

// IfEntry is one row of the ifTable. Columns the device did not return
// are left at their zero value.
type IfEntry struct {
	Index             uint32 `json:"index"`
	IfIndex           int32  `json:"ifIndex,omitempty"`
	IfDescr           string `json:"ifDescr,omitempty"`
	IfType            int32  `json:"ifType,omitempty"`
	IfMtu             int32  `json:"ifMtu,omitempty"`
	IfSpeed           uint32 `json:"ifSpeed,omitempty"`
	IfPhysAddress     string `json:"ifPhysAddress,omitempty"`
	IfAdminStatus     string `json:"ifAdminStatus,omitempty"`
	IfOperStatus      string `json:"ifOperStatus,omitempty"`
	IfLastChange      uint64 `json:"ifLastChange,omitempty"` // milliseconds
	IfInOctets        uint32 `json:"ifInOctets,omitempty"`
	IfInUcastPkts     uint32 `json:"ifInUcastPkts,omitempty"`
	IfInNUcastPkts    uint32 `json:"ifInNUcastPkts,omitempty"`
	IfInDiscards      uint32 `json:"ifInDiscards,omitempty"`
	IfInErrors        uint32 `json:"ifInErrors,omitempty"`
	IfInUnknownProtos uint32 `json:"ifInUnknownProtos,omitempty"`
	IfOutOctets       uint32 `json:"ifOutOctets,omitempty"`
	IfOutUcastPkts    uint32 `json:"ifOutUcastPkts,omitempty"`
	IfOutNUcastPkts   uint32 `json:"ifOutNUcastPkts,omitempty"`
	IfOutDiscards     uint32 `json:"ifOutDiscards,omitempty"`
	IfOutErrors       uint32 `json:"ifOutErrors,omitempty"`
	IfOutQLen         uint32 `json:"ifOutQLen,omitempty"`
	IfSpecific        string `json:"ifSpecific,omitempty"`
}

// NewIfEntry converts a row populated with IfTable.
func NewIfEntry(r *table.Row) IfEntry {
	v := r.Values()
	str := func(k string) string { s, _ := v[k].(string); return s }
	i32 := func(k string) int32 { n, _ := v[k].(int32); return n }
	u32 := func(k string) uint32 { n, _ := v[k].(uint32); return n }
	u64 := func(k string) uint64 { n, _ := v[k].(uint64); return n }
	return IfEntry{
		Index:             r.Index,
		IfIndex:           i32("ifIndex"),
		IfDescr:           str("ifDescr"),
		IfType:            i32("ifType"),
		IfMtu:             i32("ifMtu"),
		IfSpeed:           u32("ifSpeed"),
		IfPhysAddress:     str("ifPhysAddress"),
		IfAdminStatus:     str("ifAdminStatus"),
		IfOperStatus:      str("ifOperStatus"),
		IfLastChange:      u64("ifLastChange"),
		IfInOctets:        u32("ifInOctets"),
		IfInUcastPkts:     u32("ifInUcastPkts"),
		IfInNUcastPkts:    u32("ifInNUcastPkts"),
		IfInDiscards:      u32("ifInDiscards"),
		IfInErrors:        u32("ifInErrors"),
		IfInUnknownProtos: u32("ifInUnknownProtos"),
		IfOutOctets:       u32("ifOutOctets"),
		IfOutUcastPkts:    u32("ifOutUcastPkts"),
		IfOutNUcastPkts:   u32("ifOutNUcastPkts"),
		IfOutDiscards:     u32("ifOutDiscards"),
		IfOutErrors:       u32("ifOutErrors"),
		IfOutQLen:         u32("ifOutQLen"),
		IfSpecific:        str("ifSpecific"),
	}
}

// NewIfEntries converts all rows, keeping their order.
func NewIfEntries(rows []*table.Row) []IfEntry {
	out := make([]IfEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, NewIfEntry(r))
	}
	return out
}
