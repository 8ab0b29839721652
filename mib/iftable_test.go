/*
 * skjaere ifTable tests
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
	"context"
	"testing"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/snmptest"
	"github.com/telenornms/skjaere/table"
)

func TestIfTableSchema(t *testing.T) {
	require.Len(t, IfTable.Columns, 22)
	seen := map[string]bool{}
	for i, c := range IfTable.Columns {
		assert.Equal(t, IfEntryBase.Append(uint32(i+1)), c.OID, c.Name)
		assert.False(t, seen[c.Name], "duplicate column %s", c.Name)
		seen[c.Name] = true
	}
}

func TestNewIfEntries(t *testing.T) {
	agent := (&snmptest.Agent{PageSize: 5}).Add(
		snmptest.Integer("1.3.6.1.2.1.2.2.1.1.1", 1),
		snmptest.Integer("1.3.6.1.2.1.2.2.1.1.2", 2),
		snmptest.Octets("1.3.6.1.2.1.2.2.1.2.1", "lo"),
		snmptest.Octets("1.3.6.1.2.1.2.2.1.2.2", "eth0"),
		snmptest.Integer("1.3.6.1.2.1.2.2.1.3.2", 6),
		snmptest.Integer("1.3.6.1.2.1.2.2.1.4.2", 1500),
		snmptest.Gauge32("1.3.6.1.2.1.2.2.1.5.2", 1000000000),
		gosnmp.SnmpPDU{Name: "1.3.6.1.2.1.2.2.1.6.2", Type: gosnmp.OctetString, Value: []byte{0x52, 0x54, 0, 0x12, 0x34, 0x56}},
		snmptest.Integer("1.3.6.1.2.1.2.2.1.7.1", 1),
		snmptest.Integer("1.3.6.1.2.1.2.2.1.7.2", 2),
		snmptest.Integer("1.3.6.1.2.1.2.2.1.8.2", 7),
		snmptest.TimeTicks("1.3.6.1.2.1.2.2.1.9.2", 4200),
		snmptest.Counter32("1.3.6.1.2.1.2.2.1.10.2", 123456),
		snmptest.Counter32("1.3.6.1.2.1.2.2.1.16.2", 654321),
		snmptest.Gauge32("1.3.6.1.2.1.2.2.1.21.2", 3),
		snmptest.ObjectIdentifier("1.3.6.1.2.1.2.2.1.22.2", ".0.0"),
		snmptest.Integer("1.3.6.1.2.1.2.3.0", 99),
	)
	rows := table.Populate(context.Background(), agent, skjaere.NewTarget("192.0.2.1", 0, ""), IfTable)
	entries := NewIfEntries(rows)

	require.Len(t, entries, 2)
	assert.Equal(t, IfEntry{Index: 1, IfIndex: 1, IfDescr: "lo", IfAdminStatus: "up"}, entries[0])
	assert.Equal(t, IfEntry{
		Index:         2,
		IfIndex:       2,
		IfDescr:       "eth0",
		IfType:        6,
		IfMtu:         1500,
		IfSpeed:       1000000000,
		IfPhysAddress: "52:54:00:12:34:56",
		IfAdminStatus: "down",
		IfOperStatus:  "lowerLayerDown",
		IfLastChange:  42000,
		IfInOctets:    123456,
		IfOutOctets:   654321,
		IfOutQLen:     3,
		IfSpecific:    "0.0",
	}, entries[1])
}
