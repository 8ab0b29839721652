/*
 * skjaere order tests
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

package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telenornms/skjaere/oid"
	"github.com/telenornms/skjaere/set"
)

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder([]byte(`{
		"Target": "192.0.2.1",
		"Oids": ["ifHCInOctets", "ifHCOutOctets"],
		"Elements": ["^xe-"],
		"Mode": "getelements",
		"Result": "oid",
		"ID": "job-1"
	}`))
	require.NoError(t, err)
	assert.Equal(t, GetElements, o.Mode)
	assert.Equal(t, OID, o.Result)
	assert.Equal(t, []string{"ifHCInOctets", "ifHCOutOctets"}, o.Oids)
	assert.Equal(t, "192.0.2.1", o.String())

	o, err = ParseOrder([]byte(`{"Target": "192.0.2.1", "Mode": "SetTyped", "Vars": [
		{"OID": "1.3.6.1.2.1.2.2.1.7.2", "Value": "2", "Type": "int"}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, SetTyped, o.Mode)
	assert.Equal(t, []set.Var{{OID: oid.MustParse("1.3.6.1.2.1.2.2.1.7.2"), Value: "2", Type: set.Integer32}}, o.Vars)

	o, err = ParseOrder([]byte(`{"Target": "192.0.2.1", "Mode": "walk"}`))
	require.NoError(t, err)
	assert.Equal(t, Walk, o.Mode)
	assert.Equal(t, Auto, o.Result)
}

func TestParseOrderErrors(t *testing.T) {
	tests := map[string]string{
		"not json":      `Target=192.0.2.1`,
		"no target":     `{"Mode": "get"}`,
		"bad mode":      `{"Target": "192.0.2.1", "Mode": "poke"}`,
		"bad result":    `{"Target": "192.0.2.1", "Result": "pretty"}`,
		"unknown field": `{"Target": "192.0.2.1", "Oid": ["1.3.6"]}`,
		"bad set type":  `{"Target": "192.0.2.1", "Vars": [{"OID": "1.3", "Type": "float"}]}`,
		"bad set oid":   `{"Target": "192.0.2.1", "Vars": [{"OID": "one.three"}]}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOrder([]byte(in))
			assert.Error(t, err)
		})
	}
}

func TestOrderMarshal(t *testing.T) {
	b, err := json.Marshal(Order{Target: "192.0.2.1", Mode: BuildMap, Result: Resolve})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Target": "192.0.2.1", "Mode": "BuildMap", "Result": "Resolve"}`, string(b))

	for m := range modeNames {
		b, err := json.Marshal(m)
		require.NoError(t, err)
		var back Mode
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, m, back)
	}
	_, err = json.Marshal(Mode(99))
	assert.Error(t, err)
	assert.Equal(t, "Mode(99)", Mode(99).String())
}
