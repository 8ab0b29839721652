/*
 * skjaere command line tool tests
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

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/snmptest"
)

func device() *snmptest.Agent {
	return (&snmptest.Agent{PageSize: 3}).Add(
		snmptest.Octets("1.3.6.1.2.1.1.1.0", "Acme Switch 9000"),
		snmptest.ObjectIdentifier("1.3.6.1.2.1.1.2.0", ".1.3.6.1.4.1.99999.1"),
		snmptest.TimeTicks("1.3.6.1.2.1.1.3.0", 31000),
		snmptest.Octets("1.3.6.1.2.1.1.5.0", "core-sw-1"),
		snmptest.Integer("1.3.6.1.2.1.2.2.1.1.1", 1),
		snmptest.Octets("1.3.6.1.2.1.2.2.1.2.1", "Ten Gig 0"),
		snmptest.Integer("1.3.6.1.2.1.2.2.1.7.1", 1),
		snmptest.Integer("1.3.6.1.2.1.2.2.1.8.1", 2),
		snmptest.Octets("1.3.6.1.2.1.47.1.1.1.1.10.1", "15.2(7)E"),
		snmptest.Octets("1.3.6.1.2.1.47.1.1.1.1.11.1", "FOC1234X0AB"),
	)
}

func run(tr skjaere.Transport, args ...string) (string, error) {
	cmd := NewCommand(tr)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGet(t *testing.T) {
	out, err := run(device(), "get", "192.0.2.1", "1.3.6.1.2.1.1.5.0", ".1.3.6.1.2.1.1.1.0")
	require.NoError(t, err)
	assert.Equal(t, "1.3.6.1.2.1.1.5.0 = core-sw-1\n1.3.6.1.2.1.1.1.0 = Acme Switch 9000\n", out)
}

func TestWalkJSON(t *testing.T) {
	out, err := run(device(), "walk", "--json", "192.0.2.1", "1.3.6.1.2.1.1")
	require.NoError(t, err)
	var res []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res, 4)
	assert.Equal(t, map[string]string{"oid": "1.3.6.1.2.1.1.3.0", "value": "0:05:10.00"}, res[2])
}

func TestGetNextAndBulk(t *testing.T) {
	out, err := run(device(), "getnext", "192.0.2.1", "1.3.6.1.2.1.1.5")
	require.NoError(t, err)
	assert.Equal(t, "1.3.6.1.2.1.1.5.0 = core-sw-1\n", out)

	out, err = run(device(), "getbulk", "192.0.2.1", "1.3.6.1.2.1.1")
	require.NoError(t, err)
	assert.Contains(t, out, "1.3.6.1.2.1.1.2.0 = 1.3.6.1.4.1.99999.1\n")
}

func TestSet(t *testing.T) {
	agent := device()
	_, err := run(agent, "set", "192.0.2.1", "1.3.6.1.2.1.1.5.0", "core-sw-2")
	require.NoError(t, err)
	out, err := run(agent, "get", "192.0.2.1", "1.3.6.1.2.1.1.5.0")
	require.NoError(t, err)
	assert.Equal(t, "1.3.6.1.2.1.1.5.0 = core-sw-2\n", out)

	_, err = run(agent, "set", "--type", "int", "192.0.2.1", "1.3.6.1.2.1.2.2.1.7.1", "2", "1.3.6.1.2.1.2.2.1.7.2", "2")
	require.NoError(t, err)
	sets := agent.Sets()
	require.Len(t, sets, 2)
	assert.Len(t, sets[1], 2, "typed pairs go in one request")

	_, err = run(agent, "set", "192.0.2.1", "1.3.6.1.2.1.2.2.1.7.1", "2", "1.3.6.1.2.1.2.2.1.7.2", "2")
	assert.Error(t, err, "several objects need a type")
	_, err = run(agent, "set", "192.0.2.1", "1.3.6.1.2.1.2.2.1.7.1")
	assert.Error(t, err)
	_, err = run(agent, "set", "--type", "float", "192.0.2.1", "1.3.6.1.2.1.2.2.1.7.1", "2")
	assert.Error(t, err)
}

func TestInterfaces(t *testing.T) {
	out, err := run(device(), "interfaces", "192.0.2.1")
	require.NoError(t, err)
	assert.Contains(t, out, "INDEX")
	assert.Regexp(t, `1\s+Ten Gig 0\s+up\s+down`, out)
}

func TestProperties(t *testing.T) {
	out, err := run(device(), "properties", "-j", "192.0.2.1")
	require.NoError(t, err)
	var p map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "core-sw-1", p["name"])
	assert.Equal(t, "FOC1234X0AB", p["serial-number"])
}

func TestOrder(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"Target": "192.0.2.1", "Mode": "get", "Oids": ["1.3.6.1.2.1.1.5.0"], "ID": "x"}`), 0o644))
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"Mode": "get"}`), 0o644))

	out, err := run(device(), "order", good)
	require.NoError(t, err)
	assert.Contains(t, out, `"core-sw-1"`)
	assert.Contains(t, out, `"id": "x"`)

	_, err = run(device(), "order", good, bad, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestBadArgs(t *testing.T) {
	_, err := run(device(), "get", "192.0.2.1")
	assert.Error(t, err)
	_, err = run(device(), "get", "192.0.2.1", "sysName.0")
	assert.Error(t, err, "symbolic names need --mibs")
	_, err = run(device(), "get", "-c", "x", "", "1.3.6")
	assert.Error(t, err)
}
