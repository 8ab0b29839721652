/*
 * skjaere object identifier tests
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

package oid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    OID
		wantErr bool
	}{
		"plain":         {in: "1.3.6.1.2.1.1.5.0", want: OID{1, 3, 6, 1, 2, 1, 1, 5, 0}},
		"leading dot":   {in: ".1.3.6", want: OID{1, 3, 6}},
		"single":        {in: "1", want: OID{1}},
		"empty":         {in: "", wantErr: true},
		"just a dot":    {in: ".", wantErr: true},
		"trailing dot":  {in: "1.3.", wantErr: true},
		"letters":       {in: "1.3.six", wantErr: true},
		"negative":      {in: "1.-3", wantErr: true},
		"too big":       {in: "1.4294967296", wantErr: true},
		"max component": {in: "1.4294967295", want: OID{1, 4294967295}},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(test.in)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	o := MustParse(".1.3.6.1.2.1.2.2.1.10.4")
	assert.Equal(t, "1.3.6.1.2.1.2.2.1.10.4", o.String())
	assert.Equal(t, ".1.3.6.1.2.1.2.2.1.10.4", o.Wire())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.3.6", "1.3.6", 0},
		{"1.3.6", "1.3.7", -1},
		{"1.3.10", "1.3.9", 1},
		{"1.3", "1.3.0", -1},
		{"1.3.6.1.2.1.2.1.0", "1.3.6.1.2.1.1", 1},
		{"1.3.6.1.2.1.1.2.0", "1.3.6.1.2.1.1", 1},
	}
	for _, test := range tests {
		got := MustParse(test.a).Compare(MustParse(test.b))
		assert.Equalf(t, test.want, got, "%s vs %s", test.a, test.b)
	}
}

func TestIsPrefixOf(t *testing.T) {
	base := MustParse("1.3.6.1.2.1.1")
	assert.True(t, base.IsPrefixOf(base))
	assert.True(t, base.IsPrefixOf(MustParse("1.3.6.1.2.1.1.5.0")))
	assert.False(t, base.IsPrefixOf(MustParse("1.3.6.1.2.1.10")))
	assert.False(t, base.IsPrefixOf(MustParse("1.3.6.1.2.1")))
	assert.False(t, base.IsPrefixOf(MustParse("1.3.6.1.2.1.2.1.0")))
}

func TestInSubtree(t *testing.T) {
	base := MustParse("1.3.6.1.2.1.2.2.1.2")
	assert.True(t, MustParse("1.3.6.1.2.1.2.2.1.2.1").InSubtree(base))
	assert.True(t, base.InSubtree(base))
	assert.False(t, MustParse("1.3.6.1.2.1.2.2.1.3.1").InSubtree(base))
	assert.False(t, MustParse("1.3.6.1.2.1.2.2.1.20").InSubtree(base))
	assert.False(t, OID(nil).InSubtree(base))
}

func TestLastSuffixAppend(t *testing.T) {
	base := MustParse("1.3.6.1.2.1.2.2.1.2")
	o := base.Append(17)
	assert.Equal(t, "1.3.6.1.2.1.2.2.1.2.17", o.String())
	assert.Equal(t, "1.3.6.1.2.1.2.2.1.2", base.String(), "append must not touch the receiver")

	idx, ok := o.Last()
	assert.True(t, ok)
	assert.EqualValues(t, 17, idx)

	_, ok = OID(nil).Last()
	assert.False(t, ok)

	assert.Equal(t, OID{17}, o.Suffix(base))
	assert.Nil(t, MustParse("1.3.6.1.2.1.2.2.1.3.1").Suffix(base))
}

func TestJSON(t *testing.T) {
	var v struct{ OID OID }
	require.NoError(t, json.Unmarshal([]byte(`{"OID":".1.3.6.1.2.1.1.5.0"}`), &v))
	assert.Equal(t, MustParse("1.3.6.1.2.1.1.5.0"), v.OID)

	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"OID":"1.3.6.1.2.1.1.5.0"}`, string(b))

	assert.Error(t, json.Unmarshal([]byte(`{"OID":"1.x"}`), &v))
}
