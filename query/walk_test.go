/*
 * skjaere walk state machine tests
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

package query

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/oid"
	"github.com/telenornms/skjaere/snmptest"
)

func init() {
	strictFinalize = true
}

var target = skjaere.NewTarget("192.0.2.1", 0, "public")

func walkReq(base string) Request {
	return Request{Kind: Walk, Base: oid.MustParse(base), Target: target}
}

func names(bs []skjaere.Binding) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.OID.String())
	}
	return out
}

func TestWalkStopsOutsideSubtree(t *testing.T) {
	tr := &snmptest.Transport{Respond: func(n int, p *gosnmp.SnmpPacket) skjaere.Reply {
		return snmptest.Response(
			snmptest.Octets(".1.3.6.1.2.1.1.2.0", "X"),
			snmptest.Octets(".1.3.6.1.2.1.2.1.0", "Y"),
		)
	}}
	r := Do(context.Background(), tr, walkReq("1.3.6.1.2.1.1"))

	require.True(t, r.Success)
	assert.Nil(t, r.Err)
	assert.Equal(t, []string{"1.3.6.1.2.1.1.2.0"}, names(r.Bindings))
	assert.Equal(t, []byte("X"), r.Bindings[0].PDU.Value)
	assert.Equal(t, 1, r.RoundTrips)
	assert.Len(t, tr.Sent(), 1)
}

func TestWalkPartialResultOnTimeout(t *testing.T) {
	base := oid.MustParse("1.3.6.1.2.1.2.2.1.2")
	const limit = 100
	delivered := 0
	var lastPerRound []string

	// Round 1 returns 1..10, round 2 returns 11..20 and then 25. From then
	// on ten at a time, and the agent goes silent once 100 bindings are
	// out.
	tr := &snmptest.Transport{}
	tr.Respond = func(n int, p *gosnmp.SnmpPacket) skjaere.Reply {
		if delivered >= limit {
			return snmptest.Timeout()
		}
		cursor := oid.MustParse(p.Variables[0].Name)
		start := uint32(0)
		if len(cursor) > len(base) {
			start, _ = cursor.Last()
		}
		var vars []gosnmp.SnmpPDU
		for i := start + 1; i <= start+10 && delivered < limit; i++ {
			vars = append(vars, snmptest.Octets(base.Append(i).Wire(), fmt.Sprintf("if%d", i)))
			delivered++
		}
		if n == 1 && delivered < limit {
			vars = append(vars, snmptest.Octets(base.Append(25).Wire(), "if25"))
			delivered++
		}
		lastPerRound = append(lastPerRound, oid.MustParse(vars[len(vars)-1].Name).String())
		return snmptest.Response(vars...)
	}

	r := Do(context.Background(), tr, Request{Kind: Walk, Base: base, Target: target})

	assert.False(t, r.Success)
	require.NotNil(t, r.Err)
	assert.Equal(t, skjaere.Transport, r.Err.Kind)
	assert.True(t, errors.Is(r.Err, skjaere.ErrTimeout))
	assert.Len(t, r.Bindings, limit)

	// every round after the first is anchored on the last binding of the
	// previous one
	queried := tr.Queried()
	require.Len(t, queried, len(lastPerRound)+1)
	assert.Equal(t, base.Wire(), queried[0])
	for i, last := range lastPerRound {
		assert.Equal(t, "."+last, queried[i+1])
	}
	for _, b := range r.Bindings {
		assert.True(t, b.OID.InSubtree(base))
	}
}

func TestWalkTimeoutWithoutData(t *testing.T) {
	tr := &snmptest.Transport{Respond: func(int, *gosnmp.SnmpPacket) skjaere.Reply {
		return snmptest.Timeout()
	}}
	r := Do(context.Background(), tr, walkReq("1.3.6.1.2.1.1"))
	assert.False(t, r.Success)
	assert.Empty(t, r.Bindings)
	require.NotNil(t, r.Err)
	assert.Equal(t, skjaere.Transport, r.Err.Kind)
}

func TestWalkAgainstAgent(t *testing.T) {
	agent := (&snmptest.Agent{PageSize: 3}).Add(
		snmptest.Octets("1.3.6.1.2.1.1.1.0", "Some switch"),
		snmptest.ObjectIdentifier("1.3.6.1.2.1.1.2.0", ".1.3.6.1.4.1.9.1.1"),
		snmptest.TimeTicks("1.3.6.1.2.1.1.3.0", 31000),
		snmptest.Octets("1.3.6.1.2.1.1.4.0", "noc"),
		snmptest.Octets("1.3.6.1.2.1.1.5.0", "core-sw-1"),
		snmptest.Octets("1.3.6.1.2.1.1.10.0", "sorts after 9"),
		snmptest.Integer("1.3.6.1.2.1.2.1.0", 2),
		snmptest.Octets("1.3.6.1.2.1.10.1.0", "not system"),
	)
	base := oid.MustParse("1.3.6.1.2.1.1")
	r := Do(context.Background(), agent, Request{Kind: Walk, Base: base, Target: target})

	require.True(t, r.Success)
	assert.Equal(t, []string{
		"1.3.6.1.2.1.1.1.0",
		"1.3.6.1.2.1.1.2.0",
		"1.3.6.1.2.1.1.3.0",
		"1.3.6.1.2.1.1.4.0",
		"1.3.6.1.2.1.1.5.0",
		"1.3.6.1.2.1.1.10.0",
	}, names(r.Bindings))
	assert.Equal(t, 3, r.RoundTrips)
	for _, b := range r.Bindings {
		assert.True(t, b.OID.InSubtree(base))
	}
}

func TestWalkEndOfMibView(t *testing.T) {
	agent := (&snmptest.Agent{PageSize: 10}).Add(
		snmptest.Octets("1.3.6.1.2.1.1.5.0", "core-sw-1"),
	)
	r := Do(context.Background(), agent, walkReq("1.3.6.1.2.1.1"))
	require.True(t, r.Success)
	assert.Equal(t, []string{"1.3.6.1.2.1.1.5.0"}, names(r.Bindings))
	assert.Equal(t, 1, r.RoundTrips)
}

func TestSingleShotKinds(t *testing.T) {
	for _, kind := range []Kind{Get, GetNext, GetBulk} {
		t.Run(kind.String(), func(t *testing.T) {
			tr := &snmptest.Transport{Respond: func(int, *gosnmp.SnmpPacket) skjaere.Reply {
				return snmptest.Response(
					snmptest.Integer(".1.3.6.1.2.1.2.2.1.1.1", 1),
					snmptest.Integer(".1.3.6.1.2.1.2.2.1.1.2", 2),
					snmptest.Integer(".1.3.6.1.2.1.2.2.1.1.3", 3),
				)
			}}
			r := Do(context.Background(), tr, Request{Kind: kind, Base: oid.MustParse("1.3.6.1.2.1.2.2.1.1"), Target: target})

			require.True(t, r.Success)
			assert.Equal(t, 1, r.RoundTrips)
			assert.Len(t, r.Bindings, 3)
			sent := tr.Sent()
			require.Len(t, sent, 1)
			assert.Equal(t, kind.pduType(), sent[0].PDUType)
			require.Len(t, sent[0].Variables, 1)
			assert.Equal(t, ".1.3.6.1.2.1.2.2.1.1", sent[0].Variables[0].Name)
			assert.Equal(t, gosnmp.Null, sent[0].Variables[0].Type)
		})
	}
}

func TestGetBulkParameters(t *testing.T) {
	tr := &snmptest.Transport{Respond: func(int, *gosnmp.SnmpPacket) skjaere.Reply {
		return snmptest.Response()
	}}
	Do(context.Background(), tr, Request{Kind: GetBulk, Base: oid.MustParse("1.3.6.1.2.1.2"), Target: target})
	sent := tr.Sent()
	require.Len(t, sent, 1)
	assert.EqualValues(t, 10000, sent[0].MaxRepetitions)
	assert.EqualValues(t, 0, sent[0].NonRepeaters)
}

func TestGetKeepsExceptionValues(t *testing.T) {
	agent := &snmptest.Agent{}
	r := Do(context.Background(), agent, Request{Kind: Get, Base: oid.MustParse("1.3.6.1.2.1.1.5.0"), Target: target})
	require.True(t, r.Success)
	require.Len(t, r.Bindings, 1)
	assert.Equal(t, gosnmp.NoSuchInstance, r.Bindings[0].PDU.Type)
}

func TestErrorStatus(t *testing.T) {
	t.Run("after data", func(t *testing.T) {
		tr := &snmptest.Transport{Respond: func(n int, p *gosnmp.SnmpPacket) skjaere.Reply {
			if n == 0 {
				return snmptest.Response(
					snmptest.Integer(".1.3.6.1.2.1.2.2.1.1.1", 1),
					snmptest.Integer(".1.3.6.1.2.1.2.2.1.1.2", 2),
				)
			}
			return snmptest.ErrorResponse(gosnmp.GenErr, 1)
		}}
		r := Do(context.Background(), tr, walkReq("1.3.6.1.2.1.2.2.1.1"))
		assert.True(t, r.Success)
		assert.Nil(t, r.Err)
		assert.Len(t, r.Bindings, 2)
		assert.Equal(t, 2, r.RoundTrips)
	})
	t.Run("without data", func(t *testing.T) {
		tr := &snmptest.Transport{Respond: func(int, *gosnmp.SnmpPacket) skjaere.Reply {
			return snmptest.ErrorResponse(gosnmp.AuthorizationError, 0)
		}}
		r := Do(context.Background(), tr, walkReq("1.3.6.1.2.1.2.2.1.1"))
		assert.False(t, r.Success)
		require.NotNil(t, r.Err)
		assert.Equal(t, skjaere.Application, r.Err.Kind)
		assert.Contains(t, r.Err.Error(), "AuthorizationError")
	})
}

func TestEmptyResponseEndsWalk(t *testing.T) {
	tr := &snmptest.Transport{Respond: func(n int, p *gosnmp.SnmpPacket) skjaere.Reply {
		if n == 0 {
			return snmptest.Response(snmptest.Integer(".1.3.6.1.2.1.2.2.1.1.1", 1))
		}
		return snmptest.Response()
	}}
	r := Do(context.Background(), tr, walkReq("1.3.6.1.2.1.2.2.1.1"))
	assert.True(t, r.Success)
	assert.Len(t, r.Bindings, 1)
	assert.Equal(t, 2, r.RoundTrips)
}

func TestFirstBindingOutOfScope(t *testing.T) {
	tr := &snmptest.Transport{Respond: func(int, *gosnmp.SnmpPacket) skjaere.Reply {
		return snmptest.Response(snmptest.Integer(".1.3.6.1.2.1.2.2.1.2.1", 1))
	}}
	r := Do(context.Background(), tr, walkReq("1.3.6.1.2.1.2.2.1.1"))
	assert.True(t, r.Success)
	assert.Empty(t, r.Bindings)
	assert.Equal(t, 1, r.RoundTrips)
}

func TestBindingBelowBaseIsOutOfScope(t *testing.T) {
	tr := &snmptest.Transport{Respond: func(int, *gosnmp.SnmpPacket) skjaere.Reply {
		return snmptest.Response(
			snmptest.Integer(".1.3.6.1.2.1.1", 1),
			snmptest.Integer(".1.3.6.1.2.1.1.5.0", 1),
		)
	}}
	r := Do(context.Background(), tr, walkReq("1.3.6.1.2.1.1.5"))
	assert.True(t, r.Success)
	assert.Empty(t, r.Bindings)
}

func TestWalkStopsWhenAgentDoesNotAdvance(t *testing.T) {
	tr := &snmptest.Transport{Respond: func(int, *gosnmp.SnmpPacket) skjaere.Reply {
		return snmptest.Response(snmptest.Integer(".1.3.6.1.2.1.2.2.1.1.1", 1))
	}}
	r := Do(context.Background(), tr, walkReq("1.3.6.1.2.1.2.2.1.1"))
	assert.True(t, r.Success)
	assert.Len(t, r.Bindings, 2)
	assert.Equal(t, 2, r.RoundTrips)
}

func TestSendError(t *testing.T) {
	r := Do(context.Background(), failingTransport{}, walkReq("1.3.6.1.2.1.1"))
	assert.False(t, r.Success)
	require.NotNil(t, r.Err)
	assert.Equal(t, skjaere.Transport, r.Err.Kind)
}

func TestEmptyBase(t *testing.T) {
	f := Start(context.Background(), failingTransport{}, Request{Kind: Get, Target: target})
	r := f.Result()
	assert.False(t, r.Success)
	require.NotNil(t, r.Err)
	assert.Equal(t, skjaere.Application, r.Err.Kind)
	assert.Equal(t, 0, r.RoundTrips)
}

func TestCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := Start(ctx, stuckTransport{}, walkReq("1.3.6.1.2.1.1"))
	select {
	case <-f.Done():
		t.Fatal("query finished before cancel")
	case <-time.After(20 * time.Millisecond):
	}
	cancel()
	r := f.Result()
	assert.False(t, r.Success)
	require.NotNil(t, r.Err)
	assert.Equal(t, skjaere.Transport, r.Err.Kind)
	assert.True(t, errors.Is(r.Err, context.Canceled))
}

func TestFutureWait(t *testing.T) {
	qctx, qcancel := context.WithCancel(context.Background())
	defer qcancel()
	f := Start(qctx, stuckTransport{}, walkReq("1.3.6.1.2.1.1"))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	r := f.Wait(ctx)
	assert.False(t, r.Success)
	require.NotNil(t, r.Err)
	assert.True(t, errors.Is(r.Err, context.DeadlineExceeded))
}

func TestFinalizeOnce(t *testing.T) {
	f := newFuture()
	assert.True(t, f.finalize(Result{Success: true}))
	assert.Panics(t, func() { f.finalize(Result{}) })
	assert.True(t, f.Result().Success)

	strictFinalize = false
	defer func() { strictFinalize = true }()
	assert.False(t, f.finalize(Result{}))
	assert.True(t, f.Result().Success)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"get": Get, "GETNEXT": GetNext, "GetBulk": GetBulk, "walk": Walk, "getwalk": Walk} {
		k, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, k)
	}
	_, err := ParseKind("trap")
	assert.Error(t, err)

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("walk")))
	assert.Equal(t, Walk, k)
	b, _ := GetBulk.MarshalText()
	assert.Equal(t, "getbulk", string(b))
}

type failingTransport struct{}

func (failingTransport) Send(context.Context, skjaere.Target, *gosnmp.SnmpPacket) (<-chan skjaere.Reply, error) {
	return nil, skjaere.TransportErrorf("unable to resolve nowhere")
}

type stuckTransport struct{}

func (stuckTransport) Send(context.Context, skjaere.Target, *gosnmp.SnmpPacket) (<-chan skjaere.Reply, error) {
	return make(chan skjaere.Reply), nil
}
