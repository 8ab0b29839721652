/*
 * skjaere walk state machine
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
	"sync/atomic"

	"github.com/gosnmp/gosnmp"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/oid"
)

// strictFinalize turns a second finalization into a panic. Tests enable
// it; in production the second result is logged and dropped.
var strictFinalize = false

// Future is the handle of a running query.
type Future struct {
	done      chan struct{}
	finalized atomic.Bool
	result    Result
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the result. Only valid once Done is closed.
func (f *Future) Result() Result {
	<-f.done
	return f.result
}

// Wait blocks for the result or until ctx is done. Giving up on the wait
// does not stop the query; cancel the context passed to Start for that.
func (f *Future) Wait(ctx context.Context) Result {
	select {
	case <-f.done:
		return f.result
	case <-ctx.Done():
		return Result{Err: skjaere.TransportErrorf("gave up waiting for query: %w", ctx.Err())}
	}
}

// finalize stores the result and releases waiters. Reports false if the
// future already had a result.
func (f *Future) finalize(r Result) bool {
	if !f.finalized.CompareAndSwap(false, true) {
		if strictFinalize {
			panic("query finalized twice")
		}
		skjaere.Errorf("query finalized twice, dropping second result (success=%v, err=%v)", r.Success, r.Err)
		return false
	}
	f.result = r
	close(f.done)
	return true
}

type state int

const (
	issued state = iota
	validating
	continuing
	done
	failed
)

type walker struct {
	tr       skjaere.Transport
	req      Request
	fut      *Future
	cursor   oid.OID
	bindings []skjaere.Binding
	rounds   int
}

// Start begins a query and returns at once.
func Start(ctx context.Context, tr skjaere.Transport, req Request) *Future {
	if req.MaxRepetitions == 0 {
		req.MaxRepetitions = skjaere.Config.MaxRepetitions
	}
	w := &walker{
		tr:     tr,
		req:    req,
		fut:    newFuture(),
		cursor: req.Base,
	}
	if len(req.Base) == 0 {
		w.fail(skjaere.ApplicationErrorf("%s: empty base oid", req.Kind))
		return w.fut
	}
	go w.run(ctx)
	return w.fut
}

// Do is Start followed by waiting for the result.
func Do(ctx context.Context, tr skjaere.Transport, req Request) Result {
	return Start(ctx, tr, req).Result()
}

func (w *walker) run(ctx context.Context) {
	st := issued
	var reply skjaere.Reply
	for {
		switch st {
		case issued:
			reply, st = w.roundTrip(ctx)
		case validating:
			st = w.validate(reply.Packet)
		case continuing:
			st = issued
		case done:
			w.succeed()
			return
		case failed:
			return
		}
	}
}

// packet builds the request for the current cursor. Every round trip gets
// a fresh packet.
func (w *walker) packet() *gosnmp.SnmpPacket {
	p := &gosnmp.SnmpPacket{
		Version:   gosnmp.Version2c,
		PDUType:   w.req.Kind.pduType(),
		Variables: []gosnmp.SnmpPDU{{Name: w.cursor.Wire(), Type: gosnmp.Null}},
	}
	if p.PDUType == gosnmp.GetBulkRequest {
		p.MaxRepetitions = w.req.MaxRepetitions
		p.NonRepeaters = w.req.NonRepeaters
	}
	return p
}

func (w *walker) roundTrip(ctx context.Context) (skjaere.Reply, state) {
	ch, err := w.tr.Send(ctx, w.req.Target, w.packet())
	if err != nil {
		w.fail(skjaere.AsError(err))
		return skjaere.Reply{}, failed
	}
	var reply skjaere.Reply
	select {
	case reply = <-ch:
	case <-ctx.Done():
		w.fail(skjaere.TransportErrorf("%s: %w", w.req, ctx.Err()))
		return skjaere.Reply{}, failed
	}
	w.rounds++
	switch {
	case reply.Err != nil:
		w.fail(skjaere.AsError(reply.Err))
		return reply, failed
	case reply.TimedOut():
		w.fail(skjaere.TransportErrorf("%s: no response for %s after %d round trips: %w", w.req, w.cursor, w.rounds, skjaere.ErrTimeout))
		return reply, failed
	}
	return reply, validating
}

// validate accepts the in-scope prefix of the reply and decides how to go
// on.
func (w *walker) validate(p *gosnmp.SnmpPacket) state {
	var last oid.OID
	exhausted := false
	for _, v := range p.Variables {
		o, err := oid.Parse(v.Name)
		if err != nil || !o.InSubtree(w.req.Base) {
			exhausted = true
			break
		}
		if w.req.Kind == Walk && v.Type == gosnmp.EndOfMibView {
			exhausted = true
			break
		}
		w.bindings = append(w.bindings, skjaere.Binding{OID: o, PDU: v})
		last = o
	}

	if p.Error != gosnmp.NoError {
		skjaere.Logf("%s: agent returned error status %v (index %d) after %d bindings", w.req, p.Error, p.ErrorIndex, len(w.bindings))
		if len(w.bindings) == 0 {
			w.fail(skjaere.ApplicationErrorf("%s: error status %v, error index %d", w.req, p.Error, p.ErrorIndex))
			return failed
		}
		return done
	}
	if w.req.Kind != Walk || exhausted || last == nil {
		return done
	}
	if last.Compare(w.cursor) <= 0 {
		skjaere.Debugf("%s: agent did not advance past %s, stopping", w.req, w.cursor)
		return done
	}
	w.cursor = last
	return continuing
}

func (w *walker) succeed() {
	w.fut.finalize(Result{Success: true, Bindings: w.bindings, RoundTrips: w.rounds})
}

func (w *walker) fail(err *skjaere.Error) {
	skjaere.Debugf("%s failed with %d bindings: %v", w.req, len(w.bindings), err)
	w.fut.finalize(Result{Bindings: w.bindings, RoundTrips: w.rounds, Err: err})
}
