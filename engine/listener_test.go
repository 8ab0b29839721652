/*
 * skjaere order listener tests
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
	"context"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"

	"github.com/telenornms/skjaere/oid"
)

// acker records what happened to each delivery, by tag.
type acker struct {
	mu       sync.Mutex
	acked    []uint64
	rejected []uint64
	requeued map[uint64]bool
}

func newAcker() *acker {
	return &acker{requeued: make(map[uint64]bool)}
}

func (a *acker) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *acker) Nack(tag uint64, multiple bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requeued[tag] = requeue
	return nil
}

func (a *acker) Reject(tag uint64, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rejected = append(a.rejected, tag)
	return nil
}

func delivery(a *acker, tag uint64, redelivered bool, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: a, DeliveryTag: tag, Redelivered: redelivered, Body: []byte(body)}
}

func TestListen(t *testing.T) {
	agent := device()
	agent.Silent = []oid.OID{oid.MustParse("1.3.6.1.2.1.47")}
	e, out := newEngine(agent)
	e.RequeueDelay = func() time.Duration { return 0 }
	a := newAcker()

	c := make(chan amqp.Delivery, 4)
	c <- delivery(a, 1, false, `{"Target": "192.0.2.1", "Mode": "get", "Oids": ["1.3.6.1.2.1.1.5.0"]}`)
	c <- delivery(a, 2, false, `{"Target": "192.0.2.1", "Mode": "get"`)
	c <- delivery(a, 3, false, `{"Target": "192.0.2.1", "Mode": "get", "Oids": ["1.3.6.1.2.1.47.1.1.1.1.11.1"]}`)
	c <- delivery(a, 4, true, `{"Target": "192.0.2.1", "Mode": "get", "Oids": ["1.3.6.1.2.1.47.1.1.1.1.11.1"]}`)
	close(c)
	e.Listen(context.Background(), c, "0")

	assert.Equal(t, []uint64{1}, a.acked)
	assert.Equal(t, []uint64{2}, a.rejected)
	assert.Equal(t, map[uint64]bool{3: true, 4: false}, a.requeued)
	assert.Len(t, out.metrics(), 1)
}

func TestListenStopsOnCancel(t *testing.T) {
	e, _ := newEngine(device())
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan amqp.Delivery)
	done := make(chan struct{})
	go func() {
		e.Listen(ctx, c, "0")
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
}

func TestServe(t *testing.T) {
	e, out := newEngine(device())
	a := newAcker()
	c := make(chan amqp.Delivery)
	go func() {
		// distinct targets, or the inventory lock would refuse some
		for i, target := range []string{"192.0.2.10", "192.0.2.11", "192.0.2.12", "192.0.2.13", "192.0.2.14"} {
			c <- delivery(a, uint64(i), false, `{"Target": "`+target+`", "Mode": "get", "Oids": ["1.3.6.1.2.1.1.5.0"]}`)
		}
		close(c)
	}()
	e.Serve(context.Background(), c, 3)
	assert.Len(t, a.acked, 5)
	assert.Len(t, out.metrics(), 5)
}
