/*
 * skjaere order listeners
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
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sourcegraph/conc"

	"github.com/telenornms/skjaere"
)

var (
	ordersHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skjaere",
		Subsystem: "engine",
		Name:      "orders_total",
		Help:      "Orders handled, by mode and outcome.",
	}, []string{"mode", "outcome"})
	orderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skjaere",
		Subsystem: "engine",
		Name:      "order_duration_seconds",
		Help:      "Time from an order is picked up until it is done.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"mode"})
)

// randomDelay spreads requeued orders over 1 to 10 seconds, so a flapping
// target doesn't get hammered.
func randomDelay() time.Duration {
	return time.Second*1 + time.Second*time.Duration(rand.Int()%10)
}

// Serve runs workers listeners on the same delivery channel and returns
// when all of them are done.
func (e *Engine) Serve(ctx context.Context, deliveries <-chan amqp.Delivery, workers int) {
	var wg conc.WaitGroup
	for i := 0; i < workers; i++ {
		name := strconv.Itoa(i)
		wg.Go(func() {
			e.Listen(ctx, deliveries, name)
		})
	}
	wg.Wait()
}

// Listen handles deliveries until the channel is closed or ctx is done.
// Successful orders are acked. Failed orders are nacked, and requeued
// unless they have been redelivered already. Orders that can't be parsed
// are rejected.
func (e *Engine) Listen(ctx context.Context, deliveries <-chan amqp.Delivery, name string) {
	skjaere.Debugf("Starting listener %s...", name)
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			e.handle(ctx, d, name)
		}
	}
}

func (e *Engine) handle(ctx context.Context, d amqp.Delivery, name string) {
	order, err := ParseOrder(d.Body)
	if err != nil {
		skjaere.Logf("[%2s]: dropping order: %s", name, err)
		ordersHandled.WithLabelValues("", "invalid").Inc()
		if err := d.Reject(false); err != nil {
			skjaere.Logf("Reject failed: %s", err)
		}
		return
	}
	now := time.Now()
	err = e.Run(ctx, order)
	since := time.Since(now).Round(time.Millisecond * 10)
	orderDuration.WithLabelValues(order.Mode.String()).Observe(time.Since(now).Seconds())
	if err == nil {
		skjaere.Logf("[%2s]: %-15s OK %s", name, order, since.String())
		ordersHandled.WithLabelValues(order.Mode.String(), "ok").Inc()
		if err := d.Ack(false); err != nil {
			skjaere.Logf("Ack failed: %s", err)
		}
		return
	}

	requeue := !d.Redelivered
	skjaere.Logf("[%2s]: %-15s FAIL %s: %s (requeue: %v)", name, order, since.String(), err, requeue)
	ordersHandled.WithLabelValues(order.Mode.String(), outcome(err)).Inc()
	if requeue {
		delay := e.RequeueDelay()
		skjaere.Debugf("Sleeping %v before NACK/requeue", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}
	if err := d.Nack(false, requeue); err != nil {
		skjaere.Logf("NAck failed: %s", err)
	}
}

func outcome(err error) string {
	var se *skjaere.Error
	if !errors.As(err, &se) {
		return "failed"
	}
	if se.Kind == skjaere.Transport {
		return "transport"
	}
	return "application"
}
