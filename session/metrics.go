/*
 * skjaere session metrics
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

package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skjaere",
		Subsystem: "session",
		Name:      "requests_total",
		Help:      "SNMP request PDUs sent, not counting retries.",
	})
	retriesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skjaere",
		Subsystem: "session",
		Name:      "retries_total",
		Help:      "SNMP request PDUs re-sent after a per-attempt timeout.",
	})
	responses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skjaere",
		Subsystem: "session",
		Name:      "responses_total",
		Help:      "Responses matched to an outstanding request.",
	})
	timeouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skjaere",
		Subsystem: "session",
		Name:      "timeouts_total",
		Help:      "Requests that got no response after all retries.",
	})
	dropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skjaere",
		Subsystem: "session",
		Name:      "dropped_total",
		Help:      "Inbound datagrams that were discarded.",
	}, []string{"reason"})
	pendingGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skjaere",
		Subsystem: "session",
		Name:      "pending_requests",
		Help:      "Requests waiting for a response.",
	})
)
