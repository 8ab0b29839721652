/*
 * skjaere snmp daemon
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

// skjaere-snmp consumes orders from an AMQP queue, runs them against the
// targets and sends the results through a skogul handler.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	sconfig "github.com/telenornms/skogul/config"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/engine"
	"github.com/telenornms/skjaere/session"
	"github.com/telenornms/skjaere/smierte"
)

// output loads the skogul configuration and picks the handler results are
// sent through.
func output() engine.Output {
	sc, err := sconfig.Path(skjaere.Config.OutputConfig)
	if err != nil {
		skjaere.Fatalf("skogul-config failed loading: %s", err)
	}
	h := sc.Handlers[skjaere.Config.OutputHandler]
	if h == nil {
		skjaere.Fatalf("missing %s handler in skogul config", skjaere.Config.OutputHandler)
	}
	return engine.OutputFunc(h.Handler.TransformAndSend)
}

func serveMetrics() {
	if skjaere.Config.MetricsListen == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		skjaere.Logf("Serving metrics on %s", skjaere.Config.MetricsListen)
		err := http.ListenAndServe(skjaere.Config.MetricsListen, mux)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			skjaere.Errorf("metrics listener failed: %s", err)
		}
	}()
}

func main() {
	var configFile string
	var debug bool
	flag.BoolVar(&debug, "debug", false, "enable debug")
	flag.StringVar(&configFile, "f", "/etc/skjaere/snmp.toml", "snmp config file")
	flag.Parse()
	if err := skjaere.ParseConfig(configFile); err != nil {
		skjaere.Fatalf("Couldn't parse config: %s", err)
	}
	if debug {
		skjaere.Config.Debug = true
	}
	skjaere.Init()
	skjaere.Debugf("Read config file: %s", configFile)

	if err := smierte.Init(skjaere.Config.MibModules, skjaere.Config.MibPaths); err != nil {
		skjaere.Fatalf("failed to load mibs: %s", err)
	}
	sess, err := session.NewSession(skjaere.Config.LocalAddress)
	if err != nil {
		skjaere.Fatalf("unable to open snmp socket: %s", err)
	}
	defer sess.Finalize()
	skjaere.Debugf("snmp session bound to %s", sess.LocalAddr())

	e := engine.New(sess, output())
	serveMetrics()

	amUrl, err := url.Parse(skjaere.Config.Broker)
	if err != nil {
		skjaere.Fatalf("Can't parse broker url: %s", err)
	}
	skjaere.Debugf("Connecting to broker: %v", amUrl.Redacted())
	conn, err := amqp.Dial(skjaere.Config.Broker)
	if err != nil {
		skjaere.Fatalf("can't connect to broker: %s", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		skjaere.Fatalf("can't get channel: %s", err)
	}
	defer ch.Close()
	err = ch.Qos(skjaere.Config.Workers+1, 0, true)
	if err != nil {
		skjaere.Fatalf("can't set qos: %s", err)
	}

	q, err := ch.QueueDeclare(
		skjaere.Config.Queue, // name
		false,                // durable
		false,                // delete when unused
		false,                // exclusive
		false,                // no-wait
		nil,                  // arguments
	)
	if err != nil {
		skjaere.Fatalf("can't declare queue: %s", err)
	}

	msgs, err := ch.Consume(
		q.Name, // queue
		"",     // consumer
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		skjaere.Fatalf("can't register consumer: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	skjaere.Logf("Listening for orders with %d workers", skjaere.Config.Workers)
	e.Serve(ctx, msgs, skjaere.Config.Workers)
	if ctx.Err() != nil {
		skjaere.Logf("Shutting down")
		return
	}
	// TODO: reconnect to the broker instead of exiting and relying on
	// the service manager to restart us.
	skjaere.Logf("Reached the end. Connection probably dead.")
	os.Exit(1)
}
