// addjob publishes order files to the skjaere queue, over and over with a
// delay in between, or once if the delay is negative.
//
//	addjob [-f config] 30s orders/*.json
package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/engine"
)

func main() {
	var configFile string
	var expire time.Duration
	flag.StringVar(&configFile, "f", "", "snmp config file, for the broker and queue")
	flag.DurationVar(&expire, "expire", 10*time.Second, "drop orders not picked up within this time")
	flag.Parse()
	if configFile != "" {
		if err := skjaere.ParseConfig(configFile); err != nil {
			skjaere.Fatalf("Couldn't parse config: %s", err)
		}
	}
	skjaere.Init()
	args := flag.Args()
	if len(args) < 2 {
		skjaere.Fatalf("usage: addjob [-f config] delay order-file...")
	}
	sleeptime, err := time.ParseDuration(args[0])
	if err != nil {
		skjaere.Fatalf("unable to parse delay-time: %s", err)
	}
	var bs [][]byte
	for _, file := range args[1:] {
		b, err := os.ReadFile(file)
		if err != nil {
			skjaere.Fatalf("failed to read %s: %s", file, err)
		}
		if _, err := engine.ParseOrder(b); err != nil {
			skjaere.Fatalf("%s: %s", file, err)
		}
		bs = append(bs, b)
	}

	conn, err := amqp.Dial(skjaere.Config.Broker)
	if err != nil {
		skjaere.Fatalf("failed to connect to rabbitMQ: %s", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		skjaere.Fatalf("failed to connect to open a channel: %s", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		skjaere.Config.Queue, // name
		false,                // durable
		false,                // delete when unused
		false,                // exclusive
		false,                // no-wait
		nil,                  // arguments
	)
	if err != nil {
		skjaere.Fatalf("failed to declare a queue: %s", err)
	}

	for {
		for _, b := range bs {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = ch.PublishWithContext(ctx,
				"",     // exchange
				q.Name, // routing key
				false,  // mandatory
				false,  // immediate
				amqp.Publishing{
					ContentType: "application/json",
					Expiration:  strconv.FormatInt(expire.Milliseconds(), 10),
					Body:        b,
				})
			cancel()
			if err != nil {
				skjaere.Fatalf("failed to publish a message: %s", err)
			}
			skjaere.Logf("Sent %d bytes", len(b))
		}
		if sleeptime < 0 {
			skjaere.Logf("negative sleeptime, exiting after 1 publish")
			return
		}
		skjaere.Logf("Sleeping %s", sleeptime)
		time.Sleep(sleeptime)
	}
}
