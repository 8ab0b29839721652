/*
 * skjaere command line tool
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
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/oid"
	"github.com/telenornms/skjaere/service"
	"github.com/telenornms/skjaere/session"
	"github.com/telenornms/skjaere/smierte"
)

// cli is the state shared by the sub-commands. It is set up by the root
// command's PersistentPreRunE.
type cli struct {
	configFile string
	community  string
	port       uint16
	timeout    time.Duration
	retries    int
	debug      bool
	handler    bool
	json       bool
	mibs       bool

	tr      skjaere.Transport
	svc     *service.Service
	closeTr func()
	out     io.Writer
}

// NewCommand returns the root command. A non-nil transport is used as is,
// which is what the tests do; otherwise one is opened per invocation.
func NewCommand(tr skjaere.Transport) (cmd *cobra.Command) {
	c := &cli{tr: tr, closeTr: func() {}}

	cmd = &cobra.Command{
		Use:          "skjaere",
		Short:        "SNMP v2c client",
		Long:         `skjaere talks SNMP v2c to a target: GET, GETNEXT, GETBULK, walks, SETs and a few well-known tables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.out = cmd.OutOrStdout()
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.closeTr()
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&c.configFile, "config", "f", "", "toml config file")
	f.StringVarP(&c.community, "community", "c", "", "community (default from config)")
	f.Uint16VarP(&c.port, "port", "p", 0, "agent port (default 161)")
	f.DurationVarP(&c.timeout, "timeout", "t", 0, "per attempt timeout (default from config)")
	f.IntVarP(&c.retries, "retries", "r", -1, "resends after the first attempt (default from config)")
	f.BoolVarP(&c.debug, "debug", "d", false, "enable debug")
	f.BoolVar(&c.handler, "handler", false, "use a gosnmp connection per request instead of the shared socket")
	f.BoolVarP(&c.json, "json", "j", false, "print results as json")
	f.BoolVarP(&c.mibs, "mibs", "m", false, "load MIB modules, for symbolic names")

	cmd.AddCommand(
		newQueryCommand(c, "get", "GET the objects"),
		newQueryCommand(c, "getnext", "GETNEXT, the successor of each object"),
		newQueryCommand(c, "getbulk", "one GETBULK page after each object"),
		newQueryCommand(c, "walk", "walk the subtree of each object"),
		newSetCommand(c),
		newInterfacesCommand(c),
		newPropertiesCommand(c),
		newOrderCommand(c),
	)
	return cmd
}

func (c *cli) setup(cmd *cobra.Command) error {
	if c.configFile != "" {
		if err := skjaere.ParseConfig(c.configFile); err != nil {
			return err
		}
	}
	if c.debug {
		skjaere.Config.Debug = true
	}
	if c.timeout > 0 {
		skjaere.Config.Timeout = c.timeout
	}
	if c.retries >= 0 {
		skjaere.Config.Retries = c.retries
	}
	skjaere.Init()
	if c.mibs {
		if err := smierte.Init(skjaere.Config.MibModules, skjaere.Config.MibPaths); err != nil {
			return fmt.Errorf("failed to load mibs: %w", err)
		}
	}
	if c.tr == nil {
		if c.handler {
			c.tr = session.NewHandlerTransport()
		} else {
			sess, err := session.NewSession(skjaere.Config.LocalAddress)
			if err != nil {
				return fmt.Errorf("unable to open snmp socket: %w", err)
			}
			c.tr = sess
			c.closeTr = sess.Finalize
		}
	}
	c.svc = service.New(c.tr)
	return nil
}

// resolve turns a numeric or symbolic OID into the dotted form service
// wants.
func resolve(arg string) (string, error) {
	o, err := smierte.Resolve(arg)
	if err != nil {
		return "", err
	}
	return o.String(), nil
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResults prints "oid = value", with the OID named if the MIBs are
// loaded.
func (c *cli) printResults(res []service.Result) error {
	if c.json {
		return c.printJSON(res)
	}
	for _, r := range res {
		name := r.OID
		if o, err := oid.Parse(r.OID); err == nil {
			if n, suffix := smierte.Name(o); suffix != "" {
				name = n + "." + suffix
			} else {
				name = n
			}
		}
		fmt.Fprintf(c.out, "%s = %s\n", name, r.Value)
	}
	return nil
}
