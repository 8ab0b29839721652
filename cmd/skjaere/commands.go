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
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/telenornms/skogul"
	sconfig "github.com/telenornms/skogul/config"
	"go.uber.org/multierr"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/engine"
	"github.com/telenornms/skjaere/oid"
	"github.com/telenornms/skjaere/query"
	"github.com/telenornms/skjaere/service"
	"github.com/telenornms/skjaere/set"
)

// newQueryCommand covers get, getnext, getbulk and walk, which only differ
// in the kind of query.
func newQueryCommand(c *cli, use string, short string) *cobra.Command {
	kind, err := query.ParseKind(use)
	if err != nil {
		panic(err)
	}
	return &cobra.Command{
		Use:   use + " TARGET OID...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var all []service.Result
			for _, arg := range args[1:] {
				o, err := resolve(arg)
				if err != nil {
					return err
				}
				res, err := c.svc.Get(cmd.Context(), service.GetInput{
					Kind:      kind,
					OID:       o,
					IP:        args[0],
					Community: c.community,
					Port:      c.port,
				})
				all = append(all, res...)
				if err != nil {
					c.printResults(all)
					return err
				}
			}
			return c.printResults(all)
		},
	}
}

func newSetCommand(c *cli) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "set TARGET OID VALUE [OID VALUE]...",
		Short: "SET objects, guessing the type unless --type is given",
		Long: `Without --type, a single object is set, trying OctetString, Integer32,
Unsigned32 and Counter64 in turn until the agent stops complaining about
the type. With --type, every OID VALUE pair is set in one request.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 || len(args)%2 != 1 {
				return fmt.Errorf("need a target and OID VALUE pairs")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if typ == "" {
				if len(args) != 3 {
					return fmt.Errorf("setting several objects needs --type")
				}
				o, err := resolve(args[1])
				if err != nil {
					return err
				}
				return c.svc.Set(cmd.Context(), service.SetInput{
					IP:        args[0],
					Community: c.community,
					Port:      c.port,
					OID:       o,
					Value:     args[2],
				})
			}
			t, err := set.ParseType(typ)
			if err != nil {
				return err
			}
			in := service.SetTypedInput{IP: args[0], Community: c.community, Port: c.port}
			for i := 1; i < len(args); i += 2 {
				o, err := resolve(args[i])
				if err != nil {
					return err
				}
				in.Vars = append(in.Vars, set.Var{OID: oid.MustParse(o), Value: args[i+1], Type: t})
			}
			return c.svc.SetTyped(cmd.Context(), in)
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "T", "", "value type: OctetString, Integer32, UnsignedInteger32, Counter32, Gauge32, TimeTicks, Counter64, IpAddress or ObjectIdentifier")
	return cmd
}

func newInterfacesCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "interfaces TARGET",
		Short: "read the interface table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ifs, err := c.svc.GetInterfaces(cmd.Context(), args[0], c.community)
			if err != nil {
				return err
			}
			if c.json {
				return c.printJSON(ifs)
			}
			w := tabwriter.NewWriter(c.out, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tDESCR\tADMIN\tOPER\tSPEED\tIN\tOUT")
			for _, i := range ifs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\n", i.Index, i.IfDescr, i.IfAdminStatus, i.IfOperStatus, i.IfSpeed, i.IfInOctets, i.IfOutOctets)
			}
			return w.Flush()
		},
	}
}

func newPropertiesCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "properties TARGET",
		Short: "name, vendor, platform, serial number and image of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.svc.GetNodeProperties(cmd.Context(), args[0], c.community)
			if err != nil {
				return err
			}
			if c.json {
				return c.printJSON(p)
			}
			fmt.Fprintf(c.out, "name:          %s\n", p.Name)
			fmt.Fprintf(c.out, "vendor:        %s\n", p.Vendor)
			fmt.Fprintf(c.out, "platform-id:   %s\n", p.PlatformID)
			fmt.Fprintf(c.out, "serial-number: %s\n", p.SerialNumber)
			fmt.Fprintf(c.out, "image-name:    %s\n", p.ImageName)
			return nil
		},
	}
}

// newOrderCommand runs order files the way the daemon would, sending the
// result through a skogul handler or printing it.
func newOrderCommand(c *cli) *cobra.Command {
	var skogulConf, handler string
	cmd := &cobra.Command{
		Use:   "order FILE...",
		Short: "run json order files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out engine.Output = engine.OutputFunc(func(sc *skogul.Container) error {
				return c.printJSON(sc)
			})
			if skogulConf != "" {
				sc, err := sconfig.Path(skogulConf)
				if err != nil {
					return fmt.Errorf("skogul-config failed loading: %w", err)
				}
				h := sc.Handlers[handler]
				if h == nil {
					return fmt.Errorf("missing %s handler in skogul config", handler)
				}
				out = engine.OutputFunc(h.Handler.TransformAndSend)
			}
			e := engine.New(c.tr, out)
			var errs error
			for _, file := range args {
				b, err := os.ReadFile(file)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				o, err := engine.ParseOrder(b)
				if err != nil {
					errs = multierr.Append(errs, fmt.Errorf("%s: %w", file, err))
					continue
				}
				if err := e.Run(cmd.Context(), o); err != nil {
					errs = multierr.Append(errs, fmt.Errorf("%s: %w", file, err))
					continue
				}
				skjaere.Debugf("%s: %s OK", file, o)
			}
			return errs
		},
	}
	cmd.Flags().StringVarP(&skogulConf, "skogul", "s", "", "skogul config to send results through, instead of printing them")
	cmd.Flags().StringVar(&handler, "skogul-handler", skjaere.Config.OutputHandler, "skogul handler to use")
	return cmd
}
