/*
 * skjaere node properties
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

package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/mib"
	"github.com/telenornms/skjaere/query"
)

type NodeProperties struct {
	Name         string `json:"name"`
	Vendor       string `json:"vendor"`
	PlatformID   string `json:"platform-id"`
	SerialNumber string `json:"serial-number"`
	ImageName    string `json:"image-name"`
}

func (n *NodeProperties) set(name, value string) {
	switch name {
	case "name":
		n.Name = value
	case "vendor":
		n.Vendor = value
	case "platform-id":
		n.PlatformID = value
	case "serial-number":
		n.SerialNumber = value
	case "image-name":
		n.ImageName = value
	}
}

// GetNodeProperties GETs the mib.NodeProperties objects concurrently. If
// any of them fails the whole lookup fails, with every failure listed.
func (s *Service) GetNodeProperties(ctx context.Context, ip string, community string) (NodeProperties, error) {
	var props NodeProperties
	t, err := target(ip, 0, community)
	if err != nil {
		return props, err
	}

	var mu sync.Mutex
	var errs error
	var wg conc.WaitGroup
	for _, p := range mib.NodeProperties {
		wg.Go(func() {
			r := query.Do(ctx, s.tr, query.Request{Kind: query.Get, Base: p.OID, Target: t})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case !r.Success:
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", p.Name, r.Err))
			case len(r.Bindings) == 0:
				errs = multierr.Append(errs, skjaere.ApplicationErrorf("%s: no value returned for %s", p.Name, p.OID))
			default:
				props.set(p.Name, Render(r.Bindings[0].PDU))
			}
		})
	}
	wg.Wait()

	if errs != nil {
		return NodeProperties{}, aggregate(fmt.Sprintf("node properties of %s", t), errs)
	}
	return props, nil
}

// aggregate wraps a multierr in an *skjaere.Error. It is a transport
// error only if every part of it is.
func aggregate(what string, errs error) *skjaere.Error {
	kind := skjaere.Transport
	for _, e := range multierr.Errors(errs) {
		if skjaere.KindOf(e) != skjaere.Transport {
			kind = skjaere.Application
			break
		}
	}
	return &skjaere.Error{Kind: kind, Msg: fmt.Sprintf("%s: %v", what, errs), Err: errs}
}
