/*
 * skjaere order engine
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

/*
Package engine turns orders into SNMP operations and the results into
skogul metrics. It is what the skjaere-snmp daemon runs for every order it
pulls off the queue.

An order runs with its target locked in the inventory, so a target is
only ever polled by one order at a time. Element maps are cached in the
engine and shared between orders.
*/
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/telenornms/skogul"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/inventory"
	"github.com/telenornms/skjaere/mib"
	"github.com/telenornms/skjaere/oid"
	"github.com/telenornms/skjaere/omap"
	"github.com/telenornms/skjaere/query"
	"github.com/telenornms/skjaere/service"
	"github.com/telenornms/skjaere/smierte"
)

// Output is where results go. A skogul handler is one.
type Output interface {
	TransformAndSend(c *skogul.Container) error
}

// OutputFunc adapts a function, typically a method value of a skogul
// handler, to Output.
type OutputFunc func(c *skogul.Container) error

func (f OutputFunc) TransformAndSend(c *skogul.Container) error {
	return f(c)
}

// Engine is semi-global state shared by all orders, most notably the
// element map cache.
type Engine struct {
	Service *service.Service
	Maps    *omap.Cache
	Output  Output

	// RequeueDelay is how long a failed order is held before it is
	// handed back to the broker.
	RequeueDelay func() time.Duration

	tr skjaere.Transport
}

func New(tr skjaere.Transport, out Output) *Engine {
	return &Engine{
		Service:      service.New(tr),
		Maps:         omap.NewCache(),
		Output:       out,
		RequeueDelay: randomDelay,
		tr:           tr,
	}
}

// task is tied to a single order on a single host
type task struct {
	order     Order
	community string
	resolve   bool
	omap      *omap.OMap
	metric    *skogul.Metric
}

// Run locks the target, executes the order and sends the result, if the
// mode has one.
func (e *Engine) Run(ctx context.Context, o Order) error {
	host, err := inventory.Lock(o.Target)
	if err != nil {
		return fmt.Errorf("unable to acquire host lock: %w", err)
	}
	defer host.Unlock()

	community := host.Community
	if o.Community != "" {
		community = o.Community
	}
	skjaere.Debugf("%s - starting %s run", o.Target, o.Mode)
	metrics, err := e.execute(ctx, o, community)
	if err != nil {
		return err
	}
	if len(metrics) == 0 {
		return nil
	}
	c := skogul.Container{Metrics: metrics}
	if err := e.Output.TransformAndSend(&c); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	return nil
}

func (e *Engine) execute(ctx context.Context, o Order, community string) ([]*skogul.Metric, error) {
	switch o.Mode {
	case ClearMap:
		return nil, e.clearMap(o)
	case BuildMap:
		return nil, e.buildMap(ctx, o, community)
	case Interfaces:
		return e.interfaces(ctx, o, community)
	}

	t := &task{order: o, community: community, metric: newMetric(o)}
	var err error
	switch o.Mode {
	case Walk, Get, GetNext, GetBulk, GetElements:
		err = e.get(ctx, t)
	case Set:
		err = e.set(ctx, t)
	case SetTyped:
		err = e.setTyped(ctx, t)
	case Properties:
		err = e.properties(ctx, t)
	default:
		err = fmt.Errorf("unsupported mode %s", o.Mode)
	}
	if err != nil {
		return nil, err
	}
	return []*skogul.Metric{t.metric}, nil
}

func newMetric(o Order) *skogul.Metric {
	now := time.Now()
	m := &skogul.Metric{
		Time:     &now,
		Metadata: map[string]interface{}{"target": o.Target},
		Data:     make(map[string]interface{}),
	}
	if o.ID != "" {
		m.Metadata["id"] = o.ID
	}
	return m
}

// keyColumn resolves the column of an element map, ifName if none is
// given.
func keyColumn(key string) (oid.OID, error) {
	if key == "" {
		return mib.IfName, nil
	}
	col, err := smierte.Resolve(key)
	if err != nil {
		return nil, fmt.Errorf("unable to look up map key %s: %w", key, err)
	}
	return col, nil
}

func (e *Engine) target(o Order, community string) skjaere.Target {
	return skjaere.NewTarget(o.Target, o.Port, community)
}

// clearMap clears the map cache for a target/key combo. If the key is
// blank, ALL maps for that target are cleared.
func (e *Engine) clearMap(o Order) error {
	if o.Key == "" {
		e.Maps.Clear(o.Target, nil)
		return nil
	}
	col, err := keyColumn(o.Key)
	if err != nil {
		return err
	}
	e.Maps.Clear(o.Target, col)
	return nil
}

func (e *Engine) buildMap(ctx context.Context, o Order, community string) error {
	col, err := keyColumn(o.Key)
	if err != nil {
		return err
	}
	e.Maps.Clear(o.Target, col)
	if _, err := e.Maps.Get(ctx, e.tr, e.target(o, community), col); err != nil {
		return fmt.Errorf("unable to build omap: %w", err)
	}
	return nil
}

var kinds = map[Mode]query.Kind{
	Walk:        query.Walk,
	Get:         query.Get,
	GetNext:     query.GetNext,
	GetBulk:     query.GetBulk,
	GetElements: query.Get,
}

// get runs one query per oid, or per oid and element. Any failed query
// fails the order.
func (e *Engine) get(ctx context.Context, t *task) error {
	o := t.order
	if len(o.Oids) < 1 {
		return fmt.Errorf("trying to start run with 0 oids?")
	}
	lookedup := false
	oids := make([]oid.OID, 0, len(o.Oids))
	for _, arg := range o.Oids {
		n, err := smierte.Lookup(arg)
		if err != nil {
			return fmt.Errorf("unable to look up oid: %w", err)
		}
		q, err := oid.Parse(n.Qualified)
		if err != nil {
			return fmt.Errorf("unable to look up oid %s: %w", arg, err)
		}
		oids = append(oids, q)
		lookedup = lookedup || n.Lookedup
	}
	switch o.Result {
	case Auto:
		t.resolve = lookedup
	case Resolve:
		t.resolve = true
	}

	if o.Mode == GetElements || o.Key != "" {
		col, err := keyColumn(o.Key)
		if err != nil {
			return err
		}
		t.omap, err = e.Maps.Get(ctx, e.tr, e.target(o, t.community), col)
		if err != nil {
			return fmt.Errorf("failed to build element map: %w", err)
		}
	}
	if o.Mode == GetElements {
		if len(o.Elements) == 0 {
			return fmt.Errorf("element mode without elements")
		}
		idxs, err := t.omap.Match(o.Elements...)
		if err != nil {
			return err
		}
		perElement := make([]oid.OID, 0, len(oids)*len(idxs))
		for _, base := range oids {
			for _, idx := range idxs {
				suffix, err := oid.Parse(idx)
				if err != nil {
					return fmt.Errorf("bad index %s in element map: %w", idx, err)
				}
				perElement = append(perElement, base.Append(suffix...))
			}
		}
		oids = perElement
	}

	for _, q := range oids {
		res, err := e.Service.Get(ctx, service.GetInput{
			Kind:      kinds[o.Mode],
			OID:       q.String(),
			IP:        o.Target,
			Community: t.community,
			Port:      o.Port,
		})
		if err != nil {
			return fmt.Errorf("snmp %s of %s failed: %w", kinds[o.Mode], q, err)
		}
		for _, r := range res {
			t.save(r)
		}
	}
	return nil
}

// save stores a result, either under the numeric OID or resolved and
// grouped per element.
func (t *task) save(r service.Result) {
	if !t.resolve {
		t.metric.Data[r.OID] = r.Raw
		return
	}
	o, err := oid.Parse(r.OID)
	if err != nil {
		t.metric.Data[r.OID] = r.Raw
		return
	}
	name, element := smierte.Name(o)
	if element == "" {
		element = "0"
	}
	if t.omap != nil && t.omap.IdxToName[element] != "" {
		element = t.omap.IdxToName[element]
	}
	inner, ok := t.metric.Data[element].(map[string]interface{})
	if !ok {
		inner = make(map[string]interface{})
		t.metric.Data[element] = inner
	}
	inner[name] = r.Raw
}

func (e *Engine) set(ctx context.Context, t *task) error {
	o := t.order
	if len(o.Oids) != 1 {
		return fmt.Errorf("set needs exactly one oid, got %d", len(o.Oids))
	}
	q, err := smierte.Resolve(o.Oids[0])
	if err != nil {
		return fmt.Errorf("unable to look up oid: %w", err)
	}
	err = e.Service.Set(ctx, service.SetInput{IP: o.Target, Community: t.community, Port: o.Port, OID: q.String(), Value: o.Value})
	if err != nil {
		return err
	}
	t.metric.Data[q.String()] = o.Value
	return nil
}

func (e *Engine) setTyped(ctx context.Context, t *task) error {
	o := t.order
	if len(o.Vars) == 0 {
		return fmt.Errorf("typed set without variables")
	}
	err := e.Service.SetTyped(ctx, service.SetTypedInput{IP: o.Target, Community: t.community, Port: o.Port, Vars: o.Vars})
	if err != nil {
		return err
	}
	for _, v := range o.Vars {
		t.metric.Data[v.OID.String()] = v.Value
	}
	return nil
}

func (e *Engine) properties(ctx context.Context, t *task) error {
	p, err := e.Service.GetNodeProperties(ctx, t.order.Target, t.community)
	if err != nil {
		return err
	}
	t.metric.Data["name"] = p.Name
	t.metric.Data["vendor"] = p.Vendor
	t.metric.Data["platform-id"] = p.PlatformID
	t.metric.Data["serial-number"] = p.SerialNumber
	t.metric.Data["image-name"] = p.ImageName
	return nil
}

// interfaces sends one metric per row of the ifTable, with the index and
// description as metadata.
func (e *Engine) interfaces(ctx context.Context, o Order, community string) ([]*skogul.Metric, error) {
	rows, err := e.Service.GetTable(ctx, o.Target, community, mib.IfTable)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no interfaces returned from %s", o.Target)
	}
	metrics := make([]*skogul.Metric, 0, len(rows))
	for _, r := range rows {
		m := newMetric(o)
		m.Metadata["ifIndex"] = r.Index
		values := r.Values()
		if d, ok := values["ifDescr"]; ok {
			m.Metadata["ifDescr"] = d
			delete(values, "ifDescr")
		}
		for k, v := range values {
			m.Data[k] = v
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}
