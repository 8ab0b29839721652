/*
 * skjaere service operations
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

/*
Package service is the boundary the front ends talk to. Every operation
takes plain input, builds a fresh Target, runs the matching state machine
and reduces the result to strings or rows.

Errors returned from here are always *skjaere.Error, so callers can tell
transport trouble from device and input trouble with skjaere.KindOf.
*/
package service

import (
	"context"
	"strings"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/mib"
	"github.com/telenornms/skjaere/oid"
	"github.com/telenornms/skjaere/query"
	"github.com/telenornms/skjaere/set"
	"github.com/telenornms/skjaere/table"
)

type Service struct {
	tr skjaere.Transport
}

func New(tr skjaere.Transport) *Service {
	return &Service{tr: tr}
}

type GetInput struct {
	Kind      query.Kind
	OID       string
	IP        string
	Community string // empty for the default
	Port      uint16 // 0 for 161
}

// Result is one binding rendered as strings.
type Result struct {
	OID   string `json:"oid"`
	Value string `json:"value"`
	Raw   any    `json:"-"` // Native(pdu)
}

type SetInput struct {
	IP        string
	Community string
	Port      uint16
	OID       string
	Value     string
}

type SetTypedInput struct {
	IP        string
	Community string
	Port      uint16
	Vars      []set.Var
}

func target(ip string, port uint16, community string) (skjaere.Target, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return skjaere.Target{}, skjaere.ApplicationErrorf("no address given")
	}
	return skjaere.NewTarget(ip, port, community), nil
}

// Get runs a GET, GETNEXT, GETBULK or WALK. On failure the bindings
// retrieved before the failure are returned along with the error.
func (s *Service) Get(ctx context.Context, in GetInput) ([]Result, error) {
	base, err := oid.Parse(in.OID)
	if err != nil {
		return nil, skjaere.ApplicationErrorf("bad oid: %w", err)
	}
	t, err := target(in.IP, in.Port, in.Community)
	if err != nil {
		return nil, err
	}
	skjaere.Debugf("%s %s@%s", in.Kind, base, t)
	r := query.Do(ctx, s.tr, query.Request{Kind: in.Kind, Base: base, Target: t})
	results := make([]Result, 0, len(r.Bindings))
	for _, b := range r.Bindings {
		results = append(results, Result{OID: b.OID.String(), Value: Render(b.PDU), Raw: Native(b.PDU)})
	}
	if !r.Success {
		return results, r.Err
	}
	return results, nil
}

// Set sets a single value, guessing its type.
func (s *Service) Set(ctx context.Context, in SetInput) error {
	o, err := oid.Parse(in.OID)
	if err != nil {
		return skjaere.ApplicationErrorf("bad oid: %w", err)
	}
	t, err := target(in.IP, in.Port, in.Community)
	if err != nil {
		return err
	}
	return set.Value(ctx, s.tr, t, o, in.Value)
}

// SetTyped sets several values of known types in one request.
func (s *Service) SetTyped(ctx context.Context, in SetTypedInput) error {
	t, err := target(in.IP, in.Port, in.Community)
	if err != nil {
		return err
	}
	return set.Typed(ctx, s.tr, t, in.Vars)
}

// GetInterfaces reads the ifTable. Interfaces are returned in ifIndex
// order; columns the device would not give us are left empty.
func (s *Service) GetInterfaces(ctx context.Context, ip string, community string) ([]mib.IfEntry, error) {
	t, err := target(ip, 0, community)
	if err != nil {
		return nil, err
	}
	return mib.NewIfEntries(table.Populate(ctx, s.tr, t, mib.IfTable)), nil
}

// GetTable populates an arbitrary table schema.
func (s *Service) GetTable(ctx context.Context, ip string, community string, schema table.Schema) ([]*table.Row, error) {
	t, err := target(ip, 0, community)
	if err != nil {
		return nil, err
	}
	return table.Populate(ctx, s.tr, t, schema), nil
}
