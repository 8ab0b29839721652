/*
 * skjaere well-known objects
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

// Package mib holds the handful of standard objects and tables skjaere
// knows about without loading any MIB files.
package mib

import (
	"github.com/telenornms/skjaere/oid"
)

// SNMPv2-MIB system group and ENTITY-MIB, the first physical entity being
// the chassis on every device we care about.
var (
	System                 = oid.MustParse("1.3.6.1.2.1.1")
	SysDescr               = oid.MustParse("1.3.6.1.2.1.1.1.0")
	SysObjectID            = oid.MustParse("1.3.6.1.2.1.1.2.0")
	SysUpTime              = oid.MustParse("1.3.6.1.2.1.1.3.0")
	SysName                = oid.MustParse("1.3.6.1.2.1.1.5.0")
	EntPhysicalSoftwareRev = oid.MustParse("1.3.6.1.2.1.47.1.1.1.1.10.1")
	EntPhysicalSerialNum   = oid.MustParse("1.3.6.1.2.1.47.1.1.1.1.11.1")
)

// IfName is the IF-MIB ifXTable column element maps are keyed on by
// default.
var IfName = oid.MustParse("1.3.6.1.2.1.31.1.1.1.1")

// NodeProperty names a per-device value and where it lives.
type NodeProperty struct {
	Name string
	OID  oid.OID
}

// NodeProperties are fetched together by GetNodeProperties.
var NodeProperties = []NodeProperty{
	{"name", SysName},
	{"vendor", SysDescr},
	{"platform-id", SysObjectID},
	{"serial-number", EntPhysicalSerialNum},
	{"image-name", EntPhysicalSoftwareRev},
}
