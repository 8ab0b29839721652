/*
 * skjaere documentation-dummy
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
Package skjaere is an SNMP v2c client engine: GET, GETNEXT, GETBULK, full
walks and SET against network devices, plus table population where every
column of a MIB table is walked concurrently and joined into rows by index.

The root package only holds what everything else needs: configuration,
logging, the Target/Transport types and the error classification. The
actual work lives in the sub-packages:

	oid        numeric object identifiers
	session    the shared UDP socket and its pending-request registry
	query      the GET/GETNEXT/GETBULK/WALK state machine
	set        the SET state machine and its type-coercion ladder
	table      concurrent column walks joined into rows
	mib        well-known tables and OIDs (ifTable, system, entity)
	service    the operations exposed to callers
	smierte    MIB modules, for symbolic names
	omap       index to name maps, ifIndex to ifName and friends
	inventory  per-target locking and credentials
	engine     AMQP orders in, skogul metrics out
	snmptest   in-memory agents and scripted transports for tests
*/
package skjaere
