/*
 * skjaere inventory
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
Package inventory deals with inventory locking and credentials.

A target is locked for the duration of an order, so two orders never poll
the same device at the same time. Credentials are the configured default
community unless one has been registered for the address.
*/
package inventory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/telenornms/skjaere"
)

// ErrLocked is returned by Lock when another order holds the target.
var ErrLocked = errors.New("target still locked")

var (
	targets     sync.Map
	communities sync.Map
)

type Host struct {
	Address   string
	Community string
}

// Lock acquires a host-level lock and relevant credentials. It does not
// wait: a locked target is refused with ErrLocked. Call h.Unlock() when
// done.
func Lock(address string) (*Host, error) {
	if address == "" {
		return nil, fmt.Errorf("no target to lock")
	}
	if _, loaded := targets.LoadOrStore(address, struct{}{}); loaded {
		return nil, fmt.Errorf("%s: %w, refusing to start more runs", address, ErrLocked)
	}
	h := &Host{Address: address, Community: skjaere.Config.DefaultCommunity}
	if c, ok := communities.Load(address); ok {
		h.Community = c.(string)
	}
	return h, nil
}

// Unlock releases the host-level lock.
func (h *Host) Unlock() {
	targets.Delete(h.Address)
}

// Locked reports whether an order currently holds the target.
func Locked(address string) bool {
	_, ok := targets.Load(address)
	return ok
}

// SetCommunity registers the community to use for an address. An empty
// community goes back to the default.
func SetCommunity(address string, community string) {
	if community == "" {
		communities.Delete(address)
		return
	}
	communities.Store(address, community)
}
