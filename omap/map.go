/*
 * skjaere object maps
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
Package omap builds two-way maps between a table index and whatever a
column holds for it, the typical case being ifIndex to ifName. Orders use
them to ask for "the counters of xe-0/0/1" rather than of index 517.

Maps are cached per target and column for Config.MaxMapAge.
*/
package omap

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/oid"
	"github.com/telenornms/skjaere/query"
)

// OMap is a two-way map of index to name. Indexes are the dotted OID
// suffix below the column, so multi-component indexes work too.
type OMap struct {
	IdxToName map[string]string
	NameToIdx map[string]string
	Column    oid.OID   // OID used to build the map, e.g.: ifName
	Timestamp time.Time // When was the map created?
}

// Build walks column on the target and maps every instance below it.
// Duplicate names map to the lowest index.
func Build(ctx context.Context, tr skjaere.Transport, t skjaere.Target, column oid.OID) (*OMap, error) {
	m := &OMap{
		IdxToName: make(map[string]string),
		NameToIdx: make(map[string]string),
		Column:    column,
		Timestamp: time.Now(),
	}
	r := query.Do(ctx, tr, query.Request{Kind: query.Walk, Base: column, Target: t})
	if !r.Success {
		return nil, fmt.Errorf("walk of %s on %s failed: %w", column, t, r.Err)
	}
	for _, b := range r.Bindings {
		suffix := b.OID.Suffix(column)
		if len(suffix) == 0 {
			continue
		}
		idx := suffix.String()
		name := value(b.PDU)
		m.IdxToName[idx] = name
		if _, ok := m.NameToIdx[name]; !ok {
			m.NameToIdx[name] = idx
		}
	}
	since := time.Since(m.Timestamp).Round(time.Millisecond * 100)
	skjaere.Debugf("omap for %s on %s built with %d elements in %s", column, t, len(m.IdxToName), since.String())
	return m, nil
}

func value(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	}
	return fmt.Sprint(pdu.Value)
}

// Match returns the indexes of every element whose name matches one of
// the patterns, sorted and without duplicates.
func (m *OMap) Match(patterns ...string) ([]string, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("bad element pattern %q: %w", p, err)
		}
		res = append(res, re)
	}
	var idxs []string
	for idx, name := range m.IdxToName {
		for _, re := range res {
			if re.MatchString(name) {
				idxs = append(idxs, idx)
				break
			}
		}
	}
	sort.Slice(idxs, func(i, j int) bool {
		a, _ := oid.Parse(idxs[i])
		b, _ := oid.Parse(idxs[j])
		return a.Compare(b) < 0
	})
	return idxs, nil
}

// Age is the time since the map was built.
func (m *OMap) Age() time.Duration {
	return time.Since(m.Timestamp)
}

// Cache holds built maps per target address and column.
type Cache struct {
	mu   sync.Mutex
	maps map[string]map[string]*OMap
}

func NewCache() *Cache {
	return &Cache{maps: make(map[string]map[string]*OMap)}
}

func (c *Cache) load(target string, key string) *OMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.maps[target][key]
	if m != nil && m.Age() > skjaere.Config.MaxMapAge {
		skjaere.Debugf("Deleting aged out omap %s for %s", key, target)
		delete(c.maps[target], key)
		return nil
	}
	return m
}

func (c *Cache) store(target string, key string, m *OMap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maps[target] == nil {
		c.maps[target] = make(map[string]*OMap)
	}
	c.maps[target][key] = m
}

// Get returns a cached map or builds one on demand. The cache lock is not
// held while walking.
func (c *Cache) Get(ctx context.Context, tr skjaere.Transport, t skjaere.Target, column oid.OID) (*OMap, error) {
	key := column.String()
	if m := c.load(t.Address, key); m != nil {
		return m, nil
	}
	m, err := Build(ctx, tr, t, column)
	if err != nil {
		return nil, err
	}
	c.store(t.Address, key, m)
	return m, nil
}

// Clear drops the map for a target and column. A nil column clears
// every map for the target.
func (c *Cache) Clear(target string, column oid.OID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if column == nil {
		skjaere.Debugf("Deleting all maps for %s on request", target)
		delete(c.maps, target)
		return
	}
	if c.maps[target] == nil {
		skjaere.Debugf("Map `%s' for %s not found while clearing cache, nothing to do", column, target)
		return
	}
	skjaere.Debugf("Deleting `%s'-map for %s on request", column, target)
	delete(c.maps[target], column.String())
}

// Len is the number of cached maps, for tests and metrics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.maps {
		n += len(m)
	}
	return n
}
