/*
 * skjaere smi-pain
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
Package smierte handles loading MIB files and modules (SMI)-stuff. The name
is a play on SMI and smerte (pain), because this is such a painful process.

It is only used to turn what a human types ("sysName.0", "ifDescr") into
numeric OIDs and back. The SNMP engine itself never needs it: numeric
input is passed straight through, even when no modules are loaded.

While this is based on gosmi, we should try to hide as much as that as
possible because it's not unlikely that it'll be switched.
*/
package smierte

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sleepinggenius2/gosmi"
	"github.com/sleepinggenius2/gosmi/types"
	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/oid"
)

// Config provides configuration basis for the smierte package, and
// everything is dealt with on that basis, even if gosmi is
// technically mostly working on a global scope.
type Config struct {
	Modules []string // SMI modules to load
	Paths   []string // Paths to the modules
}

var numeric = regexp.MustCompile(`^\.?[0-9]+(\.[0-9]+)*$`)

// cache is keyed on the input string. Only successful lookups are stored.
var cache sync.Map

var loaded atomic.Bool

// Init loads the modules from the paths. It can be called again to reload,
// which also empties the lookup cache.
func (c *Config) Init() error {
	gosmi.Init()
	loaded.Store(false)
	cache.Range(func(k, _ any) bool {
		cache.Delete(k)
		return true
	})

	for _, path := range c.Paths {
		skjaere.Debugf("mib path added: %s", path)
		gosmi.AppendPath(path)
	}
	for _, module := range c.Modules {
		moduleName, err := gosmi.LoadModule(module)
		if err != nil {
			return fmt.Errorf("module load failed: %w", err)
		}
		skjaere.Debugf("Loaded SMI module %s", moduleName)
	}
	loaded.Store(true)
	return nil
}

// Init is a shorthand for Config{modules, paths}.Init()
func Init(modules []string, paths []string) error {
	c := Config{Modules: modules, Paths: paths}
	return c.Init()
}

// Loaded reports whether Init has completed.
func Loaded() bool {
	return loaded.Load()
}

// Lookup resolves an OID given either numerically or by name, optionally
// with an instance suffix: "sysName.0" and "1.3.6.1.2.1.1.5.0" end up with
// the same Qualified OID. Numeric and Qualified never carry a leading dot.
//
// Numeric OIDs are accepted without loaded modules, in which case Name is
// left empty and Numeric is the whole OID.
func Lookup(item string) (skjaere.Node, error) {
	item = strings.TrimSpace(item)
	if hit, ok := cache.Load(item); ok {
		return hit.(skjaere.Node), nil
	}
	var ret skjaere.Node
	var err error
	if numeric.MatchString(item) {
		ret, err = lookupNumeric(item)
	} else {
		ret, err = lookupName(item)
	}
	if err != nil {
		return ret, err
	}
	cache.Store(item, ret)
	return ret, nil
}

func lookupNumeric(item string) (skjaere.Node, error) {
	s := strings.TrimPrefix(item, ".")
	ret := skjaere.Node{Key: item, Numeric: s, Qualified: s}
	if !loaded.Load() {
		return ret, nil
	}
	o, err := types.OidFromString(s)
	if err != nil {
		return ret, fmt.Errorf("unable to parse OID %s: %w", item, err)
	}
	n, err := gosmi.GetNodeByOID(o)
	if err != nil {
		// Not in any loaded module. Still a perfectly good OID.
		skjaere.Debugf("no SMI node for %s: %v", item, err)
		return ret, nil
	}
	num := strings.TrimPrefix(n.RenderNumeric(), ".")
	if num != s && !strings.HasPrefix(s, num+".") {
		return ret, nil
	}
	ret.Numeric = num
	ret.Name = n.Render(types.RenderName)
	return ret, nil
}

func lookupName(item string) (skjaere.Node, error) {
	ret := skjaere.Node{Key: item, Lookedup: true}
	if !loaded.Load() {
		return ret, fmt.Errorf("unable to resolve %s: no MIB modules loaded", item)
	}
	name, suffix, _ := strings.Cut(item, ".")
	if suffix != "" && !numeric.MatchString(suffix) {
		return ret, fmt.Errorf("unable to resolve %s: instance suffix %q is not numeric", item, suffix)
	}
	n, err := gosmi.GetNode(name)
	if err != nil {
		return ret, fmt.Errorf("gosmi.GetNode(%s) failed: %w", name, err)
	}
	ret.Name = n.Render(types.RenderName)
	ret.Numeric = strings.TrimPrefix(n.RenderNumeric(), ".")
	ret.Qualified = ret.Numeric
	if suffix != "" {
		ret.Qualified += "." + suffix
	}
	return ret, nil
}

// Resolve is Lookup for callers that just want the OID.
func Resolve(item string) (oid.OID, error) {
	n, err := Lookup(item)
	if err != nil {
		return nil, err
	}
	return oid.Parse(n.Qualified)
}

// Name renders an OID as "name.suffix" if a loaded module knows it, and
// numerically otherwise. The second return value is the instance suffix,
// which is empty for a bare object.
func Name(o oid.OID) (string, string) {
	n, err := Lookup(o.String())
	if err != nil || n.Name == "" {
		return o.String(), ""
	}
	base, err := oid.Parse(n.Numeric)
	if err != nil {
		return o.String(), ""
	}
	suffix := o.Suffix(base)
	if len(suffix) == 0 {
		return n.Name, ""
	}
	return n.Name, suffix.String()
}
