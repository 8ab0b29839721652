/*
 * skjaere table population
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
Package table fills in a MIB table by walking each of its columns.

Every column is walked on its own, concurrently with the others, and the
results are joined on the row index, which is the last component of each
instance OID. A column that fails simply leaves its value out of every
row; Populate never fails.
*/
package table

import (
	"context"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/telenornms/skjaere"
	"github.com/telenornms/skjaere/oid"
	"github.com/telenornms/skjaere/query"
)

// Column is one column of a table. Enum holds value names indexed by the
// wire value, only used by Enum columns.
type Column struct {
	Name string
	OID  oid.OID
	Kind Kind
	Enum []string
}

type Schema struct {
	Name    string
	Columns []Column
}

// Row is one row. Rows are safe for concurrent use while the table is
// being populated and read-only once Populate returns.
type Row struct {
	Index  uint32
	mu     sync.Mutex
	values map[string]any
}

func newRow(index uint32) *Row {
	return &Row{Index: index, values: make(map[string]any)}
}

func (r *Row) set(column string, v any) {
	r.mu.Lock()
	r.values[column] = v
	r.mu.Unlock()
}

// Get returns the value of a column, if the row has one.
func (r *Row) Get(column string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[column]
	return v, ok
}

// Values returns a copy of the row's values.
func (r *Row) Values() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

type rowSet struct {
	rows sync.Map // uint32 -> *Row
}

func (s *rowSet) get(index uint32) *Row {
	if r, ok := s.rows.Load(index); ok {
		return r.(*Row)
	}
	r, _ := s.rows.LoadOrStore(index, newRow(index))
	return r.(*Row)
}

func (s *rowSet) sorted() []*Row {
	var out []*Row
	s.rows.Range(func(_, v any) bool {
		out = append(out, v.(*Row))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Populate walks every column of s against t and returns the rows sorted
// by index. It returns once every column walk has finished.
func Populate(ctx context.Context, tr skjaere.Transport, t skjaere.Target, s Schema) []*Row {
	cols := make([]Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		if len(c.OID) == 0 {
			skjaere.Debugf("%s: column %s has no oid, skipping", s.Name, c.Name)
			continue
		}
		cols = append(cols, c)
	}
	workers := skjaere.Config.TableConcurrency
	if workers <= 0 || workers > len(cols) {
		workers = len(cols)
	}
	if workers < 1 {
		workers = 1
	}

	var rows rowSet
	p := pool.New().WithMaxGoroutines(workers)
	for _, c := range cols {
		p.Go(func() {
			populateColumn(ctx, tr, t, s.Name, c, &rows)
		})
	}
	p.Wait()
	out := rows.sorted()
	skjaere.Debugf("%s@%s: %d rows from %d columns", s.Name, t, len(out), len(cols))
	return out
}

func populateColumn(ctx context.Context, tr skjaere.Transport, t skjaere.Target, table string, c Column, rows *rowSet) {
	r := query.Do(ctx, tr, query.Request{Kind: query.Walk, Base: c.OID, Target: t})
	if !r.Success {
		skjaere.Debugf("%s@%s: column %s failed after %d bindings: %v", table, t, c.Name, len(r.Bindings), r.Err)
		return
	}
	for _, b := range r.Bindings {
		if len(b.OID) <= len(c.OID) || !b.OID.InSubtree(c.OID) {
			continue
		}
		index, _ := b.OID.Last()
		v, err := Decode(c, b.PDU)
		if err != nil {
			skjaere.Debugf("%s@%s: row %d: %v", table, t, index, err)
			continue
		}
		rows.get(index).set(c.Name, v)
	}
}
