// Package compile gathers named columns from many filtered tables into
// series keyed by the date and root section encoded in each file name.
package compile

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/afmtool-cli/internal/table"
)

// ErrNoColumns is returned when Compile is asked for nothing.
var ErrNoColumns = errors.New("compile: no columns requested")

// Source is one filtered table and the path it was read from.
type Source struct {
	Path  string
	Table *table.Table
}

// Skip records a source left out of a compilation.
type Skip struct {
	Path string
	Err  error
}

type entry struct {
	key    Key
	column string
	values []float64
}

// Result holds compiled series in first-seen key order.
type Result struct {
	entries []*entry
	byKey   map[Key]*entry
	// Skipped lists sources with a malformed name or a missing column.
	Skipped []Skip
	// Replaced lists keys produced by more than one source; the last wins.
	Replaced []Key
}

// Compile builds one series per (source, column). Keys carry the column name
// only when more than one column is compiled.
func Compile(sources []Source, columns []string) (*Result, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	r := &Result{byKey: map[Key]*entry{}}
	for _, src := range sources {
		for _, col := range columns {
			param := ""
			if len(columns) > 1 {
				param = col
			}
			key, err := Identify(src.Path, param)
			if err != nil {
				r.Skipped = append(r.Skipped, Skip{Path: src.Path, Err: err})
				break
			}
			vals, err := src.Table.Numbers(col)
			if err != nil {
				r.Skipped = append(r.Skipped, Skip{Path: src.Path, Err: fmt.Errorf("%s: %w", src.Path, err)})
				continue
			}
			r.put(key, col, vals)
		}
	}
	return r, nil
}

func (r *Result) put(k Key, col string, vals []float64) {
	if e, ok := r.byKey[k]; ok {
		e.values = vals
		r.Replaced = append(r.Replaced, k)
		return
	}
	e := &entry{key: k, column: col, values: vals}
	r.entries = append(r.entries, e)
	r.byKey[k] = e
}

// Keys returns the compiled keys in first-seen order.
func (r *Result) Keys() []Key {
	out := make([]Key, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.key
	}
	return out
}

// Len returns the length of the longest series.
func (r *Result) Len() int {
	n := 0
	for _, e := range r.entries {
		if len(e.values) > n {
			n = len(e.values)
		}
	}
	return n
}

// Padded returns every series right-padded with NaN to the longest length.
func (r *Result) Padded() map[Key][]float64 {
	n := r.Len()
	out := make(map[Key][]float64, len(r.entries))
	for _, e := range r.entries {
		vals := make([]float64, n)
		k := copy(vals, e.values)
		for i := k; i < n; i++ {
			vals[i] = math.NaN()
		}
		out[e.key] = vals
	}
	return out
}

// Table returns the padded series as a rectangular table, one column per key.
func (r *Result) Table(name string) *table.Table {
	order := make([]string, len(r.entries))
	series := make(map[string][]float64, len(r.entries))
	for i, e := range r.entries {
		order[i] = e.key.String()
		series[order[i]] = e.values
	}
	return table.FromSeries(name, order, series)
}

// Series returns the unpadded values compiled from column.
func (r *Result) Series(column string) map[Key][]float64 {
	out := map[Key][]float64{}
	for _, e := range r.entries {
		if e.column == column {
			out[e.key] = append([]float64(nil), e.values...)
		}
	}
	return out
}
