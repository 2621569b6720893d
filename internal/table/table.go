// Package table holds measurement tables: named columns of numbers or text
// loaded from delimited files. Every transformation returns a new table; the
// receiver is never modified once built.
package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrNotNumeric is returned when numeric values are requested from a text column.
var ErrNotNumeric = errors.New("column is not numeric")

// MissingColumnError reports an expected column absent from a table.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("missing column %q", e.Column)
	}
	return fmt.Sprintf("missing column %q in %s", e.Column, e.Table)
}

// Column is one named series. Numeric columns keep values in Num with NaN for
// empty cells; text columns keep the raw cell strings in Text.
type Column struct {
	Name    string
	Numeric bool
	Num     []float64
	Text    []string
}

func (c *Column) len() int {
	if c.Numeric {
		return len(c.Num)
	}
	return len(c.Text)
}

func (c *Column) clone() *Column {
	out := &Column{Name: c.Name, Numeric: c.Numeric}
	if c.Num != nil {
		out.Num = append([]float64(nil), c.Num...)
	}
	if c.Text != nil {
		out.Text = append([]string(nil), c.Text...)
	}
	return out
}

// Cell renders row i of the column the way it is written on export.
func (c *Column) Cell(i int) string {
	if !c.Numeric {
		return c.Text[i]
	}
	return FormatNumber(c.Num[i])
}

// FormatNumber formats v for export; NaN becomes an empty cell.
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Table is an ordered set of equal-length columns.
type Table struct {
	Name  string
	cols  []*Column
	index map[string]int
}

// New returns an empty table.
func New(name string) *Table {
	return &Table{Name: name, index: map[string]int{}}
}

func (t *Table) add(c *Column) error {
	if _, ok := t.index[c.Name]; ok {
		return fmt.Errorf("duplicate column %q in %s", c.Name, t.Name)
	}
	if len(t.cols) > 0 && c.len() != t.Len() {
		return fmt.Errorf("column %q has %d rows, table %s has %d", c.Name, c.len(), t.Name, t.Len())
	}
	t.index[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// AddNumeric appends a numeric column. Used when building tables in code.
func (t *Table) AddNumeric(name string, values []float64) error {
	return t.add(&Column{Name: name, Numeric: true, Num: append([]float64(nil), values...)})
}

// AddText appends a text column.
func (t *Table) AddText(name string, values []string) error {
	return t.add(&Column{Name: name, Text: append([]string(nil), values...)})
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].len()
}

// Headers returns column names in order.
func (t *Table) Headers() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column. The returned column must be treated as read-only.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &MissingColumnError{Table: t.Name, Column: name}
	}
	return t.cols[i], nil
}

// Numbers returns a copy of a numeric column.
func (t *Table) Numbers(name string) ([]float64, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if !c.Numeric {
		return nil, fmt.Errorf("%s: %q: %w", t.Name, name, ErrNotNumeric)
	}
	return append([]float64(nil), c.Num...), nil
}

// Strings returns the cells of any column as exported strings.
func (t *Table) Strings(name string) ([]string, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, c.len())
	for i := range out {
		out[i] = c.Cell(i)
	}
	return out, nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := New(t.Name)
	for _, c := range t.cols {
		_ = out.add(c.clone())
	}
	return out
}

// Select returns the given rows, in the given order.
func (t *Table) Select(rows []int) *Table {
	out := New(t.Name)
	for _, c := range t.cols {
		nc := &Column{Name: c.Name, Numeric: c.Numeric}
		if c.Numeric {
			nc.Num = make([]float64, len(rows))
			for i, r := range rows {
				nc.Num[i] = c.Num[r]
			}
		} else {
			nc.Text = make([]string, len(rows))
			for i, r := range rows {
				nc.Text[i] = c.Text[r]
			}
		}
		_ = out.add(nc)
	}
	return out
}

// Drop returns the table without the named columns. Names not present are ignored.
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	out := New(t.Name)
	for _, c := range t.cols {
		if _, ok := skip[c.Name]; ok {
			continue
		}
		_ = out.add(c.clone())
	}
	return out
}

// Rename returns the table with column old renamed to name.
func (t *Table) Rename(old, name string) (*Table, error) {
	if _, err := t.Column(old); err != nil {
		return nil, err
	}
	if old != name && t.Has(name) {
		return nil, fmt.Errorf("rename %q: column %q already exists in %s", old, name, t.Name)
	}
	out := t.Clone()
	i := out.index[old]
	delete(out.index, old)
	out.cols[i].Name = name
	out.index[name] = i
	return out, nil
}

// WithNumbers returns the table with the named column replaced by numeric values.
func (t *Table) WithNumbers(name string, values []float64) (*Table, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &MissingColumnError{Table: t.Name, Column: name}
	}
	if len(values) != t.Len() {
		return nil, fmt.Errorf("column %q: got %d values for %d rows", name, len(values), t.Len())
	}
	out := t.Clone()
	out.cols[i] = &Column{Name: name, Numeric: true, Num: append([]float64(nil), values...)}
	return out, nil
}

// Round rounds every numeric column to the given number of decimals, half to even.
func (t *Table) Round(decimals int) *Table {
	p := math.Pow(10, float64(decimals))
	out := t.Clone()
	for _, c := range out.cols {
		if !c.Numeric {
			continue
		}
		for i, v := range c.Num {
			c.Num[i] = Round(v, p)
		}
	}
	return out
}

// Round rounds v to the precision given by pow (10^decimals).
func Round(v, pow float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.RoundToEven(v*pow) / pow
}

// FromSeries builds a table with one numeric column per key in order. Shorter
// series are padded with NaN up to the longest one.
func FromSeries(name string, order []string, series map[string][]float64) *Table {
	longest := 0
	for _, k := range order {
		if n := len(series[k]); n > longest {
			longest = n
		}
	}
	out := New(name)
	for _, k := range order {
		vals := make([]float64, longest)
		n := copy(vals, series[k])
		for i := n; i < longest; i++ {
			vals[i] = math.NaN()
		}
		_ = out.add(&Column{Name: k, Numeric: true, Num: vals})
	}
	return out
}
