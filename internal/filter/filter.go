// Package filter keeps the rows of a table whose values fall strictly inside
// caller-supplied bounds.
package filter

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/afmtool-cli/internal/table"
)

// ErrInvalidBounds marks a bound whose lower limit is not below its upper limit.
var ErrInvalidBounds = errors.New("invalid bounds")

// Bound constrains one column. Both limits are exclusive.
type Bound struct {
	Column string
	Min    float64
	Max    float64
	HasMin bool
	HasMax bool
}

// Between bounds column to the open interval (min, max).
func Between(column string, min, max float64) Bound {
	return Bound{Column: column, Min: min, Max: max, HasMin: true, HasMax: true}
}

// Below keeps values strictly less than max.
func Below(column string, max float64) Bound {
	return Bound{Column: column, Max: max, HasMax: true}
}

// Above keeps values strictly greater than min.
func Above(column string, min float64) Bound {
	return Bound{Column: column, Min: min, HasMin: true}
}

// Validate rejects empty intervals.
func (b Bound) Validate() error {
	if b.HasMin && b.HasMax && b.Min >= b.Max {
		return fmt.Errorf("%w: %q lower %g is not below upper %g", ErrInvalidBounds, b.Column, b.Min, b.Max)
	}
	return nil
}

// Holds reports whether v satisfies the bound. NaN never does.
func (b Bound) Holds(v float64) bool {
	if b.HasMin && !(v > b.Min) {
		return false
	}
	if b.HasMax && !(v < b.Max) {
		return false
	}
	return true
}

func (b Bound) String() string {
	switch {
	case b.HasMin && b.HasMax:
		return fmt.Sprintf("%g < %s < %g", b.Min, b.Column, b.Max)
	case b.HasMin:
		return fmt.Sprintf("%s > %g", b.Column, b.Min)
	case b.HasMax:
		return fmt.Sprintf("%s < %g", b.Column, b.Max)
	}
	return b.Column
}

// Filter applies a set of bounds. When Enabled is false rows pass through.
type Filter struct {
	Bounds  []Bound
	Enabled bool
}

// Validate checks every bound.
func (f Filter) Validate() error {
	for _, b := range f.Bounds {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns the rows satisfying every bound, in input order.
func (f Filter) Apply(t *table.Table) (*table.Table, error) {
	if !f.Enabled {
		return t.Clone(), nil
	}
	cols := make([][]float64, len(f.Bounds))
	for i, b := range f.Bounds {
		vals, err := t.Numbers(b.Column)
		if err != nil {
			return nil, err
		}
		cols[i] = vals
	}
	keep := make([]int, 0, t.Len())
	for r := 0; r < t.Len(); r++ {
		ok := true
		for i, b := range f.Bounds {
			if !b.Holds(cols[i][r]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, r)
		}
	}
	return t.Select(keep), nil
}
