package units

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/afmtool-cli/internal/table"
)

// Conversion names a column and the prefix it should be expressed in.
type Conversion struct {
	Column string
	Prefix string
}

// Converter rescales table columns between prefixes.
type Converter struct {
	Registry *Registry
	// Permissive treats an unrecognized specifier as an unprefixed, unitless
	// column instead of failing. The rewritten header then loses its unit.
	Permissive bool
}

// NewConverter returns a strict converter over the default registry.
func NewConverter() *Converter {
	return &Converter{Registry: DefaultRegistry()}
}

// fallback serves zero-value converters and is never modified.
var fallback = DefaultRegistry()

func (c *Converter) registry() *Registry {
	if c.Registry != nil {
		return c.Registry
	}
	return fallback
}

func (c *Converter) parse(header string) (Spec, error) {
	spec, err := c.registry().Parse(header)
	if err != nil && c.Permissive {
		return Spec{}, nil
	}
	return spec, err
}

// Converted returns the header that converting column to prefix produces.
func (c *Converter) Converted(column, prefix string) (string, error) {
	spec, err := c.parse(column)
	if err != nil {
		return "", err
	}
	if _, ok := c.registry().Prefixes[prefix]; !ok {
		return "", fmt.Errorf("column %q: unknown target prefix %q", column, prefix)
	}
	return Rename(column, Spec{Prefix: prefix, Base: spec.Base}), nil
}

// Convert returns a new table in which column is rescaled to prefix and
// renamed accordingly. The input table is left untouched.
func (c *Converter) Convert(t *table.Table, column, prefix string) (*table.Table, error) {
	spec, err := c.parse(column)
	if err != nil {
		return nil, err
	}
	factor, err := c.registry().Factor(spec.Prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", column, err)
	}
	vals, err := t.Numbers(column)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if !math.IsNaN(v) {
			vals[i] = v * factor
		}
	}
	out, err := t.WithNumbers(column, vals)
	if err != nil {
		return nil, err
	}
	return out.Rename(column, Rename(column, Spec{Prefix: prefix, Base: spec.Base}))
}

// Apply runs conversions in order, each on the result of the previous one.
func (c *Converter) Apply(t *table.Table, conversions []Conversion) (*table.Table, error) {
	out := t
	for _, cv := range conversions {
		next, err := c.Convert(out, cv.Column, cv.Prefix)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}
