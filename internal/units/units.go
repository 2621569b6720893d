// Package units parses the "Name [prefix+unit]" column convention used in AFM
// exports and rescales columns between SI prefixes.
package units

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// UnrecognizedUnitError reports a bracketed unit specifier that does not parse
// against the registry's prefix and unit tables.
type UnrecognizedUnitError struct {
	Header    string
	Specifier string
}

func (e *UnrecognizedUnitError) Error() string {
	if e.Specifier == "" && !strings.Contains(e.Header, "[") {
		return fmt.Sprintf("column %q has no [unit] specifier", e.Header)
	}
	return fmt.Sprintf("column %q: unrecognized unit %q", e.Header, e.Specifier)
}

// Spec is a parsed unit specifier.
type Spec struct {
	Prefix string
	Base   string
}

func (s Spec) String() string { return s.Prefix + s.Base }

// Registry holds the prefix scale factors and recognized base units.
type Registry struct {
	Prefixes map[string]float64
	Units    map[string]struct{}
}

// DefaultRegistry returns a fresh registry covering yocto through yotta and the
// force, energy, length, time and rate units found in force-curve exports.
func DefaultRegistry() *Registry {
	return &Registry{
		Prefixes: map[string]float64{
			"y": 1e-24,
			"z": 1e-21,
			"a": 1e-18,
			"f": 1e-15,
			"p": 1e-12,
			"n": 1e-9,
			"µ": 1e-6,
			"μ": 1e-6,
			"u": 1e-6,
			"m": 1e-3,
			"":  1,
			"k": 1e3,
			"M": 1e6,
			"G": 1e9,
			"T": 1e12,
			"P": 1e15,
			"E": 1e18,
			"Z": 1e21,
			"Y": 1e24,
		},
		Units: map[string]struct{}{
			"N":   {},
			"J":   {},
			"m":   {},
			"s":   {},
			"N/s": {},
			"N/m": {},
			"Pa":  {},
			"Hz":  {},
			"V":   {},
			"m/s": {},
		},
	}
}

// PrefixSymbols returns the known prefix symbols sorted by scale.
func (r *Registry) PrefixSymbols() []string {
	out := make([]string, 0, len(r.Prefixes))
	for p := range r.Prefixes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := r.Prefixes[out[i]], r.Prefixes[out[j]]
		if a == b {
			return out[i] < out[j]
		}
		return a < b
	})
	return out
}

// Specifier returns the text between the first '[' and the first ']' after it.
func Specifier(header string) (string, bool) {
	open := strings.Index(header, "[")
	if open < 0 {
		return "", false
	}
	end := strings.Index(header[open+1:], "]")
	if end < 0 {
		return "", false
	}
	return header[open+1 : open+1+end], true
}

// Parse resolves the unit specifier of a column header. A leading prefix symbol
// is only taken when the remainder is a known unit, so "m" is metres and "mm"
// is millimetres.
func (r *Registry) Parse(header string) (Spec, error) {
	s, ok := Specifier(header)
	if !ok {
		return Spec{}, &UnrecognizedUnitError{Header: header}
	}
	if s != "" {
		first, size := utf8.DecodeRuneInString(s)
		p := string(first)
		if _, isPrefix := r.Prefixes[p]; isPrefix {
			if _, isUnit := r.Units[s[size:]]; isUnit {
				return Spec{Prefix: p, Base: s[size:]}, nil
			}
		}
	}
	if _, isUnit := r.Units[s]; isUnit {
		return Spec{Base: s}, nil
	}
	return Spec{}, &UnrecognizedUnitError{Header: header, Specifier: s}
}

// Factor returns the multiplier converting values from one prefix to another.
func (r *Registry) Factor(from, to string) (float64, error) {
	a, ok := r.Prefixes[from]
	if !ok {
		return 0, fmt.Errorf("unknown prefix %q", from)
	}
	b, ok := r.Prefixes[to]
	if !ok {
		return 0, fmt.Errorf("unknown prefix %q", to)
	}
	return a / b, nil
}

// Rename substitutes spec into the header's bracket, keeping the text before
// '[' and after the first ']' verbatim.
func Rename(header string, spec Spec) string {
	before, rest, _ := strings.Cut(header, "[")
	_, after, _ := strings.Cut(rest, "]")
	return before + "[" + spec.String() + "]" + after
}
