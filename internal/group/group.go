// Package group nests compiled series by date and root section, keeping only
// dates that carry every section.
package group

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/afmtool-cli/internal/compile"
)

// StepValues is one section's values within a date.
type StepValues struct {
	Step   compile.Step
	Values []float64
}

// DateGroup holds a complete date in canonical section order.
type DateGroup struct {
	Date  string
	Steps []StepValues
}

// Values returns the values for step.
func (g DateGroup) Values(step compile.Step) []float64 {
	for _, sv := range g.Steps {
		if sv.Step == step {
			return sv.Values
		}
	}
	return nil
}

// Skip explains why a date or entry was left out.
type Skip struct {
	Date    string
	Entry   string
	Missing []compile.Step
	Reason  string
}

func (s Skip) String() string {
	if s.Entry != "" {
		return fmt.Sprintf("%s: %s", s.Entry, s.Reason)
	}
	return fmt.Sprintf("%s: %s", s.Date, s.Reason)
}

// Grouping is the routed form of a compiled parameter.
type Grouping struct {
	Dates   []DateGroup
	Skipped []Skip
	// Final concatenates every accepted date's values per section, dates in order.
	Final map[compile.Step][]float64
}

// Router splits flat keyed series into per-date groups.
type Router struct {
	Logf func(format string, args ...any)
}

func (r Router) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

// SplitKey returns the first and last hyphen segments of a flat key.
func SplitKey(flat string) (date, step string, err error) {
	segs := strings.Split(flat, "-")
	if len(segs) < 2 || segs[0] == "" || segs[len(segs)-1] == "" {
		return "", "", &compile.MalformedIdentifierError{Path: flat, Reason: "expected <date>-<step>"}
	}
	return segs[0], segs[len(segs)-1], nil
}

// RouteFlat routes series keyed by "<date>-<step>" strings.
func (r Router) RouteFlat(entries map[string][]float64) *Grouping {
	keyed := make(map[compile.Key][]float64, len(entries))
	var bad []Skip
	for _, flat := range sortedStrings(entries) {
		date, step, err := SplitKey(flat)
		if err != nil {
			r.logf("Skipping %s: %v", flat, err)
			bad = append(bad, Skip{Entry: flat, Reason: err.Error()})
			continue
		}
		k := compile.Key{Date: date, Step: step}
		keyed[k] = append(keyed[k], entries[flat]...)
	}
	g := r.Route(keyed)
	g.Skipped = append(bad, g.Skipped...)
	return g
}

// Route groups keyed series by date. Entries with an unknown step are
// excluded, and dates missing any canonical step are skipped. Series sharing
// a date and step are concatenated in key order.
func (r Router) Route(entries map[compile.Key][]float64) *Grouping {
	keys := make([]compile.Key, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	g := &Grouping{Final: map[compile.Step][]float64{}}
	byDate := map[string]map[compile.Step][]float64{}
	var dates []string
	for _, k := range keys {
		step, ok := compile.ParseStep(k.Step)
		if !ok {
			r.logf("Excluding %s: unknown root section %q", k, k.Step)
			g.Skipped = append(g.Skipped, Skip{Date: k.Date, Entry: k.String(), Reason: fmt.Sprintf("unknown root section %q", k.Step)})
			continue
		}
		steps, ok := byDate[k.Date]
		if !ok {
			steps = map[compile.Step][]float64{}
			byDate[k.Date] = steps
			dates = append(dates, k.Date)
		}
		steps[step] = append(steps[step], entries[k]...)
	}
	sort.Strings(dates)

	for _, date := range dates {
		steps := byDate[date]
		var missing []compile.Step
		for _, s := range compile.CanonicalSteps() {
			if _, ok := steps[s]; !ok {
				missing = append(missing, s)
			}
		}
		if len(missing) > 0 {
			r.logf("Skipping %s as it does not have all the necessary data (missing %v)", date, missing)
			g.Skipped = append(g.Skipped, Skip{Date: date, Missing: missing, Reason: fmt.Sprintf("missing %v", missing)})
			continue
		}
		dg := DateGroup{Date: date}
		for _, s := range compile.CanonicalSteps() {
			dg.Steps = append(dg.Steps, StepValues{Step: s, Values: steps[s]})
			g.Final[s] = append(g.Final[s], steps[s]...)
		}
		g.Dates = append(g.Dates, dg)
	}
	return g
}

// FinalGroup returns the accumulated values as a date group named name.
func (g *Grouping) FinalGroup(name string) DateGroup {
	dg := DateGroup{Date: name}
	for _, s := range compile.CanonicalSteps() {
		dg.Steps = append(dg.Steps, StepValues{Step: s, Values: g.Final[s]})
	}
	return dg
}

func sortedStrings(m map[string][]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
