// Package classify sorts force curves into no-interaction, specific and
// non-specific outcomes from their fitted segment count and rupture position.
package classify

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/afmtool-cli/internal/table"
)

// ErrNegativeSegmentCount is returned for segment counts that are negative or
// not whole numbers.
var ErrNegativeSegmentCount = errors.New("segment count must be a non-negative integer")

// EmptyResultError reports a file with no rows to classify, where percentages
// would be undefined.
type EmptyResultError struct {
	File string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s: no rows to classify", e.File)
}

// Outcome is the interaction category of one measurement.
type Outcome int

const (
	NoInteraction Outcome = iota
	Specific
	NonSpecific
)

func (o Outcome) String() string {
	switch o {
	case NoInteraction:
		return "no_interaction"
	case Specific:
		return "specific"
	case NonSpecific:
		return "non_specific"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Classify maps one row to its outcome. A single segment counts as a specific
// interaction only when its position reaches the threshold.
func Classify(segments float64, position, threshold float64) (Outcome, error) {
	if math.IsNaN(segments) || segments < 0 || segments != math.Trunc(segments) {
		return NoInteraction, fmt.Errorf("%w: got %g", ErrNegativeSegmentCount, segments)
	}
	switch {
	case segments == 0:
		return NoInteraction, nil
	case segments == 1 && position >= threshold:
		return Specific, nil
	case segments == 1:
		return NoInteraction, nil
	default:
		return NonSpecific, nil
	}
}

// Record is the per-file tally of outcomes.
type Record struct {
	File             string
	NoInteraction    int
	Specific         int
	NonSpecific      int
	NoInteractionPct float64
	SpecificPct      float64
	NonSpecificPct   float64
}

// Total returns the number of classified rows.
func (r Record) Total() int { return r.NoInteraction + r.Specific + r.NonSpecific }

func newRecord(file string, counts [3]int) (Record, error) {
	total := counts[0] + counts[1] + counts[2]
	if total == 0 {
		return Record{}, &EmptyResultError{File: file}
	}
	pct := func(n int) float64 {
		return table.Round(float64(n)/float64(total)*100, 10)
	}
	return Record{
		File:             file,
		NoInteraction:    counts[NoInteraction],
		Specific:         counts[Specific],
		NonSpecific:      counts[NonSpecific],
		NoInteractionPct: pct(counts[NoInteraction]),
		SpecificPct:      pct(counts[Specific]),
		NonSpecificPct:   pct(counts[NonSpecific]),
	}, nil
}

// DefaultDropColumns are the diagnostic columns removed from classified tables.
func DefaultDropColumns() []string {
	return []string{
		"Filename", "Position Index", "X Position", "Y Position",
		"Baseline Offset [N]", "Baseline Slope [N/m]", "Contact Point Offset [m]",
		"Minimum Value [N]", "Minimum Position [m]", "Filter Group",
		"Lower Bound [m]", "Upper Bound [m]", "Fitted Segment Count",
	}
}

// Classifier tallies a table and keeps the rows that show an interaction.
type Classifier struct {
	SegmentColumn  string
	PositionColumn string
	Threshold      float64
	// DropColumns are removed from the returned table; absent names are ignored.
	DropColumns []string
	Decimals    int
}

// Run classifies every row of t. It returns the file's record and a table of
// the specific and non-specific rows without the segment, position and
// DropColumns columns, numeric columns rounded to Decimals.
func (c Classifier) Run(file string, t *table.Table) (Record, *table.Table, error) {
	segs, err := t.Numbers(c.SegmentColumn)
	if err != nil {
		return Record{}, nil, err
	}
	pos, err := t.Numbers(c.PositionColumn)
	if err != nil {
		return Record{}, nil, err
	}
	if t.Len() == 0 {
		return Record{}, nil, &EmptyResultError{File: file}
	}
	var counts [3]int
	keep := make([]int, 0, t.Len())
	for i := range segs {
		o, err := Classify(segs[i], pos[i], c.Threshold)
		if err != nil {
			return Record{}, nil, fmt.Errorf("%s row %d: %w", file, i+1, err)
		}
		counts[o]++
		if o != NoInteraction {
			keep = append(keep, i)
		}
	}
	rec, err := newRecord(file, counts)
	if err != nil {
		return Record{}, nil, err
	}
	drop := append([]string{c.SegmentColumn, c.PositionColumn}, c.DropColumns...)
	out := t.Select(keep).Drop(drop...).Round(c.Decimals)
	return rec, out, nil
}
