// Package buckets counts how often each measurement repeats in a filtered
// table, grouping the repeat counts into fixed buckets with an overflow.
package buckets

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/KaramelBytes/afmtool-cli/internal/table"
)

// DefaultColumn holds the original measurement name of each fitted segment.
const DefaultColumn = "Filename"

// LabelColumn is the first column of a combined bucket table.
const LabelColumn = "Segments"

// ErrTooFewBuckets is returned when N is below 2.
var ErrTooFewBuckets = errors.New("bucket count must be at least 2")

// Series maps each bucket label to the number of measurements that fall in it.
type Series map[string]int

// Bucketer buckets repeat counts into 1..N-1 and an overflow bucket for N or more.
type Bucketer struct {
	Column string
	N      int
}

// New returns a Bucketer over the default column.
func New(n int) Bucketer { return Bucketer{Column: DefaultColumn, N: n} }

// Validate checks the bucket count.
func (b Bucketer) Validate() error {
	if b.N < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewBuckets, b.N)
	}
	return nil
}

// Labels returns the bucket labels in order.
func (b Bucketer) Labels() []string {
	if b.N < 2 {
		return nil
	}
	out := make([]string, 0, b.N)
	for i := 1; i < b.N; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return append(out, "≥"+strconv.Itoa(b.N))
}

func (b Bucketer) label(n int) string {
	if n >= b.N {
		return "≥" + strconv.Itoa(b.N)
	}
	return strconv.Itoa(n)
}

// Count tallies, for every distinct value of the column, how many rows carry
// it, then counts distinct values per bucket. Every label is present.
func (b Bucketer) Count(t *table.Table) (Series, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	names, err := t.Strings(b.Column)
	if err != nil {
		return nil, err
	}
	occ := make(map[string]int, len(names))
	for _, n := range names {
		occ[n]++
	}
	s := make(Series, b.N)
	for _, l := range b.Labels() {
		s[l] = 0
	}
	for _, c := range occ {
		s[b.label(c)]++
	}
	return s, nil
}

// Combine builds one table with a label column followed by one column per
// series, in the order given.
func (b Bucketer) Combine(names []string, series []Series) (*table.Table, error) {
	if len(names) != len(series) {
		return nil, fmt.Errorf("combine buckets: %d names for %d series", len(names), len(series))
	}
	labels := b.Labels()
	t := table.New("segment_counts")
	if err := t.AddText(LabelColumn, labels); err != nil {
		return nil, err
	}
	for i, s := range series {
		vals := make([]float64, len(labels))
		for j, l := range labels {
			vals[j] = float64(s[l])
		}
		if err := t.AddNumeric(names[i], vals); err != nil {
			return nil, err
		}
	}
	return t, nil
}
