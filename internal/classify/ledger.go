package classify

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/KaramelBytes/afmtool-cli/internal/table"
)

// Ledger column headers, in export order.
const (
	ColFile             = "File Name"
	ColNoInteraction    = "No Interaction"
	ColSpecific         = "Specific"
	ColNonSpecific      = "Non-specific"
	ColNoInteractionPct = "No Interaction %"
	ColSpecificPct      = "Specific %"
	ColNonSpecificPct   = "Non-specific %"
)

// Ledger is an ordered set of records with one entry per file.
type Ledger struct {
	order []string
	byKey map[string]Record
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{byKey: map[string]Record{}}
}

// Upsert stores rec, replacing any previous record for the same file while
// keeping its position.
func (l *Ledger) Upsert(rec Record) {
	if _, ok := l.byKey[rec.File]; !ok {
		l.order = append(l.order, rec.File)
	}
	l.byKey[rec.File] = rec
}

// Get returns the record for file.
func (l *Ledger) Get(file string) (Record, bool) {
	r, ok := l.byKey[file]
	return r, ok
}

// Len returns the number of files in the ledger.
func (l *Ledger) Len() int { return len(l.order) }

// Records returns the records in insertion order.
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.order))
	for i, k := range l.order {
		out[i] = l.byKey[k]
	}
	return out
}

// Table renders the ledger for export.
func (l *Ledger) Table() *table.Table {
	recs := l.Records()
	files := make([]string, len(recs))
	cols := make([][]float64, 6)
	for i := range cols {
		cols[i] = make([]float64, len(recs))
	}
	for i, r := range recs {
		files[i] = r.File
		cols[0][i] = float64(r.NoInteraction)
		cols[1][i] = float64(r.Specific)
		cols[2][i] = float64(r.NonSpecific)
		cols[3][i] = r.NoInteractionPct
		cols[4][i] = r.SpecificPct
		cols[5][i] = r.NonSpecificPct
	}
	t := table.New("interaction_count")
	_ = t.AddText(ColFile, files)
	for i, name := range []string{ColNoInteraction, ColSpecific, ColNonSpecific, ColNoInteractionPct, ColSpecificPct, ColNonSpecificPct} {
		_ = t.AddNumeric(name, cols[i])
	}
	return t
}

// WriteFile exports the ledger as CSV.
func (l *Ledger) WriteFile(path string) error {
	return l.Table().WriteFile(path)
}

// LoadLedger reads a previously exported ledger. A missing file yields an
// empty ledger.
func LoadLedger(path string) (*Ledger, error) {
	l := NewLedger()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return l, nil
	}
	t, err := table.Read(path, table.Options{Delimiter: ','})
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	files, err := t.Strings(ColFile)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	names := []string{ColNoInteraction, ColSpecific, ColNonSpecific, ColNoInteractionPct, ColSpecificPct, ColNonSpecificPct}
	cols := make([][]float64, len(names))
	for i, n := range names {
		if cols[i], err = t.Numbers(n); err != nil {
			return nil, fmt.Errorf("load ledger: %w", err)
		}
	}
	for i, f := range files {
		l.Upsert(Record{
			File:             f,
			NoInteraction:    int(math.Round(cols[0][i])),
			Specific:         int(math.Round(cols[1][i])),
			NonSpecific:      int(math.Round(cols[2][i])),
			NoInteractionPct: cols[3][i],
			SpecificPct:      cols[4][i],
			NonSpecificPct:   cols[5][i],
		})
	}
	return l, nil
}
