package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/afmtool-cli/internal/buckets"
	"github.com/KaramelBytes/afmtool-cli/internal/classify"
	"github.com/KaramelBytes/afmtool-cli/internal/compile"
	"github.com/KaramelBytes/afmtool-cli/internal/manifest"
	"github.com/KaramelBytes/afmtool-cli/internal/utils"
)

// LedgerFile and BucketsFile are written at the top of the output directory.
const (
	LedgerFile  = "interaction_count.csv"
	BucketsFile = "segment_counts.csv"
)

// Layout names the output directory and its subfolders.
type Layout struct {
	Dir            string
	ChainFitFolder string
	GeneralFolder  string
	GraphsFolder   string
}

// Writer exports batch results and records every file in a manifest.
type Writer struct {
	Layout
	Manifest *manifest.Manifest
}

// NewWriter creates the output directory. Failure here aborts a run.
func NewWriter(l Layout, m *manifest.Manifest) (*Writer, error) {
	if err := utils.EnsureDir(l.Dir); err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}
	return &Writer{Layout: l, Manifest: m}, nil
}

// GraphsDir is where charts are written.
func (w *Writer) GraphsDir() string { return filepath.Join(w.Dir, w.GraphsFolder) }

// LedgerPath is the interaction count export.
func (w *Writer) LedgerPath() string { return filepath.Join(w.Dir, LedgerFile) }

// Record adds written paths to the manifest.
func (w *Writer) Record(kind manifest.Kind, paths ...string) error {
	if w.Manifest == nil {
		return nil
	}
	for _, p := range paths {
		if _, err := w.Manifest.Add(kind, p); err != nil {
			return err
		}
	}
	return nil
}

// WriteFiltered writes <dir>/<folder>/<stem>_filtered.csv for every result.
func (w *Writer) WriteFiltered(folder string, results []Result) ([]string, error) {
	dir := filepath.Join(w.Dir, folder)
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}
	var written []string
	for _, r := range results {
		p := filepath.Join(dir, r.Name()+"_filtered.csv")
		if err := r.Table.WriteFile(p); err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, w.Record(manifest.KindFiltered, written...)
}

// WriteLedger merges the batch records into the existing interaction count
// export and rewrites it.
func (w *Writer) WriteLedger(results []Result) (*classify.Ledger, string, error) {
	p := w.LedgerPath()
	l, err := classify.LoadLedger(p)
	if err != nil {
		return nil, "", err
	}
	for _, r := range results {
		if r.Record != nil {
			l.Upsert(*r.Record)
		}
	}
	if err := l.WriteFile(p); err != nil {
		return nil, "", fmt.Errorf("write %s: %w", p, err)
	}
	return l, p, w.Record(manifest.KindLedger, p)
}

// WriteCompiled writes the padded compiled table to <dir>/<name>.csv.
func (w *Writer) WriteCompiled(name string, r *compile.Result) (string, error) {
	p := filepath.Join(w.Dir, name+".csv")
	if err := r.Table(name).WriteFile(p); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, w.Record(manifest.KindCompiled, p)
}

// WriteBuckets combines per-file bucket series into <dir>/segment_counts.csv.
func (w *Writer) WriteBuckets(b buckets.Bucketer, results []Result) (string, error) {
	var names []string
	var series []buckets.Series
	for _, r := range results {
		if r.Buckets == nil {
			continue
		}
		names = append(names, r.Name())
		series = append(series, r.Buckets)
	}
	t, err := b.Combine(names, series)
	if err != nil {
		return "", err
	}
	p := filepath.Join(w.Dir, BucketsFile)
	if err := t.WriteFile(p); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, w.Record(manifest.KindBuckets, p)
}

// PieInput is the ledger keyed for pie charts.
type PieInput struct {
	Series map[compile.Key][]float64
	// Skipped lists records whose name is malformed.
	Skipped []compile.Skip
	// Replaced lists keys produced by more than one record; the last wins.
	Replaced []compile.Key
}

// InteractionSeries keys each ledger record's counts by its file identifier.
// Record names are stems already, so no extension is stripped.
func InteractionSeries(l *classify.Ledger) PieInput {
	in := PieInput{Series: map[compile.Key][]float64{}}
	for _, r := range l.Records() {
		k, err := compile.IdentifyStem(r.File, "")
		if err != nil {
			in.Skipped = append(in.Skipped, compile.Skip{Path: r.File, Err: err})
			continue
		}
		if _, ok := in.Series[k]; ok {
			in.Replaced = append(in.Replaced, k)
		}
		in.Series[k] = []float64{float64(r.NoInteraction), float64(r.Specific), float64(r.NonSpecific)}
	}
	return in
}
