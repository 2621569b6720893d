// Package pipeline runs the per-file conversion, filtering and classification
// stages over a batch of measurement files.
package pipeline

import (
	"fmt"

	"github.com/KaramelBytes/afmtool-cli/internal/buckets"
	"github.com/KaramelBytes/afmtool-cli/internal/classify"
	"github.com/KaramelBytes/afmtool-cli/internal/compile"
	"github.com/KaramelBytes/afmtool-cli/internal/filter"
	"github.com/KaramelBytes/afmtool-cli/internal/table"
	"github.com/KaramelBytes/afmtool-cli/internal/units"
	"github.com/KaramelBytes/afmtool-cli/internal/utils"
)

// FileError ties a per-file failure to its input path.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *FileError) Unwrap() error { return e.Err }

// Result is the outcome of processing one file.
type Result struct {
	Path  string
	Table *table.Table
	// Record is set by the general pipeline.
	Record *classify.Record
	// Buckets is set by the chain-fit pipeline.
	Buckets buckets.Series
}

// Name is the file stem used in exports.
func (r Result) Name() string { return utils.Stem(r.Path) }

// Batch collects per-file results and failures in input order.
type Batch struct {
	Results  []Result
	Failures []*FileError
}

// Sources returns the filtered tables for compilation.
func (b *Batch) Sources() []compile.Source {
	out := make([]compile.Source, len(b.Results))
	for i, r := range b.Results {
		out[i] = compile.Source{Path: r.Path, Table: r.Table}
	}
	return out
}

// Progress is called before each file is processed.
type Progress func(i, n int, path string)

func run(paths []string, progress Progress, process func(string) (Result, error)) *Batch {
	b := &Batch{}
	for i, p := range paths {
		if progress != nil {
			progress(i+1, len(paths), p)
		}
		res, err := process(p)
		if err != nil {
			b.Failures = append(b.Failures, &FileError{Path: p, Err: err})
			continue
		}
		b.Results = append(b.Results, res)
	}
	return b
}

func load(path string, opt table.Options, conv *units.Converter, cs []units.Conversion) (*table.Table, error) {
	t, err := table.Read(path, opt)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		conv = units.NewConverter()
	}
	return conv.Apply(t, cs)
}

// ChainFit converts chain-fit exports, keeps physically plausible rows and
// counts repeated segments per measurement.
type ChainFit struct {
	Converter   *units.Converter
	Conversions []units.Conversion
	Filter      filter.Filter
	Bucketer    buckets.Bucketer
	Options     table.Options
	Progress    Progress
}

// Process runs the chain-fit stages on one file.
func (c ChainFit) Process(path string) (Result, error) {
	t, err := load(path, c.Options, c.Converter, c.Conversions)
	if err != nil {
		return Result{}, err
	}
	out, err := c.Filter.Apply(t)
	if err != nil {
		return Result{}, err
	}
	res := Result{Path: path, Table: out}
	if c.Bucketer.N > 0 {
		s, err := c.Bucketer.Count(out)
		if err != nil {
			return Result{}, err
		}
		res.Buckets = s
	}
	return res, nil
}

// Run processes every path; a failing file does not stop the batch.
func (c ChainFit) Run(paths []string) *Batch {
	return run(paths, c.Progress, c.Process)
}

// General converts general exports and classifies every measurement.
type General struct {
	Converter   *units.Converter
	Conversions []units.Conversion
	Classifier  classify.Classifier
	Options     table.Options
	Progress    Progress
}

// Process runs the general stages on one file.
func (g General) Process(path string) (Result, error) {
	t, err := load(path, g.Options, g.Converter, g.Conversions)
	if err != nil {
		return Result{}, err
	}
	rec, out, err := g.Classifier.Run(utils.Stem(path), t)
	if err != nil {
		return Result{}, err
	}
	return Result{Path: path, Table: out, Record: &rec}, nil
}

// Run processes every path; a failing file does not stop the batch.
func (g General) Run(paths []string) *Batch {
	return run(paths, g.Progress, g.Process)
}
