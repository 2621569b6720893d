package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/afmtool-cli/internal/compile"
	"github.com/KaramelBytes/afmtool-cli/internal/group"
	"github.com/KaramelBytes/afmtool-cli/internal/manifest"
	"github.com/KaramelBytes/afmtool-cli/internal/pipeline"
	"github.com/KaramelBytes/afmtool-cli/internal/render"
	"github.com/KaramelBytes/afmtool-cli/internal/utils"
	"github.com/spf13/cobra"
)

// expandInputs resolves glob patterns and literal paths, dropping duplicates.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if fi, err := os.Stat(m); err != nil || fi.IsDir() {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func newWriter(command string, inputs []string) (*pipeline.Writer, error) {
	dir, err := utils.ExpandHome(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	m := manifest.New(command, dir, inputs)
	return pipeline.NewWriter(pipeline.Layout{
		Dir:            dir,
		ChainFitFolder: cfg.ChainFitFolder,
		GeneralFolder:  cfg.GeneralFolder,
		GraphsFolder:   cfg.GraphsFolder,
	}, m)
}

func progressf(cmd *cobra.Command) pipeline.Progress {
	return func(i, n int, path string) {
		infof(cmd, "[%d/%d] Processing %s...", i, n, filepath.Base(path))
	}
}

// reportFailures warns about every failed file and records it. It errors when
// nothing succeeded.
func reportFailures(cmd *cobra.Command, w *pipeline.Writer, b *pipeline.Batch) error {
	for _, f := range b.Failures {
		warnf(cmd, "skipping %s: %v", f.Path, f.Err)
		w.Manifest.Fail(f.Path, f.Err)
	}
	if len(b.Results) == 0 {
		_ = w.Manifest.Save()
		return fmt.Errorf("all %d input files failed", len(b.Failures))
	}
	return nil
}

func compileColumns(cmd *cobra.Command, w *pipeline.Writer, b *pipeline.Batch, name string, columns []string) (*compile.Result, error) {
	r, err := compile.Compile(b.Sources(), columns)
	if err != nil {
		return nil, err
	}
	for _, s := range r.Skipped {
		warnf(cmd, "not compiled: %v", s.Err)
	}
	for _, k := range r.Replaced {
		warnf(cmd, "duplicate identifier %s; keeping the last file", k)
	}
	if len(r.Keys()) == 0 {
		return r, nil
	}
	p, err := w.WriteCompiled(name, r)
	if err != nil {
		return nil, err
	}
	infof(cmd, "✓ Compiled %d series of %s into %s", len(r.Keys()), strings.Join(columns, ", "), p)
	return r, nil
}

func router(cmd *cobra.Command) group.Router {
	return group.Router{Logf: func(format string, args ...any) { infof(cmd, format, args...) }}
}

// axisLabel turns "Breaking Force [pN]" into "Breaking Force (pN)".
func axisLabel(column string) string {
	return strings.NewReplacer("[", "(", "]", ")").Replace(column)
}

type plotFlags struct {
	disabled bool
	binWidth float64
	xMax     float64
}

func (p *plotFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&p.disabled, "no-plots", false, "skip histogram and pie rendering")
	cmd.Flags().Float64Var(&p.binWidth, "bin-width", 0, "histogram bin width (default from config)")
	cmd.Flags().Float64Var(&p.xMax, "x-max", 0, "histogram x-axis maximum (default from config)")
}

func (p *plotFlags) apply(cmd *cobra.Command) {
	if cmd.Flags().Changed("bin-width") {
		cfg.BinWidth = p.binWidth
	}
	if cmd.Flags().Changed("x-max") {
		cfg.XMax = p.xMax
	}
}

// plotHistograms routes the first compiled column by date and draws its
// histograms.
func plotHistograms(cmd *cobra.Command, w *pipeline.Writer, r *compile.Result, column string) error {
	g := router(cmd).Route(r.Series(column))
	if len(g.Dates) == 0 {
		warnf(cmd, "no date has every root section; no histograms for %s", column)
		return nil
	}
	paths, err := render.RootHistograms(g, w.GraphsDir(), render.HistogramOptions{
		XLabel:   axisLabel(column),
		BinWidth: cfg.BinWidth,
		XMax:     cfg.XMax,
	})
	if err != nil {
		return err
	}
	if err := w.Record(manifest.KindHistogram, paths...); err != nil {
		return err
	}
	infof(cmd, "✓ Rendered %d histograms into %s", len(paths), w.GraphsDir())
	return nil
}
