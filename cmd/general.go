package cmd

import (
	"github.com/KaramelBytes/afmtool-cli/internal/classify"
	cfgpkg "github.com/KaramelBytes/afmtool-cli/internal/config"
	"github.com/KaramelBytes/afmtool-cli/internal/manifest"
	"github.com/KaramelBytes/afmtool-cli/internal/pipeline"
	"github.com/KaramelBytes/afmtool-cli/internal/render"
	"github.com/spf13/cobra"
)

var (
	genThreshold float64
	genCompile   []string
	genName      string
	genPlots     plotFlags
)

var generalCmd = &cobra.Command{
	Use:   "general <files...>",
	Short: "Convert, classify and compile general exports",
	Long: `Convert general exports to the configured prefixes, classify every curve as
no interaction, specific or non-specific, update interaction_count.csv and
compile the adhesion forces of the interacting curves by date and root section.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireConfig(); err != nil {
			return err
		}
		if cmd.Flags().Changed("threshold") {
			cfg.PositionThreshold = genThreshold
		}
		genPlots.apply(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		conv := cfg.Converter()
		position, err := conv.Converted(cfgpkg.PositionColumn, cfg.PositionPrefix)
		if err != nil {
			return err
		}
		columns := genCompile
		if len(columns) == 0 {
			adh, err := conv.Converted(cfgpkg.AdhesionColumn, cfg.ForcePrefix)
			if err != nil {
				return err
			}
			columns = []string{adh}
		}

		w, err := newWriter("general", files)
		if err != nil {
			return err
		}
		batch := pipeline.General{
			Converter:   conv,
			Conversions: cfg.GeneralConversions(),
			Classifier: classify.Classifier{
				SegmentColumn:  cfgpkg.SegmentColumn,
				PositionColumn: position,
				Threshold:      cfg.PositionThreshold,
				DropColumns:    classify.DefaultDropColumns(),
				Decimals:       cfg.Decimals,
			},
			Progress: progressf(cmd),
		}.Run(files)
		if err := reportFailures(cmd, w, batch); err != nil {
			return err
		}
		written, err := w.WriteFiltered(cfg.GeneralFolder, batch.Results)
		if err != nil {
			return err
		}
		infof(cmd, "✓ Wrote %d classified files", len(written))
		ledger, p, err := w.WriteLedger(batch.Results)
		if err != nil {
			return err
		}
		infof(cmd, "✓ Updated %s (%d files)", p, ledger.Len())
		for _, r := range batch.Results {
			if rec, ok := ledger.Get(r.Name()); ok {
				debugf(cmd, "%s: %d none, %d specific, %d non-specific", rec.File, rec.NoInteraction, rec.Specific, rec.NonSpecific)
			}
		}

		r, err := compileColumns(cmd, w, batch, genName, columns)
		if err != nil {
			return err
		}
		if !genPlots.disabled {
			if len(r.Keys()) > 0 {
				if err := plotHistograms(cmd, w, r, columns[0]); err != nil {
					return err
				}
			}
			if err := plotPies(cmd, w, ledger); err != nil {
				return err
			}
		}
		if err := w.Manifest.Save(); err != nil {
			return err
		}
		infof(cmd, "✓ Processed %d/%d files", len(batch.Results), len(files))
		return nil
	},
}

func plotPies(cmd *cobra.Command, w *pipeline.Writer, l *classify.Ledger) error {
	pies := pipeline.InteractionSeries(l)
	for _, s := range pies.Skipped {
		warnf(cmd, "no pie for %s: %v", s.Path, s.Err)
	}
	for _, k := range pies.Replaced {
		warnf(cmd, "duplicate identifier %s in %s; keeping the last record", k, pipeline.LedgerFile)
	}
	g := router(cmd).Route(pies.Series)
	if len(g.Dates) == 0 {
		return nil
	}
	paths, err := render.RootPies(g, w.GraphsDir(), render.InteractionLabels)
	if err != nil {
		return err
	}
	if err := w.Record(manifest.KindPie, paths...); err != nil {
		return err
	}
	infof(cmd, "✓ Rendered %d pie pages into %s", len(paths), w.GraphsDir())
	return nil
}

func init() {
	rootCmd.AddCommand(generalCmd)
	generalCmd.Flags().Float64Var(&genThreshold, "threshold", 0, "minimum rupture position for a specific interaction (default from config)")
	generalCmd.Flags().StringSliceVar(&genCompile, "compile", nil, "converted columns to compile (default: adhesion)")
	generalCmd.Flags().StringVar(&genName, "name", "adhesion", "base name of the compiled export")
	genPlots.register(generalCmd)
}
