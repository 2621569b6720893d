package cmd

import (
	"github.com/KaramelBytes/afmtool-cli/internal/buckets"
	cfgpkg "github.com/KaramelBytes/afmtool-cli/internal/config"
	"github.com/KaramelBytes/afmtool-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	cfNoFilter bool
	cfCompile  []string
	cfName     string
	cfPlots    plotFlags
)

var chainfitCmd = &cobra.Command{
	Use:   "chainfit <files...>",
	Short: "Convert, filter and compile chain-fit exports",
	Long: `Convert chain-fit exports to the configured prefixes, keep rows inside the
bending length, contour length and residual RMS bounds, count segments per
measurement and compile the breaking forces by date and root section.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireConfig(); err != nil {
			return err
		}
		if cfNoFilter {
			cfg.FilterEnabled = false
		}
		cfPlots.apply(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		f, err := cfg.ChainFitFilter()
		if err != nil {
			return err
		}
		conv := cfg.Converter()
		columns := cfCompile
		if len(columns) == 0 {
			force, err := conv.Converted(cfgpkg.BreakingForceColumn, cfg.ForcePrefix)
			if err != nil {
				return err
			}
			columns = []string{force}
		}
		debugf(cmd, "filter: %v (enabled=%v)", f.Bounds, f.Enabled)

		w, err := newWriter("chainfit", files)
		if err != nil {
			return err
		}
		b := buckets.New(cfg.BucketCount)
		batch := pipeline.ChainFit{
			Converter:   conv,
			Conversions: cfg.ChainFitConversions(),
			Filter:      f,
			Bucketer:    b,
			Progress:    progressf(cmd),
		}.Run(files)
		if err := reportFailures(cmd, w, batch); err != nil {
			return err
		}

		written, err := w.WriteFiltered(cfg.ChainFitFolder, batch.Results)
		if err != nil {
			return err
		}
		infof(cmd, "✓ Wrote %d filtered files", len(written))
		p, err := w.WriteBuckets(b, batch.Results)
		if err != nil {
			return err
		}
		infof(cmd, "✓ Wrote segment counts to %s", p)

		r, err := compileColumns(cmd, w, batch, cfName, columns)
		if err != nil {
			return err
		}
		if !cfPlots.disabled && len(r.Keys()) > 0 {
			if err := plotHistograms(cmd, w, r, columns[0]); err != nil {
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

func init() {
	rootCmd.AddCommand(chainfitCmd)
	chainfitCmd.Flags().BoolVar(&cfNoFilter, "no-filter", false, "keep every row regardless of the configured bounds")
	chainfitCmd.Flags().StringSliceVar(&cfCompile, "compile", nil, "converted columns to compile (default: breaking force)")
	chainfitCmd.Flags().StringVar(&cfName, "name", "breaking_forces", "base name of the compiled export")
	cfPlots.register(chainfitCmd)
}
