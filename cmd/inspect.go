package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/KaramelBytes/afmtool-cli/internal/analysis"
	"github.com/KaramelBytes/afmtool-cli/internal/manifest"
	"github.com/KaramelBytes/afmtool-cli/internal/table"
	"github.com/KaramelBytes/afmtool-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	insOutputPath string
	insSampleRows int
	insOutliers   bool
	insOutlierThr float64
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file|run-dir>",
	Short: "Summarize a measurement export, or the manifest of a run directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := analysis.DefaultOptions()
		if insSampleRows > 0 {
			opt.SampleRows = insSampleRows
		}
		opt.Outliers = insOutliers
		if insOutlierThr > 0 {
			opt.OutlierThreshold = insOutlierThr
		}
		if fi, err := os.Stat(args[0]); err == nil && fi.IsDir() {
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), runSummary(m))
			return nil
		}
		t, err := table.Read(args[0], table.Options{})
		if err != nil {
			return err
		}
		rep := analysis.Summarize(t, opt)
		for _, w := range rep.Warnings {
			warnf(cmd, "%s", w)
		}
		md := rep.Markdown()

		if insOutputPath != "" {
			if err := utils.SafeWriteFile(insOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			infof(cmd, "✓ Wrote summary to %s", insOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func runSummary(m *manifest.Manifest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[RUN]\nID: %s\nCommand: %s\nDirectory: %s\nInputs: %d\nCreated: %s\n",
		m.ID, m.Command, m.RootDir(), len(m.Inputs), m.CreatedAt.Format(time.RFC3339))
	b.WriteString("\n[ARTIFACTS]\n")
	for _, k := range manifest.Kinds() {
		as := m.ByKind(k)
		if len(as) == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s: %d\n", k, len(as))
		for _, a := range as {
			fmt.Fprintf(&b, "  %s (%d bytes)\n", a.Path, a.Size)
		}
	}
	if len(m.Failures) > 0 {
		b.WriteString("\n[FAILURES]\n")
		for _, f := range m.Failures {
			fmt.Fprintf(&b, "- %s: %s\n", f.Path, f.Error)
		}
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&insOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	inspectCmd.Flags().IntVar(&insSampleRows, "sample-rows", 5, "number of sample rows to include")
	inspectCmd.Flags().BoolVar(&insOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	inspectCmd.Flags().Float64Var(&insOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
}
