package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/afmtool-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	quiet   bool
	// Overrides applied on top of the loaded config
	flagOutputDir       string
	flagPermissiveUnits bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "afmtool",
	Short: "afmtool: post-process AFM force-spectroscopy exports",
	Long: `afmtool converts unit prefixes, filters chain fits, classifies interactions and
compiles parameters across AFM force-spectroscopy exports grouped by root section
(maturation, elongation, cell division), then renders histograms and pie charts.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.afmtool/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress progress and non-essential output")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output-dir", "", "directory for exports and graphs (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagPermissiveUnits, "permissive-units", false, "scale unrecognized unit specifiers by 1 instead of failing")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config report it themselves
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("output-dir") && flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	if f.Changed("permissive-units") {
		cfg.PermissiveUnits = flagPermissiveUnits
	}
}

// requireConfig returns the loaded config, loading it if initialization was skipped.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	return cfg, nil
}

func infof(cmd *cobra.Command, format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

func debugf(cmd *cobra.Command, format string, args ...any) {
	if debug {
		fmt.Fprintf(cmd.ErrOrStderr(), "[debug] "+format+"\n", args...)
	}
}

func warnf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: "+format+"\n", args...)
}
