package cmd

import (
	"fmt"

	"github.com/KaramelBytes/afmtool-cli/internal/table"
	"github.com/KaramelBytes/afmtool-cli/internal/units"
	"github.com/spf13/cobra"
)

var (
	convColumns []string
	convPrefix  string
	convOutput  string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Rescale columns of a measurement export to another unit prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if len(convColumns) == 0 {
			return fmt.Errorf("at least one --column is required")
		}
		t, err := table.Read(args[0], table.Options{})
		if err != nil {
			return err
		}
		cs := make([]units.Conversion, len(convColumns))
		for i, col := range convColumns {
			cs[i] = units.Conversion{Column: col, Prefix: convPrefix}
		}
		out, err := c.Converter().Apply(t, cs)
		if err != nil {
			return err
		}
		if convOutput == "" {
			return out.Write(cmd.OutOrStdout())
		}
		if err := out.WriteFile(convOutput); err != nil {
			return err
		}
		infof(cmd, "✓ Wrote %s", convOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringSliceVarP(&convColumns, "column", "c", nil, "column header to convert (repeatable)")
	convertCmd.Flags().StringVarP(&convPrefix, "prefix", "p", "", "target prefix symbol, e.g. p, n, u (empty for the base unit)")
	convertCmd.Flags().StringVarP(&convOutput, "output", "o", "", "write to this path instead of stdout")
}
