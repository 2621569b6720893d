package cmd

import (
	"fmt"
	"sort"
	"strconv"

	cfgpkg "github.com/KaramelBytes/afmtool-cli/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set afmtool configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := setField(c, key, val); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		infof(cmd, "✓ Saved %s = %s", key, val)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

type fields struct {
	floats  map[string]*float64
	ints    map[string]*int
	bools   map[string]*bool
	strings map[string]*string
}

func configFields(c *cfgpkg.Global) fields {
	return fields{
		floats: map[string]*float64{
			"bending_length_min": &c.BendingLengthMin,
			"bending_length_max": &c.BendingLengthMax,
			"contour_length_min": &c.ContourLengthMin,
			"contour_length_max": &c.ContourLengthMax,
			"residual_rms_max":   &c.ResidualRMSMax,
			"position_threshold": &c.PositionThreshold,
			"bin_width":          &c.BinWidth,
			"x_max":              &c.XMax,
		},
		ints: map[string]*int{
			"decimals":     &c.Decimals,
			"bucket_count": &c.BucketCount,
		},
		bools: map[string]*bool{
			"filter_enabled":   &c.FilterEnabled,
			"permissive_units": &c.PermissiveUnits,
		},
		strings: map[string]*string{
			"length_prefix":   &c.LengthPrefix,
			"contour_prefix":  &c.ContourPrefix,
			"force_prefix":    &c.ForcePrefix,
			"position_prefix": &c.PositionPrefix,
			"energy_prefix":   &c.EnergyPrefix,
			"output_dir":      &c.OutputDir,
			"chainfit_folder": &c.ChainFitFolder,
			"general_folder":  &c.GeneralFolder,
			"graphs_folder":   &c.GraphsFolder,
		},
	}
}

func setField(c *cfgpkg.Global, key, val string) error {
	f := configFields(c)
	if p, ok := f.floats[key]; ok {
		x, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %v", key, val)
		}
		*p = x
		return nil
	}
	if p, ok := f.ints[key]; ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*p = i
		return nil
	}
	if p, ok := f.bools[key]; ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %v", key, val)
		}
		*p = b
		return nil
	}
	if p, ok := f.strings[key]; ok {
		*p = val
		return nil
	}
	return fmt.Errorf("unknown key: %s (known: %v)", key, f.keys())
}

func (f fields) keys() []string {
	var out []string
	for k := range f.floats {
		out = append(out, k)
	}
	for k := range f.ints {
		out = append(out, k)
	}
	for k := range f.bools {
		out = append(out, k)
	}
	for k := range f.strings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
