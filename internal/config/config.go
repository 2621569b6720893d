package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/afmtool-cli/internal/buckets"
	"github.com/KaramelBytes/afmtool-cli/internal/filter"
	"github.com/KaramelBytes/afmtool-cli/internal/units"
)

// Raw headers of the columns the pipelines convert before filtering.
const (
	BendingLengthColumn = "Bending Length [m]"
	ContourLengthColumn = "Contour Length [m]"
	ResidualRMSColumn   = "Residual RMS [N]"
	BreakingForceColumn = "Breaking Force [N]"
	AdhesionColumn      = "Adhesion [N]"
	AreaColumn          = "Area [J]"
	PositionColumn      = "Minimum Position [m]"
	SegmentColumn       = "Fitted Segment Count"
)

// Global configuration structure.
type Global struct {
	// Chain-fit bounds, expressed in the configured prefixes. All are exclusive.
	BendingLengthMin float64 `mapstructure:"bending_length_min" yaml:"bending_length_min"`
	BendingLengthMax float64 `mapstructure:"bending_length_max" yaml:"bending_length_max"`
	ContourLengthMin float64 `mapstructure:"contour_length_min" yaml:"contour_length_min"`
	ContourLengthMax float64 `mapstructure:"contour_length_max" yaml:"contour_length_max"`
	ResidualRMSMax   float64 `mapstructure:"residual_rms_max" yaml:"residual_rms_max"`
	FilterEnabled    bool    `mapstructure:"filter_enabled" yaml:"filter_enabled"`

	// Classification
	PositionThreshold float64 `mapstructure:"position_threshold" yaml:"position_threshold"`

	// Target prefixes
	LengthPrefix   string `mapstructure:"length_prefix" yaml:"length_prefix"`
	ContourPrefix  string `mapstructure:"contour_prefix" yaml:"contour_prefix"`
	ForcePrefix    string `mapstructure:"force_prefix" yaml:"force_prefix"`
	PositionPrefix string `mapstructure:"position_prefix" yaml:"position_prefix"`
	EnergyPrefix   string `mapstructure:"energy_prefix" yaml:"energy_prefix"`
	// PermissiveUnits scales unrecognized unit specifiers by 1 instead of failing.
	PermissiveUnits bool `mapstructure:"permissive_units" yaml:"permissive_units"`

	Decimals    int     `mapstructure:"decimals" yaml:"decimals"`
	BucketCount int     `mapstructure:"bucket_count" yaml:"bucket_count"`
	BinWidth    float64 `mapstructure:"bin_width" yaml:"bin_width"`
	XMax        float64 `mapstructure:"x_max" yaml:"x_max"`

	// Output layout
	OutputDir      string `mapstructure:"output_dir" yaml:"output_dir"`
	ChainFitFolder string `mapstructure:"chainfit_folder" yaml:"chainfit_folder"`
	GeneralFolder  string `mapstructure:"general_folder" yaml:"general_folder"`
	GraphsFolder   string `mapstructure:"graphs_folder" yaml:"graphs_folder"`
}

// Dir is the per-user configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".afmtool"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.afmtool/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("AFMTOOL")
	v.AutomaticEnv()

	// Calibrated chain-fit bounds
	v.SetDefault("bending_length_min", 20.0)
	v.SetDefault("bending_length_max", 4000.0)
	v.SetDefault("contour_length_min", 300.0)
	v.SetDefault("contour_length_max", 5000.0)
	v.SetDefault("residual_rms_max", 25.0)
	v.SetDefault("filter_enabled", true)
	v.SetDefault("position_threshold", 300.0)
	// Prefixes
	v.SetDefault("length_prefix", "p")
	v.SetDefault("contour_prefix", "n")
	v.SetDefault("force_prefix", "p")
	v.SetDefault("position_prefix", "n")
	v.SetDefault("energy_prefix", "a")
	v.SetDefault("permissive_units", false)
	// Export and plots
	v.SetDefault("decimals", 1)
	v.SetDefault("bucket_count", 5)
	v.SetDefault("bin_width", 20.0)
	v.SetDefault("x_max", 500.0)
	v.SetDefault("output_dir", ".")
	v.SetDefault("chainfit_folder", "chainfits")
	v.SetDefault("general_folder", "general")
	v.SetDefault("graphs_folder", "graphs")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Converter returns a unit converter honoring PermissiveUnits.
func (c *Global) Converter() *units.Converter {
	conv := units.NewConverter()
	conv.Permissive = c.PermissiveUnits
	return conv
}

// ChainFitConversions lists the conversions applied to chain-fit exports.
func (c *Global) ChainFitConversions() []units.Conversion {
	return []units.Conversion{
		{Column: BendingLengthColumn, Prefix: c.LengthPrefix},
		{Column: ContourLengthColumn, Prefix: c.ContourPrefix},
		{Column: ResidualRMSColumn, Prefix: c.ForcePrefix},
		{Column: BreakingForceColumn, Prefix: c.ForcePrefix},
	}
}

// GeneralConversions lists the conversions applied to general exports.
func (c *Global) GeneralConversions() []units.Conversion {
	return []units.Conversion{
		{Column: AdhesionColumn, Prefix: c.ForcePrefix},
		{Column: AreaColumn, Prefix: c.EnergyPrefix},
		{Column: PositionColumn, Prefix: c.PositionPrefix},
	}
}

// ChainFitFilter builds the chain-fit range filter over converted headers.
func (c *Global) ChainFitFilter() (filter.Filter, error) {
	conv := c.Converter()
	bending, err := conv.Converted(BendingLengthColumn, c.LengthPrefix)
	if err != nil {
		return filter.Filter{}, err
	}
	contour, err := conv.Converted(ContourLengthColumn, c.ContourPrefix)
	if err != nil {
		return filter.Filter{}, err
	}
	rms, err := conv.Converted(ResidualRMSColumn, c.ForcePrefix)
	if err != nil {
		return filter.Filter{}, err
	}
	f := filter.Filter{
		Enabled: c.FilterEnabled,
		Bounds: []filter.Bound{
			filter.Between(bending, c.BendingLengthMin, c.BendingLengthMax),
			filter.Between(contour, c.ContourLengthMin, c.ContourLengthMax),
			filter.Below(rms, c.ResidualRMSMax),
		},
	}
	return f, f.Validate()
}

// Validate reports systemic configuration errors.
func (c *Global) Validate() error {
	if _, err := c.ChainFitFilter(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	reg := units.DefaultRegistry()
	for name, p := range map[string]string{
		"length_prefix":   c.LengthPrefix,
		"contour_prefix":  c.ContourPrefix,
		"force_prefix":    c.ForcePrefix,
		"position_prefix": c.PositionPrefix,
		"energy_prefix":   c.EnergyPrefix,
	} {
		if _, ok := reg.Prefixes[p]; !ok {
			return fmt.Errorf("invalid config: %s: unknown prefix %q", name, p)
		}
	}
	if err := buckets.New(c.BucketCount).Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.BinWidth <= 0 || c.XMax <= c.BinWidth {
		return fmt.Errorf("invalid config: bin_width %g must be positive and below x_max %g", c.BinWidth, c.XMax)
	}
	if c.Decimals < 0 {
		return fmt.Errorf("invalid config: decimals must not be negative")
	}
	return nil
}
