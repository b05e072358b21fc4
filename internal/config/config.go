package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/plotloom/plotloom-cli/internal/utils"
)

// Global configuration structure.
type Global struct {
	DefaultRows  int    `mapstructure:"default_rows" yaml:"default_rows"`
	DefaultCols  int    `mapstructure:"default_cols" yaml:"default_cols"`
	CSVDelimiter string `mapstructure:"csv_delimiter" yaml:"csv_delimiter"`
	CSVRowPolicy string `mapstructure:"csv_row_policy" yaml:"csv_row_policy"`
	FitSamples   int    `mapstructure:"fit_samples" yaml:"fit_samples"`
	FitMaxIter   int    `mapstructure:"fit_max_iter" yaml:"fit_max_iter"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.plotloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".plotloom")
		if err := utils.EnsureDir(dir); err != nil {
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
	v.SetEnvPrefix("PLOTLOOM")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("default_rows", 1000)
	v.SetDefault("default_cols", 2)
	v.SetDefault("csv_delimiter", "")
	v.SetDefault("csv_row_policy", "nan")
	v.SetDefault("fit_samples", 1000)
	v.SetDefault("fit_max_iter", 10000)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".plotloom")
		_ = utils.EnsureDir(dir)
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
