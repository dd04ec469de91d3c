package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DirName is the per-user config directory under $HOME.
const DirName = ".solarlens"

// Global configuration structure.
type Global struct {
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat    string `mapstructure:"log_format" yaml:"log_format"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`

	// Loader defaults
	Delimiter   string   `mapstructure:"delimiter" yaml:"delimiter"`
	SheetName   string   `mapstructure:"sheet_name" yaml:"sheet_name"`
	TimeLayouts []string `mapstructure:"time_layouts" yaml:"time_layouts"`

	// Report defaults
	SampleRows int      `mapstructure:"sample_rows" yaml:"sample_rows"`
	Sections   []string `mapstructure:"sections" yaml:"sections"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Global {
	return &Global{
		LogLevel:     "info",
		LogFormat:    "text",
		OutputFormat: "markdown",
		SampleRows:   5,
		TimeLayouts:  []string{},
		Sections:     []string{"summary", "quality", "timeseries", "correlations", "wind"},
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.solarlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, DirName)
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
	v.SetEnvPrefix("SOLARLENS")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("time_layouts", d.TimeLayouts)
	v.SetDefault("sample_rows", d.SampleRows)
	v.SetDefault("sections", d.Sections)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, DirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.SampleRows < 0 {
		return nil, fmt.Errorf("invalid sample_rows: %d", c.SampleRows)
	}
	return &c, nil
}
