package cmd

import (
	"fmt"
	"os"
	"strings"

	cfgpkg "github.com/KaramelBytes/solarlens/internal/config"
	"github.com/KaramelBytes/solarlens/internal/dataset"
	"github.com/KaramelBytes/solarlens/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile         string
	flagLogLevel    string
	flagLogFormat   string
	flagDelimiter   string
	flagSheetName   string
	flagSheetIndex  int
	flagTimeLayouts []string

	// Loaded configuration and logger
	cfg *cfgpkg.Global
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "solarlens",
	Short: "solarlens: summary analytics for solar-farm sensor data",
	Long: `solarlens loads a table of timestamped solar-farm sensor readings
(CSV, TSV, gzip-compressed CSV or XLSX) and reports summary statistics,
data quality, monthly averages, correlations and wind distributions.`,
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

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.solarlens/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "delimiter: ',' | ';' | '|' | 'tab' (default by extension)")
	rootCmd.PersistentFlags().StringVar(&flagSheetName, "sheet-name", "", "XLSX: sheet name to load")
	rootCmd.PersistentFlags().IntVar(&flagSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	rootCmd.PersistentFlags().StringSliceVar(&flagTimeLayouts, "time-layout", nil, "extra Go time layout for the Timestamp column (repeatable)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(rootCmd.ErrOrStderr(), "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("sheet-name") {
		cfg.SheetName = flagSheetName
	}
	if f.Changed("time-layout") {
		cfg.TimeLayouts = append(append([]string(nil), flagTimeLayouts...), cfg.TimeLayouts...)
	}
	log = logger.NewWithWriter(cfg.LogLevel, cfg.LogFormat, rootCmd.ErrOrStderr())
}

// loadOptions merges config and flags into loader options.
func loadOptions() (dataset.LoadOptions, error) {
	opt := dataset.LoadOptions{SheetIndex: flagSheetIndex, SheetName: flagSheetName}
	delim := flagDelimiter
	if cfg != nil {
		opt.SheetName = cfg.SheetName
		opt.TimeLayouts = cfg.TimeLayouts
		delim = cfg.Delimiter
	}
	d, err := parseDelimiter(delim)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = d
	return opt, nil
}

func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	case "\t", "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}

// loadDataset loads path with the effective loader options.
func loadDataset(path string) (*dataset.Dataset, error) {
	opt, err := loadOptions()
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Load(path, opt)
	if err != nil {
		return nil, err
	}
	logf().WithFields(map[string]interface{}{"rows": ds.Rows(), "columns": len(ds.Columns())}).Infof("Loaded %s", ds.Name())
	return ds, nil
}

// logf returns the command logger, creating a default one if config was
// never loaded.
func logf() logger.Logger {
	if log == nil {
		log = logger.NewWithWriter("info", "text", rootCmd.ErrOrStderr())
	}
	return log
}
