package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/solarlens/internal/analysis"
	cfgpkg "github.com/KaramelBytes/solarlens/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set solarlens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "output_format: %s\n", cfg.OutputFormat)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", cfg.SheetName)
		}
		if len(cfg.TimeLayouts) > 0 {
			fmt.Fprintf(out, "time_layouts: %s\n", strings.Join(cfg.TimeLayouts, "; "))
		}
		fmt.Fprintf(out, "sample_rows: %d\n", cfg.SampleRows)
		fmt.Fprintf(out, "sections: %s\n", strings.Join(cfg.Sections, ","))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Re-read from disk so flag overrides are not persisted.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		switch key {
		case "log_level":
			switch strings.ToLower(val) {
			case "debug", "info", "warn", "warning", "error":
				c.LogLevel = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
			}
		case "log_format":
			switch strings.ToLower(val) {
			case "text", "json":
				c.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		case "output_format":
			if !validFormat(strings.ToLower(val)) {
				return fmt.Errorf("invalid output_format: %s (use markdown|json|yaml)", val)
			}
			c.OutputFormat = strings.ToLower(val)
		case "delimiter":
			if _, err := parseDelimiter(val); err != nil {
				return err
			}
			c.Delimiter = val
		case "sheet_name":
			c.SheetName = val
		case "time_layouts":
			c.TimeLayouts = splitList(val, ";")
		case "sample_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for sample_rows: %v", val)
			}
			c.SampleRows = i
		case "sections":
			names := splitList(val, ",")
			if _, err := analysis.ParseSections(names); err != nil {
				return err
			}
			c.Sections = names
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func splitList(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
