package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/solarlens/internal/analysis"
	"github.com/KaramelBytes/solarlens/internal/report"
	"github.com/KaramelBytes/solarlens/internal/utils"
	"github.com/spf13/cobra"
)

var (
	abOutDir     string
	abFormat     string
	abSections   []string
	abSampleRows int
	abXLSX       bool
	abQuiet      bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze several sensor files and write one report per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		if abOutDir == "" {
			return fmt.Errorf("--out-dir is required")
		}
		names := abSections
		if !cmd.Flags().Changed("sections") && cfg != nil {
			names = cfg.Sections
		}
		sections, err := analysis.ParseSections(names)
		if err != nil {
			return err
		}
		out := &outputFlags{format: abFormat}
		format := out.resolvedFormat()
		if !validFormat(format) {
			return fmt.Errorf("unsupported --format: %s (use markdown|json|yaml)", format)
		}
		if err := os.MkdirAll(abOutDir, 0o755); err != nil {
			return fmt.Errorf("create out dir: %w", err)
		}

		total := len(files)
		var failed []string
		for i, path := range files {
			if !abQuiet {
				cmd.Printf("[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := loadDataset(path)
			if err != nil {
				cmd.PrintErrf("✗ %s: %v\n", filepath.Base(path), err)
				failed = append(failed, path)
				continue
			}
			res := analysis.Run(ds, logf(), analysis.RunOptions{Sections: sections, PreviewRows: abSampleRows})
			body, err := render(res, format)
			if err != nil {
				return err
			}
			base := uniqueBase(abOutDir, reportBase(path), reportExt(format))
			outFile := filepath.Join(abOutDir, base+reportExt(format))
			if err := utils.SafeWriteFile(outFile, body); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			if abXLSX {
				var buf bytes.Buffer
				if err := report.WriteXLSX(res, &buf); err != nil {
					return err
				}
				if err := utils.SafeWriteFile(filepath.Join(abOutDir, base+".xlsx"), buf.Bytes()); err != nil {
					return fmt.Errorf("write xlsx: %w", err)
				}
			}
			if !abQuiet {
				cmd.Printf("✓ Wrote %s\n", filepath.Base(outFile))
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d files could not be loaded", len(failed), total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory for per-file reports")
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", "", "report format: markdown|json|yaml (default from config)")
	analyzeBatchCmd.Flags().StringSliceVar(&abSections, "sections", nil, "comma-separated sections (default all)")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 5, "number of raw rows to include in each report")
	analyzeBatchCmd.Flags().BoolVar(&abXLSX, "xlsx", false, "also write an XLSX workbook per file")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}

// expandInputs resolves globs, keeps literal paths that exist, and
// de-duplicates. The result is sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// reportBase strips every extension so farm.csv.gz becomes farm.
func reportBase(path string) string {
	base := filepath.Base(path)
	for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" {
		base = "dataset"
	}
	return base
}

func reportExt(format string) string {
	switch format {
	case "json":
		return ".report.json"
	case "yaml", "yml":
		return ".report.yaml"
	default:
		return ".report.md"
	}
}

// uniqueBase appends __2, __3, ... until base+ext does not exist in dir.
func uniqueBase(dir, base, ext string) string {
	if _, err := os.Stat(filepath.Join(dir, base+ext)); os.IsNotExist(err) {
		return base
	}
	for idx := 2; ; idx++ {
		cand := fmt.Sprintf("%s__%d", base, idx)
		if _, err := os.Stat(filepath.Join(dir, cand+ext)); os.IsNotExist(err) {
			return cand
		}
	}
}
