package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KaramelBytes/solarlens/internal/analysis"
	"github.com/KaramelBytes/solarlens/internal/report"
	"github.com/KaramelBytes/solarlens/internal/utils"
	"github.com/spf13/cobra"
)

// outputFlags are the rendering flags shared by analyze and the
// single-section commands.
type outputFlags struct {
	format     string
	output     string
	xlsx       string
	parquet    string
	sampleRows int

	// rowsFromConfig lets config sample_rows apply when --sample-rows is unset.
	rowsFromConfig bool
}

func (o *outputFlags) register(c *cobra.Command, defaultRows int) {
	c.Flags().StringVarP(&o.format, "format", "f", "", "output format: markdown|json|yaml (default from config)")
	c.Flags().StringVarP(&o.output, "output", "o", "", "optional path to write the report instead of stdout")
	c.Flags().StringVar(&o.xlsx, "xlsx", "", "optional path to write an XLSX workbook")
	c.Flags().StringVar(&o.parquet, "parquet", "", "optional path to write monthly averages as Parquet")
	c.Flags().IntVar(&o.sampleRows, "sample-rows", defaultRows, "number of raw rows to include in the report")
}

func (o *outputFlags) previewRows(c *cobra.Command) int {
	if o.rowsFromConfig && !c.Flags().Changed("sample-rows") && cfg != nil {
		return cfg.SampleRows
	}
	return o.sampleRows
}

func (o *outputFlags) resolvedFormat() string {
	f := o.format
	if f == "" && cfg != nil {
		f = cfg.OutputFormat
	}
	if f == "" {
		f = "markdown"
	}
	return strings.ToLower(f)
}

func validFormat(f string) bool {
	switch f {
	case "markdown", "md", "json", "yaml", "yml":
		return true
	}
	return false
}

func render(res *analysis.Results, format string) ([]byte, error) {
	switch format {
	case "markdown", "md":
		return []byte(report.Markdown(res)), nil
	case "json":
		return report.JSON(res)
	case "yaml", "yml":
		return report.YAML(res)
	default:
		return nil, fmt.Errorf("unsupported --format: %s (use markdown|json|yaml)", format)
	}
}

// emit writes the rendered report and any requested side files.
func (o *outputFlags) emit(cmd *cobra.Command, res *analysis.Results) error {
	body, err := render(res, o.resolvedFormat())
	if err != nil {
		return err
	}
	if o.output != "" {
		if err := utils.SafeWriteFile(o.output, body); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		cmd.Printf("✓ Wrote report to %s\n", o.output)
	} else {
		out := cmd.OutOrStdout()
		fmt.Fprint(out, string(body))
		if !bytes.HasSuffix(body, []byte("\n")) {
			fmt.Fprintln(out)
		}
	}
	if o.xlsx != "" {
		var buf bytes.Buffer
		if err := report.WriteXLSX(res, &buf); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(o.xlsx, buf.Bytes()); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		cmd.Printf("✓ Wrote workbook to %s\n", o.xlsx)
	}
	if o.parquet != "" {
		ts := res.TimeSeries
		switch {
		case ts == nil:
			cmd.PrintErrf("⚠ Skipping parquet export: timeseries section not run\n")
		case ts.Err != nil:
			cmd.PrintErrf("⚠ Skipping parquet export: %v\n", ts.Err)
		default:
			var buf bytes.Buffer
			if err := report.WriteMonthlyParquet(ts.Series, &buf); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(o.parquet, buf.Bytes()); err != nil {
				return fmt.Errorf("write parquet: %w", err)
			}
			cmd.Printf("✓ Wrote monthly averages to %s\n", o.parquet)
		}
	}
	return nil
}
