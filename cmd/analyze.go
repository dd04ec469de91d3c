package cmd

import (
	"github.com/KaramelBytes/solarlens/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	anaSections []string
	anaOutput   = outputFlags{rowsFromConfig: true}
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run every analysis over a sensor file and print a report",
	Long: `Load the file once and run summary statistics, data quality, monthly
averages, correlations and wind analysis. A section whose required columns
are missing is reported as skipped; the command fails only when the file
itself cannot be loaded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := anaSections
		if !cmd.Flags().Changed("sections") && cfg != nil {
			names = cfg.Sections
		}
		sections, err := analysis.ParseSections(names)
		if err != nil {
			return err
		}
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		res := analysis.Run(ds, logf(), analysis.RunOptions{
			Sections:    sections,
			PreviewRows: anaOutput.previewRows(cmd),
		})
		for _, s := range res.Failed() {
			cmd.PrintErrf("⚠ Skipped %s: %v\n", s, sectionErr(res, s))
		}
		return anaOutput.emit(cmd, res)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringSliceVar(&anaSections, "sections", nil, "comma-separated sections: summary|quality|timeseries|correlations|wind (default all)")
	anaOutput.register(analyzeCmd, 5)
}

// sectionErr returns the error recorded for a section, if any.
func sectionErr(res *analysis.Results, s analysis.Section) error {
	switch s {
	case analysis.SectionSummary:
		if res.Summary != nil {
			return res.Summary.Err
		}
	case analysis.SectionTimeSeries:
		if res.TimeSeries != nil {
			return res.TimeSeries.Err
		}
	case analysis.SectionCorrelations:
		if res.Correlations != nil {
			return res.Correlations.Err
		}
	case analysis.SectionWind:
		if res.Wind != nil {
			return res.Wind.Err
		}
	}
	return nil
}
