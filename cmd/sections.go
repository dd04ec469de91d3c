package cmd

import (
	"github.com/KaramelBytes/solarlens/internal/analysis"
	"github.com/spf13/cobra"
)

// sectionCommands lists the single-analysis shortcuts of analyze.
var sectionCommands = []struct {
	section analysis.Section
	short   string
}{
	{analysis.SectionSummary, "Summary statistics for every numeric column"},
	{analysis.SectionQuality, "Missing values per column and IQR outliers per numeric column"},
	{analysis.SectionTimeSeries, "Monthly averages of GHI, DNI, DHI and Tamb"},
	{analysis.SectionCorrelations, "Pearson correlation matrix of GHI, DNI, DHI, Tamb, WS and RH"},
	{analysis.SectionWind, "Wind speed frequencies and 8-sector direction distribution"},
}

// newSectionCmd builds a command that runs one section and fails with that
// section's error.
func newSectionCmd(section analysis.Section, short string) *cobra.Command {
	out := &outputFlags{}
	c := &cobra.Command{
		Use:   string(section) + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(args[0])
			if err != nil {
				return err
			}
			res := analysis.Run(ds, logf(), analysis.RunOptions{
				Sections:    []analysis.Section{section},
				PreviewRows: out.previewRows(cmd),
			})
			if err := sectionErr(res, section); err != nil {
				return err
			}
			return out.emit(cmd, res)
		},
	}
	out.register(c, 0)
	return c
}

func init() {
	for _, sc := range sectionCommands {
		rootCmd.AddCommand(newSectionCmd(sc.section, sc.short))
	}
}
