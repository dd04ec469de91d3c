package cmd

import (
	"fmt"

	"github.com/KaramelBytes/solarlens/internal/analysis"
	"github.com/KaramelBytes/solarlens/internal/report"
	"github.com/spf13/cobra"
)

var previewRows int

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Print the first rows of a sensor file as loaded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if previewRows < 0 {
			return fmt.Errorf("invalid -n: %d", previewRows)
		}
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		p := analysis.Preview{Columns: ds.Columns(), Rows: ds.Head(previewRows)}
		fmt.Fprint(cmd.OutOrStdout(), report.PreviewMarkdown(p, ds.Rows()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntVarP(&previewRows, "rows", "n", 10, "number of rows to show")
}
