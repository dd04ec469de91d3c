package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/solarlens/internal/dataset"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const farmCSV = `Timestamp,GHI,DNI,DHI,Tamb,WS,WD
2022-01-01 10:00,100,50,20,25,1,10
2022-01-01 11:00,200,60,,26,2,100
2022-02-01 10:00,300,70,30,27,2,190
`

// resetFlags clears values and Changed state left by a previous Execute.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command in an isolated HOME and returns what
// was written to stdout and stderr.
func runCmd(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	log = nil
	var out, errb bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errb)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errb.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func isolatedHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestAnalyzeMarkdownSkipsFailedSection(t *testing.T) {
	home := isolatedHome(t)
	path := writeFile(t, home, "farm.csv", farmCSV)

	out, errOut, err := runCmd(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "[SUMMARY STATISTICS]")
	assert.Contains(t, out, "[WIND]")
	assert.Contains(t, out, "error: correlations: missing required columns: RH")
	assert.Contains(t, out, "[RAW DATA PREVIEW]")
	assert.Contains(t, errOut, "⚠ Skipped correlations")
	assert.Contains(t, errOut, "Calculating summary statistics...")
}

func TestAnalyzeLoadFailures(t *testing.T) {
	home := isolatedHome(t)

	_, _, err := runCmd(t, "analyze", filepath.Join(home, "absent.csv"))
	require.Error(t, err)
	assert.True(t, dataset.IsAccess(err))

	path := writeFile(t, home, "nots.csv", "Time,GHI\n2022-01-01,1\n")
	_, _, err = runCmd(t, "analyze", path)
	require.Error(t, err)
	assert.True(t, dataset.IsValidation(err))
	assert.Contains(t, err.Error(), "Timestamp")
}

func TestAnalyzeWritesFiles(t *testing.T) {
	home := isolatedHome(t)
	path := writeFile(t, home, "farm.csv", farmCSV)
	outDir := filepath.Join(home, "out")
	jsonPath := filepath.Join(outDir, "report.json")
	xlsxPath := filepath.Join(outDir, "report.xlsx")
	pqPath := filepath.Join(outDir, "monthly.parquet")

	out, _, err := runCmd(t, "analyze", path, "--format", "json", "-o", jsonPath, "--xlsx", xlsxPath, "--parquet", pqPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote report to")
	assert.Contains(t, out, "✓ Wrote workbook to")
	assert.Contains(t, out, "✓ Wrote monthly averages to")

	b, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "farm.csv", doc["dataset"])
	assert.NotEmpty(t, doc["run_id"])

	for _, p := range []string{xlsxPath, pqPath} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestAnalyzeSectionsFlag(t *testing.T) {
	home := isolatedHome(t)
	path := writeFile(t, home, "farm.csv", farmCSV)

	out, _, err := runCmd(t, "analyze", path, "--sections", "wind,summary", "--sample-rows", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "[WIND]")
	assert.Contains(t, out, "[SUMMARY STATISTICS]")
	assert.NotContains(t, out, "[CORRELATIONS]")
	assert.NotContains(t, out, "[RAW DATA PREVIEW]")

	_, _, err = runCmd(t, "analyze", path, "--sections", "heatmap")
	require.Error(t, err)
}

func TestAnalyzeParquetSkippedWithoutTimeSeries(t *testing.T) {
	home := isolatedHome(t)
	path := writeFile(t, home, "farm.csv", farmCSV)
	pqPath := filepath.Join(home, "monthly.parquet")

	_, errOut, err := runCmd(t, "analyze", path, "--sections", "wind", "--parquet", pqPath)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Skipping parquet export")
	_, statErr := os.Stat(pqPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSectionCommands(t *testing.T) {
	home := isolatedHome(t)
	path := writeFile(t, home, "farm.csv", farmCSV)

	out, _, err := runCmd(t, "wind", path)
	require.NoError(t, err)
	assert.Contains(t, out, "- N: 0.333")
	assert.NotContains(t, out, "[SUMMARY STATISTICS]")
	assert.NotContains(t, out, "[RAW DATA PREVIEW]")

	out, _, err = runCmd(t, "timeseries", path, "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "timeseries:")
	assert.Contains(t, out, "name: January")

	_, _, err = runCmd(t, "correlations", path)
	require.Error(t, err)
	assert.True(t, dataset.IsValidation(err))
	assert.Contains(t, err.Error(), "RH")
}

func TestPreview(t *testing.T) {
	home := isolatedHome(t)
	path := writeFile(t, home, "farm.tsv", strings.ReplaceAll(farmCSV, ",", "\t"))

	out, _, err := runCmd(t, "preview", path, "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 2 of 3 rows")
	assert.Contains(t, out, "| 2022-01-01 10:00 | 100 |")
}

func TestDelimiterFlag(t *testing.T) {
	home := isolatedHome(t)
	path := writeFile(t, home, "farm.txt", strings.ReplaceAll(farmCSV, ",", ";"))

	out, _, err := runCmd(t, "preview", path, "--delimiter", ";")
	require.NoError(t, err)
	assert.Contains(t, out, "| Timestamp | GHI |")

	_, _, err = runCmd(t, "preview", path, "--delimiter", "#")
	require.Error(t, err)
}

func TestConfigSetAndShow(t *testing.T) {
	home := isolatedHome(t)

	out, _, err := runCmd(t, "config", "set", "sample_rows", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved config")
	_, err = os.Stat(filepath.Join(home, ".solarlens", "config.yaml"))
	require.NoError(t, err)

	out, _, err = runCmd(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "sample_rows: 7")
	assert.Contains(t, out, "output_format: markdown")

	_, _, err = runCmd(t, "config", "set", "output_format", "html")
	require.Error(t, err)
	_, _, err = runCmd(t, "config", "set", "sections", "summary,heatmap")
	require.Error(t, err)
	_, _, err = runCmd(t, "config", "set", "nope", "1")
	require.Error(t, err)
}

func TestConfigDrivesDefaults(t *testing.T) {
	home := isolatedHome(t)
	path := writeFile(t, home, "farm.csv", farmCSV)

	_, _, err := runCmd(t, "config", "set", "output_format", "json")
	require.NoError(t, err)
	_, _, err = runCmd(t, "config", "set", "sections", "wind")
	require.NoError(t, err)

	out, _, err := runCmd(t, "analyze", path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.NotNil(t, doc["wind"])
	assert.Nil(t, doc["summary"])
}

func TestAnalyzeBatch(t *testing.T) {
	home := isolatedHome(t)
	writeFile(t, home, filepath.Join("d1", "farm.csv"), farmCSV)
	writeFile(t, home, filepath.Join("d2", "farm.csv"), farmCSV)
	outDir := filepath.Join(home, "reports")

	out, _, err := runCmd(t, "analyze-batch", filepath.Join(home, "d*", "farm.csv"), "--out-dir", outDir, "--xlsx")
	require.NoError(t, err)
	assert.Contains(t, out, "[1/2] Processing farm.csv...")
	assert.Contains(t, out, "[2/2] Processing farm.csv...")

	for _, name := range []string{"farm.report.md", "farm__2.report.md", "farm.xlsx", "farm__2.xlsx"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
	body, err := os.ReadFile(filepath.Join(outDir, "farm.report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "[MONTHLY AVERAGES]")
}

func TestAnalyzeBatchContinuesPastBadFile(t *testing.T) {
	home := isolatedHome(t)
	good := writeFile(t, home, "good.csv", farmCSV)
	bad := writeFile(t, home, "bad.csv", "GHI\n1\n")
	outDir := filepath.Join(home, "reports")

	_, errOut, err := runCmd(t, "analyze-batch", good, bad, "--out-dir", outDir, "--quiet", "-f", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files")
	assert.Contains(t, errOut, "✗ bad.csv")
	_, statErr := os.Stat(filepath.Join(outDir, "good.report.yaml"))
	assert.NoError(t, statErr)
}

func TestParseDelimiter(t *testing.T) {
	cases := map[string]rune{"": 0, ",": ',', "comma": ',', ";": ';', "|": '|', "tab": '\t', "TAB": '\t', "\t": '\t'}
	for in, want := range cases {
		got, err := parseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseDelimiter("::")
	assert.Error(t, err)
}

func TestReportBase(t *testing.T) {
	assert.Equal(t, "farm", reportBase("/data/farm.csv.gz"))
	assert.Equal(t, "farm", reportBase("farm.xlsx"))
	assert.Equal(t, "dataset", reportBase(".csv"))
}
