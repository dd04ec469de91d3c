package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/xuri/excelize/v2"
)

type delimitedSource struct{}

func (delimitedSource) CanLoad(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (delimitedSource) Records(path string, opt LoadOptions) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &AccessError{Path: path, Err: fmt.Errorf("open csv: %w", err)}
	}
	defer f.Close()
	recs, err := readDelimited(f, delimiterFor(path, opt))
	if err != nil {
		return nil, &AccessError{Path: path, Err: err}
	}
	return recs, nil
}

type gzipSource struct{}

func (gzipSource) CanLoad(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

func (gzipSource) Records(path string, opt LoadOptions) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &AccessError{Path: path, Err: fmt.Errorf("open gzip: %w", err)}
	}
	defer f.Close()
	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, &AccessError{Path: path, Err: fmt.Errorf("gzip header: %w", err)}
	}
	defer gz.Close()
	recs, err := readDelimited(gz, delimiterFor(strings.TrimSuffix(strings.ToLower(path), ".gz"), opt))
	if err != nil {
		return nil, &AccessError{Path: path, Err: err}
	}
	return recs, nil
}

type xlsxSource struct{}

func (xlsxSource) CanLoad(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".xlsx")
}

// Records reads the selected sheet. If SheetName is empty the 1-based
// SheetIndex is used, defaulting to the first sheet.
func (xlsxSource) Records(path string, opt LoadOptions) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &AccessError{Path: path, Err: fmt.Errorf("open xlsx: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	target := ""
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				target = s
				break
			}
		}
		if target == "" {
			return nil, &AccessError{Path: path, Err: fmt.Errorf("sheet '%s' not found in workbook '%s'; available sheets: %s",
				opt.SheetName, filepath.Base(path), strings.Join(sheets, ", "))}
		}
	} else {
		idx := opt.SheetIndex
		if idx <= 0 {
			idx = 1
		}
		if idx > len(sheets) {
			return nil, &AccessError{Path: path, Err: fmt.Errorf("sheet index %d out of range (workbook has %d sheets)", idx, len(sheets))}
		}
		target = sheets[idx-1]
	}
	rows, err := f.GetRows(target)
	if err != nil {
		return nil, &AccessError{Path: path, Err: fmt.Errorf("read sheet %s: %w", target, err)}
	}
	return rows, nil
}

func delimiterFor(path string, opt LoadOptions) rune {
	if opt.Delimiter != 0 {
		return opt.Delimiter
	}
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func readDelimited(r io.Reader, delim rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	var out [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
