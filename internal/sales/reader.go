package sales

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile loads a CSV or XLSX file into a raw Table, choosing the reader by extension.
func ReadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var t Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		t, err = ReadXLSX(f)
	default:
		t, err = ReadCSV(f)
	}
	if err != nil {
		return Table{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	log.Debug().Str("path", path).Int("rows", len(t.Rows)).Int("columns", len(t.Header)).Msg("Loaded table")
	return t, nil
}

// ReadCSV parses delimited text. Comma and semicolon separators are detected
// from the header line; a leading UTF-8 BOM is stripped.
func ReadCSV(r io.Reader) (Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	firstLine, _ := br.Peek(4096)
	if i := bytes.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if bytes.Count(firstLine, []byte{';'}) > bytes.Count(firstLine, []byte{','}) {
		cr.Comma = ';'
	}

	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, err
	}
	return toTable(records)
}

// ReadXLSX reads the first sheet of a workbook.
func ReadXLSX(r io.Reader) (Table, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, err
	}
	defer func() {
		if err := wb.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close workbook")
		}
	}()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, ErrEmptyInput
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return Table{}, err
	}
	return toTable(rows)
}

func toTable(records [][]string) (Table, error) {
	if len(records) == 0 {
		return Table{}, ErrEmptyInput
	}
	t := Table{Header: make([]string, len(records[0]))}
	for i, h := range records[0] {
		t.Header[i] = strings.TrimSpace(h)
	}
	for _, row := range records[1:] {
		if isBlank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
