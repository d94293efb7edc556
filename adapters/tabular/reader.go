package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"borelog/domain/borehole"
	"borelog/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Supported upload formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FormatFor infers the upload format from a file name. Anything that is not a
// workbook is read as CSV.
func FormatFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// Parse reads an uploaded file into a table. Unparseable input yields an
// INPUT_MALFORMED error and an upload without data rows yields INPUT_EMPTY.
func Parse(filename string, data []byte) (*borehole.Table, error) {
	start := time.Now()

	var (
		rows [][]string
		err  error
	)
	format := FormatFor(filename)
	switch format {
	case FormatXLSX:
		rows, err = readWorkbook(data)
	default:
		rows, err = readCSV(data)
	}
	if err != nil {
		log.Printf("[DataReader] %s rejected: %v", filename, err)
		return nil, errors.InputMalformed(err)
	}

	if len(rows) == 0 {
		return nil, errors.InputMalformed(fmt.Errorf("no columns to parse from file"))
	}
	if len(rows) < 2 {
		return nil, errors.InputEmpty(filename)
	}

	table, err := borehole.NewTable(rows[0], rows[1:])
	if err != nil {
		return nil, errors.InputMalformed(err)
	}

	log.Printf("[DataReader] %s file %s processed in %.2fms (%d columns, %d rows)",
		strings.ToUpper(format), filename, float64(time.Since(start).Nanoseconds())/1e6,
		len(table.Columns), table.Len())

	return table, nil
}

// ReadFile loads a table from disk.
func ReadFile(path string) (*borehole.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	return Parse(filepath.Base(path), data)
}

// ReadAll drains r and parses it as the named file.
func ReadAll(filename string, r io.Reader) (*borehole.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.InputMalformed(err)
	}
	return Parse(filename, data)
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file is not valid UTF-8 text")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

// readWorkbook reads the first sheet of an Excel workbook.
func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}

	// GetRows omits trailing empty rows but keeps blank ones in between.
	out := rows[:0]
	for _, row := range rows {
		if blank(row) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
