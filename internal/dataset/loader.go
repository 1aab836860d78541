package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "metroflow/internal/errors"
)

// tabularExtensions identifies the file types the loader accepts.
var tabularExtensions = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".xlsx": true,
}

// LoadDirectory reads every tabular file in dir into a RawTable keyed by file
// name. A file that fails to parse is recorded as a LoadFailure and skipped;
// the only fatal condition is a directory with zero matching files.
func LoadDirectory(dir string, logger *slog.Logger) (map[string]*RawTable, []LoadFailure, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if tabularExtensions[ext] {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, nil, apperrors.NewNoInputFilesError(dir)
	}
	sort.Strings(names)

	tables := make(map[string]*RawTable, len(names))
	var failures []LoadFailure

	for _, name := range names {
		path := filepath.Join(dir, name)
		table, err := loadFile(path, name)
		if err != nil {
			logger.Warn("skipping unparseable file",
				slog.String("file", name),
				slog.String("error", err.Error()))
			failures = append(failures, LoadFailure{File: name, Reason: err.Error()})
			continue
		}
		normalizeEndpointColumns(table)
		logger.Info("loaded table",
			slog.String("file", name),
			slog.Int("columns", len(table.Columns)),
			slog.Int("rows", len(table.Rows)))
		tables[name] = table
	}

	return tables, failures, nil
}

func loadFile(path, name string) (*RawTable, error) {
	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		records, err = readWorkbook(path)
	case ".tsv":
		records, err = readDelimited(path, '\t')
	default:
		records, err = readDelimited(path, ',')
	}
	if err != nil {
		return nil, apperrors.NewParsingError(name, err)
	}
	if len(records) < 2 {
		return nil, apperrors.NewParsingError(name, fmt.Errorf("no data rows below the header"))
	}

	return buildTable(name, records), nil
}

// readDelimited reads a CSV or TSV file, tolerating a UTF-8 BOM and ragged
// rows shorter than the header.
func readDelimited(path string, comma rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	// Remove BOM if present
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// readWorkbook reads the first sheet of an xlsx workbook.
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// buildTable turns parsed string records into a typed table. The first row
// is the header; a column whose non-empty cells all parse as numbers becomes
// a numeric column, everything else stays text. A column is never re-typed
// after load.
func buildTable(name string, records [][]string) *RawTable {
	header := records[0]
	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF"))
	}

	dataRows := records[1:]
	kinds := inferColumnKinds(len(columns), dataRows)

	rows := make([][]Value, 0, len(dataRows))
	for _, record := range dataRows {
		row := make([]Value, len(columns))
		for i := range columns {
			if i >= len(record) || strings.TrimSpace(record[i]) == "" {
				row[i] = Value{Kind: KindEmpty}
				continue
			}
			if kinds[i] == KindNumber {
				num, _ := strconv.ParseFloat(cleanNumber(record[i]), 64)
				row[i] = Value{Kind: KindNumber, Num: num}
			} else {
				row[i] = Value{Kind: KindText, Str: record[i]}
			}
		}
		rows = append(rows, row)
	}

	return &RawTable{Name: name, Columns: columns, Rows: rows}
}

// inferColumnKinds scans every column once: all non-empty cells numeric makes
// the column numeric, any non-numeric cell makes it text, no cells at all
// leaves it empty.
func inferColumnKinds(width int, records [][]string) []Kind {
	kinds := make([]Kind, width)
	for i := 0; i < width; i++ {
		kind := KindEmpty
		for _, record := range records {
			if i >= len(record) {
				continue
			}
			cell := strings.TrimSpace(record[i])
			if cell == "" {
				continue
			}
			if _, err := strconv.ParseFloat(cleanNumber(cell), 64); err != nil {
				kind = KindText
				break
			}
			kind = KindNumber
		}
		kinds[i] = kind
	}
	return kinds
}

// cleanNumber strips whitespace and thousands separators before parsing.
func cleanNumber(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}

// normalizeEndpointColumns trims surrounding whitespace from every value in
// columns recognized as city-endpoint fields. The pass is idempotent.
func normalizeEndpointColumns(t *RawTable) {
	for i, col := range t.Columns {
		if !isEndpointColumn(col) {
			continue
		}
		for r := range t.Rows {
			if i < len(t.Rows[r]) && t.Rows[r][i].Kind == KindText {
				t.Rows[r][i].Str = NormalizeCity(t.Rows[r][i].Str)
			}
		}
	}
}

// NormalizeCity trims surrounding whitespace from a city name.
func NormalizeCity(name string) string {
	return strings.TrimSpace(name)
}

func isEndpointColumn(name string) bool {
	return matchesAlias(name, originAliases) ||
		matchesAlias(name, destinationAliases) ||
		matchesAlias(name, cityAliases)
}
