// Package exporter writes the derived-metric tables next to the rendered
// chart so the numbers behind each panel stay inspectable.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"metroflow/internal/analytics"
	apperrors "metroflow/internal/errors"
)

// CSVWriter provides CSV export functionality rooted at one output directory.
type CSVWriter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{dir: dir, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for spreadsheet compatibility
}

// WriteCSV writes data to a CSV file under the output directory.
func (w *CSVWriter) WriteCSV(name string, options WriteOptions) error {
	fullPath := filepath.Join(w.dir, name)

	w.logger.Info("writing CSV file",
		slog.String("path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8 (city names are CJK)
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return writer.Error()
}

// ExportResult writes one CSV per derived table: yearly totals, ranked
// pairs, and the cross-sectional comparison.
func (w *CSVWriter) ExportResult(res *analytics.Result) error {
	if err := w.exportYearlyTotals(res); err != nil {
		return apperrors.NewExportError("yearly totals export failed", err)
	}
	if err := w.exportTopPairs(res); err != nil {
		return apperrors.NewExportError("top pairs export failed", err)
	}
	if err := w.exportCrossSection(res); err != nil {
		return apperrors.NewExportError("cross section export failed", err)
	}
	return nil
}

func (w *CSVWriter) exportYearlyTotals(res *analytics.Result) error {
	records := make([][]string, len(res.YearlyTotals))
	for i, yt := range res.YearlyTotals {
		records[i] = []string{strconv.Itoa(yt.Year), formatFloat(yt.Total)}
	}
	return w.WriteCSV("yearly_totals.csv", WriteOptions{
		Headers:   []string{"Year", "TotalVolume"},
		Records:   records,
		BOMPrefix: true,
	})
}

func (w *CSVWriter) exportTopPairs(res *analytics.Result) error {
	records := make([][]string, len(res.TopPairs))
	for i, pair := range res.TopPairs {
		records[i] = []string{
			strconv.Itoa(i + 1),
			pair.Origin,
			pair.Destination,
			formatFloat(pair.Volume),
		}
	}
	return w.WriteCSV("top_pairs.csv", WriteOptions{
		Headers:   []string{"Rank", "Origin", "Destination", "Volume"},
		Records:   records,
		BOMPrefix: true,
	})
}

func (w *CSVWriter) exportCrossSection(res *analytics.Result) error {
	headers := append([]string{"City"}, res.CrossFields...)
	records := make([][]string, len(res.CrossSection))
	for i, row := range res.CrossSection {
		record := make([]string, 0, len(headers))
		record = append(record, row.City)
		for _, field := range res.CrossFields {
			record = append(record, formatFloat(row.Values[field]))
		}
		records[i] = record
	}
	return w.WriteCSV("cross_section.csv", WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
