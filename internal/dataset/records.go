package dataset

import (
	"strconv"
	"strings"

	apperrors "metroflow/internal/errors"
)

// Column aliases accepted for the required fields. Headers in the source
// data mix English and Chinese names, so both are matched, case-insensitively.
var (
	yearAliases        = []string{"year", "年份", "年度"}
	originAliases      = []string{"origin", "from", "source", "流出城市", "起点城市", "流出地"}
	destinationAliases = []string{"destination", "dest", "to", "target", "流入城市", "终点城市", "流入地"}
	volumeAliases      = []string{"volume", "transfer_volume", "flow", "数据流量", "传输量", "流量"}
	cityAliases        = []string{"city", "城市", "地区"}
)

// matchesAlias reports whether a column name matches any alias, by exact
// match first and substring match second.
func matchesAlias(column string, aliases []string) bool {
	lower := strings.ToLower(strings.TrimSpace(column))
	for _, alias := range aliases {
		if lower == alias {
			return true
		}
	}
	for _, alias := range aliases {
		if strings.Contains(lower, alias) {
			return true
		}
	}
	return false
}

// findColumn returns the index of the first column matching the aliases,
// preferring exact matches over substring matches, or -1.
func findColumn(columns []string, aliases []string) int {
	for i, col := range columns {
		lower := strings.ToLower(strings.TrimSpace(col))
		for _, alias := range aliases {
			if lower == alias {
				return i
			}
		}
	}
	for i, col := range columns {
		lower := strings.ToLower(strings.TrimSpace(col))
		for _, alias := range aliases {
			if strings.Contains(lower, alias) {
				return i
			}
		}
	}
	return -1
}

// FlowRecords extracts the typed flow records from a flow-matrix table.
// Rows with an empty origin or destination are skipped; a table missing one
// of the required columns fails with a missing-field error.
func FlowRecords(t *RawTable) ([]FlowRecord, error) {
	yearCol := findColumn(t.Columns, yearAliases)
	originCol := findColumn(t.Columns, originAliases)
	destCol := findColumn(t.Columns, destinationAliases)
	volumeCol := findColumn(t.Columns, volumeAliases)

	required := []struct {
		name string
		idx  int
	}{
		{"year", yearCol},
		{"origin", originCol},
		{"destination", destCol},
		{"volume", volumeCol},
	}
	for _, col := range required {
		if col.idx == -1 {
			return nil, apperrors.NewMissingFieldError(col.name, t.Name)
		}
	}

	var records []FlowRecord
	for r := range t.Rows {
		origin := textValue(t.Cell(r, originCol))
		dest := textValue(t.Cell(r, destCol))
		if origin == "" || dest == "" {
			continue
		}
		year, ok := yearValue(t.Cell(r, yearCol))
		if !ok {
			continue
		}
		volume, ok, err := volumeValue(t.Cell(r, volumeCol), t.Name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		records = append(records, FlowRecord{
			Year:        year,
			Origin:      NormalizeCity(origin),
			Destination: NormalizeCity(dest),
			Volume:      volume,
		})
	}
	return records, nil
}

// IndicatorRecords extracts one record per row from the indicator table.
// Every numeric column other than the year becomes a named metric; the
// metric set is discovered, not declared.
func IndicatorRecords(t *RawTable) ([]IndicatorRecord, error) {
	yearCol := findColumn(t.Columns, yearAliases)
	cityCol := findColumn(t.Columns, cityAliases)
	if yearCol == -1 {
		return nil, apperrors.NewMissingFieldError("year", t.Name)
	}
	if cityCol == -1 {
		return nil, apperrors.NewMissingFieldError("city", t.Name)
	}

	var records []IndicatorRecord
	for r := range t.Rows {
		city := textValue(t.Cell(r, cityCol))
		if city == "" {
			continue
		}
		year, ok := yearValue(t.Cell(r, yearCol))
		if !ok {
			continue
		}

		metrics := make(map[string]float64)
		for i, col := range t.Columns {
			if i == yearCol || i == cityCol {
				continue
			}
			if cell := t.Cell(r, i); cell.Kind == KindNumber {
				metrics[col] = cell.Num
			}
		}
		records = append(records, IndicatorRecord{
			Year:    year,
			City:    NormalizeCity(city),
			Metrics: metrics,
		})
	}
	return records, nil
}

func textValue(v Value) string {
	switch v.Kind {
	case KindText:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// volumeValue reads a volume cell. A single non-numeric cell types the whole
// column as text at load time, so the remaining cells are re-parsed here and
// a genuinely non-numeric value fails the table instead of counting as zero.
func volumeValue(v Value, table string) (float64, bool, error) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true, nil
	case KindText:
		volume, err := strconv.ParseFloat(cleanNumber(v.Str), 64)
		if err != nil {
			return 0, false, apperrors.NewNonNumericFieldError("volume", table, v.Str)
		}
		return volume, true, nil
	default:
		return 0, false, nil
	}
}

func yearValue(v Value) (int, bool) {
	switch v.Kind {
	case KindNumber:
		return int(v.Num), true
	case KindText:
		year, err := strconv.Atoi(strings.TrimSpace(v.Str))
		return year, err == nil
	default:
		return 0, false
	}
}
