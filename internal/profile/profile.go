// Package profile inspects loaded tables: it partitions them by role,
// classifies indicator columns into semantic categories by keyword match,
// and produces the per-column diagnostic summary printed at the start of
// every run. Profiling is purely descriptive and never mutates a table.
package profile

import (
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"metroflow/internal/dataset"
)

// Category is one semantic group of indicator columns, rebuilt from the
// table's column names on every classification run.
type Category struct {
	Name           string
	Keywords       []string
	MatchedColumns []string
}

// categoryDef pairs a category name with its keyword set. The list is
// ordered: when a column matches several keyword sets the first category
// in this list wins.
type categoryDef struct {
	name     string
	keywords []string
}

var defaultCategories = []categoryDef{
	{"data-industry", []string{"数据", "大数据", "数字经济", "数字产业", "data"}},
	{"economic-development", []string{"gdp", "经济", "产值", "财政", "收入", "消费"}},
	{"technology-innovation", []string{"专利", "研发", "创新", "科技", "r&d", "patent"}},
	{"infrastructure", []string{"基站", "宽带", "互联网", "5g", "光缆", "机房", "算力"}},
}

// Classify assigns each column to at most one category by case-insensitive
// substring match against the ordered keyword sets. Columns matching no
// keyword stay uncategorized and are simply absent from the result.
func Classify(columns []string) []Category {
	categories := make([]Category, len(defaultCategories))
	for i, def := range defaultCategories {
		categories[i] = Category{Name: def.name, Keywords: def.keywords}
	}

	for _, col := range columns {
		lower := strings.ToLower(col)
		for i, def := range defaultCategories {
			if matchesKeyword(lower, def.keywords) {
				categories[i].MatchedColumns = append(categories[i].MatchedColumns, col)
				break
			}
		}
	}
	return categories
}

func matchesKeyword(lowerColumn string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowerColumn, kw) {
			return true
		}
	}
	return false
}

// Partition separates loaded tables into flow-matrix tables and the single
// indicator table, identified by file-name pattern. The indicator table may
// be nil: profiling tolerates its absence, later stages that require it
// raise the missing-primary-table error themselves.
func Partition(tables map[string]*dataset.RawTable) (flows []*dataset.RawTable, indicator *dataset.RawTable) {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch {
		case isFlowTableName(name):
			flows = append(flows, tables[name])
		case indicator == nil && isIndicatorTableName(name):
			indicator = tables[name]
		}
	}
	return flows, indicator
}

func isFlowTableName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "flow") || strings.Contains(lower, "流动") || strings.Contains(lower, "流量")
}

func isIndicatorTableName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "indicator") || strings.Contains(lower, "指标") ||
		strings.Contains(lower, "digital_economy") || strings.Contains(lower, "数字经济")
}

// ColumnProfile is the descriptive summary of one column.
type ColumnProfile struct {
	Name       string
	Kind       dataset.Kind
	MissingPct float64
	Min        float64
	Max        float64
	Mean       float64
}

// TableProfile is the descriptive summary of one table.
type TableProfile struct {
	Name    string
	Rows    int
	Columns []ColumnProfile
}

// ProfileTable computes per-column value kinds, missing-value ratios, and
// descriptive statistics for numeric columns. Recomputed from scratch on
// every call.
func ProfileTable(t *dataset.RawTable) TableProfile {
	tp := TableProfile{Name: t.Name, Rows: len(t.Rows)}

	for i, col := range t.Columns {
		cp := ColumnProfile{Name: col}
		missing := 0
		var numbers []float64

		for r := range t.Rows {
			cell := t.Cell(r, i)
			switch cell.Kind {
			case dataset.KindEmpty:
				missing++
			case dataset.KindNumber:
				cp.Kind = dataset.KindNumber
				numbers = append(numbers, cell.Num)
			case dataset.KindText:
				cp.Kind = dataset.KindText
			}
		}

		if len(t.Rows) > 0 {
			cp.MissingPct = roundPct(float64(missing) / float64(len(t.Rows)) * 100)
		}
		if len(numbers) > 0 {
			cp.Min, _ = stats.Min(numbers)
			cp.Max, _ = stats.Max(numbers)
			cp.Mean, _ = stats.Mean(numbers)
		}
		tp.Columns = append(tp.Columns, cp)
	}
	return tp
}

// roundPct rounds a percentage to two decimals.
func roundPct(v float64) float64 {
	return math.Round(v*100) / 100
}
