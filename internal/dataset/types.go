// Package dataset loads delimited tabular files into in-memory tables and
// extracts the typed flow and indicator records the analytics engine consumes.
package dataset

// Kind identifies the value kind of a table column
type Kind int

const (
	// KindEmpty marks a cell with no value
	KindEmpty Kind = iota
	// KindNumber marks a numeric column value
	KindNumber
	// KindText marks a textual column value
	KindText
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "empty"
	}
}

// Value is a single typed table cell. A column is assigned one kind at load
// time and every non-empty cell in it carries that kind.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
}

// RawTable is an immutable in-memory copy of one tabular input file.
type RawTable struct {
	Name    string
	Columns []string
	Rows    [][]Value
}

// ColumnIndex returns the position of the named column, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, col), or an empty value when the row is
// shorter than the header.
func (t *RawTable) Cell(row, col int) Value {
	if col < 0 || col >= len(t.Rows[row]) {
		return Value{Kind: KindEmpty}
	}
	return t.Rows[row][col]
}

// FlowRecord is one row of a flow-matrix table: a measured transfer volume
// moving from an origin city to a destination city in a given year.
// Duplicate (year, origin, destination) rows are preserved, never deduplicated.
type FlowRecord struct {
	Year        int     `json:"year"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Volume      float64 `json:"volume"`
}

// IndicatorRecord is one row of the indicator table: the named numeric
// metrics observed for a city in a given year. The metric set is discovered
// from the table columns, not fixed a priori.
type IndicatorRecord struct {
	Year    int                `json:"year"`
	City    string             `json:"city"`
	Metrics map[string]float64 `json:"metrics"`
}

// LoadFailure records a file that could not be parsed. Loading continues
// past failures; they are reported, not fatal.
type LoadFailure struct {
	File   string
	Reason string
}
