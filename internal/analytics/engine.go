package analytics

import (
	"sort"

	"metroflow/internal/dataset"
	apperrors "metroflow/internal/errors"
)

// YearlyTotals groups flow records by year and sums their transfer volume,
// returning one total per year in ascending year order. Every record counts
// exactly once.
func YearlyTotals(flows []dataset.FlowRecord) ([]YearTotal, error) {
	if len(flows) == 0 {
		return nil, apperrors.NewEmptyDatasetError("yearly aggregate")
	}

	byYear := make(map[int]float64)
	for _, f := range flows {
		byYear[f.Year] += f.Volume
	}

	totals := make([]YearTotal, 0, len(byYear))
	for year, total := range byYear {
		totals = append(totals, YearTotal{Year: year, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Year < totals[j].Year })
	return totals, nil
}

// GrowthRate computes the period-over-period growth percentage between the
// first and last yearly totals: (last - first) / first * 100. A single-year
// series is flagged as an error rather than silently computed, and a zero
// first-year total makes the ratio undefined.
func GrowthRate(totals []YearTotal) (float64, error) {
	if len(totals) == 0 {
		return 0, apperrors.NewEmptyDatasetError("growth rate")
	}
	if len(totals) < 2 {
		return 0, apperrors.NewEmptyDatasetError("growth rate over a single year").
			WithContext("year", totals[0].Year)
	}

	first := totals[0].Total
	last := totals[len(totals)-1].Total
	if first == 0 {
		return 0, apperrors.NewDivisionByZeroError("first-year total")
	}
	return (last - first) / first * 100, nil
}

// TopPairs filters flow records to the target year, sorts them descending by
// volume, and returns the first n. The sort is stable: equal volumes keep
// their input order, no secondary key is applied. Fewer than n matches
// returns all of them without error.
func TopPairs(flows []dataset.FlowRecord, year, n int) ([]RankedPair, error) {
	if len(flows) == 0 {
		return nil, apperrors.NewEmptyDatasetError("top-N ranking")
	}

	var pairs []RankedPair
	for _, f := range flows {
		if f.Year != year {
			continue
		}
		pairs = append(pairs, RankedPair{
			Origin:      f.Origin,
			Destination: f.Destination,
			Volume:      f.Volume,
		})
	}
	if len(pairs) == 0 {
		return nil, apperrors.NewMissingYearError(year)
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Volume > pairs[j].Volume })
	if n < len(pairs) {
		pairs = pairs[:n]
	}
	return pairs, nil
}

// CrossSection selects indicator records for one year and a requested city
// set, projects them to the requested fields, and sorts descending by
// sortField. Requested cities absent from the data are silently omitted; a
// record missing one of the requested fields is a contract violation.
func CrossSection(indicators []dataset.IndicatorRecord, year int, cities []string, fields []string, sortField string) ([]CrossRow, error) {
	if len(indicators) == 0 {
		return nil, apperrors.NewEmptyDatasetError("cross-sectional filter")
	}
	if !containsField(fields, sortField) {
		return nil, apperrors.NewMissingFieldError(sortField, "cross-section projection")
	}

	wanted := make(map[string]bool, len(cities))
	for _, c := range cities {
		wanted[c] = true
	}

	var rows []CrossRow
	for _, rec := range indicators {
		if rec.Year != year || !wanted[rec.City] {
			continue
		}
		values := make(map[string]float64, len(fields))
		for _, field := range fields {
			v, ok := rec.Metrics[field]
			if !ok {
				return nil, apperrors.NewMissingFieldError(field, "indicator record for "+rec.City)
			}
			values[field] = v
		}
		rows = append(rows, CrossRow{City: rec.City, Values: values})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Values[sortField] > rows[j].Values[sortField]
	})
	return rows, nil
}

// Relationship projects indicator records for the target year to
// (city, fieldA, fieldB) points for the bivariate panel.
func Relationship(indicators []dataset.IndicatorRecord, year int, fieldA, fieldB string) ([]RelationPoint, error) {
	if len(indicators) == 0 {
		return nil, apperrors.NewEmptyDatasetError("relationship extract")
	}

	var points []RelationPoint
	for _, rec := range indicators {
		if rec.Year != year {
			continue
		}
		a, okA := rec.Metrics[fieldA]
		if !okA {
			return nil, apperrors.NewMissingFieldError(fieldA, "indicator record for "+rec.City)
		}
		b, okB := rec.Metrics[fieldB]
		if !okB {
			return nil, apperrors.NewMissingFieldError(fieldB, "indicator record for "+rec.City)
		}
		points = append(points, RelationPoint{City: rec.City, A: a, B: b})
	}
	if len(points) == 0 {
		return nil, apperrors.NewMissingYearError(year)
	}
	return points, nil
}

// LatestFlowYear is the maximum year observed across flow records. Explicit
// max reduction: row order is never assumed to be sorted.
func LatestFlowYear(flows []dataset.FlowRecord) (int, error) {
	if len(flows) == 0 {
		return 0, apperrors.NewEmptyDatasetError("latest flow year")
	}
	latest := flows[0].Year
	for _, f := range flows[1:] {
		if f.Year > latest {
			latest = f.Year
		}
	}
	return latest, nil
}

// LatestIndicatorYear is the maximum year observed across indicator records.
func LatestIndicatorYear(indicators []dataset.IndicatorRecord) (int, error) {
	if len(indicators) == 0 {
		return 0, apperrors.NewEmptyDatasetError("latest indicator year")
	}
	latest := indicators[0].Year
	for _, rec := range indicators[1:] {
		if rec.Year > latest {
			latest = rec.Year
		}
	}
	return latest, nil
}

func containsField(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
