package analytics

import (
	"fmt"
	"sort"

	"metroflow/internal/dataset"
)

// Options configures result assembly. Fields and cities are caller-supplied;
// empty CoreCities means every city observed in the latest indicator year.
type Options struct {
	TopN           int
	CoreCities     []string
	CrossFields    []string
	SortField      string
	RelationFields [2]string
}

// Assemble packages the engine outputs into the result bundle. The target
// year for the ranking, the cross-sectional filter, and the relationship
// extract is the maximum year present in the respective table, so the bundle
// adjusts itself as new yearly data arrives.
func Assemble(flows []dataset.FlowRecord, indicators []dataset.IndicatorRecord, opts Options) (*Result, error) {
	totals, err := YearlyTotals(flows)
	if err != nil {
		return nil, err
	}
	growth, err := GrowthRate(totals)
	if err != nil {
		return nil, err
	}

	latestFlow, err := LatestFlowYear(flows)
	if err != nil {
		return nil, err
	}
	top, err := TopPairs(flows, latestFlow, opts.TopN)
	if err != nil {
		return nil, err
	}
	for i := range top {
		top[i].Label = fmt.Sprintf("%s → %s", top[i].Origin, top[i].Destination)
	}

	latestInd, err := LatestIndicatorYear(indicators)
	if err != nil {
		return nil, err
	}

	cities := opts.CoreCities
	if len(cities) == 0 {
		cities = citiesInYear(indicators, latestInd)
	}

	cross, err := CrossSection(indicators, latestInd, cities, opts.CrossFields, opts.SortField)
	if err != nil {
		return nil, err
	}
	relation, err := Relationship(indicators, latestInd, opts.RelationFields[0], opts.RelationFields[1])
	if err != nil {
		return nil, err
	}

	return &Result{
		YearlyTotals:  totals,
		GrowthPct:     growth,
		LatestYear:    latestFlow,
		IndicatorYear: latestInd,
		TopPairs:      top,
		CrossSection:  cross,
		CrossFields:   opts.CrossFields,
		SortField:     opts.SortField,
		Relationship:  relation,
		RelationNames: opts.RelationFields,
	}, nil
}

func citiesInYear(indicators []dataset.IndicatorRecord, year int) []string {
	seen := make(map[string]bool)
	var cities []string
	for _, rec := range indicators {
		if rec.Year == year && !seen[rec.City] {
			seen[rec.City] = true
			cities = append(cities, rec.City)
		}
	}
	sort.Strings(cities)
	return cities
}
