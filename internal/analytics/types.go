// Package analytics derives the metrics consumed by rendering: yearly
// aggregate totals, period growth rate, top-N ranked city pairs,
// cross-sectional comparisons, and the bivariate relationship extract.
// Every operation is pure and deterministic; failures are typed and
// fail-fast, never partially-computed results.
package analytics

// YearTotal is the aggregate transfer volume observed in one year.
type YearTotal struct {
	Year  int     `json:"year"`
	Total float64 `json:"total"`
}

// RankedPair is one origin-destination pair ranked by transfer volume.
// Label is a presentation-only enrichment added at assembly time.
type RankedPair struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Volume      float64 `json:"volume"`
	Label       string  `json:"label,omitempty"`
}

// CrossRow is one city's projected indicator values for the comparison year.
type CrossRow struct {
	City   string             `json:"city"`
	Values map[string]float64 `json:"values"`
}

// RelationPoint is one (city, metricA, metricB) observation for the
// bivariate panel. No correlation is computed here.
type RelationPoint struct {
	City string  `json:"city"`
	A    float64 `json:"a"`
	B    float64 `json:"b"`
}

// Result is the assembled bundle handed to rendering and export. It is
// created fresh each run and read-only afterwards.
type Result struct {
	YearlyTotals  []YearTotal     `json:"yearly_totals"`
	GrowthPct     float64         `json:"growth_pct"`
	LatestYear    int             `json:"latest_year"`
	IndicatorYear int             `json:"indicator_year"`
	TopPairs      []RankedPair    `json:"top_pairs"`
	CrossSection  []CrossRow      `json:"cross_section"`
	CrossFields   []string        `json:"cross_fields"`
	SortField     string          `json:"sort_field"`
	Relationship  []RelationPoint `json:"relationship"`
	RelationNames [2]string       `json:"relation_names"`
}
