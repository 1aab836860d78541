package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metroflow/internal/dataset"
	apperrors "metroflow/internal/errors"
)

func testOptions() Options {
	return Options{
		TopN:           2,
		CoreCities:     []string{"Guangzhou", "Shenzhen"},
		CrossFields:    []string{"GDP", "DataShare"},
		SortField:      "GDP",
		RelationFields: [2]string{"DataShare", "GDP"},
	}
}

func TestAssemble(t *testing.T) {
	flows := []dataset.FlowRecord{
		flow(2019, "Guangzhou", "Shenzhen", 100),
		flow(2023, "Guangzhou", "Shenzhen", 200),
		flow(2023, "Foshan", "Dongguan", 90),
		flow(2023, "Zhuhai", "Macao", 10),
	}
	indicators := []dataset.IndicatorRecord{
		indicator(2023, "Guangzhou", map[string]float64{"GDP": 300, "DataShare": 47}),
		indicator(2023, "Shenzhen", map[string]float64{"GDP": 340, "DataShare": 50}),
		indicator(2022, "Guangzhou", map[string]float64{"GDP": 280, "DataShare": 45}),
	}

	t.Run("bundle targets the max year present", func(t *testing.T) {
		res, err := Assemble(flows, indicators, testOptions())
		require.NoError(t, err)

		assert.Equal(t, 2023, res.LatestYear)
		require.Len(t, res.TopPairs, 2)
		assert.Equal(t, "Guangzhou", res.TopPairs[0].Origin)
		assert.Equal(t, "Guangzhou → Shenzhen", res.TopPairs[0].Label)
		assert.Equal(t, "Foshan", res.TopPairs[1].Origin)

		require.Len(t, res.CrossSection, 2)
		assert.Equal(t, "Shenzhen", res.CrossSection[0].City)

		require.Len(t, res.Relationship, 2)
		assert.InDelta(t, 200.0, res.GrowthPct, 1e-9)
	})

	t.Run("latest year is max, not last row", func(t *testing.T) {
		// newest year listed first: a positional "last row" pick would be wrong
		shuffled := []dataset.FlowRecord{
			flow(2023, "A", "B", 5),
			flow(2019, "A", "B", 5),
		}
		inds := []dataset.IndicatorRecord{
			indicator(2023, "A", map[string]float64{"GDP": 1, "DataShare": 1}),
			indicator(2019, "A", map[string]float64{"GDP": 1, "DataShare": 1}),
		}
		opts := testOptions()
		opts.CoreCities = []string{"A"}

		res, err := Assemble(shuffled, inds, opts)
		require.NoError(t, err)
		assert.Equal(t, 2023, res.LatestYear)
		require.Len(t, res.CrossSection, 1)
	})

	t.Run("bundle carries the configured sort field", func(t *testing.T) {
		opts := testOptions()
		opts.SortField = "DataShare"

		res, err := Assemble(flows, indicators, opts)
		require.NoError(t, err)
		assert.Equal(t, "DataShare", res.SortField)
		// the sort key need not be the first cross field
		assert.NotEqual(t, res.CrossFields[0], res.SortField)
		assert.Equal(t, "Shenzhen", res.CrossSection[0].City)
	})

	t.Run("empty core-city set defaults to all cities in latest year", func(t *testing.T) {
		opts := testOptions()
		opts.CoreCities = nil

		res, err := Assemble(flows, indicators, opts)
		require.NoError(t, err)
		assert.Len(t, res.CrossSection, 2)
	})

	t.Run("no indicator records", func(t *testing.T) {
		_, err := Assemble(flows, nil, testOptions())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmptyDataset))
	})

	t.Run("no flow records", func(t *testing.T) {
		_, err := Assemble(nil, indicators, testOptions())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmptyDataset))
	})
}
