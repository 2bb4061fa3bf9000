package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dm "github.com/labib-r/portfolio-risk/data/models"
)

func TestCalculateReturns(t *testing.T) {
	table := &dm.PriceTable{
		Assets: []dm.AssetID{"A", "B"},
		Labels: []string{"d1", "d2", "d3"},
		Prices: [][]float64{
			{100, 50},
			{110, 45},
			{99, 54},
		},
	}

	res, err := CalculateReturns(table)
	require.NoError(t, err)

	require.Equal(t, 2, res.Len())
	assert.Equal(t, table.Assets, res.Assets)
	assert.Equal(t, []string{"d2", "d3"}, res.Labels)

	assert.InDelta(t, 0.10, res.Returns[0][0], 1e-12)
	assert.InDelta(t, -0.10, res.Returns[0][1], 1e-12)
	assert.InDelta(t, -0.10, res.Returns[1][0], 1e-12)
	assert.InDelta(t, 0.20, res.Returns[1][1], 1e-12)
}

func TestCalculateReturns_ConstantPricesAreZero(t *testing.T) {
	table := &dm.PriceTable{
		Assets: []dm.AssetID{"A", "B", "C"},
		Prices: [][]float64{
			{10, 20, 30},
			{10, 20, 30},
			{10, 20, 30},
			{10, 20, 30},
		},
	}

	res, err := CalculateReturns(table)
	require.NoError(t, err)
	assert.Nil(t, res.Labels)

	for step, row := range res.Returns {
		for j, r := range row {
			assert.Zerof(t, r, "return at step %d, asset %d", step, j)
		}
	}
}

func TestCalculateReturns_InsufficientHistory(t *testing.T) {
	for _, prices := range [][][]float64{nil, {{100, 50}}} {
		table := &dm.PriceTable{Assets: []dm.AssetID{"A", "B"}, Prices: prices}
		_, err := CalculateReturns(table)
		assert.True(t, errors.Is(err, ErrInsufficientHistory), "got %v", err)
	}
}

func TestCalculateReturns_RoundTrip(t *testing.T) {
	prices := [][]float64{
		{100.00, 20.00, 3.5},
		{101.25, 19.80, 3.6},
		{99.70, 19.95, 3.4},
		{102.10, 20.40, 3.9},
		{103.00, 20.10, 4.2},
	}
	table := &dm.PriceTable{
		Assets: []dm.AssetID{"A", "B", "C"},
		Prices: prices,
	}

	res, err := CalculateReturns(table)
	require.NoError(t, err)

	rebuilt := CompoundPrices(prices[0], res)
	require.Len(t, rebuilt, len(prices))
	for i := range prices {
		for j := range prices[i] {
			assert.InDeltaf(t, prices[i][j], rebuilt[i][j], 1e-9, "price at step %d, asset %d", i, j)
		}
	}
}
