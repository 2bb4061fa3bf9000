package core

import (
	"fmt"

	dm "github.com/labib-r/portfolio-risk/data/models"
)

// CalculateReturns converts a price table into simple returns, price[t]/price[t-1] - 1.
// Prices are not checked here, a zero prior price follows float semantics (Inf/NaN);
// tables are validated when they are loaded.
func CalculateReturns(table *dm.PriceTable) (*dm.ReturnSeries, error) {
	nDays := table.Len()
	if nDays < 2 {
		return nil, fmt.Errorf("%d price observations, need at least 2 for returns: %w", nDays, ErrInsufficientHistory)
	}

	nAssets := table.AssetCount()
	returns := make([][]float64, nDays-1)
	for t := 1; t < nDays; t++ {
		returns[t-1] = make([]float64, nAssets)
		for j := range nAssets {
			returns[t-1][j] = table.Prices[t][j]/table.Prices[t-1][j] - 1.0
		}
	}

	var labels []string
	if len(table.Labels) == nDays {
		labels = table.Labels[1:]
	}

	return &dm.ReturnSeries{
		Assets:  table.Assets,
		Labels:  labels,
		Returns: returns,
	}, nil
}

// CompoundPrices rebuilds prices from a starting row and a return series,
// price[t] = price[t-1] * (1 + return[t-1])
func CompoundPrices(start []float64, series *dm.ReturnSeries) [][]float64 {
	res := make([][]float64, series.Len()+1)
	res[0] = append([]float64(nil), start...)
	for t, row := range series.Returns {
		res[t+1] = make([]float64, len(row))
		for j, r := range row {
			res[t+1][j] = res[t][j] * (1 + r)
		}
	}
	return res
}
