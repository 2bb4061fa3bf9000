package core

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	ex "github.com/labib-r/portfolio-risk/data/extensions"
	m "github.com/labib-r/portfolio-risk/data/models"
	av "github.com/labib-r/portfolio-risk/service/api/alpha_vantage"
)

// FetchRequest describes a download of aligned adjusted prices
type FetchRequest struct {
	Symbols     []string
	Series      av.TimeSeries
	Lookback    int // most recent rows to keep, 0 keeps everything
	Concurrency int
}

// FetchPriceTable downloads every symbol in parallel and aligns them on the dates they all
// have a valid price for, oldest first.
func (sc *ServiceContext) FetchPriceTable(req FetchRequest) (*m.PriceTable, error) {
	if sc.Prices == nil {
		return nil, fmt.Errorf("no price source configured: %w", ErrDataUnavailable)
	}

	if len(req.Symbols) == 0 {
		return nil, fmt.Errorf("no symbols requested: %w", ErrDataUnavailable)
	}

	assets := m.ToAssetIDs(req.Symbols)
	if _, err := m.AssetIndex(assets); err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]*m.TimeSeriesResult, len(req.Symbols))

	// a failed symbol cancels the others through ctx, the caller's context still bounds all of them
	g, ctx := errgroup.WithContext(sc.Context)
	g.SetLimit(max(req.Concurrency, 1))

	for i, symbol := range req.Symbols {
		g.Go(func() error {
			res, err := sc.Prices.GetAdjustedSeries(ctx, req.Series, symbol)
			if err != nil {
				return fmt.Errorf("error fetching %s: %w", symbol, err)
			}

			sc.Logger.Info().
				Str("symbol", symbol).
				Str("series", req.Series.Name()).
				Int("bars", len(res.TimeSeries)).
				Dur("elapsed", time.Since(start)).
				Msg("fetched series")

			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	table, dropped := AlignSeries(assets, results)
	if dropped > 0 {
		sc.Logger.Warn().Int("dates", dropped).Msg("dropped dates without a valid price for every symbol")
	}

	if req.Lookback > 0 && table.Len() > req.Lookback {
		cut := table.Len() - req.Lookback
		table.Labels = table.Labels[cut:]
		table.Prices = table.Prices[cut:]
	}

	if table.Len() == 0 {
		return nil, fmt.Errorf("symbols %v share no dates with valid prices: %w", req.Symbols, ErrDataUnavailable)
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}

	sc.Logger.Info().
		Int("assets", table.AssetCount()).
		Int("observations", table.Len()).
		Str("first", table.Labels[0]).
		Str("last", table.Labels[table.Len()-1]).
		Dur("elapsed", time.Since(start)).
		Msg("price table assembled")

	return table, nil
}

// AlignSeries builds a price table from one result per asset, keyed by date. A date is kept only
// when every asset has a valid, positive adjusted close on it; the number of dropped dates is returned.
func AlignSeries(assets []m.AssetID, results []*m.TimeSeriesResult) (*m.PriceTable, int) {
	prices := make([]map[string]float64, len(results))
	dates := make(map[string]struct{})

	for i, res := range results {
		prices[i] = make(map[string]float64, len(res.TimeSeries))
		for _, bar := range res.TimeSeries {
			date := ex.FmtShort(bar.Timestamp)
			dates[date] = struct{}{}
			if p, ok := adjustedPrice(bar); ok {
				prices[i][date] = p
			}
		}
	}

	table := &m.PriceTable{Assets: assets}
	dropped := 0

	for _, date := range slices.Sorted(maps.Keys(dates)) {
		row := make([]float64, len(assets))
		complete := true
		for j := range assets {
			p, ok := prices[j][date]
			if !ok {
				complete = false
				break
			}
			row[j] = p
		}

		if !complete {
			dropped++
			continue
		}

		table.Labels = append(table.Labels, date)
		table.Prices = append(table.Prices, row)
	}

	return table, dropped
}

func adjustedPrice(bar *m.TimeSeriesData) (float64, bool) {
	if !bar.AdjustedClose.Valid {
		return 0, false
	}
	p := bar.AdjustedClose.Float64
	if !(p > 0) || math.IsInf(p, 0) {
		return 0, false
	}
	return p, true
}
