package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"

	dm "github.com/labib-r/portfolio-risk/data/models"
	av "github.com/labib-r/portfolio-risk/service/api/alpha_vantage"
	"github.com/labib-r/portfolio-risk/service/logging"
	sm "github.com/labib-r/portfolio-risk/service/models"
)

func newTestContext() *ServiceContext {
	return &ServiceContext{
		Context:  context.Background(),
		Logger:   logging.NewSilent(),
		Settings: sm.DefaultAnalysisSettings(),
	}
}

// memoryHistory keeps runs in a map, it stands in for postgres
type memoryHistory struct {
	mu     sync.Mutex
	runs   map[uuid.UUID]*dm.AnalysisRun
	tables map[uuid.UUID]*dm.PriceTable

	failInsert bool
}

func newMemoryHistory() *memoryHistory {
	return &memoryHistory{
		runs:   make(map[uuid.UUID]*dm.AnalysisRun),
		tables: make(map[uuid.UUID]*dm.PriceTable),
	}
}

func (h *memoryHistory) InsertAnalysisRun(_ context.Context, run *dm.AnalysisRun) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failInsert {
		return errors.New("database is down")
	}
	run.CreatedAt = time.Now()
	copied := *run
	h.runs[run.Id] = &copied
	return nil
}

func (h *memoryHistory) InsertPriceTable(_ context.Context, runId uuid.UUID, table *dm.PriceTable) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tables[runId] = table
	return int64(table.Len() * table.AssetCount()), nil
}

func (h *memoryHistory) UpdateAnalysisRunAsSuccess(_ context.Context, id uuid.UUID, outcome dm.AnalysisOutcome) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	run, ok := h.runs[id]
	if !ok {
		return fmt.Errorf("no run %s", id)
	}
	run.ExpectedReturn = null.FloatFrom(outcome.ExpectedReturn)
	run.Volatility = null.FloatFrom(outcome.Volatility)
	run.WeightsNormalized = null.BoolFrom(outcome.WeightsNormalized)
	run.CompletedAt = null.TimeFrom(time.Now())
	return nil
}

func (h *memoryHistory) UpdateAnalysisRunAsFailure(_ context.Context, id uuid.UUID, errorMessage string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	run, ok := h.runs[id]
	if !ok {
		return fmt.Errorf("no run %s", id)
	}
	run.ErrorMessage = null.StringFrom(errorMessage)
	run.CompletedAt = null.TimeFrom(time.Now())
	return nil
}

func (h *memoryHistory) GetAnalysisRun(_ context.Context, id uuid.UUID) (*dm.AnalysisRun, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	run, ok := h.runs[id]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}

// fakePriceSource answers from canned series keyed by ticker
type fakePriceSource struct {
	mu       sync.Mutex
	series   map[string][]*dm.TimeSeriesData
	failOn   string
	requests []string
}

func (f *fakePriceSource) GetAdjustedSeries(_ context.Context, ts av.TimeSeries, ticker string) (*dm.TimeSeriesResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, ticker)
	f.mu.Unlock()

	if ticker == f.failOn {
		return nil, errors.New("rate limited")
	}

	bars, ok := f.series[ticker]
	if !ok {
		return nil, fmt.Errorf("unknown ticker %s", ticker)
	}

	return &dm.TimeSeriesResult{
		Metadata:   &dm.TimeSeriesMetadata{Symbol: ticker},
		TimeSeries: bars,
	}, nil
}

func bar(date string, adjustedClose float64) *dm.TimeSeriesData {
	ts, err := time.Parse(time.DateOnly, date)
	if err != nil {
		panic(err)
	}
	return &dm.TimeSeriesData{
		Timestamp:     ts,
		Close:         null.FloatFrom(adjustedClose),
		AdjustedClose: null.FloatFrom(adjustedClose),
	}
}

func invalidBar(date string) *dm.TimeSeriesData {
	b := bar(date, 0)
	b.AdjustedClose = null.Float{}
	return b
}
