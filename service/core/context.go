package core

import (
	"context"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	dm "github.com/labib-r/portfolio-risk/data/models"
	av "github.com/labib-r/portfolio-risk/service/api/alpha_vantage"
	sm "github.com/labib-r/portfolio-risk/service/models"
)

// RunHistory records analysis runs, *repos.Postgres is the production implementation
type RunHistory interface {
	InsertAnalysisRun(ctx context.Context, run *dm.AnalysisRun) error
	InsertPriceTable(ctx context.Context, runId uuid.UUID, table *dm.PriceTable) (int64, error)
	UpdateAnalysisRunAsSuccess(ctx context.Context, id uuid.UUID, outcome dm.AnalysisOutcome) error
	UpdateAnalysisRunAsFailure(ctx context.Context, id uuid.UUID, errorMessage string) error
	GetAnalysisRun(ctx context.Context, id uuid.UUID) (*dm.AnalysisRun, error)
}

// PriceSource returns the adjusted history of one ticker
type PriceSource interface {
	GetAdjustedSeries(ctx context.Context, ts av.TimeSeries, ticker string) (*dm.TimeSeriesResult, error)
}

type ServiceContext struct {
	Context  context.Context
	Logger   *log.Logger
	Settings sm.AnalysisSettings

	// optional, nil when not configured
	History RunHistory
	Prices  PriceSource
}
