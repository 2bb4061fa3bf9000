package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	dm "github.com/labib-r/portfolio-risk/data/models"
	sm "github.com/labib-r/portfolio-risk/service/models"
)

// fewest price rows that leave two returns for a sample covariance
const minimumObservations = 3

// Analysis is one pipeline run, from a validated price table to its annualized statistics.
// The portfolio half is evaluated separately so interactive callers can show the
// statistics before asking for weights.
type Analysis struct {
	RunId      uuid.UUID
	Source     string
	Table      *dm.PriceTable
	Returns    *dm.ReturnSeries
	Statistics *StatisticalResources

	start    time.Time
	recorded bool
}

// PortfolioEvaluation is the portfolio half of a run
type PortfolioEvaluation struct {
	Weights    WeightVector // after normalization
	WeightSum  float64      // before normalization
	Normalized bool
	Result     *PortfolioResult
}

// PrepareAnalysis validates the table, records the run when history is configured, and
// computes returns and annualized statistics.
func (sc *ServiceContext) PrepareAnalysis(source string, table *dm.PriceTable) (*Analysis, error) {
	a := &Analysis{
		RunId:  uuid.New(),
		Source: source,
		Table:  table,
		start:  time.Now(),
	}

	runId := a.RunId.String()
	sc.Logger.Info().Str("run_id", runId).Str("source", source).Msg("received analysis request")

	if err := sc.ValidatePriceTable(table); err != nil {
		sc.Logger.Error().Str("run_id", runId).Err(err).Msg("price table rejected")
		return nil, err
	}

	if err := sc.recordRun(a); err != nil {
		sc.Logger.Error().Str("run_id", runId).Err(err).Msg("error recording analysis run")
		return nil, err
	}

	sc.Logger.Info().Str("run_id", runId).Dur("elapsed", time.Since(a.start)).Msg("calculating returns")
	returns, err := CalculateReturns(table)
	if err != nil {
		return nil, sc.AbortAnalysis(a, err)
	}
	a.Returns = returns

	sc.Logger.Info().Str("run_id", runId).Dur("elapsed", time.Since(a.start)).Msg("getting statistical resources")
	statistics, err := GetStatisticalResources(returns, sc.Settings.AnnualizationFactor)
	if err != nil {
		return nil, sc.AbortAnalysis(a, err)
	}
	a.Statistics = statistics

	sc.Logger.Info().
		Str("run_id", runId).
		Int("assets", len(statistics.Assets)).
		Int("returns", statistics.Observations).
		Int("annualization_factor", statistics.AnnualizationFactor).
		Dur("elapsed", time.Since(a.start)).
		Msg("statistics computed")

	return a, nil
}

// CompleteAnalysis applies the weights, one per asset in table order, and evaluates the portfolio.
// Weights that do not sum to 1 within the configured tolerance are normalized.
func (sc *ServiceContext) CompleteAnalysis(a *Analysis, weights []float64) (*PortfolioEvaluation, error) {
	runId := a.RunId.String()

	w, err := NewWeightVector(a.Statistics.Assets, weights)
	if err != nil {
		return nil, sc.AbortAnalysis(a, err)
	}

	normalized, sum, wasNormalized, err := NormalizeWeights(w, sc.Settings.WeightTolerance)
	if err != nil {
		return nil, sc.AbortAnalysis(a, err)
	}

	if wasNormalized {
		sc.Logger.Warn().Str("run_id", runId).Float64("weight_sum", sum).Msg("weights do not sum to 1, normalizing")
	}

	sc.Logger.Info().Str("run_id", runId).Dur("elapsed", time.Since(a.start)).Msg("evaluating portfolio")
	result, err := EvaluatePortfolio(normalized, a.Statistics.Mu, a.Statistics.CovMatrix)
	if err != nil {
		return nil, sc.AbortAnalysis(a, err)
	}

	if sc.History != nil && a.recorded {
		outcome := dm.AnalysisOutcome{
			ExpectedReturn:    result.ExpectedReturn,
			Volatility:        result.Volatility,
			WeightsNormalized: wasNormalized,
		}
		if err := sc.History.UpdateAnalysisRunAsSuccess(sc.Context, a.RunId, outcome); err != nil {
			sc.Logger.Error().Str("run_id", runId).Err(err).Msg("error updating analysis run as success")
			return nil, err // if we cant mark it as a success we most likely cant mark it as a failure either
		}
	}

	sc.Logger.Info().
		Str("run_id", runId).
		Float64("expected_return", result.ExpectedReturn).
		Float64("volatility", result.Volatility).
		Dur("elapsed", time.Since(a.start)).
		Msg("analysis completed")

	return &PortfolioEvaluation{
		Weights:    normalized,
		WeightSum:  sum,
		Normalized: wasNormalized,
		Result:     result,
	}, nil
}

// AbortAnalysis marks a recorded run as failed and hands back cause
func (sc *ServiceContext) AbortAnalysis(a *Analysis, cause error) error {
	runId := a.RunId.String()
	sc.Logger.Error().Str("run_id", runId).Err(cause).Dur("elapsed", time.Since(a.start)).Msg("analysis failed")

	if sc.History == nil || !a.recorded {
		return cause
	}

	if err := sc.History.UpdateAnalysisRunAsFailure(sc.Context, a.RunId, cause.Error()); err != nil {
		sc.Logger.Error().Str("run_id", runId).Err(err).Msg("error updating analysis run as failure")
	}

	return cause
}

// RunAnalysis is the whole pipeline for one api request
func (sc *ServiceContext) RunAnalysis(req sm.AnalysisRequest) (*sm.AnalysisResponse, error) {
	a, err := sc.PrepareAnalysis("api", req.ToPriceTable())
	if err != nil {
		return nil, err
	}

	evaluation, err := sc.CompleteAnalysis(a, req.Weights)
	if err != nil {
		return nil, err
	}

	return BuildAnalysisResponse(a, evaluation), nil
}

// GetAnalysisRun looks up a recorded run
func (sc *ServiceContext) GetAnalysisRun(id uuid.UUID) (*sm.AnalysisRunResponse, error) {
	if sc.History == nil {
		return nil, ErrHistoryUnavailable
	}

	run, err := sc.History.GetAnalysisRun(sc.Context, id)
	if err != nil {
		return nil, err
	}

	if run == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}

	res := sm.MapAnalysisRunToResponse(run)
	return &res, nil
}

// ValidatePriceTable checks the table against the data contract and the configured bounds
func (sc *ServiceContext) ValidatePriceTable(table *dm.PriceTable) error {
	if table == nil {
		return fmt.Errorf("no price table: %w", ErrDataUnavailable)
	}

	if err := table.Validate(); err != nil {
		if errors.Is(err, dm.ErrNoAssets) {
			return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		return fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	if limit := sc.Settings.MaxAssets; limit > 0 && table.AssetCount() > limit {
		return fmt.Errorf("%d assets, at most %d allowed: %w", table.AssetCount(), limit, ErrLimitExceeded)
	}

	if limit := sc.Settings.MaxObservations; limit > 0 && table.Len() > limit {
		return fmt.Errorf("%d price observations, at most %d allowed: %w", table.Len(), limit, ErrLimitExceeded)
	}

	minObservations := max(sc.Settings.MinObservations, minimumObservations)
	if table.Len() < minObservations {
		return fmt.Errorf("%d price observations, need at least %d: %w", table.Len(), minObservations, ErrInsufficientHistory)
	}

	return nil
}

func (sc *ServiceContext) recordRun(a *Analysis) error {
	if sc.History == nil {
		return nil
	}

	run := &dm.AnalysisRun{
		Id:                  a.RunId,
		Source:              a.Source,
		AssetCount:          int32(a.Table.AssetCount()),
		ObservationCount:    int32(a.Table.Len()),
		AnnualizationFactor: int32(sc.Settings.AnnualizationFactor),
	}

	if err := sc.History.InsertAnalysisRun(sc.Context, run); err != nil {
		return err
	}
	a.recorded = true

	n, err := sc.History.InsertPriceTable(sc.Context, a.RunId, a.Table)
	if err != nil {
		return sc.AbortAnalysis(a, fmt.Errorf("error archiving price table: %w", err))
	}

	sc.Logger.Info().Str("run_id", a.RunId.String()).Int64("rows", n).Dur("elapsed", time.Since(a.start)).Msg("analysis run recorded")
	return nil
}

// BuildAnalysisResponse flattens a run into its api shape, evaluation may be nil
func BuildAnalysisResponse(a *Analysis, evaluation *PortfolioEvaluation) *sm.AnalysisResponse {
	stats := a.Statistics

	assets := make([]sm.AssetResponse, len(stats.Assets))
	for i, asset := range stats.Assets {
		assets[i] = sm.AssetResponse{
			Asset:          string(asset),
			ExpectedReturn: stats.Mu.Values[i],
			Volatility:     stats.Sigma[i],
		}
		if evaluation != nil {
			assets[i].Weight, _ = evaluation.Weights.Of(asset)
		}
	}

	res := &sm.AnalysisResponse{
		RunId:               a.RunId,
		AnnualizationFactor: stats.AnnualizationFactor,
		Observations:        stats.Observations,
		Assets:              assets,
		Covariance:          ToRows(stats.CovMatrix),
		Correlation:         ToRows(stats.CorrMatrix),
	}

	if evaluation != nil {
		res.Portfolio = &sm.PortfolioResponse{
			ExpectedReturn:    evaluation.Result.ExpectedReturn,
			Volatility:        evaluation.Result.Volatility,
			WeightSum:         evaluation.WeightSum,
			WeightsNormalized: evaluation.Normalized,
		}
	}

	return res
}
