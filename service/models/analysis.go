package models

import (
	"time"

	"github.com/google/uuid"

	dm "github.com/labib-r/portfolio-risk/data/models"
)

// AnalysisRequest is the body of POST /api/analysis
type AnalysisRequest struct {
	Assets  []string    `json:"assets"`
	Labels  []string    `json:"labels,omitempty"`
	Prices  [][]float64 `json:"prices"`
	Weights []float64   `json:"weights"`
}

// AnalysisResponse carries the annualized statistics and the portfolio result
type AnalysisResponse struct {
	RunId               uuid.UUID          `json:"runId"`
	AnnualizationFactor int                `json:"annualizationFactor"`
	Observations        int                `json:"observations"`
	Assets              []AssetResponse    `json:"assets"`
	Covariance          [][]float64        `json:"covariance"`
	Correlation         [][]float64        `json:"correlation"`
	Portfolio           *PortfolioResponse `json:"portfolio,omitempty"`
}

type AssetResponse struct {
	Asset          string  `json:"asset"`
	ExpectedReturn float64 `json:"expectedReturn"`
	Volatility     float64 `json:"volatility"`
	Weight         float64 `json:"weight"`
}

type PortfolioResponse struct {
	ExpectedReturn    float64 `json:"expectedReturn"`
	Volatility        float64 `json:"volatility"`
	WeightSum         float64 `json:"weightSum"`
	WeightsNormalized bool    `json:"weightsNormalized"`
}

// AnalysisRunResponse is a recorded run as returned by GET /api/analysis/{id}
type AnalysisRunResponse struct {
	Id                  uuid.UUID  `json:"id"`
	Source              string     `json:"source"`
	AssetCount          int32      `json:"assetCount"`
	ObservationCount    int32      `json:"observationCount"`
	AnnualizationFactor int32      `json:"annualizationFactor"`
	ExpectedReturn      *float64   `json:"expectedReturn"`
	Volatility          *float64   `json:"volatility"`
	WeightsNormalized   *bool      `json:"weightsNormalized"`
	Error               *string    `json:"error"`
	CreatedAt           time.Time  `json:"createdAt"`
	CompletedAt         *time.Time `json:"completedAt"`
}

// ToPriceTable maps the request onto the data contract the pipeline consumes
func (r AnalysisRequest) ToPriceTable() *dm.PriceTable {
	return &dm.PriceTable{
		Assets: dm.ToAssetIDs(r.Assets),
		Labels: r.Labels,
		Prices: r.Prices,
	}
}

func MapAnalysisRunToResponse(run *dm.AnalysisRun) AnalysisRunResponse {
	return AnalysisRunResponse{
		Id:                  run.Id,
		Source:              run.Source,
		AssetCount:          run.AssetCount,
		ObservationCount:    run.ObservationCount,
		AnnualizationFactor: run.AnnualizationFactor,
		ExpectedReturn:      run.ExpectedReturn.Ptr(),
		Volatility:          run.Volatility.Ptr(),
		WeightsNormalized:   run.WeightsNormalized.Ptr(),
		Error:               run.ErrorMessage.Ptr(),
		CreatedAt:           run.CreatedAt,
		CompletedAt:         run.CompletedAt.Ptr(),
	}
}
