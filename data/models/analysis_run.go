package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
)

// AnalysisRun is the persisted record of one pipeline run
type AnalysisRun struct {
	Id                  uuid.UUID   `db:"id"`
	Source              string      `db:"source"`
	AssetCount          int32       `db:"asset_count"`
	ObservationCount    int32       `db:"observation_count"`
	AnnualizationFactor int32       `db:"annualization_factor"`
	ExpectedReturn      null.Float  `db:"expected_return"`
	Volatility          null.Float  `db:"volatility"`
	WeightsNormalized   null.Bool   `db:"weights_normalized"`
	ErrorMessage        null.String `db:"error_message"`
	CreatedAt           time.Time   `db:"created_at"`
	CompletedAt         null.Time   `db:"completed_at"`
}

// AnalysisOutcome is what a successful run writes back
type AnalysisOutcome struct {
	ExpectedReturn    float64
	Volatility        float64
	WeightsNormalized bool
}

// PriceObservation is one archived cell of a run's price table
type PriceObservation struct {
	RunId         uuid.UUID `db:"run_id"`
	Step          int32     `db:"step"`
	Label         string    `db:"label"`
	AssetPosition int32     `db:"asset_position"`
	Asset         string    `db:"asset"`
	Price         float64   `db:"price"`
}

// IsComplete reports whether the run finished, either way
func (r *AnalysisRun) IsComplete() bool {
	return r.CompletedAt.Valid
}

// Succeeded reports whether the run finished without an error
func (r *AnalysisRun) Succeeded() bool {
	return r.IsComplete() && !r.ErrorMessage.Valid
}
