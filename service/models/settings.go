package models

// AnalysisSettings are the knobs of a single pipeline run
type AnalysisSettings struct {
	AnnualizationFactor int
	WeightTolerance     float64
	MinObservations     int // price rows, not returns
	MaxObservations     int // 0 is unbounded
	MaxAssets           int // 0 is unbounded
}

func DefaultAnalysisSettings() AnalysisSettings {
	return AnalysisSettings{
		AnnualizationFactor: Daily,
		WeightTolerance:     0.0001,
		MinObservations:     3,
	}
}
