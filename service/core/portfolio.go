package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	ex "github.com/labib-r/portfolio-risk/data/extensions"
	dm "github.com/labib-r/portfolio-risk/data/models"
)

// DefaultWeightTolerance is how far the weight sum may drift from 1 before weights are normalized
const DefaultWeightTolerance = 0.0001

// variances this far below zero are round-off of a zero quadratic form
const varianceRoundOff = 1e-12

// WeightVector holds one weight per asset, Values[i] belongs to Assets[i]
type WeightVector struct {
	Assets []dm.AssetID
	Values []float64
}

// PortfolioResult is the annualized expected return and volatility of a weighted portfolio
type PortfolioResult struct {
	ExpectedReturn float64
	Variance       float64
	Volatility     float64
}

// NewWeightVector pairs weights with assets positionally, one weight per asset
func NewWeightVector(assets []dm.AssetID, weights []float64) (WeightVector, error) {
	if len(weights) != len(assets) {
		return WeightVector{}, fmt.Errorf("%d weights for %d assets: %w", len(weights), len(assets), ErrAllocation)
	}

	return WeightVector{
		Assets: assets,
		Values: append([]float64(nil), weights...),
	}, nil
}

// Sum of all weights
func (w WeightVector) Sum() float64 {
	return ex.Sum(w.Values)
}

// Of returns the weight of an asset
func (w WeightVector) Of(asset dm.AssetID) (float64, bool) {
	for i, a := range w.Assets {
		if a == asset {
			return w.Values[i], true
		}
	}
	return 0, false
}

// NormalizeWeights divides every weight by the sum when the sum is further than tolerance from 1.
// It reports the original sum and whether the weights were rescaled.
func NormalizeWeights(w WeightVector, tolerance float64) (WeightVector, float64, bool, error) {
	sum := w.Sum()
	if math.Abs(sum-1.0) <= tolerance {
		return w, sum, false, nil
	}

	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return w, sum, false, fmt.Errorf("weights sum to %v and cannot be normalized: %w", sum, ErrMalformedInput)
	}

	values := make([]float64, len(w.Values))
	for i, v := range w.Values {
		values[i] = v / sum
	}

	return WeightVector{Assets: w.Assets, Values: values}, sum, true, nil
}

// EvaluatePortfolio computes the expected return (w·mu) and the volatility (sqrt(wᵀ·Cov·w)).
// Weights are matched to the statistics by asset and are expected to already sum to 1.
func EvaluatePortfolio(weights WeightVector, mu MeanReturnVector, cov CovarianceMatrix) (*PortfolioResult, error) {
	if !dm.SameAssets(mu.Assets, cov.Assets) {
		return nil, fmt.Errorf("mean vector and covariance matrix: %w", ErrAssetMismatch)
	}

	aligned, err := alignWeights(weights, mu.Assets)
	if err != nil {
		return nil, err
	}

	expectedReturn, err := ex.DotProduct(aligned, mu.Values)
	if err != nil {
		return nil, err
	}

	w := mat.NewVecDense(len(aligned), aligned)
	variance := mat.Inner(w, cov.SymDense, w)
	if variance < 0 && variance > -varianceRoundOff {
		variance = 0
	}

	return &PortfolioResult{
		ExpectedReturn: expectedReturn,
		Variance:       variance,
		Volatility:     math.Sqrt(variance),
	}, nil
}

// alignWeights orders the weights like assets, every asset needs exactly one weight
func alignWeights(weights WeightVector, assets []dm.AssetID) ([]float64, error) {
	if len(weights.Values) != len(weights.Assets) {
		return nil, fmt.Errorf("%d weights for %d assets: %w", len(weights.Values), len(weights.Assets), ErrAllocation)
	}

	if len(weights.Assets) != len(assets) {
		return nil, fmt.Errorf("%d weighted assets, statistics cover %d: %w", len(weights.Assets), len(assets), ErrAssetMismatch)
	}

	index, err := dm.AssetIndex(weights.Assets)
	if err != nil {
		return nil, err
	}

	res := make([]float64, len(assets))
	for i, a := range assets {
		k, ok := index[a]
		if !ok {
			return nil, fmt.Errorf("no weight for asset %s: %w", a, ErrAssetMismatch)
		}
		res[i] = weights.Values[k]
	}

	return res, nil
}
