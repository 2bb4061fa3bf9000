package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	dm "github.com/labib-r/portfolio-risk/data/models"
)

// MeanReturnVector holds annualized mean returns keyed by asset
type MeanReturnVector struct {
	Assets []dm.AssetID
	Values []float64
}

// CovarianceMatrix holds the annualized sample covariance of returns, rows and columns in Assets order
type CovarianceMatrix struct {
	Assets []dm.AssetID
	*mat.SymDense
}

type StatisticalResources struct {
	Assets              []dm.AssetID
	AnnualizationFactor int
	Observations        int              // number of returns the statistics were estimated from
	Mu                  MeanReturnVector // annualized
	Sigma               []float64        // annualized
	CovMatrix           CovarianceMatrix // annualized
	CorrMatrix          *mat.SymDense
}

func GetStatisticalResources(series *dm.ReturnSeries, annualizationFactor int) (*StatisticalResources, error) {
	if series.Len() < 2 {
		return nil, fmt.Errorf("%d returns, sample covariance needs at least 2: %w", series.Len(), ErrInsufficientHistory)
	}

	if annualizationFactor <= 0 {
		return nil, fmt.Errorf("annualization factor must be positive, got %d", annualizationFactor)
	}

	sr := &StatisticalResources{
		Assets:              series.Assets,
		AnnualizationFactor: annualizationFactor,
		Observations:        series.Len(),
		Mu:                  GetMeanReturnVector(series, annualizationFactor),
		CovMatrix:           GetCovarianceMatrix(series, annualizationFactor),
	}

	n := len(series.Assets)
	sr.Sigma = make([]float64, n)
	for i := range n {
		sr.Sigma[i] = math.Sqrt(sr.CovMatrix.At(i, i))
	}

	sr.CorrMatrix = GetCorrelationMatrix(sr.CovMatrix.SymDense)

	return sr, nil
}

// GetMeanReturnVector is the arithmetic mean of each asset's returns scaled to a year
func GetMeanReturnVector(series *dm.ReturnSeries, annualizationFactor int) MeanReturnVector {
	values := make([]float64, len(series.Assets))
	for j := range series.Assets {
		values[j] = stat.Mean(series.Column(j), nil) * float64(annualizationFactor)
	}

	return MeanReturnVector{
		Assets: series.Assets,
		Values: values,
	}
}

// GetCovarianceMatrix computes the unbiased (N-1) sample covariance of the returns and
// scales it to a year. stat.CovarianceMatrix centers each column on its mean before
// taking cross products, so this is the two pass estimate.
func GetCovarianceMatrix(series *dm.ReturnSeries, annualizationFactor int) CovarianceMatrix {
	returnMatrix := ReturnsToMatrix(series)
	covMatrix := mat.NewSymDense(len(series.Assets), nil)
	stat.CovarianceMatrix(covMatrix, returnMatrix, nil)
	covMatrix.ScaleSym(float64(annualizationFactor), covMatrix)

	return CovarianceMatrix{
		Assets:   series.Assets,
		SymDense: covMatrix,
	}
}

// GetCorrelationMatrix builds a correlation matrix from a covariance matrix so diagonal is 1.
// corr_ij = cov_ij / sqrt(cov_ii*cov_jj). Pairs involving an asset with zero variance are
// undefined and left at 0.
func GetCorrelationMatrix(covMatrix *mat.SymDense) *mat.SymDense {
	n := covMatrix.SymmetricDim()
	corrMatrix := mat.NewSymDense(n, nil)

	for i := range n {
		for j := range i + 1 {
			denom := math.Sqrt(covMatrix.At(i, i) * covMatrix.At(j, j))
			if denom == 0 {
				continue
			}
			corrMatrix.SetSym(i, j, covMatrix.At(i, j)/denom)
		}
	}

	return corrMatrix
}

// ReturnsToMatrix lays the series out with one row per observation and one column per asset
func ReturnsToMatrix(series *dm.ReturnSeries) *mat.Dense {
	nObservations := series.Len()
	nAssets := len(series.Assets)
	res := mat.NewDense(nObservations, nAssets, nil)
	for i, row := range series.Returns {
		for j, v := range row {
			res.Set(i, j, v)
		}
	}
	return res
}

// Of returns the annualized mean return of an asset
func (v MeanReturnVector) Of(asset dm.AssetID) (float64, bool) {
	for i, a := range v.Assets {
		if a == asset {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Between returns the annualized covariance of two assets
func (c CovarianceMatrix) Between(a, b dm.AssetID) (float64, bool) {
	i, j := -1, -1
	for k, asset := range c.Assets {
		if asset == a {
			i = k
		}
		if asset == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return c.At(i, j), true
}

// ToRows copies a symmetric matrix into plain rows, e.g. for json
func ToRows(m mat.Symmetric) [][]float64 {
	n := m.SymmetricDim()
	res := make([][]float64, n)
	for i := range n {
		res[i] = make([]float64, n)
		for j := range n {
			res[i][j] = m.At(i, j)
		}
	}
	return res
}
