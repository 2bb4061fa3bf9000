// Package report prints analysis results for people
package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	dm "github.com/labib-r/portfolio-risk/data/models"
	"github.com/labib-r/portfolio-risk/service/core"
	sm "github.com/labib-r/portfolio-risk/service/models"
)

// Percent formats a fraction as a percentage with two decimals, 0.1234 -> "12.34"
func Percent(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fmt.Sprint(x)
	}
	return decimal.NewFromFloat(x).Shift(2).StringFixed(2)
}

// WriteLoaded prints the size of the loaded table
func WriteLoaded(w io.Writer, table *dm.PriceTable) {
	fmt.Fprintf(w, "Loaded %d days of prices for %d assets.\n\n", table.Len(), table.AssetCount())
}

// WriteAssets prints the annualized expected return of every asset
func WriteAssets(w io.Writer, stats *core.StatisticalResources) {
	fmt.Fprintf(w, "Assets and expected annual returns (approx):\n")
	for i, asset := range stats.Assets {
		fmt.Fprintf(w, "  %s: %s%%\n", asset, Percent(stats.Mu.Values[i]))
	}
}

// WriteWeightSum echoes the sum of the entered weights and warns when they were rescaled
func WriteWeightSum(w io.Writer, evaluation *core.PortfolioEvaluation) {
	fmt.Fprintf(w, "\nSum of weights entered: %.4f\n", evaluation.WeightSum)
	if evaluation.Normalized {
		fmt.Fprintf(w, "Warning: weights do not sum exactly to 1.0. They will be normalised.\n")
	}
}

// WritePortfolio prints the weights used and the portfolio's expected return and volatility
func WritePortfolio(w io.Writer, evaluation *core.PortfolioEvaluation) {
	fmt.Fprintf(w, "\n=== Portfolio Result ===\n")
	fmt.Fprintf(w, "Weights:\n")
	for i, asset := range evaluation.Weights.Assets {
		fmt.Fprintf(w, "  %s: %s%%\n", asset, Percent(evaluation.Weights.Values[i]))
	}

	fmt.Fprintf(w, "\nExpected annual return: %s%%\n", Percent(evaluation.Result.ExpectedReturn))
	fmt.Fprintf(w, "Annual volatility (risk): %s%%\n", Percent(evaluation.Result.Volatility))
}

// WriteMatrices prints per-asset volatility, the covariance matrix and the correlation matrix
func WriteMatrices(w io.Writer, stats *core.StatisticalResources) error {
	fmt.Fprintf(w, "\nAnnual volatility per asset:\n")
	for i, asset := range stats.Assets {
		fmt.Fprintf(w, "  %s: %s%%\n", asset, Percent(stats.Sigma[i]))
	}

	fmt.Fprintf(w, "\nAnnualized covariance:\n")
	if err := writeMatrix(w, stats.Assets, core.ToRows(stats.CovMatrix), func(x float64) string {
		return fmt.Sprintf("%.6f", x)
	}); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nCorrelation:\n")
	return writeMatrix(w, stats.Assets, core.ToRows(stats.CorrMatrix), func(x float64) string {
		return fmt.Sprintf("%.4f", x)
	})
}

func writeMatrix(w io.Writer, assets []dm.AssetID, rows [][]float64, format func(float64) string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(dm.AssetNames(assets), "\t"))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, x := range row {
			cells[j] = format(x)
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", assets[i], strings.Join(cells, "\t"))
	}

	return tw.Flush()
}

// WriteRun prints a recorded analysis run
func WriteRun(w io.Writer, run *sm.AnalysisRunResponse) {
	fmt.Fprintf(w, "Run %s\n", run.Id)
	fmt.Fprintf(w, "  Source: %s\n", run.Source)
	fmt.Fprintf(w, "  Created: %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Assets: %d, observations: %d, annualization factor: %d\n", run.AssetCount, run.ObservationCount, run.AnnualizationFactor)

	switch {
	case run.CompletedAt == nil:
		fmt.Fprintf(w, "  Status: in progress\n")
	case run.Error != nil:
		fmt.Fprintf(w, "  Status: failed (%s)\n", *run.Error)
	default:
		fmt.Fprintf(w, "  Status: completed %s\n", run.CompletedAt.Format("2006-01-02 15:04:05"))
		if run.ExpectedReturn != nil {
			fmt.Fprintf(w, "  Expected annual return: %s%%\n", Percent(*run.ExpectedReturn))
		}
		if run.Volatility != nil {
			fmt.Fprintf(w, "  Annual volatility (risk): %s%%\n", Percent(*run.Volatility))
		}
		if run.WeightsNormalized != nil && *run.WeightsNormalized {
			fmt.Fprintf(w, "  Weights were normalised\n")
		}
	}
}
