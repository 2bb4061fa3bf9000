package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/google/subcommands"

	"github.com/labib-r/portfolio-risk/service/loader"
	"github.com/labib-r/portfolio-risk/service/prompt"
	"github.com/labib-r/portfolio-risk/service/report"
)

type analyzeCmd struct {
	file      string
	weights   string
	delimiter string
	matrix    bool

	in  io.Reader
	out io.Writer
}

func (*analyzeCmd) Name() string { return "analyze" }
func (*analyzeCmd) Synopsis() string {
	return "computes annualized return statistics of a price file and evaluates a portfolio"
}
func (*analyzeCmd) Usage() string {
	return `portfolio-risk analyze [-file <prices.csv>] [-weights w1,w2,...] [-delimiter ;] [-matrix]

  Loads a delimited price table (a label column, then one column per asset),
  prints the annualized expected return of every asset, asks for one weight
  per asset and prints the portfolio's expected annual return and volatility.
  Weights that do not sum to 1 are normalised.

Usage Examples:
# Prompts for weights.
$ portfolio-risk analyze -file prices.csv

# Weekly prices, weights given up front.
$ portfolio-risk -frequency weekly analyze -file weekly.csv -weights 0.5,0.3,0.2

`
}

func (p *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.file, "file", "", "Price file to analyze. Defaults to the configured loader path.")
	f.StringVar(&p.weights, "weights", "", "Comma separated weights, one per asset. Prompts when empty.")
	f.StringVar(&p.delimiter, "delimiter", "", "Field delimiter of the price file. Defaults to the configured delimiter.")
	f.BoolVar(&p.matrix, "matrix", false, "Also print per-asset volatility, the covariance and the correlation matrix.")
}

func (p *analyzeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.delimiter != "" && utf8.RuneCountInString(p.delimiter) != 1 {
		fmt.Fprintf(os.Stderr, "Error: -delimiter must be a single character, got %q\n", p.delimiter)
		return subcommands.ExitUsageError
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()

	out := stdoutOr(p.out)
	in := p.in
	if in == nil {
		in = os.Stdin
	}

	path := p.file
	if path == "" {
		path = a.config.Loader.Path
	}

	opts := loader.Options{
		Delimiter:       a.config.Delimiter(),
		MaxObservations: a.sc.Settings.MaxObservations,
		MaxAssets:       a.sc.Settings.MaxAssets,
	}
	if p.delimiter != "" {
		opts.Delimiter, _ = utf8.DecodeRuneInString(p.delimiter)
	}

	fmt.Fprintf(out, "=== Portfolio Risk & Return Calculator ===\n")
	fmt.Fprintf(out, "Loading price data from '%s'...\n\n", path)

	table, err := loader.LoadPriceTable(path, opts)
	if err != nil {
		return fail("failed to load price data: %v", err)
	}

	analysis, err := a.sc.PrepareAnalysis(path, table)
	if err != nil {
		return fail("%v", err)
	}

	report.WriteLoaded(out, table)
	report.WriteAssets(out, analysis.Statistics)
	if p.matrix {
		if err := report.WriteMatrices(out, analysis.Statistics); err != nil {
			return fail("%v", a.sc.AbortAnalysis(analysis, err))
		}
	}

	var weights []float64
	if p.weights != "" {
		weights, err = prompt.ParseWeights(p.weights)
	} else {
		weights, err = (&prompt.WeightPrompter{In: in, Out: out}).Weights(analysis.Statistics.Assets)
	}
	if err != nil {
		return fail("invalid weight: %v", a.sc.AbortAnalysis(analysis, err))
	}

	evaluation, err := a.sc.CompleteAnalysis(analysis, weights)
	if err != nil {
		return fail("%v", err)
	}

	report.WriteWeightSum(out, evaluation)
	report.WritePortfolio(out, evaluation)

	if a.sc.History != nil {
		fmt.Fprintf(out, "\nRecorded as run %s\n", analysis.RunId)
	}

	return subcommands.ExitSuccess
}
