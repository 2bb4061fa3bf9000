package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	ex "github.com/labib-r/portfolio-risk/data/extensions"
	av "github.com/labib-r/portfolio-risk/service/api/alpha_vantage"
	c "github.com/labib-r/portfolio-risk/service/core"
	"github.com/labib-r/portfolio-risk/service/loader"
)

type fetchCmd struct {
	symbols  string
	output   string
	series   string
	lookback int

	out io.Writer
}

func (*fetchCmd) Name() string { return "fetch" }
func (*fetchCmd) Synopsis() string {
	return "downloads adjusted closing prices from Alpha Vantage into a price file"
}
func (*fetchCmd) Usage() string {
	return `portfolio-risk fetch -symbols <A,B,...> [-o prices.csv] [-series daily|weekly|monthly] [-lookback N]

  Downloads the adjusted price history of every symbol, keeps the dates where
  all of them have a price and writes the last N of them as a price file that
  analyze can read. Needs ALPHAVANTAGE_API_KEY.

Usage Examples:
$ portfolio-risk fetch -symbols IBM,MSFT,AAPL -o prices.csv
$ portfolio-risk fetch -symbols IBM,MSFT -series weekly -lookback 105 -o weekly.csv

`
}

func (p *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.symbols, "symbols", "", "Comma separated ticker symbols.")
	f.StringVar(&p.output, "o", "", "Output file. Writes to stdout when empty or '-'.")
	f.StringVar(&p.series, "series", "", "Price series: daily, weekly or monthly. Defaults to the configured series.")
	f.IntVar(&p.lookback, "lookback", 0, "Number of most recent rows to keep. Defaults to the configured lookback.")
}

func (p *fetchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols := ex.SplitList(p.symbols)
	if len(symbols) == 0 {
		fmt.Fprintf(os.Stderr, "Error: -symbols is required\n")
		return subcommands.ExitUsageError
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()

	if a.sc.Prices == nil {
		return fail("no Alpha Vantage api key configured, set ALPHAVANTAGE_API_KEY")
	}

	seriesName := p.series
	if seriesName == "" {
		seriesName = a.config.AlphaVantage.Series
	}
	series, err := av.ParseTimeSeries(seriesName)
	if err != nil {
		return fail("%v", err)
	}

	if series.AnnualizationFactor() != a.sc.Settings.AnnualizationFactor {
		a.sc.Logger.Warn().
			Str("series", series.Name()).
			Int("annualization_factor", a.sc.Settings.AnnualizationFactor).
			Msg("series frequency differs from the configured analysis frequency")
	}

	lookback := p.lookback
	if lookback == 0 {
		lookback = a.config.AlphaVantage.Lookback
	}

	table, err := a.sc.FetchPriceTable(c.FetchRequest{
		Symbols:     symbols,
		Series:      series,
		Lookback:    lookback,
		Concurrency: a.config.AlphaVantage.Concurrency,
	})
	if err != nil {
		return fail("%v", err)
	}

	w := stdoutOr(p.out)
	target := "stdout"
	if p.output != "" && p.output != "-" {
		file, err := os.Create(p.output)
		if err != nil {
			return fail("could not create %q: %v", p.output, err)
		}
		defer file.Close()
		w, target = file, p.output
	}

	if err := loader.EncodePriceTable(w, table, a.config.Delimiter()); err != nil {
		return fail("writing %s: %v", target, err)
	}

	fmt.Fprintf(os.Stderr, "Wrote %d days of prices for %d assets to %s.\n", table.Len(), table.AssetCount(), target)
	return subcommands.ExitSuccess
}
