// Package cmd implements the portfolio-risk command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"

	r "github.com/labib-r/portfolio-risk/data/repos"
	av "github.com/labib-r/portfolio-risk/service/api/alpha_vantage"
	"github.com/labib-r/portfolio-risk/service/config"
	c "github.com/labib-r/portfolio-risk/service/core"
	"github.com/labib-r/portfolio-risk/service/logging"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(commander *subcommands.Commander) {
	commander.Register(&analyzeCmd{}, "analysis")
	commander.Register(&serveCmd{}, "analysis")

	commander.Register(&fetchCmd{}, "data")
	commander.Register(&historyCmd{}, "data")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", "", "Path to a TOML configuration file")
var frequency = flag.String("frequency", "", "Annualization frequency: daily, weekly, monthly, quarterly or yearly")
var logLevel = flag.String("log-level", "", "Log level: debug, info, warn or error")

// app holds what every command needs, built from flags, config file and environment
type app struct {
	config   *config.Config
	sc       *c.ServiceContext
	postgres *r.Postgres
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		return nil, err
	}

	config.ApplyFlagOverrides(cfg, *frequency, *logLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	a := &app{
		config: cfg,
		sc: &c.ServiceContext{
			Context:  ctx,
			Logger:   logger,
			Settings: cfg.Settings(),
		},
	}

	// run history is optional, an unreachable database only costs the record of the run
	if cfg.Storage.DatabaseURL != "" {
		postgres, err := r.GetPostgresConnection(ctx, cfg.Storage.DatabaseURL)
		if err == nil {
			err = postgres.Ping(ctx)
			if err != nil {
				postgres.Close()
			}
		}

		if err != nil {
			logger.Warn().Err(err).Msg("run history disabled, database unavailable")
		} else {
			a.postgres = postgres
			a.sc.History = postgres
		}
	}

	if cfg.AlphaVantage.APIKey != "" {
		timeout := time.Duration(cfg.AlphaVantage.TimeoutSeconds) * time.Second
		a.sc.Prices = av.GetClient(cfg.AlphaVantage.APIKey, timeout)
	}

	return a, nil
}

func (a *app) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
}

// fail reports err on stderr and returns the failure status
func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

func stdoutOr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
