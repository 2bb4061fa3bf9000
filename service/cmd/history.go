package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/labib-r/portfolio-risk/service/report"
)

type historyCmd struct {
	id   string
	init bool

	out io.Writer
}

func (*historyCmd) Name() string { return "history" }
func (*historyCmd) Synopsis() string {
	return "prints a recorded analysis run, or creates the run history schema"
}
func (*historyCmd) Usage() string {
	return `portfolio-risk history [-init] [-id <run id>]

  Works on the run history database given by DATABASE_URL.
  -init creates the tables if they do not exist yet.
  -id prints the recorded run, its outcome or the error it failed with.

`
}

func (p *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.id, "id", "", "Id of the run to print.")
	f.BoolVar(&p.init, "init", false, "Create the run history schema.")
}

func (p *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !p.init && p.id == "" {
		fmt.Fprint(os.Stderr, p.Usage())
		return subcommands.ExitUsageError
	}

	var id uuid.UUID
	if p.id != "" {
		parsed, err := uuid.Parse(p.id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid run id %q: %v\n", p.id, err)
			return subcommands.ExitUsageError
		}
		id = parsed
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()

	if a.postgres == nil {
		return fail("run history is not available, set DATABASE_URL to a reachable database")
	}

	out := stdoutOr(p.out)

	if p.init {
		if err := a.postgres.EnsureSchema(ctx); err != nil {
			return fail("%v", err)
		}
		fmt.Fprintf(out, "Run history schema is ready.\n")
	}

	if p.id != "" {
		run, err := a.sc.GetAnalysisRun(id)
		if err != nil {
			return fail("%v", err)
		}
		report.WriteRun(out, run)
	}

	return subcommands.ExitSuccess
}
