package cmd

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	c "github.com/labib-r/portfolio-risk/service/core"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string { return "serve" }
func (*serveCmd) Synopsis() string {
	return "serves the analysis pipeline over http"
}
func (*serveCmd) Usage() string {
	return `portfolio-risk serve [-addr host:port]

  Starts the analysis api:
    GET  /api/ping            liveness, reports whether run history is configured
    POST /api/analysis        {"assets":[...],"labels":[...],"prices":[[...]],"weights":[...]}
    GET  /api/analysis/{id}   a recorded run, needs DATABASE_URL

  Stops gracefully on SIGINT or SIGTERM.

`
}

func (p *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.addr, "addr", "", "Listen address. Defaults to the configured server host and port.")
}

func (p *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()

	addr := p.addr
	if addr == "" {
		addr = a.config.Addr()
	}

	logger := a.sc.Logger
	server := c.GetHttpServer(a.sc, addr)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Bool("history", a.sc.History != nil).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// waits until the context is closed (ie, ctrl+C) or the listener failed
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("received shutdown signal, shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fail("server: %v", err)
	}

	logger.Info().Msg("server stopped successfully")
	return subcommands.ExitSuccess
}
