package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/presentation/tui"
	"github.com/aretw0/espalier/pkg/domain"
)

// RunWatch executes sessions in development mode, restarting the flow
// whenever a graph file changes.
func RunWatch(opts RunOptions) error {
	logger := createLogger(opts.Debug)
	tui.PrintBanner()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		engine, err := createEngine(opts, logger)
		if err != nil {
			return fmt.Errorf("error initializing espalier: %w", err)
		}

		watchCh, err := engine.Watch(sigCtx)
		if err != nil {
			logger.Warn("loader does not support watching, running once", "err", err)
			return runOnce(engine, opts)
		}

		done := make(chan error, 1)
		go func() { done <- runOnce(engine, opts) }()

		select {
		case <-sigCtx.Done():
			return nil
		case err := <-done:
			return err
		case _, ok := <-watchCh:
			if !ok {
				return <-done
			}
			// The session goroutine is still blocked on stdin; it dies
			// with the process when the next iteration takes over.
			fmt.Fprintln(os.Stderr, "--- graph changed, restarting flow ---")
		}
	}
}

func runOnce(engine *espalier.Engine, opts RunOptions) error {
	r := espalier.NewRunner()
	r.Input = os.Stdin
	r.Output = os.Stdout
	r.Headless = opts.Headless
	if !opts.Headless {
		r.Renderer = tui.NewRenderer()
	}
	return r.Run(engine, domain.ID(opts.Start))
}
