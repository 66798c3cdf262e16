package cli

import (
	"fmt"
	"os"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/presentation/tui"
	"github.com/aretw0/espalier/pkg/domain"
)

// RunSession executes a single interactive session.
func RunSession(opts RunOptions) error {
	logger := createLogger(opts.Debug)

	if !opts.Headless {
		tui.PrintBanner()
	}

	engine, err := createEngine(opts, logger)
	if err != nil {
		return fmt.Errorf("error initializing espalier: %w", err)
	}

	r := espalier.NewRunner()
	r.Input = os.Stdin
	r.Output = os.Stdout
	r.Headless = opts.Headless
	if !opts.Headless {
		r.Renderer = tui.NewRenderer()
	}

	return r.Run(engine, domain.ID(opts.Start))
}
