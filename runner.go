package espalier

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/flow"
)

// Runner handles the interactive loop of an Espalier engine using provided IO.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms text before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a new Runner. Input and Output must be set before Run
// (use os.Stdin / os.Stdout outside of tests).
func NewRunner() *Runner {
	return &Runner{}
}

// Run drives the engine from a start node until the flow dead-ends or
// the input stream closes. With a single branch it advances on a bare
// newline; with several it expects the branch number.
func (r *Runner) Run(engine *Engine, start domain.ID) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(r.Input)
	ctx := context.Background()

	if err := engine.Start(ctx, start); err != nil {
		return fmt.Errorf("start error: %w", err)
	}

	for {
		r.printPaused(engine)

		branches := engine.Branches()
		if len(branches) == 0 {
			if !r.Headless {
				fmt.Fprintln(r.Output, "--- end of flow ---")
			}
			return nil
		}

		choice := 0
		if len(branches) > 1 {
			r.printChoices(engine, branches)
		}
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		text, err := lineReader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		text = strings.TrimSpace(text)
		if text != "" {
			n, err := strconv.Atoi(text)
			if err != nil {
				fmt.Fprintf(r.Output, "expected a branch number, got %q\n", text)
				continue
			}
			choice = n
		}

		if err := engine.Advance(ctx, choice); err != nil {
			fmt.Fprintf(r.Output, "cannot play branch %d: %v\n", choice, err)
		}
	}
}

func (r *Runner) printPaused(engine *Engine) {
	cursor := engine.Cursor()
	if cursor == nil {
		return
	}
	text := textOf(cursor)
	if text == "" {
		return
	}
	if speaker := speakerLabel(cursor); speaker != "" {
		text = speaker + ": " + text
	}
	if r.Renderer != nil {
		if rendered, err := r.Renderer(text); err == nil {
			text = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(text))
}

func (r *Runner) printChoices(engine *Engine, branches []domain.Branch) {
	for _, b := range branches {
		label := ""
		if target := b.Target(); target != nil {
			label = menuLabel(target)
		}
		fmt.Fprintf(r.Output, "  [%d] %s\n", b.Index, label)
	}
}

func textOf(obj domain.FlowObject) string {
	type texter interface{ Text() string }
	if t, ok := obj.(texter); ok {
		return t.Text()
	}
	return ""
}

func menuLabel(obj domain.FlowObject) string {
	if df, ok := obj.(*flow.DialogueFragment); ok && df.MenuText() != "" {
		return df.MenuText()
	}
	if text := textOf(obj); text != "" {
		return text
	}
	type named interface{ DisplayName() string }
	if n, ok := obj.(named); ok && n.DisplayName() != "" {
		return n.DisplayName()
	}
	return string(obj.ID())
}

func speakerLabel(obj domain.FlowObject) string {
	if sp, ok := obj.(domain.SpeakerProvider); ok {
		return string(sp.Speaker())
	}
	return ""
}
