package espalier_test

import (
	"context"
	"strings"
	"testing"

	espalier "github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/dsl"
	"github.com/aretw0/espalier/pkg/variables"
)

func tavernFlow() *dsl.Builder {
	b := dsl.New().
		Variable("Quest", "accepted", false).
		Variable("Quest", "gold", 10)
	b.Line("greeting").Speaker("keeper").Text("What'll it be?").Go("choices")
	b.Hub("choices").Go("job", "leave")
	b.Line("job").Menu("Ask about work").Text("There's rats in the cellar.").
		Output("", "Quest.accepted = true", "farewell")
	b.Line("leave").Menu("Leave").Text("Suit yourself.").Go("farewell")
	b.Line("farewell").Text("Mind the step.")
	return b
}

func newEngine(t *testing.T, opts ...espalier.Option) *espalier.Engine {
	t.Helper()
	opts = append([]espalier.Option{espalier.WithLoader(tavernFlow().Build())}, opts...)
	eng, err := espalier.New("", opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng
}

func TestEngineRequiresLoaderOrPath(t *testing.T) {
	if _, err := espalier.New(""); err == nil {
		t.Fatal("expected error without path or loader")
	}
}

func TestEnginePlaythrough(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	if err := eng.Start(ctx, "greeting"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if eng.State() != domain.StatePaused {
		t.Fatalf("state = %v", eng.State())
	}

	branches := eng.Branches()
	if len(branches) != 2 {
		t.Fatalf("expected 2 branches, got %v", branches)
	}

	if err := eng.Advance(ctx, 0); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if eng.Cursor().ID() != "job" {
		t.Fatalf("cursor = %q", eng.Cursor().ID())
	}
	// The output pin instruction has not committed yet.
	if v, _ := eng.Store().GetBool("Quest", "accepted"); v {
		t.Error("accepted flipped before the pin committed")
	}

	if err := eng.Advance(ctx, 0); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if eng.Cursor().ID() != "farewell" {
		t.Fatalf("cursor = %q", eng.Cursor().ID())
	}
	if v, _ := eng.Store().GetBool("Quest", "accepted"); !v {
		t.Error("accepted not set after committing the pin")
	}
	if len(eng.Branches()) != 0 {
		t.Errorf("expected end of flow, got %v", eng.Branches())
	}
}

func TestEngineRegisterMethod(t *testing.T) {
	b := dsl.New()
	b.Line("s").Go("gate", "other")
	b.Condition("gate", "hasKey()").Go("door")
	b.Line("door").Text("The door swings open.")
	b.Line("other").Text("You move on.")

	eng, err := espalier.New("", espalier.WithLoader(b.Build()))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	hasKey := false
	if err := eng.RegisterMethod("hasKey", func(ctx context.Context, args []any) (any, error) {
		return hasKey, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	ctx := context.Background()
	if err := eng.Start(ctx, "s"); err != nil {
		t.Fatalf("start: %v", err)
	}
	branches := eng.Branches()
	if len(branches) != 2 || branches[0].Target().ID() != "gate" {
		t.Fatalf("closed gate should end its branch at itself, got %v", branches)
	}

	hasKey = true
	if err := eng.UpdateBranches(ctx); err != nil {
		t.Fatalf("update: %v", err)
	}
	branches = eng.Branches()
	if len(branches) != 2 || branches[0].Target().ID() != "door" {
		t.Fatalf("open gate should reach the door, got %v", branches)
	}
}

func TestEngineRegisterMethodWithCustomProvider(t *testing.T) {
	eng := newEngine(t, espalier.WithMethods(customProvider{}))
	if err := eng.RegisterMethod("x", nil); err == nil {
		t.Fatal("expected error with a custom provider installed")
	}
}

type customProvider struct{}

func (customProvider) Call(ctx context.Context, name string, args []any) (any, error) {
	return nil, nil
}

func TestEngineOnVariableChanged(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	var changes []string
	eng.OnVariableChanged(func(fullName string, value any) {
		changes = append(changes, fullName)
	})

	if err := eng.Start(ctx, "greeting"); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Exploration runs shadowed; nothing fired yet.
	if len(changes) != 0 {
		t.Fatalf("shadowed writes leaked to the listener: %v", changes)
	}
	if err := eng.Advance(ctx, 0); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := eng.Advance(ctx, 0); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(changes) != 1 || changes[0] != "Quest.accepted" {
		t.Fatalf("changes = %v, want [Quest.accepted]", changes)
	}
}

func TestEngineResetVisited(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()
	if err := eng.Start(ctx, "greeting"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := eng.Store().SeenCounter("greeting"); got != 1 {
		t.Fatalf("seen(greeting) = %d", got)
	}
	eng.ResetVisited()
	if got := eng.Store().SeenCounter("greeting"); got != 0 {
		t.Errorf("seen(greeting) = %d after reset", got)
	}
}

func TestEngineWithStore(t *testing.T) {
	store := variables.NewStore()
	eng := newEngine(t, espalier.WithStore(store))
	if eng.Store() != store {
		t.Fatal("injected store not used")
	}
	if v, ok := store.GetInt("Quest", "gold"); !ok || v != 10 {
		t.Errorf("injected store not seeded: %v %v", v, ok)
	}
}

func TestEngineWatchUnsupported(t *testing.T) {
	eng := newEngine(t)
	if _, err := eng.Watch(context.Background()); err == nil {
		t.Fatal("memory loader should not support watching")
	}
}

func TestRunnerPlaythrough(t *testing.T) {
	eng := newEngine(t)

	// Choose branch 1 at the hub, then a bare newline to the end.
	input := strings.NewReader("1\n\n")
	var out strings.Builder
	runner := &espalier.Runner{Input: input, Output: &out, Headless: true}

	if err := runner.Run(eng, "greeting"); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"[0] Ask about work",
		"[1] Leave",
		"Suit yourself.",
		"Mind the step.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunnerRequiresIO(t *testing.T) {
	eng := newEngine(t)
	if err := espalier.NewRunner().Run(eng, "greeting"); err == nil {
		t.Fatal("expected error without IO configured")
	}
}
