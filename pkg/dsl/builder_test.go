package dsl_test

import (
	"context"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/dsl"
	"github.com/aretw0/espalier/pkg/flow"
)

func TestBuilderGraph(t *testing.T) {
	b := dsl.New().
		Variable("Quest", "accepted", false)
	b.Dialogue("tavern").Name("The Tavern").Go("greeting")
	b.Line("greeting").Speaker("keeper").Text("What'll it be?").Go("choices")
	b.Hub("choices").Go("job", "leave")
	b.Line("job").Menu("Ask about work").
		Output("", "Quest.accepted = true", "farewell")
	b.Line("leave").Menu("Leave").Go("farewell")
	b.Line("farewell").Text("Safe travels.")

	g, err := b.Graph()
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := len(g.Nodes()); got != 6 {
		t.Fatalf("expected 6 nodes, got %d", got)
	}
	if got := len(g.Variables()); got != 1 {
		t.Fatalf("expected 1 variable, got %d", got)
	}

	job := g.Object("job")
	prov, ok := job.(domain.OutputPinsProvider)
	if !ok || len(prov.OutputPins()) != 1 {
		t.Fatal("expected one output pin on job")
	}
	pin := prov.OutputPins()[0]
	if pin.(*flow.Pin).Script() != "Quest.accepted = true" {
		t.Errorf("pin script = %q", pin.(*flow.Pin).Script())
	}
}

func TestBuilderOrderIsStable(t *testing.T) {
	b := dsl.New()
	b.Hub("c").Go("a")
	b.Hub("a").Go("b")
	b.Hub("b")
	defs := b.Defs()
	for i, want := range []string{"c", "a", "b"} {
		if defs[i].ID != want {
			t.Fatalf("defs[%d].ID = %q, want %q", i, defs[i].ID, want)
		}
	}
}

func TestBuilderAsLoader(t *testing.T) {
	b := dsl.New()
	b.Line("only").Text("hi")
	g, err := b.Build().Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if g.Object("only") == nil {
		t.Error("node missing from loaded graph")
	}
}

func TestBuilderJumpAndCondition(t *testing.T) {
	b := dsl.New()
	b.Hub("loop").Go("gate")
	b.Condition("gate", "unseen()").Go("line")
	b.Line("line").Go("back")
	b.Jump("back", "loop")

	g, err := b.Graph()
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if _, ok := g.Object("back").(*flow.Jump); !ok {
		t.Error("jump node has wrong type")
	}
	if g.Object("gate").Kind() != domain.KindCondition {
		t.Error("condition node has wrong kind")
	}
}
