package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/flow"
)

func TestLoadFromDefs(t *testing.T) {
	defs := []flow.NodeDef{
		{ID: "a", Kind: "dialogue_fragment", To: []string{"b"}},
		{ID: "b", Kind: "dialogue_fragment"},
	}
	vars := []flow.VariableDef{{Namespace: "World", Name: "day", Initial: 1}}

	g, err := memory.NewLoader(defs, vars).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if g.Object("a") == nil || g.Object("b") == nil {
		t.Error("nodes missing from graph")
	}
	if got := len(g.Variables()); got != 1 {
		t.Errorf("expected 1 variable, got %d", got)
	}
}

func TestLoadFromRaw(t *testing.T) {
	raw := []map[string]any{
		{"id": "greet", "kind": "dialogue_fragment", "text": "Hi.", "menu_text": "Greet", "to": []string{"bye"}},
		{"id": "bye", "kind": "dialogue_fragment", "display_name": "Farewell"},
	}
	loader, err := memory.NewFromRaw(raw, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	g, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	greet := g.Object("greet").(*flow.DialogueFragment)
	if greet.Text() != "Hi." {
		t.Errorf("text = %q", greet.Text())
	}
	bye := g.Object("bye").(*flow.DialogueFragment)
	if bye.DisplayName() != "Farewell" {
		t.Errorf("display name = %q", bye.DisplayName())
	}
	pin, ok := g.Object("greet.out").(domain.Pin)
	if !ok || len(pin.Targets()) != 1 {
		t.Fatal("to-sugar did not survive decoding")
	}
}

func TestLoadFromRawRejectsBadShape(t *testing.T) {
	raw := []map[string]any{{"id": 42, "kind": []string{"not", "a", "string"}}}
	if _, err := memory.NewFromRaw(raw, nil); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoadFromGraph(t *testing.T) {
	g, err := flow.BuildGraph([]flow.NodeDef{{ID: "solo", Kind: "hub"}}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got, err := memory.NewFromGraph(g).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != g {
		t.Error("expected the wrapped graph back")
	}
}
