package yamlfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/espalier/pkg/adapters/yamlfile"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/flow"
)

const fixture = `
variables:
  - namespace: Quest
    name: accepted
    initial: false
nodes:
  - id: intro
    kind: dialogue_fragment
    speaker: keeper
    text: "Welcome back."
    to: [fork]
  - id: fork
    kind: hub
    to: [accept, decline]
  - id: accept
    kind: dialogue_fragment
    menu_text: "Take the job"
    outputs:
      - script: "Quest.accepted = true"
  - id: decline
    kind: dialogue_fragment
    menu_text: "Walk away"
`

func TestParse(t *testing.T) {
	g, err := yamlfile.Parse([]byte(fixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := len(g.Nodes()); got != 4 {
		t.Fatalf("expected 4 nodes, got %d", got)
	}
	if got := len(g.Variables()); got != 1 {
		t.Fatalf("expected 1 variable, got %d", got)
	}

	intro := g.Object("intro").(*flow.DialogueFragment)
	if intro.Speaker() != "keeper" {
		t.Errorf("speaker = %q", intro.Speaker())
	}
	pin := g.Object("fork.out").(domain.Pin)
	if len(pin.Targets()) != 2 {
		t.Errorf("expected 2 targets on fork.out, got %d", len(pin.Targets()))
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := yamlfile.Parse([]byte(":\tnot yaml")); err == nil {
		t.Error("expected yaml error")
	}
	if _, err := yamlfile.Parse([]byte("nodes:\n  - id: x\n    kind: portal\n")); err == nil {
		t.Error("expected unknown kind error")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.yaml")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	g, err := yamlfile.New(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if g.Object("intro") == nil {
		t.Error("node missing from loaded graph")
	}

	if _, err := yamlfile.New(filepath.Join(t.TempDir(), "missing.yaml")).Load(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}
