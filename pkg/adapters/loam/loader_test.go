package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/flow"
)

// setupLoader seeds a repository with real files so Load exercises the
// same frontmatter parse path as a repository on disk.
func setupLoader(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	dir := t.TempDir()
	repo, err := loam.Init(dir, loam.WithStrict(true))
	require.NoError(t, err, "failed to init loam repo")

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return New(loam.NewTypedRepository[NodeMetadata](repo))
}

func TestLoaderBuildsGraph(t *testing.T) {
	loader := setupLoader(t, map[string]string{
		"_variables.md": `---
kind: variables
variables:
  - namespace: Quest
    name: accepted
    initial: false
---`,
		"intro.md": `---
id: intro
speaker: keeper
to: [fork]
---
Evening, traveler.`,
		"fork.md": `---
id: fork
kind: hub
to: [accept, decline]
---`,
		"accept.md": `---
menu_text: "Take the job"
outputs:
  - script: "Quest.accepted = true"
---
I'm in.`,
		"decline.md": `---
menu_text: "Decline"
---
Not my problem.`,
	})

	g, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	assert.Len(t, g.Nodes(), 4)
	assert.Len(t, g.Variables(), 1)

	// The markdown body becomes the node text, and a document with no
	// declared kind is a dialogue fragment.
	intro, ok := g.Object("intro").(*flow.DialogueFragment)
	require.True(t, ok, "intro should decode as a dialogue fragment")
	assert.Equal(t, "Evening, traveler.", intro.Text())
	assert.Equal(t, domain.ID("keeper"), intro.Speaker())

	// A document without an explicit id takes its file name.
	accept, ok := g.Object("accept").(*flow.DialogueFragment)
	require.True(t, ok, "accept should be addressable by file name")
	assert.Equal(t, "Take the job", accept.MenuText())
	assert.Equal(t, "I'm in.", accept.Text())

	pin, ok := g.Object("fork.out").(domain.Pin)
	require.True(t, ok)
	assert.Len(t, pin.Targets(), 2)
}

// Every document must end up with its body as text, even when the
// listing API returns metadata without content.
func TestLoaderReadsBodies(t *testing.T) {
	loader := setupLoader(t, map[string]string{
		"one.md": `---
id: one
to: [two]
---
First line.`,
		"two.md": `---
id: two
---
Second line.`,
	})

	g, err := loader.Load(context.Background())
	require.NoError(t, err)

	for id, want := range map[string]string{"one": "First line.", "two": "Second line."} {
		node, ok := g.Object(domain.ID(id)).(*flow.DialogueFragment)
		require.True(t, ok, id)
		assert.Equal(t, want, node.Text(), "body of %s should survive loading", id)
	}
}

func TestLoaderRejectsIDCollisions(t *testing.T) {
	loader := setupLoader(t, map[string]string{
		"one.md": `---
id: shared
---
First.`,
		"two.md": `---
id: shared
---
Second.`,
	})

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision")
}

func TestLoaderExplicitTextWins(t *testing.T) {
	loader := setupLoader(t, map[string]string{
		"node.md": `---
id: node
text: "Frontmatter text"
---
Body text that should be ignored.`,
	})

	g, err := loader.Load(context.Background())
	require.NoError(t, err)
	node := g.Object("node").(*flow.DialogueFragment)
	assert.Equal(t, "Frontmatter text", node.Text())
}
