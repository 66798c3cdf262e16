// Package yamlfile loads a whole flow graph from a single YAML
// document, the format used for fixtures and small standalone flows.
package yamlfile

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/espalier/pkg/flow"
	"github.com/aretw0/espalier/pkg/ports"
)

// Document is the on-disk shape of a graph file.
type Document struct {
	Variables []flow.VariableDef `yaml:"variables"`
	Nodes     []flow.NodeDef     `yaml:"nodes"`
}

// Loader implements ports.GraphLoader for a YAML file path.
type Loader struct {
	Path string
}

var _ ports.GraphLoader = (*Loader)(nil)

func New(path string) *Loader {
	return &Loader{Path: path}
}

func (l *Loader) Load(ctx context.Context) (*flow.Graph, error) {
	_ = ctx
	raw, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}
	return Parse(raw)
}

// Parse builds a wired graph from YAML bytes.
func Parse(raw []byte) (*flow.Graph, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode graph file: %w", err)
	}
	return flow.BuildGraph(doc.Nodes, doc.Variables)
}
