package loam

import (
	"github.com/aretw0/espalier/pkg/flow"
)

// NodeMetadata represents the frontmatter of a flow document.
// It uses "mapstructure" tags (via the embedded NodeDef) to match
// standard Frontmatter/YAML keys.
type NodeMetadata struct {
	flow.NodeDef `mapstructure:",squash"`

	// Variables declares globals. Usually carried by a dedicated
	// document with kind "variables".
	Variables []VariableMetadata `mapstructure:"variables"`
}

// VariableMetadata declares one global variable.
type VariableMetadata struct {
	Namespace string `mapstructure:"namespace"`
	Name      string `mapstructure:"name"`
	Initial   any    `mapstructure:"initial"`
}

// KindVariables marks a document that only declares globals.
const KindVariables = "variables"
