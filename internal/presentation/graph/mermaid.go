package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/flow"
)

// Overlay contains dynamic state data to visualize on the graph.
type Overlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a flow graph.
// It applies semantic styling:
// - Dialogue / FlowFragment: [[Subroutine]]
// - Hub: ((Circle))
// - Condition: {Diamond}
// - Jump: [/Parallelogram/]
// - Default: [Rectangle]
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(g *flow.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range g.Nodes() {
		safeID := sanitizeMermaidID(string(node.ID()))

		opener, closer := "[", "]"
		switch node.Kind() {
		case domain.KindDialogue, domain.KindFlowFragment:
			opener, closer = "[[", "]]"
		case domain.KindHub:
			opener, closer = "((", "))"
		case domain.KindCondition:
			opener, closer = "{", "}"
		case domain.KindJump:
			opener, closer = "[/", "/]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, nodeLabel(node), closer))

		if jump, ok := node.(*flow.Jump); ok {
			to := jump.Target().TargetNode
			if to == "" {
				to = jump.Target().TargetPin
			}
			sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", safeID, sanitizeMermaidID(string(to))))
		}

		if prov, ok := node.(domain.OutputPinsProvider); ok {
			for _, pin := range prov.OutputPins() {
				for _, c := range pin.Connections() {
					to := c.TargetNode
					if to == "" {
						to = targetNodeOf(g, c.TargetPin)
					}
					arrow := "-->"
					if p, ok := pin.(*flow.Pin); ok && p.Script() != "" {
						safeScript := strings.ReplaceAll(p.Script(), "\"", "'")
						arrow = fmt.Sprintf("-- \"%s\" -->", safeScript)
					}
					sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(string(to))))
				}
			}
		}
		// Submerge edges: a container entering its children.
		if prov, ok := node.(domain.InputPinsProvider); ok {
			for _, pin := range prov.InputPins() {
				for _, c := range pin.Connections() {
					to := c.TargetNode
					if to == "" {
						to = targetNodeOf(g, c.TargetPin)
					}
					sb.WriteString(fmt.Sprintf("    %s -. enter .-> %s\n", safeID, sanitizeMermaidID(string(to))))
				}
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

// targetNodeOf maps a pin id to the id of the node owning it, so edges
// always land on node boxes.
func targetNodeOf(g *flow.Graph, pinID domain.ID) domain.ID {
	obj := g.Object(pinID)
	if pin, ok := obj.(domain.Pin); ok && pin.OwnerObject() != nil {
		return pin.OwnerObject().ID()
	}
	return pinID
}

func nodeLabel(node domain.FlowObject) string {
	type named interface{ DisplayName() string }
	if n, ok := node.(named); ok && n.DisplayName() != "" {
		return n.DisplayName()
	}
	return string(node.ID())
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
