// Package graph renders the orchestration graph as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/cinegraph/internal/runtime"
	"github.com/aretw0/cinegraph/pkg/domain"
)

// Overlay contains session state to highlight on the graph.
type Overlay struct {
	VisitedNodes []domain.NodeID
	CurrentNode  domain.NodeID
}

// OverlayFor derives the overlay of a checkpoint from its message log.
// A checkpoint with nothing pending and no next node sits at end.
func OverlayFor(cp *domain.Checkpoint) *Overlay {
	o := &Overlay{CurrentNode: cp.Next}
	if cp.Pending != nil {
		o.CurrentNode = cp.Pending.Node
	}
	if o.CurrentNode == "" && len(cp.Messages) > 0 {
		o.CurrentNode = domain.NodeEnd
	}

	for _, m := range cp.Messages {
		switch m.Role {
		case domain.RoleAssistant:
			o.VisitedNodes = append(o.VisitedNodes, domain.NodeAssistant)
		case domain.RoleCapability:
			o.VisitedNodes = append(o.VisitedNodes, domain.NodeTools)
			switch m.Name {
			case domain.CapGenerateArticle:
				o.VisitedNodes = append(o.VisitedNodes, domain.NodeReview)
			case domain.CapSuggestArticles:
				o.VisitedNodes = append(o.VisitedNodes, domain.NodeSuggestion)
			}
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of edges.
// Shapes:
// - assistant: ((Circle))
// - tools: [[Subroutine]]
// - human decisions: [/Parallelogram/]
// - end: ([Stadium])
func GenerateMermaid(edges []runtime.Edge, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	declared := make(map[domain.NodeID]bool)
	declare := func(id domain.NodeID) {
		if declared[id] {
			return
		}
		declared[id] = true
		opener, closer := "[", "]"
		switch id {
		case domain.NodeAssistant:
			opener, closer = "((", "))"
		case domain.NodeTools:
			opener, closer = "[[", "]]"
		case domain.NodeReview, domain.NodeSuggestion:
			opener, closer = "[/", "/]"
		case domain.NodeEnd:
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(id), opener, id, closer)
	}

	for _, e := range edges {
		declare(e.From)
		declare(e.To)
	}
	for _, e := range edges {
		arrow := fmt.Sprintf("-- \"%s\" -->", strings.ReplaceAll(string(e.Signal), "\"", "'"))
		// Human decisions are dotted.
		if e.From == domain.NodeReview || e.From == domain.NodeSuggestion {
			arrow = fmt.Sprintf("-. \"%s\" .->", e.Signal)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.From), arrow, sanitizeMermaidID(e.To))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text stays readable on light fills in both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id domain.NodeID) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_").Replace(string(id))
}
