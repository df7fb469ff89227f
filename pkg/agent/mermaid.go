package agent

import (
	"fmt"
	"sort"
	"strings"
)

// GenerateMermaid produces a Mermaid flowchart of a strategy graph.
// Start and finish render as circles, ordinary nodes as rectangles;
// guarded edges render as dotted arrows.
func GenerateMermaid(s *Strategy) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	graph := s.Graph()
	names := make([]string, 0, len(graph.Nodes()))
	for name := range graph.Nodes() {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		node := graph.Nodes()[name]
		safeID := sanitizeMermaidID(name)

		opener, closer := "[", "]"
		if name == StartNodeName || name == FinishNodeName {
			opener, closer = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, name, closer))

		for _, edge := range node.Edges() {
			arrow := "-->"
			if edge.guard != nil {
				arrow = "-.->"
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(edge.to.name)))
		}
	}
	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}
