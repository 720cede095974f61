package graph

import (
	"fmt"
	"io"
	"strings"
)

// Visualizer provides methods to visualize the dependency graph
type Visualizer struct {
	graph *DependencyGraph
}

// NewVisualizer creates a new graph visualizer
func NewVisualizer(graph *DependencyGraph) *Visualizer {
	return &Visualizer{graph: graph}
}

// WriteDOT writes the graph in Graphviz DOT format
func (v *Visualizer) WriteDOT(w io.Writer) error {
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()

	var b strings.Builder
	b.WriteString("digraph bindings {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")

	names := v.graph.sortedNames()
	nodeIDs := make(map[string]string, len(names))
	for i, name := range names {
		node := v.graph.nodes[name]
		nodeIDs[name] = fmt.Sprintf("n%d", i)

		fmt.Fprintf(&b, "  %s [label=%q, fillcolor=%q, style=filled];\n",
			nodeIDs[name], formatNodeLabel(node), nodeColor(node))
	}

	for _, from := range names {
		for _, to := range v.graph.edges[from] {
			fmt.Fprintf(&b, "  %s -> %s;\n", nodeIDs[from], nodeIDs[to])
		}
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteText writes the bindings grouped by depth, dependencies first.
func (v *Visualizer) WriteText(w io.Writer) error {
	v.graph.mu.Lock()
	defer v.graph.mu.Unlock()

	var b strings.Builder
	b.WriteString("Binding Graph:\n")
	b.WriteString("==============\n\n")

	sorted, err := v.graph.topologicalSort()
	if err != nil {
		fmt.Fprintf(&b, "Warning: %v\n\n", err)
	}

	v.graph.calculateDepths()
	depthGroups := make(map[int][]*Node)
	maxDepth := 0
	for _, node := range sorted {
		depthGroups[node.Depth] = append(depthGroups[node.Depth], node)
		maxDepth = max(maxDepth, node.Depth)
	}

	for depth := 0; depth <= maxDepth; depth++ {
		nodes, exists := depthGroups[depth]
		if !exists {
			continue
		}
		fmt.Fprintf(&b, "Level %d:\n", depth)
		b.WriteString("--------\n")
		for _, node := range nodes {
			writeNodeDetails(&b, node, "  ")
		}
		b.WriteString("\n")
	}

	v.writeStatistics(&b)

	_, err = io.WriteString(w, b.String())
	return err
}

// WriteAdjacencyList writes the graph as an adjacency list
func (v *Visualizer) WriteAdjacencyList(w io.Writer) error {
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()

	var b strings.Builder
	for _, from := range v.graph.sortedNames() {
		fmt.Fprintf(&b, "%s -> [%s]\n", from, strings.Join(v.graph.edges[from], ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// formatNodeLabel creates a label for a node
func formatNodeLabel(node *Node) string {
	kind := node.Kind
	if kind == "" {
		kind = "unbound"
	}
	if node.Shared {
		kind += ", shared"
	}
	return fmt.Sprintf("%s\n(%s)", node.Name, kind)
}

// nodeColor determines the color for a node based on its properties
func nodeColor(node *Node) string {
	switch {
	case node.Kind == "":
		return "lightgray"
	case node.Shared:
		return "lightblue"
	default:
		return "lightyellow"
	}
}

// writeNodeDetails writes detailed information about a node
func writeNodeDetails(b *strings.Builder, node *Node, indent string) {
	fmt.Fprintf(b, "%s%s\n", indent, node.Name)

	if node.Kind != "" {
		fmt.Fprintf(b, "%s  Kind: %s\n", indent, node.Kind)
		fmt.Fprintf(b, "%s  Shared: %v\n", indent, node.Shared)
	}
	if len(node.Dependencies) > 0 {
		fmt.Fprintf(b, "%s  Dependencies: [%s]\n", indent, strings.Join(node.Dependencies, ", "))
	}
	if len(node.Dependents) > 0 {
		fmt.Fprintf(b, "%s  Dependents: [%s]\n", indent, strings.Join(node.Dependents, ", "))
	}
}

// writeStatistics writes graph statistics
func (v *Visualizer) writeStatistics(b *strings.Builder) {
	b.WriteString("Statistics:\n")
	b.WriteString("-----------\n")
	fmt.Fprintf(b, "  Total nodes: %d\n", len(v.graph.nodes))
	fmt.Fprintf(b, "  Total edges: %d\n", v.countEdges())
	fmt.Fprintf(b, "  Root nodes (no dependents): %d\n", len(v.graph.roots()))
	fmt.Fprintf(b, "  Leaf nodes (no dependencies): %d\n", len(v.graph.leaves()))

	unbound := 0
	for _, node := range v.graph.nodes {
		if node.Kind == "" {
			unbound++
		}
	}
	fmt.Fprintf(b, "  Unbound references: %d\n", unbound)
}

// countEdges counts the total number of edges in the graph
func (v *Visualizer) countEdges() int {
	count := 0
	for _, edges := range v.graph.edges {
		count += len(edges)
	}
	return count
}
