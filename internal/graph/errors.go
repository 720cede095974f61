package graph

import (
	"fmt"
	"strings"
)

// CircularDependencyError reports a cycle between bindings. Path lists each
// node of the cycle once, starting from Node.
type CircularDependencyError struct {
	Node string
	Path []string
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	path := e.Path
	if len(path) == 0 {
		path = []string{e.Node}
	}

	for i, node := range path {
		b.WriteString(fmt.Sprintf("    %s\n", node))
		if i < len(path)-1 {
			b.WriteString("      ↓\n")
		}
	}
	b.WriteString("      ↓\n")
	b.WriteString(fmt.Sprintf("    %s (cycle)\n", path[0]))

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Point one of the aliases at a concrete type\n")
	b.WriteString("  • Use a factory for lazy initialization\n")
	b.WriteString("  • Remove the contextual override that closes the loop\n")

	return b.String()
}
