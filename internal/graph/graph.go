package graph

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// Entry describes one binding added to the graph.
type Entry struct {
	// Name identifies the binding.
	Name string

	// Kind is a free-form label such as "alias" or "instance". Nodes that
	// are only referenced by other entries have an empty kind.
	Kind string

	// Shared marks bindings whose instance is cached.
	Shared bool

	// Dependencies are the names this binding resolves through.
	Dependencies []string
}

// DependencyGraph tracks which bindings resolve through which others.
// It provides cycle detection, topological sorting and dependency analysis.
type DependencyGraph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	edges map[string][]string // adjacency list representation

	// Cache for performance
	sortedNodes      []*Node
	sortedNodesDirty bool
}

// Node is a binding in the dependency graph.
type Node struct {
	Name   string
	Kind   string
	Shared bool

	// Graph metadata
	InDegree  int // number of dependents
	OutDegree int // number of dependencies
	Depth     int // longest chain of dependencies below this node

	Dependencies []string // bindings this node resolves through
	Dependents   []string // bindings that resolve through this node
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes:            make(map[string]*Node),
		edges:            make(map[string][]string),
		sortedNodesDirty: true,
	}
}

// AddEntry adds or replaces a binding. An entry that would close a cycle is
// rejected with a CircularDependencyError and the graph is left unchanged.
func (g *DependencyGraph) AddEntry(entry Entry) error {
	if entry.Name == "" {
		return errors.New("entry name cannot be empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	prevNode, existed := g.nodes[entry.Name]
	var prev Node
	if existed {
		prev = *prevNode
	}
	prevEdges, hadEdges := g.edges[entry.Name]
	created := make([]string, 0, len(entry.Dependencies))

	node, exists := g.nodes[entry.Name]
	if !exists {
		node = &Node{Name: entry.Name}
		g.nodes[entry.Name] = node
	}
	node.Kind = entry.Kind
	node.Shared = entry.Shared

	dependencies := make([]string, 0, len(entry.Dependencies))
	for _, dep := range entry.Dependencies {
		if slices.Contains(dependencies, dep) {
			continue
		}
		dependencies = append(dependencies, dep)

		// Ensure dependency node exists
		if _, exists := g.nodes[dep]; !exists {
			g.nodes[dep] = &Node{Name: dep}
			created = append(created, dep)
		}
	}
	g.edges[entry.Name] = dependencies

	g.updateDegrees()
	g.sortedNodesDirty = true

	if path := g.cycleFrom(entry.Name); path != nil {
		// Roll back
		for _, name := range created {
			delete(g.nodes, name)
		}
		if existed {
			*node = prev
		} else {
			delete(g.nodes, entry.Name)
		}
		if hadEdges {
			g.edges[entry.Name] = prevEdges
		} else {
			delete(g.edges, entry.Name)
		}
		g.updateDegrees()
		return CircularDependencyError{Node: entry.Name, Path: path}
	}

	return nil
}

// RemoveEntry removes a binding and every edge touching it.
func (g *DependencyGraph) RemoveEntry(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[name]; !exists {
		return
	}

	delete(g.nodes, name)
	delete(g.edges, name)

	for from, tos := range g.edges {
		g.edges[from] = slices.DeleteFunc(tos, func(to string) bool { return to == name })
	}

	g.updateDegrees()
	g.sortedNodesDirty = true
}

// updateDegrees recalculates degrees and neighbour lists for all nodes
func (g *DependencyGraph) updateDegrees() {
	for _, node := range g.nodes {
		node.InDegree = 0
		node.OutDegree = 0
		node.Dependencies = nil
		node.Dependents = nil
	}

	for _, from := range g.sortedNames() {
		tos := g.edges[from]
		fromNode, exists := g.nodes[from]
		if !exists {
			continue
		}
		fromNode.OutDegree = len(tos)
		fromNode.Dependencies = slices.Clone(tos)

		for _, to := range tos {
			if toNode, exists := g.nodes[to]; exists {
				toNode.InDegree++
				toNode.Dependents = append(toNode.Dependents, from)
			}
		}
	}
}

// sortedNames returns all node names in lexical order.
func (g *DependencyGraph) sortedNames() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TopologicalSort returns nodes in resolution order: every node comes after
// the nodes it depends on. Ties are broken by name.
func (g *DependencyGraph) TopologicalSort() ([]*Node, error) {
	g.mu.RLock()
	if !g.sortedNodesDirty && g.sortedNodes != nil {
		result := slices.Clone(g.sortedNodes)
		g.mu.RUnlock()
		return result, nil
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	result, err := g.topologicalSort()
	if err != nil {
		return nil, err
	}

	g.sortedNodes = result
	g.sortedNodesDirty = false
	return slices.Clone(result), nil
}

// topologicalSort runs Kahn's algorithm over the dependency counts.
func (g *DependencyGraph) topologicalSort() ([]*Node, error) {
	result := make([]*Node, 0, len(g.nodes))

	remaining := make(map[string]int, len(g.nodes))
	queue := make([]string, 0)
	for _, name := range g.sortedNames() {
		remaining[name] = len(g.edges[name])
		if remaining[name] == 0 {
			queue = append(queue, name)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.nodes[current]
		result = append(result, node)

		var ready []string
		for _, dependent := range node.Dependents {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
		sort.Strings(ready)
		queue = append(queue, ready...)
	}

	if len(result) != len(g.nodes) {
		return nil, fmt.Errorf("circular dependency detected: graph contains %d nodes but only %d could be sorted",
			len(g.nodes), len(result))
	}

	return result, nil
}

// DetectCycles returns the first cycle found, visiting nodes by name.
func (g *DependencyGraph) DetectCycles() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, name := range g.sortedNames() {
		if path := g.cycleFrom(name); path != nil {
			return CircularDependencyError{Node: path[0], Path: path}
		}
	}
	return nil
}

// cycleFrom searches depth-first from start and returns the nodes of the
// first cycle reachable from it, or nil.
func (g *DependencyGraph) cycleFrom(start string) []string {
	var (
		stack    []string
		onStack  = make(map[string]int)
		finished = make(map[string]bool)
	)

	var visit func(name string) []string
	visit = func(name string) []string {
		if i, ok := onStack[name]; ok {
			return slices.Clone(stack[i:])
		}
		if finished[name] {
			return nil
		}

		onStack[name] = len(stack)
		stack = append(stack, name)

		for _, dep := range g.edges[name] {
			if path := visit(dep); path != nil {
				return path
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, name)
		finished[name] = true
		return nil
	}

	return visit(start)
}

// GetDependencies returns the direct dependencies of a binding
func (g *DependencyGraph) GetDependencies(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if node, exists := g.nodes[name]; exists {
		return slices.Clone(node.Dependencies)
	}
	return nil
}

// GetDependents returns bindings that resolve through the given one
func (g *DependencyGraph) GetDependents(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if node, exists := g.nodes[name]; exists {
		return slices.Clone(node.Dependents)
	}
	return nil
}

// GetTransitiveDependencies returns all dependencies (direct and indirect)
// in depth-first order.
func (g *DependencyGraph) GetTransitiveDependencies(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[string]bool{name: true}
	result := make([]string, 0)

	var collect func(current string)
	collect = func(current string) {
		for _, dep := range g.edges[current] {
			if !visited[dep] {
				visited[dep] = true
				result = append(result, dep)
				collect(dep)
			}
		}
	}

	collect(name)
	return result
}

// GetNode returns the node for a given binding
func (g *DependencyGraph) GetNode(name string) *Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.nodes[name]
}

// HasNode checks if a node exists in the graph
func (g *DependencyGraph) HasNode(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.nodes[name]
	return exists
}

// Clear removes all nodes and edges from the graph
func (g *DependencyGraph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = make(map[string]*Node)
	g.edges = make(map[string][]string)
	g.sortedNodes = nil
	g.sortedNodesDirty = true
}

// Size returns the number of nodes in the graph
func (g *DependencyGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes)
}

// IsAcyclic returns true if the graph has no cycles
func (g *DependencyGraph) IsAcyclic() bool {
	return g.DetectCycles() == nil
}

// GetRoots returns the nodes nothing depends on, sorted by name.
func (g *DependencyGraph) GetRoots() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.roots()
}

func (g *DependencyGraph) roots() []*Node {
	roots := make([]*Node, 0)
	for _, name := range g.sortedNames() {
		if node := g.nodes[name]; node.InDegree == 0 {
			roots = append(roots, node)
		}
	}
	return roots
}

// GetLeaves returns the nodes without dependencies, sorted by name.
func (g *DependencyGraph) GetLeaves() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.leaves()
}

func (g *DependencyGraph) leaves() []*Node {
	leaves := make([]*Node, 0)
	for _, name := range g.sortedNames() {
		if node := g.nodes[name]; node.OutDegree == 0 {
			leaves = append(leaves, node)
		}
	}
	return leaves
}

// CalculateDepths assigns each node the length of its longest dependency
// chain. Leaves have depth 0.
func (g *DependencyGraph) CalculateDepths() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calculateDepths()
}

func (g *DependencyGraph) calculateDepths() {
	for _, node := range g.nodes {
		node.Depth = -1
	}

	// Start from leaves (nodes that don't depend on anything)
	queue := make([]*Node, 0)
	for _, node := range g.leaves() {
		node.Depth = 0
		queue = append(queue, node)
	}

	// BFS to assign depths
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, name := range current.Dependents {
			dep := g.nodes[name]
			if newDepth := current.Depth + 1; dep.Depth < newDepth {
				if newDepth > len(g.nodes) {
					continue
				}
				dep.Depth = newDepth
				queue = append(queue, dep)
			}
		}
	}
}

// String returns a string representation of the node
func (n *Node) String() string {
	return fmt.Sprintf("Node{%s, in:%d, out:%d, depth:%d}",
		n.Name, n.InDegree, n.OutDegree, n.Depth)
}
