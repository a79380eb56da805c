package sequencer

import "fmt"

// dependencyGraph is the consumer topology: which handler consumes only
// behind which. It backs construction-time validation and barrier wiring
type dependencyGraph struct {
	// nodes maps handler names to their graph node representations
	nodes map[string]*graphNode

	// order preserves registration order for deterministic wiring
	order []string
}

// graphNode is one registered handler in the topology
type graphNode struct {
	// name is the unique identifier for this node
	name string

	// dependencies are the upstream handler names this node waits on
	dependencies []string

	// dependents are the downstream handler names waiting on this node
	dependents []string
}

// newDependencyGraph creates an empty graph
func newDependencyGraph() *dependencyGraph {
	return &dependencyGraph{
		nodes: make(map[string]*graphNode),
	}
}

// addNode registers a handler name with its upstream dependencies
func (g *dependencyGraph) addNode(name string, dependencies []string) error {
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("handler %q already registered", name)
	}

	g.nodes[name] = &graphNode{
		name:         name,
		dependencies: dependencies,
	}
	g.order = append(g.order, name)

	return nil
}

// connect resolves dependency names into dependent edges once every node
// is present. Registration order does not matter: a handler may name a
// dependency that is registered after it
func (g *dependencyGraph) connect() error {
	for _, name := range g.order {
		node := g.nodes[name]
		for _, dep := range node.dependencies {
			if dep == name {
				return fmt.Errorf("handler %q depends on itself", name)
			}
			upstream, exists := g.nodes[dep]
			if !exists {
				return fmt.Errorf("handler %q depends on unknown handler %q", name, dep)
			}
			upstream.dependents = append(upstream.dependents, name)
		}
	}

	return nil
}

// dependencies returns the upstream handler names for name
func (g *dependencyGraph) dependencies(name string) []string {
	return g.nodes[name].dependencies
}

// hasDependents reports whether any handler waits on name's progress
func (g *dependencyGraph) hasDependents(name string) bool {
	return len(g.nodes[name].dependents) > 0
}

// leaves returns the handlers nobody depends on, in registration order.
// Their sequences gate the producer: everything upstream of a leaf is at
// least as far along as the leaf itself
func (g *dependencyGraph) leaves() []string {
	var leaves []string
	for _, name := range g.order {
		if !g.hasDependents(name) {
			leaves = append(leaves, name)
		}
	}
	return leaves
}
