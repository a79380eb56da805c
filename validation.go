package sequencer

import "fmt"

// ValidationError represents a construction-time validation error with context
type ValidationError struct {
	Message string
	Details string
}

func (e ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// validateTopology performs comprehensive validation on an assembled
// dependency graph before any pipeline machinery is constructed
func validateTopology(graph *dependencyGraph, bufferSize int, pins map[string]int) error {
	// Check that at least one handler is registered
	if len(graph.order) == 0 {
		return ValidationError{
			Message: "pipeline validation failed",
			Details: "no handlers registered",
		}
	}

	// Check that the ring capacity allows mask-based indexing
	if bufferSize <= 0 || bufferSize&(bufferSize-1) != 0 {
		return ValidationError{
			Message: "pipeline validation failed",
			Details: fmt.Sprintf("buffer size must be a positive power of two, got %d", bufferSize),
		}
	}

	// Check that pins reference registered handlers and real cores
	for name, cpu := range pins {
		if _, exists := graph.nodes[name]; !exists {
			return ValidationError{
				Message: "pipeline validation failed",
				Details: fmt.Sprintf("pin targets unknown handler %q", name),
			}
		}
		if cpu < 0 {
			return ValidationError{
				Message: "pipeline validation failed",
				Details: fmt.Sprintf("pin for handler %q has negative cpu %d", name, cpu),
			}
		}
	}

	// Check for cycles
	if err := detectCycles(graph); err != nil {
		return err
	}

	return nil
}

// detectCycles uses depth-first search to detect cycles in the
// dependency graph
func detectCycles(graph *dependencyGraph) error {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	for _, name := range graph.order {
		if !visited[name] {
			if hasCycle(graph, name, visited, recStack) {
				return ValidationError{
					Message: "pipeline validation failed",
					Details: "cycle detected in handler dependencies",
				}
			}
		}
	}

	return nil
}

// hasCycle performs DFS to detect cycles
func hasCycle(graph *dependencyGraph, name string, visited, recStack map[string]bool) bool {
	visited[name] = true
	recStack[name] = true

	// Visit all downstream nodes
	for _, dependent := range graph.nodes[name].dependents {
		if !visited[dependent] {
			if hasCycle(graph, dependent, visited, recStack) {
				return true
			}
		} else if recStack[dependent] {
			// Back edge found - cycle detected
			return true
		}
	}

	recStack[name] = false
	return false
}
