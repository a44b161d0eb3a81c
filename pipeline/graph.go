package pipeline

import "fmt"

// Graph declares stages and edges (dependency relationships).
type Graph struct {
	Stages map[string]Stage
	Edges  []Edge
}

// Edge represents a dependency: To depends on From.
type Edge struct {
	From string
	To   string
}

// BuildLevels uses Kahn's algorithm to group stages by dependency level.
// Stages within the same level can execute in parallel.
// Returns an error if a cycle is detected.
func BuildLevels(g *Graph) ([][]string, error) {
	inDegree := make(map[string]int)
	dependents := make(map[string][]string) // from -> [to...]

	for name := range g.Stages {
		inDegree[name] = 0
	}

	for _, e := range g.Edges {
		if _, ok := g.Stages[e.From]; !ok {
			return nil, fmt.Errorf("pipeline: edge references unknown stage %q", e.From)
		}
		if _, ok := g.Stages[e.To]; !ok {
			return nil, fmt.Errorf("pipeline: edge references unknown stage %q", e.To)
		}
		inDegree[e.To]++
		dependents[e.From] = append(dependents[e.From], e.To)
	}

	// Collect stages with no incoming edges (level 0)
	var queue []string
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}

	var levels [][]string
	visited := 0

	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)

		var next []string
		for _, name := range queue {
			for _, dep := range dependents[name] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		queue = next
	}

	if visited != len(g.Stages) {
		return nil, fmt.Errorf("pipeline: cycle detected, processed %d of %d stages", visited, len(g.Stages))
	}

	return levels, nil
}

// Has reports whether the graph contains a stage.
func (g *Graph) Has(name string) bool {
	_, ok := g.Stages[name]
	return ok
}
