package seeder

import "sort"

// DependencyGraph records which tables must be inserted before which.
// Self-dependencies are tracked separately and never participate in
// cycle analysis.
type DependencyGraph struct {
	tables   map[string]bool
	deps     map[string]map[string]bool
	selfDeps map[string]bool
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		tables:   make(map[string]bool),
		deps:     make(map[string]map[string]bool),
		selfDeps: make(map[string]bool),
	}
}

// AddTable registers a table; adding the same table twice is a no-op.
func (g *DependencyGraph) AddTable(name string) {
	g.tables[name] = true
	if g.deps[name] == nil {
		g.deps[name] = make(map[string]bool)
	}
}

// AddDependency records that table must be inserted after dependsOn.
func (g *DependencyGraph) AddDependency(table, dependsOn string) {
	if table == dependsOn {
		g.selfDeps[table] = true
		g.AddTable(table)
		return
	}
	g.AddTable(table)
	g.AddTable(dependsOn)
	g.deps[table][dependsOn] = true
}

// Dependencies returns the direct non-self dependencies of table,
// sorted for reproducibility.
func (g *DependencyGraph) Dependencies(table string) []string {
	var out []string
	for dep := range g.deps[table] {
		out = append(out, dep)
	}
	sort.Strings(out)
	return out
}

// HasSelfDependency reports whether table carries a self-referencing edge.
func (g *DependencyGraph) HasSelfDependency(table string) bool {
	return g.selfDeps[table]
}

// TopologicalSort orders tables so every dependency precedes its
// dependents, using Kahn's algorithm. Ties between zero-in-degree nodes
// break lexically by table name, so output is identical across runs for
// the same graph. A stall means the remaining nodes form a cycle.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.tables))
	dependents := make(map[string][]string)
	for table := range g.tables {
		inDegree[table] = len(g.deps[table])
		for dep := range g.deps[table] {
			dependents[dep] = append(dependents[dep], table)
		}
	}

	var ready []string
	for table, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, table)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.tables))
	for len(ready) > 0 {
		table := ready[0]
		ready = ready[1:]
		order = append(order, table)

		var unblocked []string
		for _, dependent := range dependents[table] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				unblocked = append(unblocked, dependent)
			}
		}
		if len(unblocked) > 0 {
			ready = append(ready, unblocked...)
			sort.Strings(ready)
		}
	}

	if len(order) != len(g.tables) {
		var remaining []string
		done := make(map[string]bool, len(order))
		for _, table := range order {
			done[table] = true
		}
		for table := range g.tables {
			if !done[table] {
				remaining = append(remaining, table)
			}
		}
		sort.Strings(remaining)
		return nil, &CircularDependencyError{Tables: remaining}
	}

	return order, nil
}

// SortSubset topologically orders only the given tables.
func (g *DependencyGraph) SortSubset(subset map[string]bool) ([]string, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, table := range order {
		if subset[table] {
			out = append(out, table)
		}
	}
	return out, nil
}
