package seeder

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/sprout/internal/schema"
)

// Resolver expands a single requested table into the complete, ordered,
// deduplicated set of plan entries needed to satisfy every transitive
// foreign key.
type Resolver struct {
	tables   map[string]*schema.TableSchema
	graph    *DependencyGraph
	baseline *Baseline
	ctx      *RunContext
}

func NewResolver(tables map[string]*schema.TableSchema, baseline *Baseline, ctx *RunContext) *Resolver {
	graph := NewDependencyGraph()
	for name, table := range tables {
		graph.AddTable(name)
		for _, fk := range table.ForeignKeys {
			graph.AddDependency(name, fk.RefTable)
		}
	}
	return &Resolver{tables: tables, graph: graph, baseline: baseline, ctx: ctx}
}

func (r *Resolver) Graph() *DependencyGraph {
	return r.graph
}

// Ancestors walks the dependency graph from table and returns every
// reachable ancestor. The walk uses an explicit stack with a visited
// set; a table reachable via two different FK paths appears once.
func (r *Resolver) Ancestors(table string) (map[string]bool, error) {
	if _, ok := r.tables[table]; !ok {
		return nil, &TableNotFoundError{Table: table}
	}

	visited := make(map[string]bool)
	stack := []string{table}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true

		currentSchema := r.tables[current]
		for _, fk := range currentSchema.ForeignKeys {
			if fk.RefTable == current {
				continue
			}
			if _, ok := r.tables[fk.RefTable]; !ok {
				return nil, &TableNotFoundError{Table: fk.RefTable, ReferencedBy: current}
			}
			if !visited[fk.RefTable] {
				stack = append(stack, fk.RefTable)
			}
		}
	}

	delete(visited, table)
	return visited, nil
}

// Resolve turns a request into ordered plan entries: ancestors in
// topological order, the target last. Manual entries for an ancestor
// always win over auto-deps configuration; the baseline reduces how
// many rows each entry actually generates.
func (r *Resolver) Resolve(req Request, manual []PlanEntry) ([]PlanEntry, error) {
	target, ok := r.tables[req.Table]
	if !ok {
		return nil, &TableNotFoundError{Table: req.Table}
	}

	var entries []PlanEntry

	if req.AutoDeps {
		ancestors, err := r.Ancestors(req.Table)
		if err != nil {
			return nil, err
		}
		ordered, err := r.graph.SortSubset(ancestors)
		if err != nil {
			return nil, err
		}

		manualByTable := make(map[string]PlanEntry, len(manual))
		for _, entry := range manual {
			manualByTable[entry.Table] = entry
		}

		for _, ancestor := range ordered {
			entry, err := r.resolveAncestor(ancestor, req, manualByTable)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}

	targetEntry := PlanEntry{
		Table:     req.Table,
		Count:     req.Count,
		Overrides: req.Overrides,
		Source:    SourceManual,
	}
	if err := r.checkSelfReference(target, req.Overrides); err != nil {
		return nil, err
	}
	if r.baseline != nil {
		reused, remaining := r.baseline.Satisfy(req.Table, req.Count)
		targetEntry.ReusedFromBaseline = reused
		targetEntry.Count = remaining
	}
	entries = append(entries, targetEntry)
	return entries, nil
}

func (r *Resolver) resolveAncestor(ancestor string, req Request, manualByTable map[string]PlanEntry) (PlanEntry, error) {
	ancestorSchema := r.tables[ancestor]
	depConfig, hasConfig := req.Deps[ancestor]

	// Manual plan entries always win; a conflicting auto-deps count is
	// ignored with a warning.
	if manualEntry, ok := manualByTable[ancestor]; ok {
		requested := manualEntry.Count + manualEntry.ReusedFromBaseline
		if hasConfig && depConfig.Count != requested {
			r.ctx.Warn(Warning{
				Kind:  WarnManualOverridesAutoDeps,
				Table: ancestor,
				Message: fmt.Sprintf(
					"already in plan with count=%d; ignoring auto-deps count=%d",
					requested, depConfig.Count),
			})
		}
		return manualEntry, nil
	}

	count := 1
	var overrides map[string]Override
	if hasConfig {
		if depConfig.Count > 0 {
			count = depConfig.Count
		}
		overrides = depConfig.Overrides
	}

	// Auto-deps never builds a self-referencing hierarchy; it creates
	// the minimal satisfying instance, one root row.
	if selfRefs := ancestorSchema.SelfReferencingFKs(); len(selfRefs) > 0 {
		if err := r.checkSelfReference(ancestorSchema, overrides); err != nil {
			return PlanEntry{}, err
		}
		count = 1
		r.ctx.Warn(Warning{
			Kind:    WarnSelfReferenceLimited,
			Table:   ancestor,
			Column:  selfRefs[0].Column,
			Message: "self-referencing ancestor limited to one root row with NULL parent",
		})
	}

	if count > req.Count && req.Count > 0 {
		r.ctx.Warn(Warning{
			Kind:  WarnAncestorCountExceedsTarget,
			Table: ancestor,
			Message: fmt.Sprintf(
				"ancestor count %d exceeds target %q count %d; most parent rows will have no children",
				count, req.Table, req.Count),
		})
	}

	entry := PlanEntry{
		Table:     ancestor,
		Count:     count,
		Overrides: overrides,
		Source:    SourceAutoDeps,
	}

	if r.baseline != nil {
		reused, remaining := r.baseline.Satisfy(ancestor, count)
		entry.ReusedFromBaseline = reused
		entry.Count = remaining
		if remaining == 0 {
			entry.Source = SourceBaseline
		}
	}
	return entry, nil
}

// checkSelfReference rejects non-nullable self-referencing FKs unless
// the column has an override supplying the value.
func (r *Resolver) checkSelfReference(table *schema.TableSchema, overrides map[string]Override) error {
	for _, fk := range table.SelfReferencingFKs() {
		col, ok := table.Column(fk.Column)
		if !ok {
			continue
		}
		if _, overridden := overrides[fk.Column]; overridden {
			continue
		}
		if !col.Nullable {
			return &SelfReferenceRequiresOverrideError{Table: table.Name, Column: fk.Column}
		}
	}
	return nil
}

// ValidatePlan checks a manual plan without auto-deps: every non-self
// dependency of every entry must be covered by another entry or by the
// baseline.
func (r *Resolver) ValidatePlan(entries []PlanEntry) error {
	inPlan := make(map[string]bool, len(entries))
	for _, entry := range entries {
		inPlan[entry.Table] = true
	}
	for _, entry := range entries {
		table, ok := r.tables[entry.Table]
		if !ok {
			return &TableNotFoundError{Table: entry.Table}
		}
		for _, dep := range table.Dependencies() {
			if inPlan[dep] {
				continue
			}
			if r.baseline != nil && r.baseline.Available(dep) > 0 {
				continue
			}
			return &MissingDependencyError{Table: entry.Table, Dependency: dep}
		}
	}
	return nil
}
