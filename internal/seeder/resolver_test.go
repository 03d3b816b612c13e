package seeder

import (
	"testing"

	"github.com/Lumos-Labs-HQ/sprout/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAncestorsDeduplicatesSharedParent(t *testing.T) {
	r := NewResolver(allocationTables(), nil, NewRunContext())

	ancestors, err := r.Ancestors("tb_allocation")
	require.NoError(t, err)

	// Organization is reachable via machine and via location but
	// appears once.
	assert.Equal(t, map[string]bool{
		"tb_machine":      true,
		"tb_location":     true,
		"tb_organization": true,
	}, ancestors)
}

func TestAncestorsUnknownTable(t *testing.T) {
	r := NewResolver(allocationTables(), nil, NewRunContext())

	_, err := r.Ancestors("tb_missing")
	var notFound *TableNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "tb_missing", notFound.Table)
}

func TestAncestorsReportsDanglingFK(t *testing.T) {
	tables := allocationTables()
	tables["tb_allocation"].ForeignKeys = append(tables["tb_allocation"].ForeignKeys,
		schema.ForeignKeyRef{Column: "fk_contract", RefTable: "tb_contract", RefColumn: "pk_contract"})

	r := NewResolver(tables, nil, NewRunContext())

	_, err := r.Ancestors("tb_allocation")
	var notFound *TableNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "tb_contract", notFound.Table)
	assert.Equal(t, "tb_allocation", notFound.ReferencedBy)
}

func TestResolveOrdersAncestorsBeforeTarget(t *testing.T) {
	r := NewResolver(allocationTables(), nil, NewRunContext())

	entries, err := r.Resolve(Request{Table: "tb_allocation", Count: 10, AutoDeps: true}, nil)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, "tb_organization", entries[0].Table)
	assert.Equal(t, "tb_allocation", entries[3].Table)
	assert.Equal(t, SourceManual, entries[3].Source)
	assert.Equal(t, 10, entries[3].Count)

	for _, entry := range entries[:3] {
		assert.Equal(t, SourceAutoDeps, entry.Source)
		assert.Equal(t, 1, entry.Count, "ancestors default to one row")
	}
}

func TestResolveDepConfigCountWins(t *testing.T) {
	r := NewResolver(allocationTables(), nil, NewRunContext())

	entries, err := r.Resolve(Request{
		Table:    "tb_allocation",
		Count:    10,
		AutoDeps: true,
		Deps: map[string]DepConfig{
			"tb_machine": {Count: 3},
		},
	}, nil)
	require.NoError(t, err)

	byTable := entriesByTable(entries)
	assert.Equal(t, 3, byTable["tb_machine"].Count)
	assert.Equal(t, 1, byTable["tb_organization"].Count)
}

func TestResolveManualEntryWinsWithWarning(t *testing.T) {
	ctx := NewRunContext()
	r := NewResolver(allocationTables(), nil, ctx)

	manual := []PlanEntry{{Table: "tb_machine", Count: 5, Source: SourceManual}}
	entries, err := r.Resolve(Request{
		Table:    "tb_allocation",
		Count:    10,
		AutoDeps: true,
		Deps:     map[string]DepConfig{"tb_machine": {Count: 3}},
	}, manual)
	require.NoError(t, err)

	byTable := entriesByTable(entries)
	assert.Equal(t, 5, byTable["tb_machine"].Count)
	assert.Equal(t, SourceManual, byTable["tb_machine"].Source)

	warnings := ctx.Warnings()
	require.NotEmpty(t, warnings)
	assert.Equal(t, WarnManualOverridesAutoDeps, warnings[0].Kind)
	assert.Equal(t, "tb_machine", warnings[0].Table)
}

func TestResolveWarnsWhenAncestorExceedsTarget(t *testing.T) {
	ctx := NewRunContext()
	r := NewResolver(allocationTables(), nil, ctx)

	_, err := r.Resolve(Request{
		Table:    "tb_allocation",
		Count:    2,
		AutoDeps: true,
		Deps:     map[string]DepConfig{"tb_machine": {Count: 50}},
	}, nil)
	require.NoError(t, err)

	var found bool
	for _, w := range ctx.Warnings() {
		if w.Kind == WarnAncestorCountExceedsTarget && w.Table == "tb_machine" {
			found = true
		}
	}
	assert.True(t, found, "expected ancestor-exceeds-target warning")
}

func TestResolveBaselineReducesCounts(t *testing.T) {
	ranges := DefaultRanges()
	baseline, err := NewBaseline(ranges, map[string]int{
		"tb_organization": 5,
		"tb_machine":      2,
	})
	require.NoError(t, err)

	r := NewResolver(allocationTables(), baseline, NewRunContext())

	entries, err := r.Resolve(Request{
		Table:    "tb_allocation",
		Count:    10,
		AutoDeps: true,
		Deps:     map[string]DepConfig{"tb_machine": {Count: 5}},
	}, nil)
	require.NoError(t, err)

	byTable := entriesByTable(entries)

	// Organization fully covered: 1 needed, 5 available.
	assert.Equal(t, 0, byTable["tb_organization"].Count)
	assert.Equal(t, 1, byTable["tb_organization"].ReusedFromBaseline)
	assert.Equal(t, SourceBaseline, byTable["tb_organization"].Source)

	// Machine partially covered: 5 needed, 2 available.
	assert.Equal(t, 3, byTable["tb_machine"].Count)
	assert.Equal(t, 2, byTable["tb_machine"].ReusedFromBaseline)
	assert.Equal(t, SourceAutoDeps, byTable["tb_machine"].Source)
}

func TestResolveSelfReferencingAncestorLimitedToOneRoot(t *testing.T) {
	tables := allocationTables()
	tables["tb_category"] = categoryTable(true)
	tables["tb_product"] = productTable()

	ctx := NewRunContext()
	r := NewResolver(tables, nil, ctx)

	entries, err := r.Resolve(Request{
		Table:    "tb_product",
		Count:    5,
		AutoDeps: true,
		Deps:     map[string]DepConfig{"tb_category": {Count: 10}},
	}, nil)
	require.NoError(t, err)

	byTable := entriesByTable(entries)
	assert.Equal(t, 1, byTable["tb_category"].Count, "self-referencing ancestor collapses to one root")

	var found bool
	for _, w := range ctx.Warnings() {
		if w.Kind == WarnSelfReferenceLimited && w.Table == "tb_category" {
			found = true
		}
	}
	assert.True(t, found, "expected self-reference warning")
}

func TestResolveNonNullableSelfReferenceNeedsOverride(t *testing.T) {
	tables := map[string]*schema.TableSchema{
		"tb_category": categoryTable(false),
	}
	r := NewResolver(tables, nil, NewRunContext())

	_, err := r.Resolve(Request{Table: "tb_category", Count: 3, AutoDeps: true}, nil)
	var selfRef *SelfReferenceRequiresOverrideError
	require.ErrorAs(t, err, &selfRef)
	assert.Equal(t, "tb_category", selfRef.Table)
	assert.Equal(t, "fk_parent", selfRef.Column)
}

func TestResolveSelfReferenceOverrideSatisfies(t *testing.T) {
	tables := map[string]*schema.TableSchema{
		"tb_category": categoryTable(false),
	}
	r := NewResolver(tables, nil, NewRunContext())

	entries, err := r.Resolve(Request{
		Table:     "tb_category",
		Count:     3,
		AutoDeps:  true,
		Overrides: map[string]Override{"fk_parent": Const("00000000-0000-4000-8000-000000000001")},
	}, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].Count)
}

func TestValidatePlanMissingDependency(t *testing.T) {
	r := NewResolver(allocationTables(), nil, NewRunContext())

	err := r.ValidatePlan([]PlanEntry{
		{Table: "tb_allocation", Count: 5, Source: SourceManual},
	})
	var missing *MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "tb_allocation", missing.Table)
}

func TestValidatePlanBaselineCoversDependency(t *testing.T) {
	ranges := DefaultRanges()
	baseline, err := NewBaseline(ranges, map[string]int{
		"tb_machine":  1,
		"tb_location": 1,
	})
	require.NoError(t, err)

	r := NewResolver(allocationTables(), baseline, NewRunContext())

	err = r.ValidatePlan([]PlanEntry{
		{Table: "tb_allocation", Count: 5, Source: SourceManual},
	})
	assert.NoError(t, err)
}

func entriesByTable(entries []PlanEntry) map[string]PlanEntry {
	m := make(map[string]PlanEntry, len(entries))
	for _, entry := range entries {
		m[entry.Table] = entry
	}
	return m
}
