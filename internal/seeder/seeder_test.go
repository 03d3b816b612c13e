package seeder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEndToEnd(t *testing.T) {
	s := New(allocationTables(), WithContext(NewSeededRunContext(1)))

	seeds, err := s.Generate(Request{Table: "tb_allocation", Count: 10, AutoDeps: true})
	require.NoError(t, err)

	order := seeds.Tables()
	require.Len(t, order, 4)
	assert.Equal(t, "tb_organization", order[0])
	assert.Equal(t, "tb_allocation", order[3])

	allocations, err := seeds.Table("tb_allocation")
	require.NoError(t, err)
	require.Len(t, allocations, 10)

	machines, err := seeds.Table("tb_machine")
	require.NoError(t, err)
	require.Len(t, machines, 1)

	// Every FK in every allocation points at the generated parent.
	machinePK := machines[0].Values["pk_machine"]
	for _, row := range allocations {
		assert.Equal(t, machinePK, row.Values["fk_machine"])
	}
}

func TestGenerateMultipleRequestsSharedAncestors(t *testing.T) {
	s := New(allocationTables(), WithContext(NewSeededRunContext(1)))

	seeds, err := s.Generate(
		Request{Table: "tb_machine", Count: 3, AutoDeps: true},
		Request{Table: "tb_location", Count: 2, AutoDeps: true},
	)
	require.NoError(t, err)

	// Shared organization ancestor generated once.
	orgs, err := seeds.Table("tb_organization")
	require.NoError(t, err)
	assert.Len(t, orgs, 1)

	machines, err := seeds.Table("tb_machine")
	require.NoError(t, err)
	assert.Len(t, machines, 3)

	locations, err := seeds.Table("tb_location")
	require.NoError(t, err)
	assert.Len(t, locations, 2)
}

func TestGenerateDuplicateManualEntryRejected(t *testing.T) {
	s := New(allocationTables())

	_, err := s.Generate(
		Request{Table: "tb_machine", Count: 1},
		Request{Table: "tb_machine", Count: 2},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate manual entry")
}

func TestGenerateBaselineFullyCoversTarget(t *testing.T) {
	baseline, err := NewBaseline(DefaultRanges(), map[string]int{"tb_organization": 5})
	require.NoError(t, err)

	s := New(allocationTables(), WithBaseline(baseline), WithContext(NewSeededRunContext(1)))

	seeds, err := s.Generate(Request{Table: "tb_organization", Count: 3, AutoDeps: true})
	require.NoError(t, err)

	// Three of five baseline rows satisfy the request; nothing new.
	assert.Empty(t, seeds.Batches)
}

func TestGenerateBaselineCoversAncestor(t *testing.T) {
	baseline, err := NewBaseline(DefaultRanges(), map[string]int{"tb_organization": 5})
	require.NoError(t, err)

	s := New(allocationTables(), WithBaseline(baseline), WithContext(NewSeededRunContext(1)))

	seeds, err := s.Generate(Request{Table: "tb_machine", Count: 4, AutoDeps: true})
	require.NoError(t, err)

	// Organization comes from the baseline; only machines are new.
	assert.Equal(t, []string{"tb_machine"}, seeds.Tables())

	machines, err := seeds.Table("tb_machine")
	require.NoError(t, err)
	require.Len(t, machines, 4)

	// Count-only baseline rows stand in via their instance numbers.
	for _, m := range machines {
		fk := m.Values["fk_organization"]
		instance, ok := fk.(uint64)
		require.True(t, ok, "FK to a count-only baseline row is an instance number, got %T", fk)
		assert.GreaterOrEqual(t, instance, uint64(1))
		assert.LessOrEqual(t, instance, uint64(5))
	}

	// Fresh machine instances start in the test range.
	for _, m := range machines {
		assert.GreaterOrEqual(t, m.Instance, uint64(1001))
	}
}

func TestPlanBaselineReductionOrderIndependent(t *testing.T) {
	newSeeder := func() *Seeder {
		baseline, err := NewBaseline(DefaultRanges(), map[string]int{"tb_organization": 5})
		require.NoError(t, err)
		return New(allocationTables(), WithBaseline(baseline), WithContext(NewSeededRunContext(1)))
	}

	alloc := Request{Table: "tb_allocation", Count: 10, AutoDeps: true}
	org := Request{Table: "tb_organization", Count: 3}

	first, err := newSeeder().Plan(alloc, org)
	require.NoError(t, err)
	second, err := newSeeder().Plan(org, alloc)
	require.NoError(t, err)

	assert.Equal(t, first, second, "plan must not depend on request order")

	// The manual organization entry is baseline-reduced on both paths,
	// whether it lands in the plan as a target or as an ancestor.
	entry := entriesByTable(first)["tb_organization"]
	assert.Equal(t, SourceManual, entry.Source)
	assert.Equal(t, 0, entry.Count)
	assert.Equal(t, 3, entry.ReusedFromBaseline)
}

func TestGenerateInstancesContinueAcrossCalls(t *testing.T) {
	s := New(allocationTables(), WithContext(NewSeededRunContext(1)))

	first, err := s.Generate(Request{Table: "tb_organization", Count: 3})
	require.NoError(t, err)
	second, err := s.Generate(Request{Table: "tb_organization", Count: 2})
	require.NoError(t, err)

	firstRows, err := first.Table("tb_organization")
	require.NoError(t, err)
	secondRows, err := second.Table("tb_organization")
	require.NoError(t, err)

	assert.Equal(t, uint64(1001), firstRows[0].Instance)
	assert.Equal(t, uint64(1003), firstRows[2].Instance)
	assert.Equal(t, uint64(1004), secondRows[0].Instance, "cursor survives across runs on one Seeder")
}

func TestGenerateManualPlanWithoutDepsValidates(t *testing.T) {
	s := New(allocationTables())

	_, err := s.Generate(Request{Table: "tb_allocation", Count: 5})
	var missing *MissingDependencyError
	require.ErrorAs(t, err, &missing)
}

func TestGenerateManualPlanCoveringAllDeps(t *testing.T) {
	s := New(allocationTables(), WithContext(NewSeededRunContext(1)))

	seeds, err := s.Generate(
		Request{Table: "tb_organization", Count: 1},
		Request{Table: "tb_machine", Count: 2},
		Request{Table: "tb_location", Count: 2},
		Request{Table: "tb_allocation", Count: 5},
	)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"tb_organization", "tb_location", "tb_machine", "tb_allocation"},
		seeds.Tables())
}

func TestSeedsWriteFileJSON(t *testing.T) {
	s := New(allocationTables(), WithContext(NewSeededRunContext(1)))

	seeds, err := s.Generate(Request{Table: "tb_organization", Count: 2})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "seeds.json")
	require.NoError(t, seeds.WriteFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string][]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded["tb_organization"], 2)
	assert.NotEmpty(t, decoded["tb_organization"][0]["id"])
}

func TestGenerateWarningsSurface(t *testing.T) {
	s := New(allocationTables(), WithContext(NewSeededRunContext(1)))

	seeds, err := s.Generate(Request{
		Table:    "tb_allocation",
		Count:    2,
		AutoDeps: true,
		Deps:     map[string]DepConfig{"tb_machine": {Count: 10}},
	})
	require.NoError(t, err)

	var found bool
	for _, w := range seeds.Warnings {
		if w.Kind == WarnAncestorCountExceedsTarget {
			found = true
		}
	}
	assert.True(t, found, "warnings ride along with the result")
}
