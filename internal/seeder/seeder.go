package seeder

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/sprout/internal/schema"
	"github.com/Lumos-Labs-HQ/sprout/internal/trinity"
)

// Seeder orchestrates one run: resolve a plan, generate rows in
// dependency order, and hand back ordered batches. Each Seeder owns its
// RunContext, so independent Seeders can run concurrently.
type Seeder struct {
	tables   map[string]*schema.TableSchema
	baseline *Baseline
	ranges   Ranges
	ctx      *RunContext
	resolver *Resolver
}

type Option func(*Seeder)

// WithBaseline attaches a loaded seed-common baseline to the run.
func WithBaseline(b *Baseline) Option {
	return func(s *Seeder) {
		s.baseline = b
		s.ranges = b.Ranges()
	}
}

// WithRanges overrides the default instance-range partitioning. A
// baseline attached afterwards brings its own ranges and wins.
func WithRanges(r Ranges) Option {
	return func(s *Seeder) { s.ranges = r }
}

// WithContext substitutes the run context, e.g. a seeded one for
// reproducible tests.
func WithContext(ctx *RunContext) Option {
	return func(s *Seeder) { s.ctx = ctx }
}

func New(tables map[string]*schema.TableSchema, opts ...Option) *Seeder {
	s := &Seeder{
		tables: tables,
		ranges: DefaultRanges(),
		ctx:    NewRunContext(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = NewResolver(tables, s.baseline, s.ctx)
	return s
}

func (s *Seeder) Ranges() Ranges {
	return s.ranges
}

// Warnings returns the anomalies collected so far on this run.
func (s *Seeder) Warnings() []Warning {
	return s.ctx.Warnings()
}

// Plan resolves one or more requests into a single ordered plan.
// Ancestors pulled in by auto-deps are deduplicated across requests;
// at most one manual entry may exist per table.
func (s *Seeder) Plan(reqs ...Request) ([]PlanEntry, error) {
	manualSeen := make(map[string]bool, len(reqs))
	var manual []PlanEntry
	for _, req := range reqs {
		if manualSeen[req.Table] {
			return nil, fmt.Errorf("duplicate manual entry for table %q in plan", req.Table)
		}
		manualSeen[req.Table] = true
		entry := PlanEntry{
			Table:     req.Table,
			Count:     req.Count,
			Overrides: req.Overrides,
			Source:    SourceManual,
		}
		// Reduce against the baseline here so the entry is identical
		// whether it reaches the plan as a target or as an ancestor of
		// an earlier request.
		if s.baseline != nil {
			entry.ReusedFromBaseline, entry.Count = s.baseline.Satisfy(req.Table, req.Count)
		}
		manual = append(manual, entry)
	}

	entryByTable := make(map[string]PlanEntry)
	autoDepsAnywhere := false
	for _, req := range reqs {
		if req.AutoDeps {
			autoDepsAnywhere = true
		}
		resolved, err := s.resolver.Resolve(req, manual)
		if err != nil {
			return nil, err
		}
		for _, entry := range resolved {
			existing, ok := entryByTable[entry.Table]
			if !ok || (existing.Source != SourceManual && entry.Source == SourceManual) {
				entryByTable[entry.Table] = entry
			}
		}
	}

	subset := make(map[string]bool, len(entryByTable))
	for table := range entryByTable {
		subset[table] = true
	}
	ordered, err := s.resolver.Graph().SortSubset(subset)
	if err != nil {
		return nil, err
	}

	plan := make([]PlanEntry, 0, len(ordered))
	for _, table := range ordered {
		plan = append(plan, entryByTable[table])
	}

	if !autoDepsAnywhere {
		if err := s.resolver.ValidatePlan(plan); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// Generate resolves the requests and produces all rows. Batches come
// back in exact topological order; warnings ride along instead of
// stopping the run.
func (s *Seeder) Generate(reqs ...Request) (*Seeds, error) {
	plan, err := s.Plan(reqs...)
	if err != nil {
		return nil, err
	}

	gen := NewRowGenerator(s.ctx)
	pool := make(map[string][]GeneratedRow)
	seeds := &Seeds{}

	for _, entry := range plan {
		table := s.tables[entry.Table]

		if entry.ReusedFromBaseline > 0 {
			pool[entry.Table] = append(pool[entry.Table], s.baselineRows(table, entry.ReusedFromBaseline)...)
		}

		if entry.Count > 0 {
			rows, err := gen.GenerateRows(table, entry, pool, s.instanceStart(entry.Table))
			if err != nil {
				return nil, err
			}
			pool[entry.Table] = append(pool[entry.Table], rows...)
			seeds.Batches = append(seeds.Batches, Batch{Table: entry.Table, Rows: rows})
		}
	}

	seeds.Warnings = s.ctx.Warnings()
	return seeds, nil
}

func (s *Seeder) instanceStart(table string) uint64 {
	if s.baseline != nil {
		return s.baseline.InstanceStart(table)
	}
	return s.ranges.Test.Start
}

// baselineRows materializes reused baseline rows for FK resolution.
// Explicit records carry their declared attributes; count-only
// declarations synthesize the key columns from the instance number.
func (s *Seeder) baselineRows(table *schema.TableSchema, reused int) []GeneratedRow {
	records := s.baseline.Records(table.Name)
	ids := trinity.NewGenerator(table.Name, trinity.DirGeneral)

	rows := make([]GeneratedRow, 0, reused)
	for i := 0; i < reused; i++ {
		instance := s.ranges.Baseline.Start + uint64(i)
		id, _ := ids.Generate(instance)

		row := GeneratedRow{
			Table:    table.Name,
			Instance: instance,
			Values:   make(map[string]any),
			ID:       id,
		}
		if i < len(records) {
			for k, v := range records[i].Attrs {
				row.Values[k] = v
			}
		}
		if pk := table.PrimaryKey(); pk != "" {
			if _, set := row.Values[pk]; !set {
				row.Values[pk] = instance
			}
		}
		if _, ok := table.Column("id"); ok {
			if _, set := row.Values["id"]; !set {
				row.Values["id"] = id
			}
		}
		rows = append(rows, row)
	}
	return rows
}
