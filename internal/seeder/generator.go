package seeder

import (
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/sprout/internal/schema"
	"github.com/Lumos-Labs-HQ/sprout/internal/trinity"
)

// maxUniqueRetries bounds regeneration attempts per UNIQUE constraint
// per row. Exhausting it means the requested row count is too large for
// the value space reachable by random generation.
const maxUniqueRetries = 10

// GeneratedRow is one produced row. Values is an explicit column map;
// lookups go through Get so a missing column is a defined error, not a
// silent nil.
type GeneratedRow struct {
	Table    string
	Instance uint64
	Values   map[string]any
	ID       string
}

func (r GeneratedRow) Get(column string) (any, error) {
	v, ok := r.Values[column]
	if !ok {
		return nil, &ColumnNotFoundError{Table: r.Table, Column: column}
	}
	return v, nil
}

// RowGenerator produces rows that satisfy UNIQUE and CHECK constraints.
type RowGenerator struct {
	ctx    *RunContext
	values *ValueGenerator
}

func NewRowGenerator(ctx *RunContext) *RowGenerator {
	return &RowGenerator{ctx: ctx, values: NewValueGenerator(ctx.rng)}
}

// GenerateRows produces entry.Count rows for the table. pool holds rows
// of previously generated tables (and reused baseline rows) for FK
// resolution; startInstance positions the instance cursor.
func (g *RowGenerator) GenerateRows(
	table *schema.TableSchema,
	entry PlanEntry,
	pool map[string][]GeneratedRow,
	startInstance uint64,
) ([]GeneratedRow, error) {
	checkRules := g.classifyChecks(table)
	ids := trinity.NewGenerator(table.Name, trinity.DirGeneral)

	rows := make([]GeneratedRow, 0, entry.Count)
	for i := 0; i < entry.Count; i++ {
		instance := g.ctx.NextInstance(table.Name, startInstance)
		id, err := ids.Generate(instance)
		if err != nil {
			return nil, err
		}

		row := GeneratedRow{
			Table:    table.Name,
			Instance: instance,
			Values:   make(map[string]any, len(table.Columns)),
			ID:       id,
		}

		if err := g.populate(table, entry, &row, pool, rows, checkRules); err != nil {
			return nil, err
		}
		if err := g.enforceUnique(table, entry, &row, checkRules); err != nil {
			return nil, err
		}

		rows = append(rows, row)
	}
	return rows, nil
}

func (g *RowGenerator) populate(
	table *schema.TableSchema,
	entry PlanEntry,
	row *GeneratedRow,
	pool map[string][]GeneratedRow,
	siblings []GeneratedRow,
	checkRules map[string]CheckRule,
) error {
	for _, col := range table.Columns {
		if fk, ok := table.ForeignKeyFor(col.Name); ok {
			if _, overridden := entry.Overrides[col.Name]; !overridden {
				value, err := g.resolveFK(table, col, fk, pool, siblings)
				if err != nil {
					return err
				}
				row.Values[col.Name] = value
				continue
			}
		}

		if override, ok := entry.Overrides[col.Name]; ok {
			row.Values[col.Name] = override.Resolve(int(row.Instance))
			continue
		}

		if col.IsPrimaryKey {
			row.Values[col.Name] = g.primaryKeyValue(col, row)
			continue
		}

		// id and identifier are filled after the loop so identifier can
		// derive from a generated name column.
		if col.Name == "id" || col.Name == "identifier" {
			continue
		}

		if rule, ok := checkRules[col.Name]; ok && rule.Kind != CheckUnrecognized {
			row.Values[col.Name] = rule.GenerateValue(g.ctx.rng)
			continue
		}

		row.Values[col.Name] = g.values.ForColumn(col.Name, col.Type)
	}

	if _, ok := table.Column("id"); ok {
		if _, set := row.Values["id"]; !set {
			row.Values["id"] = row.ID
		}
	}
	if _, ok := table.Column("identifier"); ok {
		if _, set := row.Values["identifier"]; !set {
			row.Values["identifier"] = g.identifierValue(table, row)
		}
	}
	return nil
}

// resolveFK picks a parent row for a foreign key column. Self-references
// take NULL on the first row and a random earlier sibling afterwards.
func (g *RowGenerator) resolveFK(
	table *schema.TableSchema,
	col schema.ColumnSchema,
	fk schema.ForeignKeyRef,
	pool map[string][]GeneratedRow,
	siblings []GeneratedRow,
) (any, error) {
	if fk.IsSelfReferencing(table.Name) {
		if len(siblings) == 0 {
			if !col.Nullable {
				return nil, &SelfReferenceRequiresOverrideError{Table: table.Name, Column: col.Name}
			}
			return nil, nil
		}
		parent := siblings[g.ctx.rng.Intn(len(siblings))]
		return parent.Values[fk.RefColumn], nil
	}

	parents := pool[fk.RefTable]
	if len(parents) == 0 {
		return nil, &MissingDependencyError{Table: table.Name, Dependency: fk.RefTable}
	}
	parent := parents[g.ctx.rng.Intn(len(parents))]
	if value, ok := parent.Values[fk.RefColumn]; ok {
		return value, nil
	}
	// Parent row came from a count-only baseline; its instance number
	// stands in for the referenced key.
	return parent.Instance, nil
}

// enforceUnique checks every UNIQUE constraint against the used-tuple
// sets and regenerates only the offending, regenerable columns. Tuples
// are recorded only once the row clears all constraints at once, so a
// regeneration for one constraint cannot strand a stale tuple recorded
// for another that shares a column.
func (g *RowGenerator) enforceUnique(
	table *schema.TableSchema,
	entry PlanEntry,
	row *GeneratedRow,
	checkRules map[string]CheckRule,
) error {
	if len(table.UniqueConstraints) == 0 {
		return nil
	}

	attempts := 0
	for {
		conflict, collided := g.firstUsedTuple(table, row)
		if !collided {
			for _, constraint := range table.UniqueConstraints {
				g.ctx.MarkUsed(table.Name, constraint.Name, g.constraintTuple(row, constraint))
			}
			return nil
		}

		regenerable := g.regenerableColumns(table, entry, conflict)
		attempts++
		if attempts >= maxUniqueRetries || len(regenerable) == 0 {
			return &UniquenessExhaustedError{
				Table:      table.Name,
				Constraint: conflict.Name,
				Columns:    conflict.Columns,
				Attempts:   attempts,
			}
		}
		for _, col := range regenerable {
			if rule, ok := checkRules[col.Name]; ok && rule.Kind != CheckUnrecognized {
				row.Values[col.Name] = rule.GenerateValue(g.ctx.rng)
			} else {
				row.Values[col.Name] = g.values.ForColumn(col.Name, col.Type)
			}
		}
	}
}

func (g *RowGenerator) constraintTuple(row *GeneratedRow, constraint schema.UniqueConstraint) []any {
	tuple := make([]any, len(constraint.Columns))
	for i, colName := range constraint.Columns {
		tuple[i] = row.Values[colName]
	}
	return tuple
}

func (g *RowGenerator) firstUsedTuple(table *schema.TableSchema, row *GeneratedRow) (schema.UniqueConstraint, bool) {
	for _, constraint := range table.UniqueConstraints {
		if g.ctx.IsUsed(table.Name, constraint.Name, g.constraintTuple(row, constraint)) {
			return constraint, true
		}
	}
	return schema.UniqueConstraint{}, false
}

// regenerableColumns filters a constraint down to columns whose value
// this generator controls; FK and override values cannot be re-rolled.
func (g *RowGenerator) regenerableColumns(
	table *schema.TableSchema,
	entry PlanEntry,
	constraint schema.UniqueConstraint,
) []schema.ColumnSchema {
	var cols []schema.ColumnSchema
	for _, name := range constraint.Columns {
		col, ok := table.Column(name)
		if !ok {
			continue
		}
		if _, isFK := table.ForeignKeyFor(name); isFK {
			continue
		}
		if _, overridden := entry.Overrides[name]; overridden {
			continue
		}
		if col.IsPrimaryKey || name == "id" || name == "identifier" {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

// classifyChecks parses each CHECK clause once. Unrecognized shapes get
// a warning naming the table, column and raw clause; generation then
// proceeds on the unconstrained path.
func (g *RowGenerator) classifyChecks(table *schema.TableSchema) map[string]CheckRule {
	rules := make(map[string]CheckRule)
	for _, constraint := range table.CheckConstraints {
		rule := ParseCheck(constraint.Clause)
		if rule.Kind == CheckUnrecognized {
			g.ctx.Warn(Warning{
				Kind:    WarnUnrecognizedCheck,
				Table:   table.Name,
				Column:  rule.Column,
				Message: fmt.Sprintf("unrecognized CHECK shape %q; supply an override for affected columns", constraint.Clause),
			})
			continue
		}
		rules[rule.Column] = rule
	}
	return rules
}

func (g *RowGenerator) primaryKeyValue(col schema.ColumnSchema, row *GeneratedRow) any {
	typeUpper := strings.ToUpper(col.Type)
	if strings.Contains(typeUpper, "UUID") {
		return row.ID
	}
	return row.Instance
}

func (g *RowGenerator) identifierValue(table *schema.TableSchema, row *GeneratedRow) string {
	if name, ok := row.Values["name"].(string); ok && name != "" {
		slug := strings.ToLower(name)
		slug = strings.ReplaceAll(slug, " ", "-")
		slug = strings.ReplaceAll(slug, "_", "-")
		return fmt.Sprintf("%s-%d", slug, row.Instance)
	}
	return fmt.Sprintf("%s_%06d", table.Name, row.Instance)
}
