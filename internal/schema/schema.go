package schema

// TableSchema describes one table as reported by introspection or the
// DDL parser. Instances are read-only once built.
type TableSchema struct {
	Name              string
	Columns           []ColumnSchema
	ForeignKeys       []ForeignKeyRef
	UniqueConstraints []UniqueConstraint
	CheckConstraints  []CheckConstraint
}

type ColumnSchema struct {
	Name         string
	Type         string
	Nullable     bool
	IsPrimaryKey bool
	Default      string
	IsUnique     bool
}

type ForeignKeyRef struct {
	Column    string
	RefTable  string
	RefColumn string
}

// UniqueConstraint covers both single- and multi-column UNIQUE.
type UniqueConstraint struct {
	Name    string
	Columns []string
}

type CheckConstraint struct {
	Name   string
	Clause string
}

// IsSelfReferencing reports whether the FK points back at its own table.
func (fk ForeignKeyRef) IsSelfReferencing(table string) bool {
	return fk.RefTable == table
}

func (t *TableSchema) Column(name string) (ColumnSchema, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnSchema{}, false
}

func (t *TableSchema) PrimaryKey() string {
	for _, col := range t.Columns {
		if col.IsPrimaryKey {
			return col.Name
		}
	}
	return ""
}

// ForeignKeyFor returns the FK owned by the given column, if any.
func (t *TableSchema) ForeignKeyFor(column string) (ForeignKeyRef, bool) {
	for _, fk := range t.ForeignKeys {
		if fk.Column == column {
			return fk, true
		}
	}
	return ForeignKeyRef{}, false
}

// SelfReferencingFKs returns FKs whose referenced table is this table.
// These are excluded from dependency edges and handled row-by-row.
func (t *TableSchema) SelfReferencingFKs() []ForeignKeyRef {
	var refs []ForeignKeyRef
	for _, fk := range t.ForeignKeys {
		if fk.IsSelfReferencing(t.Name) {
			refs = append(refs, fk)
		}
	}
	return refs
}

// Dependencies returns the distinct referenced tables, self-references
// excluded.
func (t *TableSchema) Dependencies() []string {
	seen := make(map[string]bool)
	var deps []string
	for _, fk := range t.ForeignKeys {
		if fk.RefTable == t.Name || seen[fk.RefTable] {
			continue
		}
		seen[fk.RefTable] = true
		deps = append(deps, fk.RefTable)
	}
	return deps
}
