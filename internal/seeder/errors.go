package seeder

import (
	"fmt"
	"sort"
	"strings"
)

// SchemaNotFoundError reports a database schema that does not exist.
type SchemaNotFoundError struct {
	Schema string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("schema %q not found in database", e.Schema)
}

// TableNotFoundError reports a table referenced by a plan or FK that is
// absent from the schema model. ReferencedBy names the table whose FK
// led here; empty when the table was requested directly.
type TableNotFoundError struct {
	Table        string
	ReferencedBy string
}

func (e *TableNotFoundError) Error() string {
	if e.ReferencedBy != "" {
		return fmt.Sprintf("table %q (referenced by %q) not found in schema", e.Table, e.ReferencedBy)
	}
	return fmt.Sprintf("table %q not found in schema", e.Table)
}

// CircularDependencyError carries the full set of nodes left over after
// Kahn's algorithm stalls, so the whole cycle is visible to the caller.
type CircularDependencyError struct {
	Tables []string
}

func (e *CircularDependencyError) Error() string {
	sorted := append([]string(nil), e.Tables...)
	sort.Strings(sorted)
	return fmt.Sprintf("circular dependency detected involving tables: %s", strings.Join(sorted, ", "))
}

// MissingDependencyError reports a plan that references a table without
// including it and without auto-deps enabled to pull it in.
type MissingDependencyError struct {
	Table      string
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("table %q depends on %q, but %q is not in the seed plan", e.Table, e.Dependency, e.Dependency)
}

// SelfReferenceRequiresOverrideError reports a non-nullable
// self-referencing FK; auto-generation cannot satisfy it.
type SelfReferenceRequiresOverrideError struct {
	Table  string
	Column string
}

func (e *SelfReferenceRequiresOverrideError) Error() string {
	return fmt.Sprintf("table %q has non-nullable self-referencing column %q; supply an override", e.Table, e.Column)
}

// BaselineValidationError reports malformed or out-of-range baseline
// data, raised at load time.
type BaselineValidationError struct {
	Problems []string
}

func (e *BaselineValidationError) Error() string {
	return fmt.Sprintf("baseline validation failed:\n  %s", strings.Join(e.Problems, "\n  "))
}

// UniquenessExhaustedError reports that the retry bound was hit while
// generating values for a UNIQUE constraint.
type UniquenessExhaustedError struct {
	Table      string
	Constraint string
	Columns    []string
	Attempts   int
}

func (e *UniquenessExhaustedError) Error() string {
	return fmt.Sprintf("could not satisfy unique constraint %q on %s(%s) after %d attempts; reduce count or supply an override",
		e.Constraint, e.Table, strings.Join(e.Columns, ", "), e.Attempts)
}

// ColumnNotFoundError reports a lookup of a column that the generated
// row does not carry.
type ColumnNotFoundError struct {
	Table  string
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("row for table %q has no column %q", e.Table, e.Column)
}
