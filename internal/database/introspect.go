package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lumos-Labs-HQ/sprout/internal/schema"
	"github.com/Lumos-Labs-HQ/sprout/internal/seeder"
)

// Introspector reads table metadata out of a live PostgreSQL schema.
// The result feeds the schema model once per run; nothing here is
// re-queried during generation.
type Introspector struct {
	pool   *pgxpool.Pool
	schema string
	cache  map[string]*schema.TableSchema
}

func NewIntrospector(pool *pgxpool.Pool, schemaName string) *Introspector {
	return &Introspector{
		pool:   pool,
		schema: schemaName,
		cache:  make(map[string]*schema.TableSchema),
	}
}

// Connect opens a pgx pool and verifies the schema exists.
func Connect(ctx context.Context, url, schemaName string) (*Introspector, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	var exists bool
	err = pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)`,
		schemaName).Scan(&exists)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to check schema %s: %w", schemaName, err)
	}
	if !exists {
		pool.Close()
		return nil, &seeder.SchemaNotFoundError{Schema: schemaName}
	}

	return NewIntrospector(pool, schemaName), nil
}

func (in *Introspector) Close() {
	in.pool.Close()
}

// Tables introspects every base table in the schema.
func (in *Introspector) Tables(ctx context.Context) (map[string]*schema.TableSchema, error) {
	rows, err := in.pool.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, in.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tables := make(map[string]*schema.TableSchema, len(names))
	for _, name := range names {
		table, err := in.Table(ctx, name)
		if err != nil {
			return nil, err
		}
		tables[name] = table
	}
	return tables, nil
}

// Table introspects one table, caching the result.
func (in *Introspector) Table(ctx context.Context, name string) (*schema.TableSchema, error) {
	if cached, ok := in.cache[name]; ok {
		return cached, nil
	}

	columns, err := in.columns(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, &seeder.TableNotFoundError{Table: name}
	}

	fks, err := in.foreignKeys(ctx, name)
	if err != nil {
		return nil, err
	}
	uniques, err := in.uniqueConstraints(ctx, name)
	if err != nil {
		return nil, err
	}
	checks, err := in.checkConstraints(ctx, name)
	if err != nil {
		return nil, err
	}

	// Single-column UNIQUEs double as column flags for the generator.
	for _, uq := range uniques {
		if len(uq.Columns) != 1 {
			continue
		}
		for i := range columns {
			if columns[i].Name == uq.Columns[0] {
				columns[i].IsUnique = true
			}
		}
	}

	table := &schema.TableSchema{
		Name:              name,
		Columns:           columns,
		ForeignKeys:       fks,
		UniqueConstraints: uniques,
		CheckConstraints:  checks,
	}
	in.cache[name] = table
	return table, nil
}

func (in *Introspector) columns(ctx context.Context, table string) ([]schema.ColumnSchema, error) {
	rows, err := in.pool.Query(ctx, `
		SELECT
			c.column_name,
			c.udt_name,
			c.is_nullable = 'YES',
			COALESCE(c.column_default, '')
		FROM information_schema.columns c
		WHERE c.table_schema = $1
		  AND c.table_name = $2
		ORDER BY c.ordinal_position
	`, in.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns for %s: %w", table, err)
	}
	defer rows.Close()

	var columns []schema.ColumnSchema
	for rows.Next() {
		var col schema.ColumnSchema
		if err := rows.Scan(&col.Name, &col.Type, &col.Nullable, &col.Default); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pkRows, err := in.pool.Query(ctx, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = $1
		  AND tc.table_name = $2
	`, in.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read primary key for %s: %w", table, err)
	}
	defer pkRows.Close()

	pk := make(map[string]bool)
	for pkRows.Next() {
		var name string
		if err := pkRows.Scan(&name); err != nil {
			return nil, err
		}
		pk[name] = true
	}
	if err := pkRows.Err(); err != nil {
		return nil, err
	}

	for i := range columns {
		if pk[columns[i].Name] {
			columns[i].IsPrimaryKey = true
			columns[i].Nullable = false
		}
	}
	return columns, nil
}

func (in *Introspector) foreignKeys(ctx context.Context, table string) ([]schema.ForeignKeyRef, error) {
	rows, err := in.pool.Query(ctx, `
		SELECT
			kcu.column_name,
			ccu.table_name,
			ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_name = tc.constraint_name
		 AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema = $1
		  AND tc.table_name = $2
	`, in.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys for %s: %w", table, err)
	}
	defer rows.Close()

	var fks []schema.ForeignKeyRef
	for rows.Next() {
		var fk schema.ForeignKeyRef
		if err := rows.Scan(&fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

func (in *Introspector) uniqueConstraints(ctx context.Context, table string) ([]schema.UniqueConstraint, error) {
	rows, err := in.pool.Query(ctx, `
		SELECT tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'UNIQUE'
		  AND tc.table_schema = $1
		  AND tc.table_name = $2
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`, in.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read unique constraints for %s: %w", table, err)
	}
	defer rows.Close()

	byName := make(map[string]*schema.UniqueConstraint)
	var order []string
	for rows.Next() {
		var constraint, column string
		if err := rows.Scan(&constraint, &column); err != nil {
			return nil, err
		}
		uq, ok := byName[constraint]
		if !ok {
			uq = &schema.UniqueConstraint{Name: constraint}
			byName[constraint] = uq
			order = append(order, constraint)
		}
		uq.Columns = append(uq.Columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	uniques := make([]schema.UniqueConstraint, 0, len(order))
	for _, name := range order {
		uniques = append(uniques, *byName[name])
	}
	return uniques, nil
}

func (in *Introspector) checkConstraints(ctx context.Context, table string) ([]schema.CheckConstraint, error) {
	rows, err := in.pool.Query(ctx, `
		SELECT con.conname, pg_get_constraintdef(con.oid)
		FROM pg_constraint con
		JOIN pg_class rel ON rel.oid = con.conrelid
		JOIN pg_namespace nsp ON nsp.oid = rel.relnamespace
		WHERE con.contype = 'c'
		  AND nsp.nspname = $1
		  AND rel.relname = $2
	`, in.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read check constraints for %s: %w", table, err)
	}
	defer rows.Close()

	var checks []schema.CheckConstraint
	for rows.Next() {
		var check schema.CheckConstraint
		if err := rows.Scan(&check.Name, &check.Clause); err != nil {
			return nil, err
		}
		check.Clause = stripCheckWrapper(check.Clause)
		checks = append(checks, check)
	}
	return checks, rows.Err()
}

// stripCheckWrapper removes the leading "CHECK (" and trailing ")" that
// pg_get_constraintdef adds around the clause.
func stripCheckWrapper(def string) string {
	const prefix = "CHECK ("
	if len(def) > len(prefix)+1 && def[:len(prefix)] == prefix && def[len(def)-1] == ')' {
		return def[len(prefix) : len(def)-1]
	}
	return def
}
