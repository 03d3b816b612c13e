package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"github.com/Lumos-Labs-HQ/sprout/internal/seeder"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// validIdentifier validates SQL identifiers to prevent injection via
// table or column names.
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// DirectBackend writes batches straight into a database, wrapped in a
// transaction so a failed run leaves nothing behind.
type DirectBackend struct {
	db       *sql.DB
	provider string
	batch    int
}

// OpenDirect connects using the driver matching the provider.
func OpenDirect(provider, url string, batchSize int) (*DirectBackend, error) {
	var driver string
	switch provider {
	case "postgresql", "postgres":
		driver = "pgx"
	case "mysql":
		driver = "mysql"
	case "sqlite", "sqlite3":
		driver = "sqlite3"
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", provider)
	}

	db, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if batchSize <= 0 {
		batchSize = 100
	}
	return &DirectBackend{db: db, provider: provider, batch: batchSize}, nil
}

func (b *DirectBackend) Close() error {
	return b.db.Close()
}

// Apply inserts every batch in order inside one transaction.
func (b *DirectBackend) Apply(ctx context.Context, seeds *seeder.Seeds) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, batch := range seeds.Batches {
		if err := b.insertBatch(ctx, tx, batch); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert into %s: %w", batch.Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (b *DirectBackend) insertBatch(ctx context.Context, tx *sql.Tx, batch seeder.Batch) error {
	if len(batch.Rows) == 0 {
		return nil
	}
	if !validIdentifier.MatchString(batch.Table) {
		return fmt.Errorf("invalid table name: %s", batch.Table)
	}

	columns := orderedColumns(batch.Rows[0])
	for _, col := range columns {
		if !validIdentifier.MatchString(col) {
			return fmt.Errorf("invalid column name: %s", col)
		}
	}

	builder := sq.StatementBuilder
	if b.provider == "postgresql" || b.provider == "postgres" {
		builder = builder.PlaceholderFormat(sq.Dollar)
	}

	for start := 0; start < len(batch.Rows); start += b.batch {
		end := start + b.batch
		if end > len(batch.Rows) {
			end = len(batch.Rows)
		}

		insert := builder.Insert(batch.Table).Columns(columns...)
		for _, row := range batch.Rows[start:end] {
			values := make([]any, len(columns))
			for i, col := range columns {
				values[i] = row.Values[col]
			}
			insert = insert.Values(values...)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

func orderedColumns(row seeder.GeneratedRow) []string {
	columns := make([]string, 0, len(row.Values))
	for col := range row.Values {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}
