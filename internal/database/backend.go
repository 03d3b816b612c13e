package database

import (
	"context"
	"sort"

	"github.com/Lumos-Labs-HQ/sprout/internal/seeder"
)

// Backend receives finished batches in the exact order the seeder
// produced them. Write failures are the backend's to report; the core
// never retries persistence.
type Backend interface {
	Apply(ctx context.Context, seeds *seeder.Seeds) error
}

// StagingBackend collects rows in memory. Used for dry runs and tests;
// no database required.
type StagingBackend struct {
	rows map[string][]seeder.GeneratedRow
}

func NewStagingBackend() *StagingBackend {
	return &StagingBackend{rows: make(map[string][]seeder.GeneratedRow)}
}

func (b *StagingBackend) Apply(_ context.Context, seeds *seeder.Seeds) error {
	for _, batch := range seeds.Batches {
		b.rows[batch.Table] = append(b.rows[batch.Table], batch.Rows...)
	}
	return nil
}

func (b *StagingBackend) Rows(table string) []seeder.GeneratedRow {
	return b.rows[table]
}

func (b *StagingBackend) Tables() []string {
	names := make([]string, 0, len(b.rows))
	for name := range b.rows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
