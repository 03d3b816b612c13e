package database

import (
	"context"
	"testing"

	"github.com/Lumos-Labs-HQ/sprout/internal/schema"
	"github.com/Lumos-Labs-HQ/sprout/internal/seeder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagingBackendCollectsBatches(t *testing.T) {
	tables := map[string]*schema.TableSchema{
		"tb_organization": {
			Name: "tb_organization",
			Columns: []schema.ColumnSchema{
				{Name: "pk_organization", Type: "uuid", IsPrimaryKey: true},
				{Name: "name", Type: "text"},
			},
		},
		"tb_machine": {
			Name: "tb_machine",
			Columns: []schema.ColumnSchema{
				{Name: "pk_machine", Type: "uuid", IsPrimaryKey: true},
				{Name: "fk_organization", Type: "uuid"},
				{Name: "name", Type: "text"},
			},
			ForeignKeys: []schema.ForeignKeyRef{
				{Column: "fk_organization", RefTable: "tb_organization", RefColumn: "pk_organization"},
			},
		},
	}

	s := seeder.New(tables, seeder.WithContext(seeder.NewSeededRunContext(1)))
	seeds, err := s.Generate(seeder.Request{Table: "tb_machine", Count: 3, AutoDeps: true})
	require.NoError(t, err)

	backend := NewStagingBackend()
	require.NoError(t, backend.Apply(context.Background(), seeds))

	assert.Equal(t, []string{"tb_machine", "tb_organization"}, backend.Tables())
	assert.Len(t, backend.Rows("tb_machine"), 3)
	assert.Len(t, backend.Rows("tb_organization"), 1)

	// Applying again accumulates; the backend does not dedupe.
	require.NoError(t, backend.Apply(context.Background(), seeds))
	assert.Len(t, backend.Rows("tb_machine"), 6)
}

func TestOpenDirectRejectsUnknownProvider(t *testing.T) {
	_, err := OpenDirect("oracle", "oracle://x", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database provider")
}
