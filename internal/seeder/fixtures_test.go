package seeder

import "github.com/Lumos-Labs-HQ/sprout/internal/schema"

// allocationTables builds the four-table hierarchy used across the
// package tests: allocation references machine and location, both of
// which reference organization.
func allocationTables() map[string]*schema.TableSchema {
	org := &schema.TableSchema{
		Name: "tb_organization",
		Columns: []schema.ColumnSchema{
			{Name: "pk_organization", Type: "uuid", IsPrimaryKey: true},
			{Name: "id", Type: "uuid"},
			{Name: "identifier", Type: "text"},
			{Name: "name", Type: "text"},
		},
	}
	location := &schema.TableSchema{
		Name: "tb_location",
		Columns: []schema.ColumnSchema{
			{Name: "pk_location", Type: "uuid", IsPrimaryKey: true},
			{Name: "id", Type: "uuid"},
			{Name: "fk_organization", Type: "uuid"},
			{Name: "name", Type: "text"},
		},
		ForeignKeys: []schema.ForeignKeyRef{
			{Column: "fk_organization", RefTable: "tb_organization", RefColumn: "pk_organization"},
		},
	}
	machine := &schema.TableSchema{
		Name: "tb_machine",
		Columns: []schema.ColumnSchema{
			{Name: "pk_machine", Type: "uuid", IsPrimaryKey: true},
			{Name: "id", Type: "uuid"},
			{Name: "fk_organization", Type: "uuid"},
			{Name: "name", Type: "text"},
		},
		ForeignKeys: []schema.ForeignKeyRef{
			{Column: "fk_organization", RefTable: "tb_organization", RefColumn: "pk_organization"},
		},
	}
	allocation := &schema.TableSchema{
		Name: "tb_allocation",
		Columns: []schema.ColumnSchema{
			{Name: "pk_allocation", Type: "uuid", IsPrimaryKey: true},
			{Name: "id", Type: "uuid"},
			{Name: "fk_machine", Type: "uuid"},
			{Name: "fk_location", Type: "uuid"},
			{Name: "name", Type: "text"},
		},
		ForeignKeys: []schema.ForeignKeyRef{
			{Column: "fk_machine", RefTable: "tb_machine", RefColumn: "pk_machine"},
			{Column: "fk_location", RefTable: "tb_location", RefColumn: "pk_location"},
		},
	}
	return map[string]*schema.TableSchema{
		"tb_organization": org,
		"tb_location":     location,
		"tb_machine":      machine,
		"tb_allocation":   allocation,
	}
}

// productTable references the category hierarchy.
func productTable() *schema.TableSchema {
	return &schema.TableSchema{
		Name: "tb_product",
		Columns: []schema.ColumnSchema{
			{Name: "pk_product", Type: "uuid", IsPrimaryKey: true},
			{Name: "id", Type: "uuid"},
			{Name: "fk_category", Type: "uuid"},
			{Name: "name", Type: "text"},
		},
		ForeignKeys: []schema.ForeignKeyRef{
			{Column: "fk_category", RefTable: "tb_category", RefColumn: "pk_category"},
		},
	}
}

// categoryTable is a self-referencing hierarchy. Nullable controls
// whether the parent FK accepts NULL.
func categoryTable(nullableParent bool) *schema.TableSchema {
	return &schema.TableSchema{
		Name: "tb_category",
		Columns: []schema.ColumnSchema{
			{Name: "pk_category", Type: "uuid", IsPrimaryKey: true},
			{Name: "id", Type: "uuid"},
			{Name: "fk_parent", Type: "uuid", Nullable: nullableParent},
			{Name: "name", Type: "text"},
		},
		ForeignKeys: []schema.ForeignKeyRef{
			{Column: "fk_parent", RefTable: "tb_category", RefColumn: "pk_category"},
		},
	}
}
