package seeder

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Batch is one ordered unit of output: a table and its fully populated
// rows, emitted in topological order.
type Batch struct {
	Table string
	Rows  []GeneratedRow
}

// Seeds is the result of one run: ordered batches plus the warnings the
// run collected.
type Seeds struct {
	Batches  []Batch
	Warnings []Warning
}

// Table returns the rows generated for one table.
func (s *Seeds) Table(name string) ([]GeneratedRow, error) {
	for _, batch := range s.Batches {
		if batch.Table == name {
			return batch.Rows, nil
		}
	}
	return nil, &TableNotFoundError{Table: name}
}

// Tables lists table names in generation order.
func (s *Seeds) Tables() []string {
	names := make([]string, 0, len(s.Batches))
	for _, batch := range s.Batches {
		names = append(names, batch.Table)
	}
	return names
}

func (s *Seeds) export() map[string][]map[string]any {
	out := make(map[string][]map[string]any, len(s.Batches))
	for _, batch := range s.Batches {
		rows := make([]map[string]any, 0, len(batch.Rows))
		for _, row := range batch.Rows {
			rows = append(rows, row.Values)
		}
		out[batch.Table] = rows
	}
	return out
}

// ToJSON serializes all generated rows, keyed by table.
func (s *Seeds) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s.export(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode seeds as JSON: %w", err)
	}
	return data, nil
}

// ToYAML serializes all generated rows, keyed by table.
func (s *Seeds) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(s.export())
	if err != nil {
		return nil, fmt.Errorf("failed to encode seeds as YAML: %w", err)
	}
	return data, nil
}

// WriteFile dumps the seeds to path, picking the format from the
// extension (.yaml/.yml or .json).
func (s *Seeds) WriteFile(path string) error {
	var data []byte
	var err error
	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		data, err = s.ToYAML()
	default:
		data, err = s.ToJSON()
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
