package seeder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Lumos-Labs-HQ/sprout/internal/schema"
)

// BaselineRecord is one pre-declared row inside the baseline range.
type BaselineRecord struct {
	Table    string
	Instance uint64
	Attrs    map[string]any
}

// FKValue returns the instance number the given FK column points at.
func (r BaselineRecord) FKValue(column string) (uint64, bool) {
	raw, ok := r.Attrs[column]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return uint64(v), true
	case int64:
		return uint64(v), true
	case uint64:
		return v, true
	case float64:
		return uint64(v), true
	default:
		return 0, false
	}
}

// Baseline is the shared "already exists" layer: a small, stable,
// pre-declared dataset living in the low instance range, reused across
// runs instead of regenerated.
type Baseline struct {
	ranges Ranges
	counts map[string]int
	data   map[string][]BaselineRecord
}

// NewBaseline builds a count-only baseline. Counts beyond the baseline
// range are rejected immediately.
func NewBaseline(ranges Ranges, counts map[string]int) (*Baseline, error) {
	var problems []string
	max := int(ranges.Baseline.End - ranges.Baseline.Start)
	for table, count := range counts {
		if count > max {
			problems = append(problems, fmt.Sprintf(
				"table %q declares %d baseline rows, exceeds baseline range size %d", table, count, max))
		}
		if count < 0 {
			problems = append(problems, fmt.Sprintf("table %q declares negative baseline count %d", table, count))
		}
	}
	if len(problems) > 0 {
		return nil, &BaselineValidationError{Problems: problems}
	}
	if counts == nil {
		counts = make(map[string]int)
	}
	return &Baseline{ranges: ranges, counts: counts, data: make(map[string][]BaselineRecord)}, nil
}

// LoadBaselineFile reads a YAML or JSON baseline declaration. Two
// shapes are accepted: count-only under the reserved `baseline` key,
// and explicit per-table row lists. Both normalize into the same
// Baseline.
func LoadBaselineFile(path string, ranges Ranges) (*Baseline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file %s: %w", path, err)
	}

	var parsed map[string]any
	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(raw, &parsed)
	} else {
		err = yaml.Unmarshal(raw, &parsed)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse baseline file %s: %w", path, err)
	}

	// Count-only shape: a single reserved `baseline` mapping.
	if countsRaw, ok := parsed["baseline"]; ok {
		counts, err := coerceCounts(countsRaw)
		if err != nil {
			return nil, fmt.Errorf("baseline file %s: %w", path, err)
		}
		return NewBaseline(ranges, counts)
	}

	// Explicit shape: table name → list of attribute maps. Instance
	// numbers are positional, starting at the bottom of the range.
	counts := make(map[string]int)
	data := make(map[string][]BaselineRecord)
	for table, rowsRaw := range parsed {
		if table == "ranges" || table == "config" {
			continue
		}
		rows, ok := rowsRaw.([]any)
		if !ok {
			continue
		}
		counts[table] = len(rows)
		for i, rowRaw := range rows {
			attrs, ok := coerceAttrs(rowRaw)
			if !ok {
				return nil, &BaselineValidationError{Problems: []string{
					fmt.Sprintf("table %q row %d is not a mapping", table, i+1)}}
			}
			data[table] = append(data[table], BaselineRecord{
				Table:    table,
				Instance: ranges.Baseline.Start + uint64(i),
				Attrs:    attrs,
			})
		}
	}

	b, err := NewBaseline(ranges, counts)
	if err != nil {
		return nil, err
	}
	b.data = data
	return b, nil
}

// LoadBaselineDir resolves the baseline declaration for an environment.
// The fallback chain is baseline.<env>.yaml, baseline.<env>.json,
// baseline.yaml, baseline.json; the first file that exists wins. Env
// comes from SPROUT_ENV, then ENV.
func LoadBaselineDir(dir string, ranges Ranges) (*Baseline, error) {
	env := os.Getenv("SPROUT_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}

	var candidates []string
	if env != "" {
		candidates = append(candidates,
			fmt.Sprintf("baseline.%s.yaml", env),
			fmt.Sprintf("baseline.%s.json", env))
	}
	candidates = append(candidates, "baseline.yaml", "baseline.json")

	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadBaselineFile(path, ranges)
		}
	}
	return nil, fmt.Errorf("no baseline declaration found in %s (tried %s): %w", dir, strings.Join(candidates, ", "), os.ErrNotExist)
}

// Validate checks every FK value in explicit baseline data: it must be
// an instance number inside the baseline range and reference a record
// that actually exists. Violations are fatal at load time, not at
// generation time.
func (b *Baseline) Validate(tables map[string]*schema.TableSchema) error {
	var problems []string

	for table, records := range b.data {
		tableSchema, ok := tables[table]
		if !ok {
			problems = append(problems, fmt.Sprintf("baseline declares unknown table %q", table))
			continue
		}
		for _, record := range records {
			for _, fk := range tableSchema.ForeignKeys {
				raw, present := record.Attrs[fk.Column]
				if !present || raw == nil {
					continue
				}
				fkInstance, ok := record.FKValue(fk.Column)
				if !ok {
					problems = append(problems, fmt.Sprintf(
						"table %q instance %d: FK %q value %v is not an instance number",
						table, record.Instance, fk.Column, raw))
					continue
				}
				if !b.ranges.Baseline.Contains(fkInstance) {
					problems = append(problems, fmt.Sprintf(
						"table %q instance %d: FK %q = %d points outside the baseline range %s",
						table, record.Instance, fk.Column, fkInstance, b.ranges.Baseline))
					continue
				}
				refCount := b.counts[fk.RefTable]
				maxInstance := b.ranges.Baseline.Start + uint64(refCount) - 1
				if refCount == 0 || fkInstance > maxInstance {
					problems = append(problems, fmt.Sprintf(
						"table %q instance %d: FK %q references %s instance %d, but only %d baseline rows exist",
						table, record.Instance, fk.Column, fk.RefTable, fkInstance, refCount))
				}
			}
		}
	}

	if len(problems) > 0 {
		return &BaselineValidationError{Problems: problems}
	}
	return nil
}

// Available reports how many baseline rows exist for a table.
func (b *Baseline) Available(table string) int {
	return b.counts[table]
}

// Counts returns a copy of the per-table baseline row counts.
func (b *Baseline) Counts() map[string]int {
	counts := make(map[string]int, len(b.counts))
	for table, n := range b.counts {
		counts[table] = n
	}
	return counts
}

// Satisfy partitions a requested count into rows reusable from the
// baseline and rows still to generate. Pure arithmetic, no side
// effects: reused = min(available, count) and reused+remaining = count.
func (b *Baseline) Satisfy(table string, count int) (reused, remaining int) {
	if count <= 0 {
		return 0, 0
	}
	available := b.counts[table]
	if available >= count {
		return count, 0
	}
	return available, count - available
}

// InstanceStart returns the first instance number fresh rows for a
// table may use: the start of the test range or just past the baseline
// rows, whichever is higher.
func (b *Baseline) InstanceStart(table string) uint64 {
	next := b.ranges.Baseline.Start + uint64(b.counts[table])
	if next < b.ranges.Test.Start {
		return b.ranges.Test.Start
	}
	return next
}

// IsReserved reports whether an instance number belongs to the baseline
// for the given table.
func (b *Baseline) IsReserved(table string, instance uint64) bool {
	if !b.ranges.Baseline.Contains(instance) {
		return false
	}
	return instance < b.ranges.Baseline.Start+uint64(b.counts[table])
}

// Records returns the explicit baseline rows for a table, or nil for
// count-only declarations.
func (b *Baseline) Records(table string) []BaselineRecord {
	return b.data[table]
}

func (b *Baseline) Ranges() Ranges {
	return b.ranges
}

func coerceCounts(raw any) (map[string]int, error) {
	m, ok := coerceAttrs(raw)
	if !ok {
		return nil, fmt.Errorf("baseline key must map table names to counts")
	}
	counts := make(map[string]int, len(m))
	for table, v := range m {
		switch n := v.(type) {
		case int:
			counts[table] = n
		case int64:
			counts[table] = int(n)
		case float64:
			counts[table] = int(n)
		default:
			return nil, fmt.Errorf("baseline count for table %q is not an integer: %v", table, v)
		}
	}
	return counts, nil
}

// coerceAttrs flattens the map shapes the YAML and JSON decoders emit.
func coerceAttrs(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = v
		}
		return out, true
	default:
		return nil, false
	}
}
