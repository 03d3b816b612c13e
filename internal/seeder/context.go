package seeder

import (
	"fmt"
	"math/rand"
	"time"
)

// RunContext owns all mutable state for one orchestration run: instance
// cursors, per-constraint used-value sets, the RNG and the collected
// warnings. Nothing here is process-global, so independent runs with
// separate contexts never interfere. A context must not be shared
// between concurrent runs.
type RunContext struct {
	rng      *rand.Rand
	cursors  map[string]uint64
	used     map[string]map[string]bool
	warnings []Warning
}

func NewRunContext() *RunContext {
	return &RunContext{
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cursors: make(map[string]uint64),
		used:    make(map[string]map[string]bool),
	}
}

// NewSeededRunContext fixes the RNG seed for reproducible output.
func NewSeededRunContext(seed int64) *RunContext {
	ctx := NewRunContext()
	ctx.rng = rand.New(rand.NewSource(seed))
	return ctx
}

// NextInstance hands out the next instance number for a table, starting
// the cursor at start on first use.
func (c *RunContext) NextInstance(table string, start uint64) uint64 {
	cursor, ok := c.cursors[table]
	if !ok || cursor < start {
		cursor = start
	}
	c.cursors[table] = cursor + 1
	return cursor
}

// MarkUsed records a value tuple for a table+constraint and reports
// whether it was already present.
func (c *RunContext) MarkUsed(table, constraint string, tuple []any) bool {
	key := table + "\x00" + constraint
	set := c.used[key]
	if set == nil {
		set = make(map[string]bool)
		c.used[key] = set
	}
	encoded := encodeTuple(tuple)
	if set[encoded] {
		return true
	}
	set[encoded] = true
	return false
}

// IsUsed checks a tuple without recording it.
func (c *RunContext) IsUsed(table, constraint string, tuple []any) bool {
	return c.used[table+"\x00"+constraint][encodeTuple(tuple)]
}

func (c *RunContext) Warn(w Warning) {
	c.warnings = append(c.warnings, w)
}

// Warnings returns the anomalies collected so far, in emission order.
func (c *RunContext) Warnings() []Warning {
	return c.warnings
}

func encodeTuple(tuple []any) string {
	key := ""
	for _, v := range tuple {
		key += fmt.Sprintf("%v\x1f", v)
	}
	return key
}
