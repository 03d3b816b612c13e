package seeder

import "fmt"

// PlanSource records how a plan entry came to exist.
type PlanSource int

const (
	SourceManual PlanSource = iota
	SourceAutoDeps
	SourceBaseline
)

func (s PlanSource) String() string {
	switch s {
	case SourceManual:
		return "manual"
	case SourceAutoDeps:
		return "auto"
	case SourceBaseline:
		return "baseline"
	default:
		return "unknown"
	}
}

// Override is a tagged constant-or-generator column value. Exactly one
// of the two arms is set; Resolve picks explicitly rather than probing
// for callability.
type Override struct {
	value any
	fn    func(instance int) any
	isFn  bool
}

func Const(v any) Override {
	return Override{value: v}
}

func Generated(fn func(instance int) any) Override {
	return Override{fn: fn, isFn: true}
}

func (o Override) Resolve(instance int) any {
	if o.isFn {
		return o.fn(instance)
	}
	return o.value
}

// PlanEntry is one (table, count, overrides) unit of work in a resolved
// plan. ReusedFromBaseline rows are referenced, not regenerated; Count
// is the number of rows still to generate.
type PlanEntry struct {
	Table              string
	Count              int
	Overrides          map[string]Override
	Source             PlanSource
	ReusedFromBaseline int
}

// DepConfig configures one ancestor in an auto-deps request.
type DepConfig struct {
	Count     int
	Overrides map[string]Override
}

// Request asks for rows in one target table, with optional auto-deps.
type Request struct {
	Table     string
	Count     int
	Overrides map[string]Override

	// AutoDeps expands the target into its full ancestor chain. Deps
	// supplies per-ancestor counts and overrides; a true AutoDeps with
	// an empty Deps map generates one row per ancestor.
	AutoDeps bool
	Deps     map[string]DepConfig
}

// WarningKind distinguishes the non-fatal conditions a run can surface.
type WarningKind int

const (
	WarnAncestorCountExceedsTarget WarningKind = iota
	WarnSelfReferenceLimited
	WarnUnrecognizedCheck
	WarnManualOverridesAutoDeps
)

// Warning is a collected, non-fatal anomaly. Warnings never stop a run;
// they are returned alongside the result.
type Warning struct {
	Kind    WarningKind
	Table   string
	Column  string
	Message string
}

func (w Warning) String() string {
	if w.Column != "" {
		return fmt.Sprintf("%s.%s: %s", w.Table, w.Column, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Table, w.Message)
}
