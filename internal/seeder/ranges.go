package seeder

import "fmt"

// Instance numbers are partitioned into three contiguous, non-overlapping
// ranges. Baseline rows live exclusively in the low range; freshly
// generated rows live in the test and generated ranges. The partition is
// what keeps baseline data and generated data collision-free across
// independent runs.
const (
	DefaultBaselineMax    = 1_000
	DefaultTestMax        = 999_999
	DefaultGeneratedStart = 1_000_000
)

// InstanceRange is a named half-open interval [Start, End). An End of 0
// means unbounded above.
type InstanceRange struct {
	Name  string
	Start uint64
	End   uint64
}

func (r InstanceRange) Contains(instance uint64) bool {
	if instance < r.Start {
		return false
	}
	return r.End == 0 || instance < r.End
}

func (r InstanceRange) String() string {
	if r.End == 0 {
		return fmt.Sprintf("%s [%d, ∞)", r.Name, r.Start)
	}
	return fmt.Sprintf("%s [%d, %d)", r.Name, r.Start, r.End)
}

// Ranges holds the three partitions for one run. Exposed as explicit
// values so callers can ask "is this instance inside the baseline?".
type Ranges struct {
	Baseline  InstanceRange
	Test      InstanceRange
	Generated InstanceRange
}

// DefaultRanges returns baseline 1–1000, test 1001–999999 and generated
// 1000000+, matching the conventional partition.
func DefaultRanges() Ranges {
	return NewRanges(DefaultBaselineMax, DefaultTestMax)
}

// NewRanges builds contiguous partitions from the two upper bounds.
func NewRanges(baselineMax, testMax uint64) Ranges {
	return Ranges{
		Baseline:  InstanceRange{Name: "baseline", Start: 1, End: baselineMax + 1},
		Test:      InstanceRange{Name: "test", Start: baselineMax + 1, End: testMax + 1},
		Generated: InstanceRange{Name: "generated", Start: testMax + 1},
	}
}
