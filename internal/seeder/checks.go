package seeder

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

// CheckKind is the closed set of CHECK-clause shapes the generator can
// reason about. Anything else is CheckUnrecognized and handled with a
// warning plus the unconstrained default value path.
type CheckKind int

const (
	CheckUnrecognized CheckKind = iota
	CheckEnum
	CheckComparison
	CheckBetween
	CheckConjunction
)

// CheckRule is the parsed shape of one CHECK clause. Enum rules carry
// Values; the numeric kinds carry normalized bounds.
type CheckRule struct {
	Kind   CheckKind
	Column string
	Raw    string

	Values []string

	Min          *float64
	Max          *float64
	MinInclusive bool
	MaxInclusive bool
}

var (
	anyArrayRegex = regexp.MustCompile(`(?i)\(?(\w+)(?:::\w+)?\s*=\s*ANY\s*\(\s*ARRAY\[(.+?)\]\s*\)`)
	inListRegex   = regexp.MustCompile(`(?i)(\w+)\s+IN\s+\((.+?)\)`)
	betweenRegex  = regexp.MustCompile(`(?i)(\w+)\s+BETWEEN\s+(-?\d+\.?\d*)\s+AND\s+(-?\d+\.?\d*)`)
	compareRegex  = regexp.MustCompile(`(\w+)(?:::\w+)?\s*(>=|<=|>|<)\s*(-?\d+\.?\d*)`)
	quotedRegex   = regexp.MustCompile(`'([^']*)'`)
	andSplitRegex = regexp.MustCompile(`(?i)\s+AND\s+`)
)

// ParseCheck classifies a raw CHECK clause. The boundary is deliberately
// narrow: enumerated membership (including the Postgres ANY(ARRAY[...])
// rendering), single comparisons, BETWEEN, and same-column conjunctions
// of comparisons. Everything else comes back as CheckUnrecognized with
// the raw clause preserved for the warning.
func ParseCheck(clause string) CheckRule {
	normalized := strings.Join(strings.Fields(clause), " ")

	if rule, ok := parseEnum(normalized); ok {
		return rule
	}
	if rule, ok := parseBetween(normalized); ok {
		return rule
	}
	if rule, ok := parseConjunction(normalized); ok {
		return rule
	}
	// A clause with AND that did not parse as a same-column conjunction
	// must not degrade into one of its halves.
	if len(andSplitRegex.Split(normalized, -1)) == 1 {
		if rule, ok := parseComparison(normalized); ok {
			rule.Kind = CheckComparison
			return rule
		}
	}
	return CheckRule{Kind: CheckUnrecognized, Raw: clause}
}

func parseEnum(clause string) (CheckRule, bool) {
	m := anyArrayRegex.FindStringSubmatch(clause)
	if m == nil {
		m = inListRegex.FindStringSubmatch(clause)
	}
	if m == nil {
		return CheckRule{}, false
	}
	values := quotedRegex.FindAllStringSubmatch(m[2], -1)
	if len(values) == 0 {
		return CheckRule{}, false
	}
	rule := CheckRule{Kind: CheckEnum, Column: m[1], Raw: clause}
	for _, v := range values {
		rule.Values = append(rule.Values, v[1])
	}
	return rule, true
}

func parseBetween(clause string) (CheckRule, bool) {
	m := betweenRegex.FindStringSubmatch(clause)
	if m == nil {
		return CheckRule{}, false
	}
	min, _ := strconv.ParseFloat(m[2], 64)
	max, _ := strconv.ParseFloat(m[3], 64)
	return CheckRule{
		Kind:         CheckBetween,
		Column:       m[1],
		Raw:          clause,
		Min:          &min,
		Max:          &max,
		MinInclusive: true,
		MaxInclusive: true,
	}, true
}

func parseComparison(clause string) (CheckRule, bool) {
	m := compareRegex.FindStringSubmatch(clause)
	if m == nil {
		return CheckRule{}, false
	}
	value, _ := strconv.ParseFloat(m[3], 64)
	rule := CheckRule{Column: m[1], Raw: clause}
	switch m[2] {
	case ">":
		rule.Min = &value
	case ">=":
		rule.Min = &value
		rule.MinInclusive = true
	case "<":
		rule.Max = &value
	case "<=":
		rule.Max = &value
		rule.MaxInclusive = true
	}
	return rule, true
}

// parseConjunction handles `col > a AND col < b` style clauses. Both
// sides must be comparisons on the same column; the bounds intersect.
func parseConjunction(clause string) (CheckRule, bool) {
	parts := andSplitRegex.Split(clause, -1)
	if len(parts) != 2 {
		return CheckRule{}, false
	}

	left, okL := parseComparison(strings.Trim(strings.TrimSpace(parts[0]), "()"))
	right, okR := parseComparison(strings.Trim(strings.TrimSpace(parts[1]), "()"))
	if !okL || !okR || left.Column != right.Column {
		return CheckRule{}, false
	}

	// The larger Min and the smaller Max win; a tie keeps the strict side.
	rule := CheckRule{Kind: CheckConjunction, Column: left.Column, Raw: clause}
	for _, side := range []CheckRule{left, right} {
		if side.Min != nil {
			switch {
			case rule.Min == nil || *side.Min > *rule.Min:
				rule.Min = side.Min
				rule.MinInclusive = side.MinInclusive
			case *side.Min == *rule.Min && !side.MinInclusive:
				rule.MinInclusive = false
			}
		}
		if side.Max != nil {
			switch {
			case rule.Max == nil || *side.Max < *rule.Max:
				rule.Max = side.Max
				rule.MaxInclusive = side.MaxInclusive
			case *side.Max == *rule.Max && !side.MaxInclusive:
				rule.MaxInclusive = false
			}
		}
	}
	if rule.Min == nil && rule.Max == nil {
		return CheckRule{}, false
	}
	return rule, true
}

// GenerateValue synthesizes a value satisfying the rule. Callers must
// not invoke it for CheckUnrecognized.
func (r CheckRule) GenerateValue(rng *rand.Rand) any {
	switch r.Kind {
	case CheckEnum:
		return r.Values[rng.Intn(len(r.Values))]
	case CheckComparison, CheckBetween, CheckConjunction:
		return r.generateNumeric(rng)
	default:
		return nil
	}
}

func (r CheckRule) generateNumeric(rng *rand.Rand) float64 {
	const epsilon = 0.01

	switch {
	case r.Min != nil && r.Max != nil:
		lo, hi := *r.Min, *r.Max
		if !r.MinInclusive {
			lo += epsilon
		}
		if !r.MaxInclusive {
			hi -= epsilon
		}
		if hi <= lo {
			return lo
		}
		return lo + rng.Float64()*(hi-lo)
	case r.Min != nil:
		lo := *r.Min
		if !r.MinInclusive {
			lo++
		}
		return lo + rng.Float64()*1000
	case r.Max != nil:
		hi := *r.Max
		if !r.MaxInclusive {
			hi--
		}
		if hi > 0 {
			return rng.Float64() * hi
		}
		return hi - rng.Float64()*100
	default:
		return rng.Float64() * 100
	}
}
