package seeder

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValueGenerator synthesizes plausible column values, keyed first by
// column name and then by logical type. It provides the unconstrained
// default path; constraint satisfaction happens a layer above.
type ValueGenerator struct {
	rng     *rand.Rand
	counter int
}

func NewValueGenerator(rng *rand.Rand) *ValueGenerator {
	return &ValueGenerator{rng: rng}
}

// ForColumn generates a value for the named column. Name-based hints
// win over the type; unknown types fall back to a short word.
func (g *ValueGenerator) ForColumn(colName, colType string) any {
	colLower := strings.ToLower(colName)

	switch {
	case strings.Contains(colLower, "email"):
		return g.email()
	case strings.Contains(colLower, "phone"):
		return g.phone()
	case strings.Contains(colLower, "url") || strings.Contains(colLower, "link"):
		return g.url()
	case strings.Contains(colLower, "address"):
		return g.address()
	case strings.Contains(colLower, "description") || strings.Contains(colLower, "content") || strings.Contains(colLower, "comment"):
		return g.sentence()
	case strings.Contains(colLower, "name") || strings.Contains(colLower, "title") || strings.Contains(colLower, "label"):
		return g.name()
	}

	return g.ForType(colType)
}

// ForType generates a value from the logical type alone.
func (g *ValueGenerator) ForType(colType string) any {
	typeUpper := strings.ToUpper(colType)
	if idx := strings.Index(typeUpper, "("); idx > 0 {
		typeUpper = typeUpper[:idx]
	}

	switch {
	case strings.Contains(typeUpper, "INT") || strings.Contains(typeUpper, "SERIAL"):
		return g.rng.Intn(1_000_000) + 1
	case strings.Contains(typeUpper, "BOOL"):
		return g.rng.Intn(2) == 1
	case strings.Contains(typeUpper, "TIMESTAMP") || strings.Contains(typeUpper, "DATETIME"):
		return g.timestamp()
	case strings.Contains(typeUpper, "DATE"):
		return g.timestamp().Format("2006-01-02")
	case strings.Contains(typeUpper, "DECIMAL") || strings.Contains(typeUpper, "NUMERIC") ||
		strings.Contains(typeUpper, "FLOAT") || strings.Contains(typeUpper, "DOUBLE") ||
		strings.Contains(typeUpper, "REAL"):
		return g.rng.Float64() * 10_000
	case strings.Contains(typeUpper, "UUID"):
		return uuid.New().String()
	case strings.Contains(typeUpper, "JSON"):
		return `{"generated": true}`
	default:
		return g.word()
	}
}

var (
	firstNames = []string{"Ada", "Linus", "Grace", "Alan", "Edsger", "Barbara", "Ken", "Dennis", "Margaret", "Rob"}
	lastNames  = []string{"Hopper", "Kernighan", "Ritchie", "Thompson", "Liskov", "Dijkstra", "Lovelace", "Pike", "Hamilton", "Gray"}
	words      = []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "sigma", "omega"}
	sentences  = []string{
		"Synthetic row produced for integration testing.",
		"Placeholder text covering the happy path.",
		"Generated content with no semantic meaning.",
		"Fixture data for dependency-ordered inserts.",
	}
	emailDomains = []string{"example.com", "example.org", "test.invalid"}
)

func (g *ValueGenerator) name() string {
	return firstNames[g.rng.Intn(len(firstNames))] + " " + lastNames[g.rng.Intn(len(lastNames))]
}

func (g *ValueGenerator) email() string {
	g.counter++
	return fmt.Sprintf("user%d_%d@%s", g.counter, g.rng.Intn(100_000), emailDomains[g.rng.Intn(len(emailDomains))])
}

func (g *ValueGenerator) phone() string {
	return fmt.Sprintf("+1-%03d-%03d-%04d", g.rng.Intn(1000), g.rng.Intn(1000), g.rng.Intn(10_000))
}

func (g *ValueGenerator) url() string {
	return fmt.Sprintf("https://example.com/resource/%d", g.rng.Intn(1000))
}

func (g *ValueGenerator) address() string {
	return fmt.Sprintf("%d Main Street, Springfield %05d", g.rng.Intn(9999)+1, g.rng.Intn(100_000))
}

func (g *ValueGenerator) sentence() string {
	return sentences[g.rng.Intn(len(sentences))]
}

func (g *ValueGenerator) word() string {
	return words[g.rng.Intn(len(words))]
}

func (g *ValueGenerator) timestamp() time.Time {
	return time.Now().AddDate(0, 0, -g.rng.Intn(365))
}
