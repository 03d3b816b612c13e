package trinity

// Generator stamps identifiers for one table with fixed provenance
// defaults, varying only the instance number.
type Generator struct {
	defaults Fields
}

func NewGenerator(table string, seedDir uint8) *Generator {
	return &Generator{defaults: Fields{
		TableCode: TableCode(table),
		SeedDir:   seedDir,
	}}
}

// WithContext sets the function, scenario and test-case codes.
func (g *Generator) WithContext(function uint16, scenario uint16, testCase uint8) *Generator {
	g.defaults.Function = function
	g.defaults.Scenario = scenario
	g.defaults.TestCase = testCase
	return g
}

func (g *Generator) Generate(instance uint64) (string, error) {
	f := g.defaults
	f.Instance = instance
	return Encode(f)
}

// GenerateBatch produces count identifiers starting at start.
func (g *Generator) GenerateBatch(start uint64, count int) ([]string, error) {
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id, err := g.Generate(start + uint64(i))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
