package seeder

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCheckEnumInList(t *testing.T) {
	rule := ParseCheck("status IN ('draft', 'active', 'archived')")

	assert.Equal(t, CheckEnum, rule.Kind)
	assert.Equal(t, "status", rule.Column)
	assert.Equal(t, []string{"draft", "active", "archived"}, rule.Values)
}

func TestParseCheckEnumAnyArray(t *testing.T) {
	rule := ParseCheck("status = ANY (ARRAY['draft'::text, 'active'::text])")

	assert.Equal(t, CheckEnum, rule.Kind)
	assert.Equal(t, "status", rule.Column)
	assert.Equal(t, []string{"draft", "active"}, rule.Values)
}

func TestParseCheckComparison(t *testing.T) {
	rule := ParseCheck("price > 0")
	require.Equal(t, CheckComparison, rule.Kind)
	assert.Equal(t, "price", rule.Column)
	require.NotNil(t, rule.Min)
	assert.Equal(t, 0.0, *rule.Min)
	assert.False(t, rule.MinInclusive)
	assert.Nil(t, rule.Max)

	rule = ParseCheck("quantity >= 1")
	require.Equal(t, CheckComparison, rule.Kind)
	require.NotNil(t, rule.Min)
	assert.True(t, rule.MinInclusive)

	rule = ParseCheck("discount <= 50")
	require.Equal(t, CheckComparison, rule.Kind)
	require.NotNil(t, rule.Max)
	assert.Equal(t, 50.0, *rule.Max)
	assert.True(t, rule.MaxInclusive)
}

func TestParseCheckBetween(t *testing.T) {
	rule := ParseCheck("age BETWEEN 18 AND 120")

	require.Equal(t, CheckBetween, rule.Kind)
	assert.Equal(t, "age", rule.Column)
	require.NotNil(t, rule.Min)
	require.NotNil(t, rule.Max)
	assert.Equal(t, 18.0, *rule.Min)
	assert.Equal(t, 120.0, *rule.Max)
	assert.True(t, rule.MinInclusive)
	assert.True(t, rule.MaxInclusive)
}

func TestParseCheckConjunction(t *testing.T) {
	rule := ParseCheck("price > 0 AND price < 1000")

	require.Equal(t, CheckConjunction, rule.Kind)
	assert.Equal(t, "price", rule.Column)
	require.NotNil(t, rule.Min)
	require.NotNil(t, rule.Max)
	assert.Equal(t, 0.0, *rule.Min)
	assert.Equal(t, 1000.0, *rule.Max)
	assert.False(t, rule.MinInclusive)
	assert.False(t, rule.MaxInclusive)
}

func TestParseCheckConjunctionSameDirection(t *testing.T) {
	for _, clause := range []string{
		"total > 100 AND total > 0",
		"total > 0 AND total > 100",
	} {
		rule := ParseCheck(clause)
		require.Equal(t, CheckConjunction, rule.Kind, clause)
		require.NotNil(t, rule.Min, clause)
		assert.Equal(t, 100.0, *rule.Min, clause)
		assert.False(t, rule.MinInclusive, clause)
		assert.Nil(t, rule.Max, clause)
	}

	rule := ParseCheck("qty <= 10 AND qty < 10")
	require.Equal(t, CheckConjunction, rule.Kind)
	require.NotNil(t, rule.Max)
	assert.Equal(t, 10.0, *rule.Max)
	assert.False(t, rule.MaxInclusive, "equal bounds keep the strict side")

	rng := rand.New(rand.NewSource(1))
	rule = ParseCheck("total > 100 AND total > 0")
	for i := 0; i < 50; i++ {
		v := rule.GenerateValue(rng).(float64)
		assert.Greater(t, v, 100.0)
	}
}

func TestParseCheckConjunctionDifferentColumns(t *testing.T) {
	rule := ParseCheck("starts_at < ends_at AND price > 0")
	assert.Equal(t, CheckUnrecognized, rule.Kind)
}

func TestParseCheckUnrecognized(t *testing.T) {
	cases := []string{
		"starts_at < ends_at",
		"char_length(name) > 3",
		"email ~* '^[a-z]+@[a-z]+$'",
	}
	for _, clause := range cases {
		rule := ParseCheck(clause)
		assert.Equal(t, CheckUnrecognized, rule.Kind, "clause %q", clause)
		assert.Equal(t, clause, rule.Raw, "raw clause preserved for the warning")
	}
}

func TestGenerateValueEnum(t *testing.T) {
	rule := ParseCheck("status IN ('draft', 'active')")
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		v := rule.GenerateValue(rng)
		assert.Contains(t, []any{"draft", "active"}, v)
	}
}

func TestGenerateValueBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	rule := ParseCheck("age BETWEEN 18 AND 120")
	for i := 0; i < 50; i++ {
		v := rule.GenerateValue(rng).(float64)
		assert.GreaterOrEqual(t, v, 18.0)
		assert.LessOrEqual(t, v, 120.0)
	}

	rule = ParseCheck("price > 0 AND price < 1000")
	for i := 0; i < 50; i++ {
		v := rule.GenerateValue(rng).(float64)
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 1000.0)
	}

	rule = ParseCheck("quantity >= 1")
	for i := 0; i < 50; i++ {
		v := rule.GenerateValue(rng).(float64)
		assert.GreaterOrEqual(t, v, 1.0)
	}

	rule = ParseCheck("balance <= 0")
	for i := 0; i < 50; i++ {
		v := rule.GenerateValue(rng).(float64)
		assert.LessOrEqual(t, v, 0.0)
	}
}
