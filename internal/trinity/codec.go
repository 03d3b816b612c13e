// Package trinity encodes seed provenance metadata into RFC 4122
// formatted identifiers. The layout is fixed:
//
//	TTTTTTDD-FFFF-4SSS-8STT-IIIIIIIIIIII
//
// with table code (6 hex), seed direction (2 hex), function code
// (4 hex), the version marker 4, scenario code (4 hex, split around the
// variant marker 8), test-case code (2 hex) and instance number
// (12 hex). Every encoded value is a well-formed version-4 UUID string,
// but the bits are deterministic metadata, not randomness.
package trinity

import (
	"crypto/md5"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Seed directions, carried in the DD field.
const (
	DirGeneral  uint8 = 0x21
	DirMutation uint8 = 0x22
	DirQuery    uint8 = 0x23
)

// Field widths determine the maximum encodable value per field.
const (
	MaxTableCode = 1<<24 - 1 // 6 hex digits
	MaxSeedDir   = 1<<8 - 1  // 2 hex digits
	MaxFunction  = 1<<16 - 1 // 4 hex digits
	MaxScenario  = 1<<16 - 1 // 4 hex digits (3 + 1 around the variant)
	MaxTestCase  = 1<<8 - 1  // 2 hex digits
	MaxInstance  = 1<<48 - 1 // 12 hex digits
)

var layoutRegex = regexp.MustCompile(
	`^([0-9a-f]{6})([0-9a-f]{2})-([0-9a-f]{4})-4([0-9a-f]{3})-8([0-9a-f])([0-9a-f]{2})-([0-9a-f]{12})$`)

// Fields is the provenance tuple embedded in an identifier.
type Fields struct {
	TableCode uint32
	SeedDir   uint8
	Function  uint16
	Scenario  uint16
	TestCase  uint8
	Instance  uint64
}

// FieldOverflowError reports a field value that does not fit its fixed
// hex width. Values are never silently truncated.
type FieldOverflowError struct {
	Field string
	Value uint64
	Max   uint64
}

func (e *FieldOverflowError) Error() string {
	return fmt.Sprintf("trinity field %q value %d exceeds maximum %d", e.Field, e.Value, e.Max)
}

// FormatError reports a string that does not match the Trinity layout.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid trinity identifier %q: %s", e.Input, e.Reason)
}

// Encode produces the identifier string for the given fields. It is a
// pure function: no randomness, same input always yields same output.
func Encode(f Fields) (string, error) {
	if err := checkWidths(f); err != nil {
		return "", err
	}
	// Scenario splits around the variant marker: high 3 nibbles after
	// the version digit, low nibble after the variant digit.
	return fmt.Sprintf("%06x%02x-%04x-4%03x-8%01x%02x-%012x",
		f.TableCode, f.SeedDir, f.Function,
		f.Scenario>>4, f.Scenario&0xf,
		f.TestCase, f.Instance), nil
}

// EncodeUUID is Encode with the result parsed into a uuid.UUID.
func EncodeUUID(f Fields) (uuid.UUID, error) {
	s, err := Encode(f)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(s)
}

// Decode is the inverse of Encode: Decode(Encode(f)) == f for all valid
// f. Wrong length, non-hex characters or wrong marker positions yield a
// FormatError.
func Decode(s string) (Fields, error) {
	normalized := strings.ToLower(s)
	if _, err := uuid.Parse(normalized); err != nil {
		return Fields{}, &FormatError{Input: s, Reason: err.Error()}
	}
	m := layoutRegex.FindStringSubmatch(normalized)
	if m == nil {
		return Fields{}, &FormatError{Input: s, Reason: "version or variant marker out of position"}
	}

	tableCode, _ := strconv.ParseUint(m[1], 16, 32)
	seedDir, _ := strconv.ParseUint(m[2], 16, 8)
	function, _ := strconv.ParseUint(m[3], 16, 16)
	scenarioHigh, _ := strconv.ParseUint(m[4], 16, 16)
	scenarioLow, _ := strconv.ParseUint(m[5], 16, 8)
	testCase, _ := strconv.ParseUint(m[6], 16, 8)
	instance, _ := strconv.ParseUint(m[7], 16, 64)

	return Fields{
		TableCode: uint32(tableCode),
		SeedDir:   uint8(seedDir),
		Function:  uint16(function),
		Scenario:  uint16(scenarioHigh<<4 | scenarioLow),
		TestCase:  uint8(testCase),
		Instance:  instance,
	}, nil
}

// TableCode derives a stable 24-bit code from a table name. The md5
// prefix keeps codes reproducible across runs without a registry entry.
func TableCode(table string) uint32 {
	sum := md5.Sum([]byte(table))
	return uint32(sum[0])<<16 | uint32(sum[1])<<8 | uint32(sum[2])
}

// checkWidths guards the two fields whose Go type is wider than the
// encoded field; the remaining fields are width-exact by type.
func checkWidths(f Fields) error {
	if f.TableCode > MaxTableCode {
		return &FieldOverflowError{Field: "table_code", Value: uint64(f.TableCode), Max: MaxTableCode}
	}
	if f.Instance > MaxInstance {
		return &FieldOverflowError{Field: "instance", Value: f.Instance, Max: MaxInstance}
	}
	return nil
}
