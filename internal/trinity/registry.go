package trinity

import "fmt"

// Registry pins explicit table codes for tables whose identifiers must
// survive a rename. Unregistered tables fall back to the md5 derivation.
type Registry struct {
	codes map[string]uint32
	names map[uint32]string
}

func NewRegistry() *Registry {
	return &Registry{
		codes: make(map[string]uint32),
		names: make(map[uint32]string),
	}
}

// Register pins a code for a table. Re-registering the same pair is a
// no-op; changing a pinned code or reusing a code across tables is an
// error.
func (r *Registry) Register(table string, code uint32) error {
	if code > MaxTableCode {
		return &FieldOverflowError{Field: "table_code", Value: uint64(code), Max: MaxTableCode}
	}
	if existing, ok := r.codes[table]; ok {
		if existing == code {
			return nil
		}
		return fmt.Errorf("table %q already registered with code %06x", table, existing)
	}
	if owner, ok := r.names[code]; ok {
		return fmt.Errorf("code %06x already registered for table %q", code, owner)
	}
	r.codes[table] = code
	r.names[code] = table
	return nil
}

// Code returns the pinned code for table, or the md5 derivation when
// none is registered.
func (r *Registry) Code(table string) uint32 {
	if code, ok := r.codes[table]; ok {
		return code
	}
	return TableCode(table)
}

// TableName reverse-looks-up a pinned code, e.g. when decoding an
// identifier back to its source table.
func (r *Registry) TableName(code uint32) (string, bool) {
	name, ok := r.names[code]
	return name, ok
}

// Generator builds an identifier generator using this registry's code
// for the table.
func (r *Registry) Generator(table string, seedDir uint8) *Generator {
	return &Generator{defaults: Fields{
		TableCode: r.Code(table),
		SeedDir:   seedDir,
	}}
}
