package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	createTableRegex = regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?["']?(\w+)["']?\s*\(`)
	fkRegex          = regexp.MustCompile(`(?i)FOREIGN\s+KEY\s*\(["']?(\w+)["']?\)\s*REFERENCES\s+["']?(\w+)["']?\s*\(["']?(\w+)["']?\)`)
	refRegex         = regexp.MustCompile(`(?i)REFERENCES\s+["']?(\w+)["']?\s*\(["']?(\w+)["']?\)`)
	uniqueRegex      = regexp.MustCompile(`(?i)^(?:CONSTRAINT\s+["']?(\w+)["']?\s+)?UNIQUE\s*\(([^)]+)\)`)
	checkRegex       = regexp.MustCompile(`(?i)^(?:CONSTRAINT\s+["']?(\w+)["']?\s+)?CHECK\s*\((.+)\)$`)
	inlineCheckRegex = regexp.MustCompile(`(?i)CHECK\s*\((.+)\)`)
)

// ParseDir parses every .sql file in dir and returns the tables found,
// keyed by name. Files are read in lexical order so later definitions
// win, matching how migration-style schema dirs are laid out.
func ParseDir(dir string) (map[string]*TableSchema, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	tables := make(map[string]*TableSchema)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file %s: %w", file, err)
		}
		for name, table := range Parse(string(data)) {
			tables[name] = table
		}
	}
	return tables, nil
}

// Parse extracts table definitions from raw DDL text. Bodies are cut at
// the parenthesis matching the opening one, not at the first ");", so
// inline REFERENCES and CHECK clauses at the end of a statement survive.
func Parse(ddl string) map[string]*TableSchema {
	tables := make(map[string]*TableSchema)
	for _, loc := range createTableRegex.FindAllStringSubmatchIndex(ddl, -1) {
		name := ddl[loc[2]:loc[3]]
		body, ok := balancedBody(ddl[loc[1]:])
		if !ok {
			continue
		}
		table := parseTableBody(name, body)
		tables[table.Name] = table
	}
	return tables
}

// balancedBody returns the text up to the close paren matching the one
// the header already consumed. Quoted strings may contain parens.
func balancedBody(rest string) (string, bool) {
	depth := 1
	inQuote := false
	for i, r := range rest {
		switch r {
		case '\'':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
				if depth == 0 {
					return rest[:i], true
				}
			}
		}
	}
	return "", false
}

func parseTableBody(name, body string) *TableSchema {
	table := &TableSchema{Name: name}

	for _, line := range splitTopLevel(body) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lineUpper := strings.ToUpper(line)

		if fkMatch := fkRegex.FindStringSubmatch(line); fkMatch != nil {
			table.ForeignKeys = append(table.ForeignKeys, ForeignKeyRef{
				Column:    fkMatch[1],
				RefTable:  fkMatch[2],
				RefColumn: fkMatch[3],
			})
			continue
		}

		if uqMatch := uniqueRegex.FindStringSubmatch(line); uqMatch != nil {
			cols := splitColumnList(uqMatch[2])
			constraintName := uqMatch[1]
			if constraintName == "" {
				constraintName = fmt.Sprintf("%s_%s_key", name, strings.Join(cols, "_"))
			}
			table.UniqueConstraints = append(table.UniqueConstraints, UniqueConstraint{
				Name:    constraintName,
				Columns: cols,
			})
			continue
		}

		if ckMatch := checkRegex.FindStringSubmatch(line); ckMatch != nil {
			constraintName := ckMatch[1]
			if constraintName == "" {
				constraintName = fmt.Sprintf("%s_check_%d", name, len(table.CheckConstraints)+1)
			}
			table.CheckConstraints = append(table.CheckConstraints, CheckConstraint{
				Name:   constraintName,
				Clause: ckMatch[2],
			})
			continue
		}

		if strings.HasPrefix(lineUpper, "PRIMARY") ||
			strings.HasPrefix(lineUpper, "CONSTRAINT") ||
			strings.HasPrefix(lineUpper, "INDEX") ||
			strings.HasPrefix(lineUpper, "KEY") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		colName := strings.Trim(parts[0], `"'`)
		colType := parts[1]
		typeUpper := strings.ToUpper(colType)

		col := ColumnSchema{
			Name:         colName,
			Type:         colType,
			Nullable:     !strings.Contains(lineUpper, "NOT NULL") && !strings.Contains(lineUpper, "PRIMARY KEY"),
			IsPrimaryKey: strings.Contains(lineUpper, "PRIMARY KEY") || strings.Contains(typeUpper, "SERIAL"),
			IsUnique:     strings.Contains(lineUpper, " UNIQUE"),
		}

		if refMatch := refRegex.FindStringSubmatch(line); refMatch != nil {
			table.ForeignKeys = append(table.ForeignKeys, ForeignKeyRef{
				Column:    colName,
				RefTable:  refMatch[1],
				RefColumn: refMatch[2],
			})
		}

		if ckInline := inlineCheckRegex.FindStringSubmatch(line); ckInline != nil {
			table.CheckConstraints = append(table.CheckConstraints, CheckConstraint{
				Name:   fmt.Sprintf("%s_%s_check", name, colName),
				Clause: ckInline[1],
			})
		}

		if col.IsUnique {
			table.UniqueConstraints = append(table.UniqueConstraints, UniqueConstraint{
				Name:    fmt.Sprintf("%s_%s_key", name, colName),
				Columns: []string{colName},
			})
		}

		table.Columns = append(table.Columns, col)
	}

	return table
}

// splitTopLevel splits a table body on commas outside parentheses, so
// CHECK (status IN ('a', 'b')) stays in one piece.
func splitTopLevel(body string) []string {
	var parts []string
	depth := 0
	start := 0
	inQuote := false
	for i, r := range body {
		switch r {
		case '\'':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
			}
		case ',':
			if depth == 0 && !inQuote {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, body[start:])
	return parts
}

func splitColumnList(raw string) []string {
	var cols []string
	for _, part := range strings.Split(raw, ",") {
		col := strings.Trim(strings.TrimSpace(part), `"'`)
		if col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}
