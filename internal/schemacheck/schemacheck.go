// Package schemacheck compares merged composites against a GraphQL SDL
// document. The check is name-level only: every composite must expose
// exactly the fields its schema type declares, and vice versa. Types and
// arguments stay out of scope; the SDL remains the source of truth for
// those.
package schemacheck

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/gqlcompose/gqlcompose/internal/compose"
	"github.com/gqlcompose/gqlcompose/internal/descriptor"
)

// Check parses the SDL in source and verifies each table's field set against
// the object type of the same name. Composites without a matching schema
// type are skipped: not every composite needs schema backing. The returned
// error reports SDL parse failures only; mismatches come back as violations.
func Check(name, source string, tables []*compose.Table) ([]*descriptor.Violation, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", name, err)
	}

	var violations []*descriptor.Violation
	for _, table := range tables {
		def := doc.Definitions.ForName(table.Composite.Name)
		if def == nil || def.Kind != ast.Object {
			continue
		}
		violations = append(violations, checkTable(name, def, table)...)
	}
	return violations, nil
}

func checkTable(schema string, def *ast.Definition, table *compose.Table) []*descriptor.Violation {
	declared := make(map[string]bool)
	for _, f := range def.Fields {
		// Introspection fields never come from resolvers.
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		declared[f.Name] = true
	}
	merged := make(map[string]bool)
	for _, f := range table.Fields() {
		merged[f] = true
	}

	var missing, extra []string
	for f := range declared {
		if !merged[f] {
			missing = append(missing, f)
		}
	}
	for f := range merged {
		if !declared[f] {
			extra = append(extra, f)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)

	var violations []*descriptor.Violation
	comp := table.Composite
	if len(missing) > 0 {
		violations = append(violations, descriptor.NewViolation(
			descriptor.KindSchemaMismatch,
			fmt.Sprintf("composite %s does not resolve schema field(s) %s of type %s in %s",
				comp.Name, strings.Join(missing, ", "), def.Name, schema),
			comp.File, comp.Line, 1,
		))
	}
	if len(extra) > 0 {
		violations = append(violations, descriptor.NewViolation(
			descriptor.KindSchemaMismatch,
			fmt.Sprintf("composite %s resolves field(s) %s not declared on type %s in %s",
				comp.Name, strings.Join(extra, ", "), def.Name, schema),
			comp.File, comp.Line, 1,
		))
	}
	return violations
}
