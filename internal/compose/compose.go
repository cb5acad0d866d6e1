// Package compose merges annotated parts into composite dispatch tables.
//
// Merging is pure bookkeeping over descriptors: resolve each referenced part,
// settle on one governing context type, and fold the parts' resolver sets into
// a single table whose names must stay pairwise disjoint. Any conflict is a
// violation; a composite with violations produces no table.
package compose

import (
	"sort"

	"github.com/gqlcompose/gqlcompose/internal/descriptor"
)

// Entry binds one merged resolver to its owning part.
type Entry struct {
	Resolver *descriptor.Resolver `json:"resolver"`
	Part     *descriptor.Part     `json:"part"`
}

// Table is the merged dispatch table of one composite. Entries keep the
// parts' declared order; names are unique across the table.
type Table struct {
	Composite *descriptor.Composite `json:"composite"`
	// Context is the governing context type: the explicit override if given,
	// otherwise the parts' shared inferred context. Empty means unconstrained.
	Context string   `json:"context,omitempty"`
	Entries []*Entry `json:"entries"`
}

// Fields returns the merged resolver names in declaration order.
func (t *Table) Fields() []string {
	fields := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		fields[i] = e.Resolver.Name
	}
	return fields
}

// Merge builds the dispatch table for one composite of pkg. The outcome is
// independent of part order; only blame assignment in duplicate-resolver
// messages depends on it.
func Merge(pkg *descriptor.Package, comp *descriptor.Composite) (*Table, []*descriptor.Violation) {
	var violations []*descriptor.Violation

	seen := make(map[string]bool)
	parts := make([]*descriptor.Part, 0, len(comp.Parts))
	for _, name := range comp.Parts {
		if seen[name] {
			violations = append(violations, violationPartListedTwice(comp, name))
			continue
		}
		seen[name] = true
		part, ok := pkg.Parts[name]
		if !ok {
			violations = append(violations, violationUnknownPart(comp, name))
			continue
		}
		parts = append(parts, part)
	}

	context, v := governingContext(comp, parts)
	if v != nil {
		violations = append(violations, v)
	}

	owners := make(map[string]*descriptor.Part)
	var entries []*Entry
	for _, part := range parts {
		for _, res := range part.Resolvers {
			if first, ok := owners[res.Name]; ok {
				violations = append(violations, violationDuplicateResolver(comp, res.Name, first.Name, part.Name))
				continue
			}
			owners[res.Name] = part
			entries = append(entries, &Entry{Resolver: res, Part: part})
		}
	}

	if len(violations) > 0 {
		return nil, violations
	}
	return &Table{Composite: comp, Context: context, Entries: entries}, nil
}

// governingContext settles the composite's context type per the precedence:
// explicit override first, otherwise all parts must agree.
func governingContext(comp *descriptor.Composite, parts []*descriptor.Part) (string, *descriptor.Violation) {
	if comp.Context != "" {
		return comp.Context, nil
	}
	contexts := make(map[string]string)
	distinct := make(map[string]bool)
	for _, part := range parts {
		if part.Context == "" {
			continue
		}
		contexts[part.Name] = part.Context
		distinct[part.Context] = true
	}
	if len(distinct) > 1 {
		return "", violationContextMismatch(comp, contexts)
	}
	for ctx := range distinct {
		return ctx, nil
	}
	return "", nil
}

// MergeAll merges every composite of the project. Tables come back in
// deterministic package/declaration order.
func MergeAll(proj *descriptor.Project) ([]*Table, []*descriptor.Violation) {
	ids := make([]descriptor.PackageID, 0, len(proj.Packages))
	for id := range proj.Packages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var tables []*Table
	var violations []*descriptor.Violation
	for _, id := range ids {
		pkg := proj.Packages[id]
		for _, comp := range pkg.Composites {
			table, vs := Merge(pkg, comp)
			violations = append(violations, vs...)
			if table != nil {
				tables = append(tables, table)
			}
		}
	}
	return tables, violations
}
