package compose

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gqlcompose/gqlcompose/internal/descriptor"
	"github.com/stretchr/testify/require"
)

func part(name, context string, resolvers ...string) *descriptor.Part {
	p := &descriptor.Part{Name: name, Package: "graph", Context: context}
	for _, r := range resolvers {
		p.Resolvers = append(p.Resolvers, &descriptor.Resolver{Name: r, Fallible: true})
	}
	return p
}

func pkg(parts ...*descriptor.Part) *descriptor.Package {
	p := &descriptor.Package{ID: "graph", Name: "graph", Dir: "graph", Parts: map[string]*descriptor.Part{}}
	for _, pt := range parts {
		p.Parts[pt.Name] = pt
	}
	return p
}

func composite(name, context string, parts ...string) *descriptor.Composite {
	return &descriptor.Composite{
		Name: name, Exported: true, Package: "graph",
		File: "graph/graph.go", Line: 1,
		Context: context, Parts: parts,
	}
}

func TestMergeUnion(t *testing.T) {
	p := pkg(
		part("UserQueries", "*app.Context", "user", "users"),
		part("TaskQueries", "*app.Context", "task", "tasks"),
	)

	table, violations := Merge(p, composite("Query", "", "UserQueries", "TaskQueries"))
	require.Empty(t, violations)
	require.Equal(t, "*app.Context", table.Context)
	if diff := cmp.Diff([]string{"user", "users", "task", "tasks"}, table.Fields()); diff != "" {
		t.Errorf("merged fields mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "UserQueries", table.Entries[0].Part.Name)
	require.Equal(t, "TaskQueries", table.Entries[2].Part.Name)
}

func TestMergeDuplicateResolver(t *testing.T) {
	a := part("A", "", "ping")
	b := part("B", "", "ping")
	c := part("C", "", "pong")
	p := pkg(a, b, c)

	// Both orders fail; only the blamed order differs.
	table, violations := Merge(p, composite("Query", "", "A", "B"))
	require.Nil(t, table)
	require.Len(t, violations, 1)
	require.Equal(t, descriptor.KindDuplicateResolver, violations[0].Kind)
	require.Contains(t, violations[0].Message, `duplicate resolver "ping"`)
	require.Contains(t, violations[0].Message, "defined by both A and B")

	_, violations = Merge(p, composite("Query", "", "B", "A"))
	require.Len(t, violations, 1)
	require.Equal(t, descriptor.KindDuplicateResolver, violations[0].Kind)
	require.Contains(t, violations[0].Message, "defined by both B and A")

	// Either conflicting part composes fine alone or with a disjoint part.
	table, violations = Merge(p, composite("Query", "", "A"))
	require.Empty(t, violations)
	require.Equal(t, []string{"ping"}, table.Fields())

	table, violations = Merge(p, composite("Query", "", "B", "C"))
	require.Empty(t, violations)
	require.Equal(t, []string{"ping", "pong"}, table.Fields())
}

func TestMergeContextMismatch(t *testing.T) {
	p := pkg(
		part("A", "*app.Context", "ping"),
		part("B", "*other.Context", "pong"),
	)

	table, violations := Merge(p, composite("Query", "", "A", "B"))
	require.Nil(t, table)
	require.Len(t, violations, 1)
	require.Equal(t, descriptor.KindContextMismatch, violations[0].Kind)
	require.Contains(t, violations[0].Message, "A uses *app.Context")
	require.Contains(t, violations[0].Message, "B uses *other.Context")

	// An explicit override settles the conflict.
	table, violations = Merge(p, composite("Query", "*app.Context", "A", "B"))
	require.Empty(t, violations)
	require.Equal(t, "*app.Context", table.Context)
}

func TestMergeUnconstrainedParts(t *testing.T) {
	p := pkg(
		part("A", "", "ping"),
		part("B", "*app.Context", "pong"),
	)

	// A part without context does not constrain the composite.
	table, violations := Merge(p, composite("Query", "", "A", "B"))
	require.Empty(t, violations)
	require.Equal(t, "*app.Context", table.Context)

	table, violations = Merge(p, composite("Query2", "", "A"))
	require.Empty(t, violations)
	require.Empty(t, table.Context)
}

func TestMergeUnknownPart(t *testing.T) {
	p := pkg(part("A", "", "ping"))

	table, violations := Merge(p, composite("Query", "", "A", "Missing"))
	require.Nil(t, table)
	require.Len(t, violations, 1)
	require.Equal(t, descriptor.KindUnknownPart, violations[0].Kind)
	require.Contains(t, violations[0].Message, `unknown part "Missing"`)
}

func TestMergePartListedTwice(t *testing.T) {
	p := pkg(part("A", "", "ping"))

	table, violations := Merge(p, composite("Query", "", "A", "A"))
	require.Nil(t, table)
	require.Len(t, violations, 1)
	require.Equal(t, descriptor.KindInvalidDeclaration, violations[0].Kind)
	require.Contains(t, violations[0].Message, `part "A" listed more than once`)
}

func TestMergeIdempotent(t *testing.T) {
	p := pkg(
		part("UserQueries", "*app.Context", "user", "users"),
		part("TaskQueries", "*app.Context", "task", "tasks"),
	)

	first, violations := Merge(p, composite("Query", "", "UserQueries", "TaskQueries"))
	require.Empty(t, violations)
	second, violations := Merge(p, composite("QueryAgain", "", "UserQueries", "TaskQueries"))
	require.Empty(t, violations)

	require.Equal(t, first.Fields(), second.Fields())
	require.Equal(t, first.Context, second.Context)
	require.Len(t, p.Parts["UserQueries"].Resolvers, 2, "merging must not mutate parts")
}

func TestMergeAllOrder(t *testing.T) {
	p := pkg(part("A", "", "ping"))
	p.Composites = []*descriptor.Composite{
		composite("Query", "", "A"),
		composite("Mutation", "", "A"),
	}
	proj := &descriptor.Project{Packages: map[descriptor.PackageID]*descriptor.Package{"graph": p}}

	tables, violations := MergeAll(proj)
	require.Empty(t, violations, "a part is reusable across composites")
	require.Len(t, tables, 2)
	require.Equal(t, "Query", tables[0].Composite.Name)
	require.Equal(t, "Mutation", tables[1].Composite.Name)
}
