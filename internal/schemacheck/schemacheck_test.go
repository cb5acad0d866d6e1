package schemacheck

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gqlcompose/gqlcompose/internal/compose"
	"github.com/gqlcompose/gqlcompose/internal/descriptor"
)

const todoSDL = `
type Query {
  user(id: ID!): User
  users: [User!]!
  task(id: ID!): Task
}

type User {
  id: ID!
  name: String!
}

type Task {
  id: ID!
  title: String!
}
`

func table(name string, fields ...string) *compose.Table {
	t := &compose.Table{
		Composite: &descriptor.Composite{Name: name, File: "graph/compose.go", Line: 12},
	}
	part := &descriptor.Part{Name: name + "Part"}
	for _, f := range fields {
		t.Entries = append(t.Entries, &compose.Entry{
			Resolver: &descriptor.Resolver{Name: f},
			Part:     part,
		})
	}
	return t
}

func TestCheckMatch(t *testing.T) {
	vs, err := Check("todo.graphql", todoSDL, []*compose.Table{
		table("Query", "user", "users", "task"),
	})
	require.NoError(t, err)
	require.Empty(t, vs)
}

func TestCheckMissingAndExtra(t *testing.T) {
	vs, err := Check("todo.graphql", todoSDL, []*compose.Table{
		table("Query", "user", "tasks"),
	})
	require.NoError(t, err)
	require.Len(t, vs, 2)

	require.Equal(t, descriptor.KindSchemaMismatch, vs[0].Kind)
	require.Contains(t, vs[0].Message, "does not resolve schema field(s) task, users")
	require.Contains(t, vs[1].Message, "resolves field(s) tasks not declared on type Query")
	require.Equal(t, "graph/compose.go", vs[0].File)
	require.Equal(t, 12, vs[0].Line)
}

func TestCheckSkipsUnbackedComposites(t *testing.T) {
	vs, err := Check("todo.graphql", todoSDL, []*compose.Table{
		table("InternalOps", "reindex"),
	})
	require.NoError(t, err)
	require.Empty(t, vs)
}

func TestCheckParseError(t *testing.T) {
	_, err := Check("broken.graphql", "type Query {", nil)
	require.ErrorContains(t, err, "broken.graphql")
}
