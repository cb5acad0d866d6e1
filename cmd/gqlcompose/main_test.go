package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const graphSrc = `package graph

type AppContext struct{ Greeting string }

//gqlcompose:part
type UserQueries struct{}

func (UserQueries) Hello(ctx *AppContext) (string, error) { return ctx.Greeting, nil }

//gqlcompose:part
type TaskQueries struct{}

func (TaskQueries) Tasks(ctx *AppContext) (int, error) { return 0, nil }

//gqlcompose:object Query (UserQueries, TaskQueries)
`

const conflictSrc = `package graph

type AppContext struct{}

//gqlcompose:part
type PingA struct{}

func (PingA) Ping(ctx *AppContext) (bool, error) { return true, nil }

//gqlcompose:part
type PingB struct{}

func (PingB) Ping(ctx *AppContext) (bool, error) { return false, nil }

//gqlcompose:object Query (PingA, PingB)
`

const todoSDL = `type Query {
  hello: String!
  tasks: Int!
}
`

func writeProject(t *testing.T, src string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "graph")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "graph.go"), []byte(src), 0o644))
	return root
}

func captureOutput(t *testing.T, fn func() error) (stdout string, err error) {
	t.Helper()
	old := os.Stdout
	defer func() { os.Stdout = old }()

	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() { io.Copy(&buf, r); close(done) }()

	err = fn()
	w.Close()
	<-done
	return buf.String(), err
}

func TestHelp(t *testing.T) {
	out, err := captureOutput(t, func() error {
		return run([]string{"help", "generate"})
	})
	require.NoError(t, err)
	require.Contains(t, out, "generate FLAGS")

	err = run([]string{"frobnicate"})
	require.ErrorContains(t, err, `unknown command "frobnicate"`)
}

func TestGenerate(t *testing.T) {
	root := writeProject(t, graphSrc)

	err := run([]string{"generate", "-root", root})
	require.NoError(t, err)

	comp, err := os.ReadFile(filepath.Join(root, "graph", "query_gqlcompose.gen.go"))
	require.NoError(t, err)
	require.Contains(t, string(comp), "Code generated by gqlcompose. DO NOT EDIT.")
	require.Contains(t, string(comp), "type Query struct{}")
	require.Contains(t, string(comp), "func (Query) Hello(ctx *AppContext)")

	parts, err := os.ReadFile(filepath.Join(root, "graph", "gqlcompose_parts.gen.go"))
	require.NoError(t, err)
	require.Contains(t, string(parts), "func (TaskQueries) ComposedFields()")
}

func TestCheckReportsViolations(t *testing.T) {
	root := writeProject(t, conflictSrc)

	err := run([]string{"check", "-root", root})
	require.ErrorContains(t, err, `resolver "ping"`)

	// No files are written on a failed run.
	_, statErr := os.Stat(filepath.Join(root, "graph", "query_gqlcompose.gen.go"))
	require.True(t, os.IsNotExist(statErr))
}

func TestCheckSchema(t *testing.T) {
	root := writeProject(t, graphSrc)
	schema := filepath.Join(root, "todo.graphql")
	require.NoError(t, os.WriteFile(schema, []byte(todoSDL), 0o644))

	err := run([]string{"check-schema", "-root", root, "-schema", schema})
	require.NoError(t, err)

	bad := `type Query { hello: String! tasks: Int! extra: ID }`
	require.NoError(t, os.WriteFile(schema, []byte(bad), 0o644))
	err = run([]string{"check-schema", "-root", root, "-schema", schema})
	require.ErrorContains(t, err, "does not resolve schema field(s) extra")

	err = run([]string{"check-schema", "-root", root})
	require.ErrorContains(t, err, "-schema is required")
}

func TestConfigFile(t *testing.T) {
	root := writeProject(t, graphSrc)
	cfg := filepath.Join(t.TempDir(), "gqlcompose.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("root: "+root+"\n"), 0o644))

	err := run([]string{"check", "-config", cfg})
	require.NoError(t, err)

	err = run([]string{"check", "-config", filepath.Join(root, "absent.yaml")})
	require.ErrorContains(t, err, "read config")
}
