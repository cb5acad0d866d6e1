package gqlcompose_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	gqlcompose "github.com/gqlcompose/gqlcompose"
	"github.com/stretchr/testify/require"
)

type AppContext struct {
	Users map[string]string
	Tasks map[string]string
}

type UserQueries struct{}

func (UserQueries) User(ctx *AppContext, id string) (string, error) {
	u, ok := ctx.Users[id]
	if !ok {
		return "", fmt.Errorf("no user %q", id)
	}
	return u, nil
}

func (UserQueries) Users(ctx *AppContext) (int, error) {
	return len(ctx.Users), nil
}

type TaskQueries struct{}

func (TaskQueries) Task(ctx *AppContext, id string) (string, error) {
	return ctx.Tasks[id], nil
}

func (TaskQueries) Tasks(ctx *AppContext) (int, error) {
	return len(ctx.Tasks), nil
}

type PingA struct{}

func (PingA) Ping() bool { return true }

type PingB struct{}

func (PingB) Ping() bool { return false }

type Admin struct{}

func (*Admin) Reset(ctx *AppContext) error {
	if ctx == nil {
		return errors.New("no context")
	}
	clear(ctx.Users)
	return nil
}

func (*Admin) Touch() {}

func newRegistry(t *testing.T, parts ...any) *gqlcompose.Registry {
	t.Helper()
	reg := gqlcompose.NewRegistry()
	require.NoError(t, reg.Register(parts...))
	return reg
}

func appContext() *AppContext {
	return &AppContext{
		Users: map[string]string{"1": "ada", "2": "grace"},
		Tasks: map[string]string{"7": "ship it"},
	}
}

func TestComposeUnion(t *testing.T) {
	reg := newRegistry(t, UserQueries{}, TaskQueries{})

	query, err := reg.Compose("Query", []string{"UserQueries", "TaskQueries"})
	require.NoError(t, err)

	require.Equal(t, []string{"user", "users", "task", "tasks"}, query.ComposedFields())
	owner, ok := query.Owner("task")
	require.True(t, ok)
	require.Equal(t, "TaskQueries", owner)

	// Forwarded calls return exactly what the owning part returns.
	ctx := appContext()
	got, err := query.Call(ctx, "user", "1")
	require.NoError(t, err)
	want, err := UserQueries{}.User(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = query.Call(ctx, "tasks")
	require.NoError(t, err)
	require.Equal(t, 1, got)

	_, err = query.Call(ctx, "user", "404")
	require.ErrorContains(t, err, `no user "404"`)
}

func TestComposeDuplicateResolver(t *testing.T) {
	reg := newRegistry(t, PingA{}, PingB{}, UserQueries{})

	// Both orders fail; only the blamed order differs.
	_, err := reg.Compose("Query", []string{"PingA", "PingB"})
	var dup *gqlcompose.DuplicateResolverError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "ping", dup.Resolver)
	require.Equal(t, "PingA", dup.First)
	require.Equal(t, "PingB", dup.Second)

	_, err = reg.Compose("Query", []string{"PingB", "PingA"})
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "PingB", dup.First)
	require.Equal(t, "PingA", dup.Second)

	// Either part composes fine alone or beside a disjoint part.
	_, err = reg.Compose("Query", []string{"PingA"})
	require.NoError(t, err)
	_, err = reg.Compose("Query", []string{"PingB", "UserQueries"})
	require.NoError(t, err)
}

type readerPart struct{}

func (readerPart) Consume(ctx io.Reader) bool { return ctx != nil }

type anyPart struct{}

func (anyPart) Inspect(ctx any) bool { return ctx != nil }

func TestComposeContextMismatch(t *testing.T) {
	reg := newRegistry(t, readerPart{}, anyPart{})

	_, err := reg.Compose("Query", []string{"readerPart", "anyPart"})
	var mismatch *gqlcompose.ContextMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Contains(t, mismatch.Contexts, "readerPart")
	require.Contains(t, mismatch.Contexts, "anyPart")

	// An override every part accepts settles the conflict.
	query, err := reg.Compose("Query", []string{"readerPart", "anyPart"},
		gqlcompose.WithContext(&bytes.Buffer{}))
	require.NoError(t, err)

	got, err := query.Call(bytes.NewBufferString("x"), "consume")
	require.NoError(t, err)
	require.Equal(t, true, got)

	// An override a part cannot accept is still a mismatch.
	_, err = reg.Compose("Query", []string{"readerPart"}, gqlcompose.WithContext(42))
	require.ErrorAs(t, err, &mismatch)
	require.Contains(t, mismatch.Contexts, "readerPart")
	require.Contains(t, mismatch.Contexts, "<override>")
}

func TestComposeUnknownPart(t *testing.T) {
	reg := newRegistry(t, UserQueries{})

	_, err := reg.Compose("Query", []string{"UserQueries", "Missing"})
	var unknown *gqlcompose.UnknownPartError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "Missing", unknown.Part)
}

func TestComposeInvalidDeclarations(t *testing.T) {
	reg := newRegistry(t, UserQueries{})
	var invalid *gqlcompose.InvalidDeclarationError

	_, err := reg.Compose("Query", nil)
	require.ErrorAs(t, err, &invalid)

	_, err = reg.Compose("Query", []string{"UserQueries", "UserQueries"})
	require.ErrorAs(t, err, &invalid)
	require.Contains(t, invalid.Reason, "listed more than once")

	err = gqlcompose.NewRegistry().Register(struct{}{})
	require.ErrorAs(t, err, &invalid)

	type stateful struct{ db string }
	err = gqlcompose.NewRegistry().Register(stateful{})
	require.ErrorAs(t, err, &invalid)
	require.Contains(t, invalid.Reason, "must not declare fields")
}

func TestComposeIdempotent(t *testing.T) {
	reg := newRegistry(t, UserQueries{}, TaskQueries{})

	first, err := reg.Compose("Query", []string{"UserQueries", "TaskQueries"})
	require.NoError(t, err)
	second, err := reg.Compose("QueryAgain", []string{"UserQueries", "TaskQueries"})
	require.NoError(t, err)

	require.Equal(t, first.ComposedFields(), second.ComposedFields())

	a, err := first.Call(appContext(), "users")
	require.NoError(t, err)
	b, err := second.Call(appContext(), "users")
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestCallFreshInstancesAndShapes(t *testing.T) {
	reg := newRegistry(t, Admin{})

	query, err := reg.Compose("Query", []string{"Admin"})
	require.NoError(t, err)
	require.Equal(t, []string{"reset", "touch"}, query.ComposedFields())

	ctx := appContext()
	out, err := query.Call(ctx, "reset")
	require.NoError(t, err)
	require.Nil(t, out, "error-only resolvers yield no value")
	require.Empty(t, ctx.Users)

	out, err = query.Call(nil, "touch")
	require.NoError(t, err)
	require.Nil(t, out)

	_, err = query.Call(ctx, "reboot")
	require.ErrorContains(t, err, `no resolver "reboot"`)

	_, err = query.Call(ctx, "reset", "extra")
	require.ErrorContains(t, err, "takes 0 arguments")

	fn, ok := query.Resolver("reset")
	require.True(t, ok)
	_, err = fn(ctx)
	require.NoError(t, err)
}
