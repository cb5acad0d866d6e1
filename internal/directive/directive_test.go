package directive

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	kind, rest, ok := Match("//gqlcompose:object Query(A, B)")
	require.True(t, ok)
	require.Equal(t, KindObject, kind)
	require.Equal(t, "Query(A, B)", rest)

	kind, rest, ok = Match("//gqlcompose:part")
	require.True(t, ok)
	require.Equal(t, KindPart, kind)
	require.Equal(t, "", rest)

	_, _, ok = Match("// gqlcompose:part")
	require.False(t, ok, "directives must not have a space after the comment marker")

	_, _, ok = Match("// just a comment")
	require.False(t, ok)
}

func TestParseObject(t *testing.T) {
	type testCase struct {
		name string
		in   string
		want *Object
	}
	for _, tc := range []testCase{
		{
			name: "basic",
			in:   "Query(UserQueries, TaskQueries)",
			want: &Object{Name: "Query", Parts: []string{"UserQueries", "TaskQueries"}},
		},
		{
			name: "single part",
			in:   "Query(UserQueries)",
			want: &Object{Name: "Query", Parts: []string{"UserQueries"}},
		},
		{
			name: "context override",
			in:   "Mutation<Context = *app.Context>(UserMutations)",
			want: &Object{Name: "Mutation", Context: "*app.Context", Parts: []string{"UserMutations"}},
		},
		{
			name: "visibility public",
			in:   "public query(A)",
			want: &Object{Name: "query", Visibility: VisibilityPublic, Parts: []string{"A"}},
		},
		{
			name: "visibility private with context",
			in:   "private Query<Context = app.Ctx>(A, B)",
			want: &Object{Name: "Query", Visibility: VisibilityPrivate, Context: "app.Ctx", Parts: []string{"A", "B"}},
		},
		{
			name: "whitespace tolerated",
			in:   "  Query ( A ,  B )  ",
			want: &Object{Name: "Query", Parts: []string{"A", "B"}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseObject(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseObjectErrors(t *testing.T) {
	type testCase struct {
		name  string
		in    string
		token string
	}
	for _, tc := range []testCase{
		{name: "empty", in: ""},
		{name: "missing part list", in: "Query", token: "Query"},
		{name: "unclosed part list", in: "Query(A, B", token: "(A, B"},
		{name: "empty part list", in: "Query()", token: "()"},
		{name: "bad visibility", in: "pub Query(A)", token: "pub"},
		{name: "bad name", in: "Que-ry(A)", token: "Que-ry"},
		{name: "bad part name", in: "Query(A, 1B)", token: "1B"},
		{name: "blank part name", in: "Query(A,,B)", token: ""},
		{name: "unterminated context", in: "Query<Context = app.Ctx(A)", token: "<Context = app.Ctx"},
		{name: "bad context key", in: "Query<Ctx = app.Ctx>(A)", token: "<Ctx = app.Ctx>"},
		{name: "empty context type", in: "Query<Context = >(A)", token: "<Context = >"},
		{name: "too many head tokens", in: "public static Query(A)", token: "public static Query"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseObject(tc.in)
			require.Error(t, err)
			var serr *SyntaxError
			require.ErrorAs(t, err, &serr)
			require.Equal(t, tc.token, serr.Token)
		})
	}
}

func TestParsePart(t *testing.T) {
	require.NoError(t, ParsePart(""))
	err := ParsePart("UserQueries")
	require.Error(t, err)
}

func TestExport(t *testing.T) {
	require.Equal(t, "Query", (&Object{Name: "Query"}).Export())
	require.Equal(t, "query", (&Object{Name: "query"}).Export())
	require.Equal(t, "Query", (&Object{Name: "query", Visibility: VisibilityPublic}).Export())
	require.Equal(t, "query", (&Object{Name: "Query", Visibility: VisibilityPrivate}).Export())
}
