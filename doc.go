// Package gqlcompose merges multiple partial GraphQL resolver objects into a
// single composite type.
//
// # Motivation
//
// Resolver roots grow without bound: a Query type that started with a handful
// of methods ends up carrying every resolver of the API surface in one file.
// gqlcompose lets each domain keep its own small resolver struct and merges
// them mechanically into the one root type a schema framework expects.
//
// A part is a fieldless struct whose exported methods are resolvers:
//
//	//gqlcompose:part
//	type UserQueries struct{}
//
//	func (UserQueries) User(ctx *app.Context, id string) (*model.User, error) { ... }
//	func (UserQueries) Users(ctx *app.Context) ([]*model.User, error) { ... }
//
// An object directive asks for the merged type:
//
//	//gqlcompose:object Query(UserQueries, TaskQueries)
//
// Running the gqlcompose CLI (typically via go generate) emits a generated
// file declaring Query with one forwarding method per merged resolver. Each
// forwarder constructs a fresh zero-value instance of the owning part, so
// parts stay stateless; request-scoped state travels in the ctx parameter,
// the first parameter of a resolver when it is named ctx. All parts of a
// composite must agree on one ctx type, unless the directive overrides it:
//
//	//gqlcompose:object Mutation<Context = *app.Context>(UserMutations, TaskMutations)
//
// A visibility qualifier forces the generated name's case:
//
//	//gqlcompose:object private Query(UserQueries, TaskQueries)
//
// Name collisions between parts, unknown parts, context disagreements and
// malformed directives all fail the generation run; nothing is emitted and
// nothing is silently shadowed.
//
// # Runtime registry
//
// Where running a generator is not an option, Registry offers the same merge
// semantics at program startup, deriving part descriptors via reflection:
//
//	reg := gqlcompose.NewRegistry()
//	if err := reg.Register(UserQueries{}, TaskQueries{}); err != nil { ... }
//	query, err := reg.Compose("Query", []string{"UserQueries", "TaskQueries"})
//	...
//	out, err := query.Call(ctx, "user", "42")
//
// The registry performs the identical collision and context checks and
// forwards every call to a freshly constructed part instance. It is not a
// GraphQL executor; it only dispatches.
package gqlcompose
