// Package graph declares the todo example's resolver parts and their
// composition. Run `gqlcompose generate -root tests/todo` after changing
// anything annotated here.
package graph

//gqlcompose:object Query (UserQueries, TaskQueries)
