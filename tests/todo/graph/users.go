package graph

import (
	"fmt"
	"sort"

	"github.com/gqlcompose/gqlcompose/tests/todo/app"
)

//gqlcompose:part
type UserQueries struct{}

// User returns one user by id.
func (UserQueries) User(ctx *app.Context, id string) (*app.User, error) {
	u, ok := ctx.Users[id]
	if !ok {
		return nil, fmt.Errorf("no user %q", id)
	}
	return u, nil
}

func (UserQueries) Users(ctx *app.Context) ([]*app.User, error) {
	users := make([]*app.User, 0, len(ctx.Users))
	for _, u := range ctx.Users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
