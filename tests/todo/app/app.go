// Package app holds the shared application state the todo resolvers run
// against.
package app

// Context carries the per-request state. Resolvers are stateless; everything
// they need lives here.
type Context struct {
	Users map[string]*User
	Tasks map[string]*Task
}

type User struct {
	ID   string
	Name string
}

type Task struct {
	ID    string
	Title string
	Done  bool
}

// NewContext returns a context seeded with a small fixture data set.
func NewContext() *Context {
	return &Context{
		Users: map[string]*User{
			"u1": {ID: "u1", Name: "Ada"},
			"u2": {ID: "u2", Name: "Grace"},
		},
		Tasks: map[string]*Task{
			"t1": {ID: "t1", Title: "write schema", Done: true},
			"t2": {ID: "t2", Title: "compose resolvers"},
		},
	}
}
