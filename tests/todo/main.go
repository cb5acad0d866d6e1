// Command todo demonstrates both composition paths over the same parts: the
// generated Query type and a runtime registry composite.
package main

import (
	"fmt"
	"log"

	gqlcompose "github.com/gqlcompose/gqlcompose"
	"github.com/gqlcompose/gqlcompose/tests/todo/app"
	"github.com/gqlcompose/gqlcompose/tests/todo/graph"
)

func main() {
	ctx := app.NewContext()

	query := graph.Query{}
	fmt.Println("generated fields:", query.ComposedFields())

	user, err := query.User(ctx, "u1")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("user u1: %s\n", user.Name)

	tasks, err := query.Tasks(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, task := range tasks {
		fmt.Printf("task %s: %s (done=%v)\n", task.ID, task.Title, task.Done)
	}

	// The same composition, assembled at runtime.
	reg := gqlcompose.NewRegistry()
	if err := reg.Register(graph.UserQueries{}, graph.TaskQueries{}); err != nil {
		log.Fatal(err)
	}
	runtime, err := reg.Compose("Query", []string{"UserQueries", "TaskQueries"})
	if err != nil {
		log.Fatal(err)
	}
	out, err := runtime.Call(ctx, "user", "u2")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("runtime user u2: %s\n", out.(*app.User).Name)
}
