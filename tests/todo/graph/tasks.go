package graph

import (
	"fmt"
	"sort"

	"github.com/gqlcompose/gqlcompose/tests/todo/app"
)

//gqlcompose:part
type TaskQueries struct{}

func (TaskQueries) Task(ctx *app.Context, id string) (*app.Task, error) {
	t, ok := ctx.Tasks[id]
	if !ok {
		return nil, fmt.Errorf("no task %q", id)
	}
	return t, nil
}

func (TaskQueries) Tasks(ctx *app.Context) ([]*app.Task, error) {
	tasks := make([]*app.Task, 0, len(ctx.Tasks))
	for _, t := range ctx.Tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}
