// Package approuter is the application router mounted under /trpc.
// Real deployments replace it with their own procedures.
package approuter

import (
	"context"
	"encoding/json"
	"strings"

	"helloworld/trpc"
)

// HelloInput is the input of the hello query.
type HelloInput struct {
	Name string `json:"name"`
}

// HelloOutput is the result of the hello query.
type HelloOutput struct {
	Greeting string `json:"greeting"`
}

// New builds the application router.
func New() *trpc.ProcedureRouter {
	return trpc.NewRouter().
		Query("hello", hello).
		Mutation("echo", echo)
}

func hello(ctx context.Context, req trpc.Request) (interface{}, error) {
	var in HelloInput
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "world"
	}
	return HelloOutput{Greeting: "Hello, " + name + "!"}, nil
}

func echo(ctx context.Context, req trpc.Request) (interface{}, error) {
	if len(req.Input) == 0 {
		return nil, nil
	}
	return json.RawMessage(req.Input), nil
}
