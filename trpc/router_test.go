package trpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context, req Request) (interface{}, error) { return nil, nil }

func TestProcedureRouter(t *testing.T) {
	users := NewRouter().Query("list", noop).Mutation("create", noop)
	root := NewRouter().Query("hello", noop).Merge("users", users).Merge("", NewRouter().Query("ping", noop))

	assert.Equal(t, []string{"hello", "ping", "users.create", "users.list"}, root.Paths())

	proc, ok := root.Procedure("users.create")
	require.True(t, ok)
	assert.Equal(t, Mutation, proc.Type)

	_, ok = root.Procedure("create")
	assert.False(t, ok)
}

func TestRequestBind(t *testing.T) {
	var in greetingInput

	require.NoError(t, Request{}.Bind(&in))
	require.NoError(t, Request{Input: []byte("null")}.Bind(&in))
	assert.Empty(t, in.Name)

	require.NoError(t, Request{Input: []byte(`{"name":"Grace"}`)}.Bind(&in))
	assert.Equal(t, "Grace", in.Name)

	err := Request{Input: []byte(`"not an object"`)}.Bind(&in)
	require.Error(t, err)
	assert.Equal(t, BadRequest, AsError(err).Code)
}
