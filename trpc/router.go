package trpc

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

// ProcedureType is the kind of a procedure: reads are queries, writes are mutations.
type ProcedureType string

const (
	Query    ProcedureType = "query"
	Mutation ProcedureType = "mutation"
)

// Meta describes the transport-level caller of a procedure.
type Meta struct {
	RequestID string
	ClientIP  string
	Protocol  string
	Header    http.Header
}

// Request is the envelope handed to a procedure.
type Request struct {
	Path  string
	Type  ProcedureType
	Input json.RawMessage
	Meta  Meta
}

// Bind decodes the request input into v. A missing or null input leaves v untouched.
func (r Request) Bind(v interface{}) error {
	trimmed := strings.TrimSpace(string(r.Input))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Input, v); err != nil {
		return WrapError(BadRequest, err, "Invalid input: "+err.Error())
	}
	return nil
}

// HandlerFunc implements a procedure.
type HandlerFunc func(ctx context.Context, req Request) (interface{}, error)

// Procedure is a single callable entry of a router.
type Procedure struct {
	Type    ProcedureType
	Handler HandlerFunc
}

// Router resolves procedure paths. The adapter treats it as opaque.
type Router interface {
	Procedure(path string) (Procedure, bool)
}

// ProcedureRouter is an in-memory Router built from registered procedures.
type ProcedureRouter struct {
	procedures map[string]Procedure
}

// NewRouter creates an empty ProcedureRouter
func NewRouter() *ProcedureRouter {
	return &ProcedureRouter{procedures: make(map[string]Procedure)}
}

// Query registers a query procedure at path.
func (r *ProcedureRouter) Query(path string, h HandlerFunc) *ProcedureRouter {
	r.procedures[path] = Procedure{Type: Query, Handler: h}
	return r
}

// Mutation registers a mutation procedure at path.
func (r *ProcedureRouter) Mutation(path string, h HandlerFunc) *ProcedureRouter {
	r.procedures[path] = Procedure{Type: Mutation, Handler: h}
	return r
}

// Merge copies every procedure of other under prefix, joined with a dot.
func (r *ProcedureRouter) Merge(prefix string, other *ProcedureRouter) *ProcedureRouter {
	for path, proc := range other.procedures {
		if prefix != "" {
			path = prefix + "." + path
		}
		r.procedures[path] = proc
	}
	return r
}

// Procedure implements Router.
func (r *ProcedureRouter) Procedure(path string) (Procedure, bool) {
	proc, ok := r.procedures[path]
	return proc, ok
}

// Paths lists the registered procedure paths in sorted order.
func (r *ProcedureRouter) Paths() []string {
	paths := make([]string, 0, len(r.procedures))
	for path := range r.procedures {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
