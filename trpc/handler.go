package trpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"helloworld/metrics"
	"helloworld/utils"
)

// Options configure the HTTP adapter.
type Options struct {
	Router Router
	// Development exposes internal error messages and stacks to clients.
	Development bool
	// OnError is called for every failed procedure call. Defaults to logging
	// INTERNAL_SERVER_ERROR failures.
	OnError func(req Request, err *Error)
}

type adapter struct {
	opts Options
	ws   fiber.Handler
}

// Mount registers the adapter on r under prefix. GET calls queries, POST calls
// mutations, and a WebSocket upgrade on the prefix itself opens a socket session.
func Mount(r fiber.Router, prefix string, opts Options) {
	if opts.OnError == nil {
		opts.OnError = logError
	}
	a := &adapter{opts: opts}
	a.ws = websocket.New(a.serveSocket)

	prefix = "/" + strings.Trim(prefix, "/")
	r.All(prefix, a.handle)
	r.All(prefix+"/*", a.handle)
}

func logError(req Request, err *Error) {
	if err.Code != InternalServerError {
		return
	}
	utils.LogError("TRPC_ERROR", err, "path", req.Path, "type", req.Type, "request_id", req.Meta.RequestID)
}

type result struct {
	Data interface{} `json:"data"`
}

type errorData struct {
	Code       ErrorCode `json:"code"`
	HTTPStatus int       `json:"httpStatus"`
	Path       string    `json:"path,omitempty"`
	Stack      string    `json:"stack,omitempty"`
}

type errorShape struct {
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Data    errorData `json:"data"`
}

type response struct {
	Result *result     `json:"result,omitempty"`
	Error  *errorShape `json:"error,omitempty"`
}

func (a *adapter) shape(path string, err *Error) *errorShape {
	shape := &errorShape{
		Message: err.publicMessage(a.opts.Development),
		Code:    err.Code.JSONRPCCode(),
		Data: errorData{
			Code:       err.Code,
			HTTPStatus: err.Code.HTTPStatus(),
			Path:       path,
		},
	}
	if a.opts.Development && err.cause != nil {
		shape.Data.Stack = fmt.Sprintf("%+v", err.cause)
	}
	return shape
}

func requestMeta(c *fiber.Ctx) Meta {
	header := make(http.Header)
	c.Request().Header.VisitAll(func(key, value []byte) {
		header.Add(string(key), string(value))
	})
	requestID, _ := c.Locals("request_id").(string)
	return Meta{
		RequestID: requestID,
		ClientIP:  utils.ClientIP(c),
		Protocol:  utils.ForwardedProto(c),
		Header:    header,
	}
}

func (a *adapter) handle(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals(metaLocalsKey, requestMeta(c))
		return a.ws(c)
	}

	rawPath, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		rawPath = c.Params("*")
	}

	var procType ProcedureType
	var rawInput []byte
	switch c.Method() {
	case fiber.MethodGet:
		procType = Query
		rawInput = []byte(c.Query("input"))
	case fiber.MethodPost:
		procType = Mutation
		rawInput = append([]byte(nil), c.Body()...)
	default:
		rpcErr := Errorf(MethodNotSupported, "Unsupported %s-request to %q", c.Method(), rawPath)
		return c.Status(rpcErr.Code.HTTPStatus()).JSON(response{Error: a.shape(rawPath, rpcErr)})
	}

	meta := requestMeta(c)
	ctx := c.UserContext()

	batch := c.Query("batch")
	if batch == "1" || batch == "true" {
		return a.handleBatch(ctx, c, procType, strings.Split(rawPath, ","), rawInput, meta)
	}

	req := Request{Path: rawPath, Type: procType, Meta: meta}
	if len(rawInput) > 0 && !json.Valid(rawInput) {
		rpcErr := NewError(ParseError, "Unable to parse input as JSON")
		a.opts.OnError(req, rpcErr)
		return c.Status(rpcErr.Code.HTTPStatus()).JSON(response{Error: a.shape(rawPath, rpcErr)})
	}
	req.Input = rawInput

	resp, status := a.dispatch(ctx, req)
	return c.Status(status).JSON(resp)
}

func (a *adapter) handleBatch(ctx context.Context, c *fiber.Ctx, procType ProcedureType, paths []string, rawInput []byte, meta Meta) error {
	inputs := map[string]json.RawMessage{}
	var parseErr *Error
	if len(rawInput) > 0 {
		if err := json.Unmarshal(rawInput, &inputs); err != nil {
			parseErr = WrapError(ParseError, err, "Unable to parse batch input as a JSON object")
		}
	}

	responses := make([]response, len(paths))
	statuses := make(map[int]struct{})
	lastStatus := http.StatusOK
	for i, path := range paths {
		req := Request{Path: path, Type: procType, Input: inputs[strconv.Itoa(i)], Meta: meta}
		if parseErr != nil {
			a.opts.OnError(req, parseErr)
			responses[i] = response{Error: a.shape(path, parseErr)}
			lastStatus = parseErr.Code.HTTPStatus()
		} else {
			responses[i], lastStatus = a.dispatch(ctx, req)
		}
		statuses[lastStatus] = struct{}{}
	}

	status := lastStatus
	if len(statuses) > 1 {
		status = http.StatusMultiStatus
	}
	return c.Status(status).JSON(responses)
}

// dispatch runs one procedure call and returns its envelope and HTTP status.
func (a *adapter) dispatch(ctx context.Context, req Request) (response, int) {
	data, rpcErr := a.call(ctx, req)
	if rpcErr != nil {
		a.opts.OnError(req, rpcErr)
		return response{Error: a.shape(req.Path, rpcErr)}, rpcErr.Code.HTTPStatus()
	}
	return response{Result: &result{Data: data}}, http.StatusOK
}

func (a *adapter) call(ctx context.Context, req Request) (data interface{}, rpcErr *Error) {
	start := time.Now()
	label := req.Path
	defer func() {
		code := "OK"
		if rpcErr != nil {
			code = string(rpcErr.Code)
		}
		metrics.ObserveRPC(label, string(req.Type), code, time.Since(start))
	}()

	proc, ok := a.opts.Router.Procedure(req.Path)
	if !ok {
		label = "unknown"
		return nil, Errorf(NotFound, "No %q-procedure on path %q", req.Type, req.Path)
	}
	if proc.Type != req.Type {
		method := fiber.MethodGet
		if req.Type == Mutation {
			method = fiber.MethodPost
		}
		return nil, Errorf(MethodNotSupported, "Unsupported %s-request to %s procedure at path %q", method, proc.Type, req.Path)
	}

	defer func() {
		if r := recover(); r != nil {
			rpcErr = AsError(errors.Errorf("panic in procedure %q: %v", req.Path, r))
			data = nil
		}
	}()

	out, err := proc.Handler(ctx, req)
	if err != nil {
		return nil, AsError(err)
	}
	return out, nil
}
