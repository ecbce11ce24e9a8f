package trpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type greetingInput struct {
	Name string `json:"name"`
}

func testRouter() *ProcedureRouter {
	return NewRouter().
		Query("hello", func(ctx context.Context, req Request) (interface{}, error) {
			var in greetingInput
			if err := req.Bind(&in); err != nil {
				return nil, err
			}
			if in.Name == "" {
				in.Name = "world"
			}
			return map[string]string{"greeting": "Hello, " + in.Name + "!"}, nil
		}).
		Query("whoami", func(ctx context.Context, req Request) (interface{}, error) {
			return map[string]string{"ip": req.Meta.ClientIP, "request_id": req.Meta.RequestID}, nil
		}).
		Mutation("echo", func(ctx context.Context, req Request) (interface{}, error) {
			return req.Input, nil
		}).
		Query("forbidden", func(ctx context.Context, req Request) (interface{}, error) {
			return nil, NewError(Forbidden, "nope")
		}).
		Query("broken", func(ctx context.Context, req Request) (interface{}, error) {
			return nil, errors.New("database password leaked")
		}).
		Query("panics", func(ctx context.Context, req Request) (interface{}, error) {
			panic("boom")
		})
}

func newTestApp(development bool) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("request_id", "req-test")
		return c.Next()
	})
	Mount(app, "/trpc", Options{
		Router:      testRouter(),
		Development: development,
		OnError:     func(Request, *Error) {},
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

type wireResponse struct {
	Result *struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
		Data    struct {
			Code       string `json:"code"`
			HTTPStatus int    `json:"httpStatus"`
			Path       string `json:"path"`
			Stack      string `json:"stack"`
		} `json:"data"`
	} `json:"error"`
}

func decode(t *testing.T, raw []byte) wireResponse {
	t.Helper()
	var out wireResponse
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}
