package server

import (
	"bytes"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// FiberResponseWriter adapts Fiber's context to the http.ResponseWriter interface
// so net/http handlers (the Prometheus exporter) can be mounted on the Fiber app.
type FiberResponseWriter struct {
	ctx         *fiber.Ctx
	header      http.Header
	wroteHeader bool
}

// NewFiberResponseWriter creates a new FiberResponseWriter adapter
func NewFiberResponseWriter(ctx *fiber.Ctx) *FiberResponseWriter {
	return &FiberResponseWriter{
		ctx:    ctx,
		header: make(http.Header),
	}
}

// Header returns the header map that will be sent by WriteHeader.
func (w *FiberResponseWriter) Header() http.Header {
	return w.header
}

// Write writes the data to the connection as part of an HTTP reply.
func (w *FiberResponseWriter) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ctx.Write(data)
}

// WriteHeader copies the pending headers and status to the Fiber response.
// Only the first call has an effect.
func (w *FiberResponseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	for key, values := range w.header {
		for _, value := range values {
			w.ctx.Response().Header.Add(key, value)
		}
	}
	w.ctx.Status(statusCode)
}

// HTTPHandler mounts a net/http handler as a Fiber handler.
func HTTPHandler(h http.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := http.NewRequestWithContext(c.UserContext(), c.Method(), c.OriginalURL(), bytes.NewReader(c.Body()))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		c.Request().Header.VisitAll(func(key, value []byte) {
			req.Header.Add(string(key), string(value))
		})
		req.Host = c.Hostname()
		req.RemoteAddr = c.Context().RemoteAddr().String()

		w := NewFiberResponseWriter(c)
		h.ServeHTTP(w, req)
		if !w.wroteHeader {
			w.WriteHeader(http.StatusOK)
		}
		return nil
	}
}
