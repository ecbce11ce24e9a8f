package trpc

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode names an RPC error class. Values match the tRPC wire names.
type ErrorCode string

const (
	ParseError           ErrorCode = "PARSE_ERROR"
	BadRequest           ErrorCode = "BAD_REQUEST"
	InternalServerError  ErrorCode = "INTERNAL_SERVER_ERROR"
	Unauthorized         ErrorCode = "UNAUTHORIZED"
	Forbidden            ErrorCode = "FORBIDDEN"
	NotFound             ErrorCode = "NOT_FOUND"
	MethodNotSupported   ErrorCode = "METHOD_NOT_SUPPORTED"
	Timeout              ErrorCode = "TIMEOUT"
	Conflict             ErrorCode = "CONFLICT"
	PreconditionFailed   ErrorCode = "PRECONDITION_FAILED"
	PayloadTooLarge      ErrorCode = "PAYLOAD_TOO_LARGE"
	UnprocessableContent ErrorCode = "UNPROCESSABLE_CONTENT"
	TooManyRequests      ErrorCode = "TOO_MANY_REQUESTS"
	ClientClosedRequest  ErrorCode = "CLIENT_CLOSED_REQUEST"
)

type codeInfo struct {
	jsonRPC int
	status  int
}

var codes = map[ErrorCode]codeInfo{
	ParseError:           {-32700, 400},
	BadRequest:           {-32600, 400},
	InternalServerError:  {-32603, 500},
	Unauthorized:         {-32001, 401},
	Forbidden:            {-32003, 403},
	NotFound:             {-32004, 404},
	MethodNotSupported:   {-32005, 405},
	Timeout:              {-32008, 408},
	Conflict:             {-32009, 409},
	PreconditionFailed:   {-32012, 412},
	PayloadTooLarge:      {-32013, 413},
	UnprocessableContent: {-32022, 422},
	TooManyRequests:      {-32029, 429},
	ClientClosedRequest:  {-32099, 499},
}

// JSONRPCCode returns the numeric JSON-RPC 2.0 code. Unknown codes map to INTERNAL_SERVER_ERROR.
func (c ErrorCode) JSONRPCCode() int {
	if info, ok := codes[c]; ok {
		return info.jsonRPC
	}
	return codes[InternalServerError].jsonRPC
}

// HTTPStatus returns the HTTP status used when the error is sent over HTTP.
func (c ErrorCode) HTTPStatus() int {
	if info, ok := codes[c]; ok {
		return info.status
	}
	return codes[InternalServerError].status
}

// Error is a typed RPC error returned by procedures and by the adapter itself.
type Error struct {
	Code    ErrorCode
	Message string

	cause    error
	internal bool
}

// NewError creates an RPC error with a client-visible message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates an RPC error with a formatted client-visible message.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// WrapError creates an RPC error that keeps cause for logging.
func WrapError(code ErrorCode, cause error, message string) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Code: code, Message: message, cause: errors.WithStack(cause)}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Cause returns the underlying error, if any.
func (e *Error) Cause() error { return e.cause }

// Unwrap supports errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.cause }

// AsError converts any error returned by a procedure into an *Error.
// Errors that are not RPC errors become INTERNAL_SERVER_ERROR and their
// message is only shown to clients in development.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return WrapError(Timeout, err, "Request timed out")
	case errors.Is(err, context.Canceled):
		return WrapError(ClientClosedRequest, err, "Client closed request")
	}
	e := WrapError(InternalServerError, err, "")
	e.internal = true
	return e
}

// publicMessage is the message sent on the wire.
func (e *Error) publicMessage(development bool) string {
	if e.internal && !development {
		return "Internal server error"
	}
	return e.Message
}
