// Package transport executes SDK API calls against the LinkForty server.
package transport

import (
	"context"
	"encoding/json"
)

// RequestOptions shape a single API call.
type RequestOptions struct {
	Method  string
	Body    any
	Headers map[string]string
}

// RequestFunc performs a server-relative API call and returns the raw JSON
// body. It fails with *HTTPError on a non-2xx status, *NetworkError when the
// server is unreachable and *DecodeError when the body is not JSON.
type RequestFunc func(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error)

// Middleware decorates a RequestFunc.
type Middleware func(next RequestFunc) RequestFunc

// Chain applies middlewares so that the first one is outermost.
func Chain(fn RequestFunc, middlewares ...Middleware) RequestFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			fn = middlewares[i](fn)
		}
	}
	return fn
}

// Get is shorthand for a GET call through fn.
func Get(ctx context.Context, fn RequestFunc, path string) (json.RawMessage, error) {
	return fn(ctx, path, RequestOptions{Method: "GET"})
}

// Post is shorthand for a JSON POST call through fn.
func Post(ctx context.Context, fn RequestFunc, path string, body any) (json.RawMessage, error) {
	return fn(ctx, path, RequestOptions{Method: "POST", Body: body})
}
