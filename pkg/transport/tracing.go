package transport

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/linkforty/go-linkforty/pkg/transport"

// WithTracing wraps each call in a client span. A nil tracer uses the global
// provider.
func WithTracing(tracer trace.Tracer) Middleware {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return func(next RequestFunc) RequestFunc {
		return func(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
			method := strings.ToUpper(opts.Method)
			if method == "" {
				method = "GET"
			}
			route, _, _ := strings.Cut(path, "?")
			ctx, span := tracer.Start(ctx, "linkforty.api "+method,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String("http.request.method", method),
					attribute.String("url.path", route),
				))
			defer span.End()

			raw, err := next(ctx, path, opts)
			if err != nil {
				var httpErr *HTTPError
				if errors.As(err, &httpErr) {
					span.SetAttributes(attribute.Int("http.response.status_code", httpErr.StatusCode))
				}
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			span.SetStatus(codes.Ok, "")
			return raw, nil
		}
	}
}
