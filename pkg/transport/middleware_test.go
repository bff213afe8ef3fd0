package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/linkforty/go-linkforty/pkg/retry"
)

type noDelay struct{}

func (noDelay) Next(int) time.Duration { return 0 }

func countingFunc(errs ...error) (RequestFunc, *int) {
	calls := 0
	return func(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
		calls++
		if calls <= len(errs) && errs[calls-1] != nil {
			return nil, errs[calls-1]
		}
		return json.RawMessage(`{"ok":true}`), nil
	}, &calls
}

func TestWithRetryDisabledByDefault(t *testing.T) {
	fn, calls := countingFunc(&NetworkError{Err: errors.New("offline")})
	_, err := WithRetry(noDelay{}, 0, nil)(fn)(context.Background(), "/x", RequestOptions{})
	require.Error(t, err)
	assert.Equal(t, 1, *calls)
}

func TestWithRetryRecovers(t *testing.T) {
	fn, calls := countingFunc(
		&HTTPError{StatusCode: http.StatusBadGateway},
		&NetworkError{Err: errors.New("reset")},
	)
	raw, err := WithRetry(noDelay{}, 3, nil)(fn)(context.Background(), "/x", RequestOptions{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, 3, *calls)
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	fn, calls := countingFunc(&HTTPError{StatusCode: http.StatusNotFound})
	_, err := WithRetry(noDelay{}, 3, nil)(fn)(context.Background(), "/x", RequestOptions{})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 1, *calls)
}

func TestWithRetryGivesUp(t *testing.T) {
	fail := &HTTPError{StatusCode: http.StatusInternalServerError}
	fn, calls := countingFunc(fail, fail, fail)
	_, err := WithRetry(noDelay{}, 2, nil)(fn)(context.Background(), "/x", RequestOptions{})
	assert.ErrorIs(t, err, fail)
	assert.Equal(t, 3, *calls)
}

func TestWithRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fn, calls := countingFunc(&NetworkError{Err: errors.New("offline")})
	backoff := retry.ExponentialBackoff{Base: time.Hour, Max: time.Hour}
	_, err := WithRetry(backoff, 5, nil)(fn)(ctx, "/x", RequestOptions{})
	require.Error(t, err)
	assert.Equal(t, 1, *calls)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next RequestFunc) RequestFunc {
			return func(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
				order = append(order, name)
				return next(ctx, path, opts)
			}
		}
	}
	fn, _ := countingFunc()
	_, err := Chain(fn, mark("outer"), nil, mark("inner"))(context.Background(), "/x", RequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestWithTracingRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	ok, _ := countingFunc()
	_, err := WithTracing(tracer)(ok)(context.Background(), "/api/sdk/v1/resolve/abc?fp_tz=UTC", RequestOptions{})
	require.NoError(t, err)

	failing, _ := countingFunc(&HTTPError{StatusCode: http.StatusNotFound})
	_, err = WithTracing(tracer)(failing)(context.Background(), "/api/sdk/v1/install", RequestOptions{Method: "post"})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "linkforty.api GET", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "/api/sdk/v1/resolve/abc", attrs["url.path"])

	assert.Equal(t, "linkforty.api POST", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	found := false
	for _, kv := range spans[1].Attributes() {
		if kv.Key == "http.response.status_code" {
			found = kv.Value.AsInt64() == http.StatusNotFound
		}
	}
	assert.True(t, found)
}

func TestGetAndPostHelpers(t *testing.T) {
	var seen []RequestOptions
	fn := RequestFunc(func(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
		seen = append(seen, opts)
		return json.RawMessage(`{"path":"` + path + `"}`), nil
	})

	raw, err := Get(context.Background(), fn, "/api/sdk/v1/resolve/abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"/api/sdk/v1/resolve/abc"}`, string(raw))

	_, err = Post(context.Background(), fn, "/api/sdk/v1/install", map[string]int{"attributionWindowHours": 168})
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, "GET", seen[0].Method)
	assert.Nil(t, seen[0].Body)
	assert.Equal(t, "POST", seen[1].Method)
	assert.Equal(t, map[string]int{"attributionWindowHours": 168}, seen[1].Body)
}
