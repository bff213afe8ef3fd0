// Package resolver asks the LinkForty server for the full data behind a link.
//
// Resolution is best effort. Every failure is logged and reported as a nil
// result so callers can fall back to locally extracted data.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/fingerprint"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
	"github.com/linkforty/go-linkforty/pkg/interfaces/metrics"
	"github.com/linkforty/go-linkforty/pkg/transport"
	"github.com/linkforty/go-linkforty/pkg/urlparser"
)

// ResolvePrefix is the server path all resolve endpoints live under.
const ResolvePrefix = "/api/sdk/v1/resolve/"

var (
	ErrMissingRequest = errors.New("resolver: request function is required")
	ErrEmptyResponse  = errors.New("resolver: empty response body")
)

// Remote resolves a raw URL to server-side link data, or nil.
type Remote interface {
	Resolve(ctx context.Context, rawURL string) *domain.LinkData
}

// Func adapts a function to the Remote interface.
type Func func(ctx context.Context, rawURL string) *domain.LinkData

// Resolve satisfies the Remote interface.
func (f Func) Resolve(ctx context.Context, rawURL string) *domain.LinkData {
	if f == nil {
		return nil
	}
	return f(ctx, rawURL)
}

// Dependencies wires the resolver.
type Dependencies struct {
	Request     transport.RequestFunc
	Fingerprint fingerprint.Provider
	Logger      logger.Logger
	Metrics     metrics.Collector
}

// Resolver calls the resolve endpoint for a link URL.
type Resolver struct {
	request     transport.RequestFunc
	fingerprint fingerprint.Provider
	logger      logger.Logger
	metrics     metrics.Collector
	validate    *validator.Validate
}

var _ Remote = (*Resolver)(nil)

// New validates dependencies and returns a Resolver.
func New(deps Dependencies) (*Resolver, error) {
	if deps.Request == nil {
		return nil, ErrMissingRequest
	}
	if deps.Fingerprint == nil {
		deps.Fingerprint = &fingerprint.Nop{}
	}
	if deps.Metrics == nil {
		deps.Metrics = &metrics.Nop{}
	}
	return &Resolver{
		request:     deps.Request,
		fingerprint: deps.Fingerprint,
		logger:      logger.Component(deps.Logger, "resolver"),
		metrics:     deps.Metrics,
		validate:    validator.New(),
	}, nil
}

// Resolve returns the server's LinkData for rawURL or nil. It performs a
// single request and never returns an error.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) *domain.LinkData {
	parsed, err := urlparser.Parse(rawURL)
	if err != nil {
		r.logger.Debug("skipping remote resolution: unparseable url",
			logger.Field{Key: "url", Value: rawURL},
			logger.Field{Key: "error", Value: err},
		)
		r.record("skipped")
		return nil
	}
	path, ok := EndpointPath(parsed.Segments)
	if !ok {
		r.logger.Debug("skipping remote resolution: no short code", logger.Field{Key: "url", Value: rawURL})
		r.record("skipped")
		return nil
	}

	fp, err := r.fingerprint.Collect(ctx)
	if err != nil {
		r.logger.Warn("fingerprint unavailable, resolving without it", logger.Field{Key: "error", Value: err})
	} else if query := FingerprintQuery(fp); query != "" {
		path += "?" + query
	}

	raw, err := transport.Get(ctx, r.request, path)
	if err != nil {
		r.logger.Warn("remote resolution failed, falling back to local data",
			logger.Field{Key: "url", Value: rawURL},
			logger.Field{Key: "error", Value: err},
		)
		r.record("error")
		return nil
	}

	data, err := r.decode(raw)
	if err != nil {
		r.logger.Warn("remote resolution returned unusable data",
			logger.Field{Key: "url", Value: rawURL},
			logger.Field{Key: "error", Value: err},
		)
		r.record("error")
		return nil
	}
	r.record("ok")
	return data
}

func (r *Resolver) decode(raw json.RawMessage) (*domain.LinkData, error) {
	var data *domain.LinkData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrEmptyResponse
	}
	if err := r.validate.Struct(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (r *Resolver) record(outcome string) {
	r.metrics.Record(metrics.OpResolve, map[string]string{metrics.LabelOutcome: outcome})
}

// EndpointPath maps link path segments to a resolve endpoint. Two or more
// segments select the template-slug form built from the first two; a single
// segment selects the bare short-code form.
func EndpointPath(segments []string) (string, bool) {
	switch {
	case len(segments) == 0:
		return "", false
	case len(segments) == 1:
		return ResolvePrefix + urlparser.EncodeComponent(segments[0]), true
	default:
		return ResolvePrefix + urlparser.EncodeComponent(segments[0]) + "/" + urlparser.EncodeComponent(segments[1]), true
	}
}

// FingerprintQuery renders fp as fp_* query parameters in a fixed order.
// fp_sw and fp_sh are omitted when the screen resolution cannot be parsed,
// fp_pv when the OS version is unknown.
func FingerprintQuery(fp domain.FingerprintRecord) string {
	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(urlparser.EncodeComponent(value))
	}

	add("fp_tz", fp.Timezone)
	add("fp_lang", fp.Language)
	if w, h, err := fp.ScreenSize(); err == nil {
		add("fp_sw", strconv.Itoa(w))
		add("fp_sh", strconv.Itoa(h))
	}
	add("fp_platform", fp.Platform)
	if fp.OSVersion != "" {
		add("fp_pv", fp.OSVersion)
	}
	return b.String()
}
