package links

import (
	"github.com/linkforty/go-linkforty/pkg/domain"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
	"github.com/linkforty/go-linkforty/pkg/urlparser"
)

// ExtractLocal parses rawURL into LinkData. It returns nil when baseURL is set
// and rawURL does not start with it, when the URL cannot be parsed, or when
// the path has no segments.
func ExtractLocal(rawURL, baseURL string) *domain.LinkData {
	data, _ := extract(rawURL, baseURL)
	return data
}

func extract(rawURL, baseURL string) (*domain.LinkData, error) {
	if !MatchesBase(rawURL, baseURL) {
		return nil, nil
	}
	parsed, err := urlparser.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if len(parsed.Segments) == 0 {
		return nil, nil
	}

	data := &domain.LinkData{
		ShortCode: parsed.Segments[len(parsed.Segments)-1],
		UTMParameters: &domain.UTMParameters{
			Source:   parsed.Query[UTMSource],
			Medium:   parsed.Query[UTMMedium],
			Campaign: parsed.Query[UTMCampaign],
			Term:     parsed.Query[UTMTerm],
			Content:  parsed.Query[UTMContent],
		},
	}

	for key, value := range parsed.Query {
		if IsUTMKey(key) {
			continue
		}
		if data.CustomParameters == nil {
			data.CustomParameters = make(map[string]string)
		}
		data.CustomParameters[key] = value
	}
	return data, nil
}

// Local is the configured Extractor used by the reconciler.
type Local struct {
	baseURL string
	logger  logger.Logger
}

var _ Extractor = (*Local)(nil)

// NewLocal returns an extractor bound to baseURL.
func NewLocal(baseURL string, lgr logger.Logger) *Local {
	if lgr == nil {
		lgr = &logger.Nop{}
	}
	return &Local{baseURL: baseURL, logger: lgr}
}

// BaseURL returns the configured prefix.
func (l *Local) BaseURL() string { return l.baseURL }

// Extract implements Extractor. Parse failures are logged and reported as nil.
func (l *Local) Extract(rawURL string) *domain.LinkData {
	data, err := extract(rawURL, l.baseURL)
	if err != nil {
		l.logger.Debug("link url could not be parsed",
			logger.Field{Key: "url", Value: rawURL},
			logger.Field{Key: "error", Value: err},
		)
		return nil
	}
	if data == nil {
		l.logger.Debug("url is not a recognised link", logger.Field{Key: "url", Value: rawURL})
	}
	return data
}
