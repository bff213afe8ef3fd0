// Package urlparser splits raw link URLs into path segments and query
// parameters by plain string scanning. It does not use net/url so that
// behavior is identical to the parsers shipped in the mobile SDKs.
package urlparser

import (
	"errors"
	"strings"
)

var (
	// ErrMissingScheme is returned when the input has no "://" separator.
	ErrMissingScheme = errors.New("urlparser: missing scheme separator")
	// ErrMalformedEscape is returned for a bad percent escape or invalid UTF-8.
	ErrMalformedEscape = errors.New("urlparser: malformed percent escape")
)

// ParsedURL is the result of Parse. Values are percent-decoded.
type ParsedURL struct {
	Path     string
	Segments []string
	Query    map[string]string
}

// Parse extracts the path and query parameters from raw. Everything after the
// first "#" is ignored. When a key repeats, the last occurrence wins.
func Parse(raw string) (ParsedURL, error) {
	sep := strings.Index(raw, "://")
	if sep < 0 {
		return ParsedURL{}, ErrMissingScheme
	}
	rest := raw[sep+3:]
	if hash := strings.IndexByte(rest, '#'); hash >= 0 {
		rest = rest[:hash]
	}

	query := ""
	hasQuery := false
	if q := strings.IndexByte(rest, '?'); q >= 0 {
		query = rest[q+1:]
		rest = rest[:q]
		hasQuery = true
	}

	path := "/"
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		path = rest[slash:]
	}

	segments, err := splitSegments(path)
	if err != nil {
		return ParsedURL{}, err
	}

	params := map[string]string{}
	if hasQuery {
		params, err = parseQuery(query)
		if err != nil {
			return ParsedURL{}, err
		}
	}

	return ParsedURL{
		Path:     path,
		Segments: segments,
		Query:    params,
	}, nil
}

func splitSegments(path string) ([]string, error) {
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		decoded, err := DecodeComponent(part)
		if err != nil {
			return nil, err
		}
		if decoded == "" {
			continue
		}
		segments = append(segments, decoded)
	}
	return segments, nil
}

func parseQuery(query string) (map[string]string, error) {
	params := make(map[string]string)
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := DecodeComponent(rawKey)
		if err != nil {
			return nil, err
		}
		value, err := DecodeComponent(rawValue)
		if err != nil {
			return nil, err
		}
		if key == "" {
			continue
		}
		params[key] = value
	}
	return params, nil
}
