package links

import (
	"strings"

	"github.com/linkforty/go-linkforty/pkg/domain"
)

// Query parameter names read into UTMParameters.
const (
	UTMSource   = "utm_source"
	UTMMedium   = "utm_medium"
	UTMCampaign = "utm_campaign"
	UTMTerm     = "utm_term"
	UTMContent  = "utm_content"

	// UTMPrefix marks parameters excluded from CustomParameters.
	UTMPrefix = "utm_"
)

// Extractor produces best-effort LinkData for a raw URL, or nil when the URL
// is not a recognised link.
type Extractor interface {
	Extract(rawURL string) *domain.LinkData
}

// Func adapts a function to the Extractor interface.
type Func func(rawURL string) *domain.LinkData

// Extract satisfies the Extractor interface.
func (f Func) Extract(rawURL string) *domain.LinkData {
	if f == nil {
		return nil
	}
	return f(rawURL)
}

// IsUTMKey reports whether key is a campaign parameter.
func IsUTMKey(key string) bool {
	return strings.HasPrefix(key, UTMPrefix)
}

// MatchesBase reports whether rawURL belongs to baseURL using an ordinal
// prefix match. An empty baseURL matches every URL.
func MatchesBase(rawURL, baseURL string) bool {
	return baseURL == "" || strings.HasPrefix(rawURL, baseURL)
}
