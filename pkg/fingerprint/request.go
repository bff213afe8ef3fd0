package fingerprint

import (
	"net/http"
	"strings"

	"github.com/linkforty/go-linkforty/pkg/domain"
)

// Platform names reported in FingerprintRecord.Platform.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformWeb     = "web"
	PlatformUnknown = "unknown"
)

// FromRequest builds a record from an inbound HTTP request, for hosts that
// report installs on behalf of a browser or web view. Screen size and time
// zone are not visible in headers and must be supplied by the caller.
func FromRequest(r *http.Request, timezone, screenResolution string) domain.FingerprintRecord {
	ua := r.Header.Get("User-Agent")
	return domain.FingerprintRecord{
		UserAgent:        ua,
		Timezone:         timezone,
		Language:         PrimaryLanguage(r.Header.Get("Accept-Language")),
		ScreenResolution: screenResolution,
		Platform:         DetectPlatform(ua),
	}
}

// PrimaryLanguage returns the first tag of an Accept-Language header.
func PrimaryLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(first, ";")
	return strings.TrimSpace(tag)
}

// DetectPlatform classifies a user agent.
func DetectPlatform(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case ua == "":
		return PlatformUnknown
	case strings.Contains(ua, "android"):
		return PlatformAndroid
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ipod"):
		return PlatformIOS
	case strings.Contains(ua, "mozilla"):
		return PlatformWeb
	}
	return PlatformUnknown
}
