package attribution

import "github.com/linkforty/go-linkforty/pkg/domain"

// NormalizeDeferred turns an install report into the LinkData handed to
// deferred listeners. It returns nil for a nil report, an organic install or
// an attributed report whose payload is missing or has no short code.
//
// The payload's deepLinkParameters take precedence over customParameters
// whenever they are present, even if empty.
func NormalizeDeferred(report *domain.InstallReport) *domain.LinkData {
	if report == nil || !report.Attributed || report.DeepLinkData == nil || report.DeepLinkData.ShortCode == "" {
		return nil
	}
	payload := report.DeepLinkData
	data := payload.LinkData.Clone()
	switch {
	case payload.DeepLinkParameters != nil:
		data.CustomParameters = domain.CloneParameters(payload.DeepLinkParameters)
	case payload.CustomParameters != nil:
		data.CustomParameters = domain.CloneParameters(payload.CustomParameters)
	default:
		data.CustomParameters = nil
	}
	return data
}
