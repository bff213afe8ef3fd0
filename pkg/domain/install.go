package domain

// DeferredPayload is the link payload attached to an attributed install.
// Older backends name the custom parameter field deepLinkParameters while
// the direct resolve endpoint uses customParameters; both are kept here and
// reconciled by attribution.NormalizeDeferred.
type DeferredPayload struct {
	LinkData
	DeepLinkParameters map[string]string `json:"deepLinkParameters,omitempty"`
}

// InstallReport is the server response to an install report.
type InstallReport struct {
	InstallID       string           `json:"installId"`
	Attributed      bool             `json:"attributed"`
	ConfidenceScore float64          `json:"confidenceScore"`
	MatchedFactors  []string         `json:"matchedFactors,omitempty"`
	DeepLinkData    *DeferredPayload `json:"deepLinkData,omitempty"`
}

// InstallRequest is the body sent when reporting a fresh install.
type InstallRequest struct {
	FingerprintRecord
	AttributionWindowHours int `json:"attributionWindowHours"`
}
