package domain

// UTMParameters holds the standard campaign attribution fields. Each field is
// independently optional; an empty string means the parameter was absent.
type UTMParameters struct {
	Source   string `json:"source,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty"`
	Term     string `json:"term,omitempty"`
	Content  string `json:"content,omitempty"`
}

// IsZero reports whether no UTM field is set.
func (u UTMParameters) IsZero() bool {
	return u == UTMParameters{}
}

// LinkData is the canonical attribution record delivered to host listeners.
//
// CustomParameters is nil when there are no custom keys. Callers must not
// treat an empty non-nil map and a nil map as equivalent.
type LinkData struct {
	ShortCode        string            `json:"shortCode" validate:"required"`
	UTMParameters    *UTMParameters    `json:"utmParameters,omitempty"`
	CustomParameters map[string]string `json:"customParameters,omitempty"`

	LinkID       string `json:"linkId,omitempty"`
	ClickedAt    string `json:"clickedAt,omitempty"`
	IOSURL       string `json:"iosUrl,omitempty"`
	AndroidURL   string `json:"androidUrl,omitempty"`
	WebURL       string `json:"webUrl,omitempty"`
	DeepLinkPath string `json:"deepLinkPath,omitempty"`
	AppScheme    string `json:"appScheme,omitempty"`
}

// Clone returns a deep copy so each listener invocation owns its value.
func (d *LinkData) Clone() *LinkData {
	if d == nil {
		return nil
	}
	out := *d
	if d.UTMParameters != nil {
		utm := *d.UTMParameters
		out.UTMParameters = &utm
	}
	out.CustomParameters = CloneParameters(d.CustomParameters)
	return &out
}

// CloneParameters copies a parameter map, preserving the nil/empty distinction.
func CloneParameters(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
