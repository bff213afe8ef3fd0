package domain

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidScreenResolution is returned when ScreenResolution is not "{width}x{height}".
var ErrInvalidScreenResolution = errors.New("domain: screen resolution must be WxH")

// FingerprintRecord is the device signal set used for attribution matching.
type FingerprintRecord struct {
	UserAgent        string `json:"userAgent"`
	Timezone         string `json:"timezone"`
	Language         string `json:"language"`
	ScreenResolution string `json:"screenResolution"`
	Platform         string `json:"platform"`
	DeviceModel      string `json:"deviceModel,omitempty"`
	OSVersion        string `json:"osVersion,omitempty"`
	AppVersion       string `json:"appVersion,omitempty"`
}

// ScreenSize parses ScreenResolution into positive integer width and height.
func (f FingerprintRecord) ScreenSize() (int, int, error) {
	w, h, ok := strings.Cut(f.ScreenResolution, "x")
	if !ok {
		return 0, 0, ErrInvalidScreenResolution
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return 0, 0, ErrInvalidScreenResolution
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || width <= 0 || height <= 0 {
		return 0, 0, ErrInvalidScreenResolution
	}
	return width, height, nil
}

// ScreenResolutionOf formats a width and height the way FingerprintRecord expects.
func ScreenResolutionOf(width, height int) string {
	return strconv.Itoa(width) + "x" + strconv.Itoa(height)
}
