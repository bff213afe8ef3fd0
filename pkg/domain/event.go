package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResolutionSource records which producer supplied the delivered LinkData.
type ResolutionSource string

const (
	SourceRemote ResolutionSource = "remote"
	SourceLocal  ResolutionSource = "local"
	SourceNone   ResolutionSource = "none"
)

// LinkEvent is one direct-link delivery: the incoming URL and its data, if any.
type LinkEvent struct {
	ID         uuid.UUID        `json:"id"`
	URL        string           `json:"url"`
	Data       *LinkData        `json:"data"`
	Source     ResolutionSource `json:"source"`
	ReceivedAt time.Time        `json:"receivedAt"`
}

// NewLinkEvent stamps a fresh event for url.
func NewLinkEvent(url string) LinkEvent {
	return LinkEvent{
		ID:         uuid.New(),
		URL:        url,
		Source:     SourceNone,
		ReceivedAt: time.Now().UTC(),
	}
}
