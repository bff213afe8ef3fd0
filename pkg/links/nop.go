package links

import "github.com/linkforty/go-linkforty/pkg/domain"

// NopExtractor recognises nothing.
type NopExtractor struct{}

var _ Extractor = (*NopExtractor)(nil)

// Extract always returns nil.
func (n *NopExtractor) Extract(rawURL string) *domain.LinkData { return nil }
