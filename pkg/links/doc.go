// Package links turns incoming link URLs into LinkData without network access.
// Both URL shapes served by LinkForty are recognised: /{shortCode} and
// /{templateSlug}/{shortCode}. The short code is always the last segment.
package links
