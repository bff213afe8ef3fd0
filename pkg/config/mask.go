package config

import (
	"strings"

	masker "github.com/goliatone/go-masker"
)

func init() {
	for _, field := range []string{"api_key", "apiKey", "encryption_key", "authorization"} {
		masker.Default.RegisterMaskField(field, "preserveEnds(2,2)")
	}
}

// Masked returns a copy of the config that is safe to log.
func (c Config) Masked() Config {
	c.APIKey = MaskSecret(c.APIKey)
	c.Storage.EncryptionKey = MaskSecret(c.Storage.EncryptionKey)
	return c
}

// MaskSecret hides all but the two leading and trailing characters of value.
func MaskSecret(value string) string {
	if value == "" {
		return ""
	}
	if masked, err := masker.Default.String("preserveEnds(2,2)", value); err == nil {
		return masked
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}
