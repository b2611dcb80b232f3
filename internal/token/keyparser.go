package token

import (
	"encoding/base64"
	"errors"
	"strings"
)

// MinKeyBytes is the recommended minimum signing key length for HMAC-SHA256.
const MinKeyBytes = 32

// ErrEmptySigningKey means the service is configured without a signing
// secret. This is a hard trust boundary: the process must refuse to start.
var ErrEmptySigningKey = errors.New("jwt signing key is not configured")

// ParseSigningKey derives the effective HMAC key from the configured secret.
// A secret that decodes as standard base64 to at least 32 bytes is used in
// its decoded form; anything else is used as raw UTF-8 bytes.
func ParseSigningKey(secret string) ([]byte, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySigningKey
	}

	trimmed := strings.TrimSpace(secret)
	if len(trimmed)%4 == 0 {
		if decoded, err := base64.StdEncoding.DecodeString(trimmed); err == nil && len(decoded) >= MinKeyBytes {
			return decoded, nil
		}
	}

	return []byte(secret), nil
}
