package token

import (
	"encoding/base64"
	"unicode/utf8"

	"github.com/andrzej-wegierski/identiverse-backend/internal/apperrors"
)

// EncodeProviderToken wraps a provider-issued single-use token in URL-safe
// base64 so it can travel as a query parameter. The encoding carries no
// cryptographic meaning; the underlying token is the capability.
func EncodeProviderToken(raw string) string {
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeProviderToken reverses EncodeProviderToken. Malformed input is
// normalized to the same generic validation error as an unknown account so
// responses do not reveal which part of the request was wrong.
func DecodeProviderToken(encoded string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", apperrors.Validation("Invalid request")
	}
	if !utf8.Valid(raw) {
		return "", apperrors.Validation("Invalid request")
	}
	return string(raw), nil
}
