package auth

import (
	"unicode"

	"github.com/andrzej-wegierski/identiverse-backend/internal/apperrors"
)

// ValidatePassword enforces the account password policy. The first
// violated rule is reported as a validation error.
func ValidatePassword(pw string) error {
	if len(pw) < 10 {
		return apperrors.Validation("Password must be at least 10 characters long.")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	switch {
	case !hasUpper:
		return apperrors.Validation("Password must contain an uppercase letter.")
	case !hasLower:
		return apperrors.Validation("Password must contain a lowercase letter.")
	case !hasDigit:
		return apperrors.Validation("Password must contain a digit.")
	case !hasSymbol:
		return apperrors.Validation("Password must contain a non-alphanumeric character.")
	}
	return nil
}
