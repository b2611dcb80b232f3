package identity

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrPasswordMismatch  = errors.New("password mismatch")
	ErrInvalidToken      = errors.New("invalid or expired provider token")
	ErrPersonLinked      = errors.New("user already linked to a person")
)

// Store persists credential records and mints the single-use provider
// tokens used for email confirmation and password reset. Lookups by
// username and email are case-insensitive.
type Store interface {
	FindByID(ctx context.Context, id int) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create persists a new user, relying on the store's own uniqueness
	// constraints rather than a pre-check. Duplicate usernames and emails
	// surface as ErrDuplicateUsername / ErrDuplicateEmail.
	Create(ctx context.Context, user *User) error

	IsUsernameTaken(ctx context.Context, username string) (bool, error)
	IsEmailTaken(ctx context.Context, email string) (bool, error)

	GetRoles(ctx context.Context, userID int) ([]string, error)
	AddToRole(ctx context.Context, userID int, role string) error

	GenerateEmailConfirmationToken(ctx context.Context, userID int) (string, error)
	// ConfirmEmail validates the provider token and flips the confirmed
	// flag exactly once. A mismatched or expired token is ErrInvalidToken.
	ConfirmEmail(ctx context.Context, userID int, providerToken string) error

	GeneratePasswordResetToken(ctx context.Context, userID int) (string, error)
	ResetPassword(ctx context.Context, userID int, providerToken, newPassword string) error

	// ChangePassword re-verifies the current password internally before
	// applying the new one. A wrong current password is ErrPasswordMismatch.
	ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error

	UpdateSecurityStamp(ctx context.Context, userID int) error

	// SetPersonLink links a person to the user. The link is set at most
	// once; relinking is ErrPersonLinked.
	SetPersonLink(ctx context.Context, userID, personID int) error
	GetUserIDByPersonID(ctx context.Context, personID int) (*int, error)

	RecordLoginFailure(ctx context.Context, userID int) error
	RecordLoginSuccess(ctx context.Context, userID int) error
}
