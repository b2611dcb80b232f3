package identity

import (
	"time"
)

// Roles assignable to a user. Role checks elsewhere compare
// case-insensitively against these values.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute

	confirmTokenTTL = 24 * time.Hour
	resetTokenTTL   = time.Hour
)

type User struct {
	ID               int    `gorm:"primaryKey"`
	Username         string `gorm:"uniqueIndex;not null"`
	Email            string `gorm:"uniqueIndex;not null"`
	PasswordHash     []byte `gorm:"not null"`
	PasswordSalt     []byte `gorm:"not null"`
	Role             string `gorm:"not null;default:User"`
	EmailConfirmed   bool   `gorm:"not null;default:false"`
	SecurityStamp    string `gorm:"not null"`
	FailedLoginCount int    `gorm:"not null;default:0"`
	LockedUntil      *time.Time
	PersonID         *int `gorm:"uniqueIndex"`

	ConfirmToken          *string
	ConfirmTokenExpiresAt *time.Time
	ResetToken            *string
	ResetTokenExpiresAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

// IsLockedOut reports whether the store-level lockout is active at now.
// This is independent of the in-memory login throttle.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// View is the user shape embedded in auth responses and session claims.
type View struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	PersonID *int   `json:"personId,omitempty"`
}

func (u *User) View() View {
	return View{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		PersonID: u.PersonID,
	}
}
