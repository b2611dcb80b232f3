package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andrzej-wegierski/identiverse-backend/internal/password"
)

// MockStore is an in-memory Store used by tests across packages. It
// mirrors the gorm store's semantics, including case-insensitive lookups,
// uniqueness errors and single-use provider tokens.
type MockStore struct {
	mu     sync.RWMutex
	hasher *password.Hasher
	users  map[int]*User
	nextID int
}

func NewMockStore(hasher *password.Hasher) *MockStore {
	return &MockStore{
		hasher: hasher,
		users:  make(map[int]*User),
		nextID: 1,
	}
}

func (s *MockStore) FindByID(_ context.Context, id int) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *MockStore) FindByUsername(_ context.Context, username string) (*User, error) {
	return s.findBy(func(u *User) bool {
		return strings.EqualFold(u.Username, username)
	})
}

func (s *MockStore) FindByEmail(_ context.Context, email string) (*User, error) {
	return s.findBy(func(u *User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

func (s *MockStore) findBy(match func(*User) bool) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MockStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) {
			return ErrDuplicateUsername
		}
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}

	user.ID = s.nextID
	s.nextID++
	if user.SecurityStamp == "" {
		user.SecurityStamp = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MockStore) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := s.FindByUsername(ctx, username)
	if err == ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *MockStore) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	if err == ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *MockStore) GetRoles(_ context.Context, userID int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return []string{user.Role}, nil
}

func (s *MockStore) AddToRole(_ context.Context, userID int, role string) error {
	return s.update(userID, func(u *User) { u.Role = role })
}

func (s *MockStore) GenerateEmailConfirmationToken(_ context.Context, userID int) (string, error) {
	token := uuid.NewString()
	expires := time.Now().Add(confirmTokenTTL)
	err := s.update(userID, func(u *User) {
		u.ConfirmToken = &token
		u.ConfirmTokenExpiresAt = &expires
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *MockStore) ConfirmEmail(_ context.Context, userID int, providerToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if !providerTokenValid(user.ConfirmToken, user.ConfirmTokenExpiresAt, providerToken) {
		return ErrInvalidToken
	}

	user.EmailConfirmed = true
	user.ConfirmToken = nil
	user.ConfirmTokenExpiresAt = nil
	return nil
}

func (s *MockStore) GeneratePasswordResetToken(_ context.Context, userID int) (string, error) {
	token := uuid.NewString()
	expires := time.Now().Add(resetTokenTTL)
	err := s.update(userID, func(u *User) {
		u.ResetToken = &token
		u.ResetTokenExpiresAt = &expires
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *MockStore) ResetPassword(_ context.Context, userID int, providerToken, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if !providerTokenValid(user.ResetToken, user.ResetTokenExpiresAt, providerToken) {
		return ErrInvalidToken
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		return err
	}
	user.PasswordHash = s.hasher.Hash(newPassword, salt)
	user.PasswordSalt = salt
	user.ResetToken = nil
	user.ResetTokenExpiresAt = nil
	user.SecurityStamp = uuid.NewString()
	user.FailedLoginCount = 0
	user.LockedUntil = nil
	return nil
}

func (s *MockStore) ChangePassword(_ context.Context, userID int, currentPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if !s.hasher.Verify(currentPassword, user.PasswordSalt, user.PasswordHash) {
		return ErrPasswordMismatch
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		return err
	}
	user.PasswordHash = s.hasher.Hash(newPassword, salt)
	user.PasswordSalt = salt
	return nil
}

func (s *MockStore) UpdateSecurityStamp(_ context.Context, userID int) error {
	return s.update(userID, func(u *User) { u.SecurityStamp = uuid.NewString() })
}

func (s *MockStore) SetPersonLink(_ context.Context, userID, personID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if user.PersonID != nil {
		return ErrPersonLinked
	}
	user.PersonID = &personID
	return nil
}

func (s *MockStore) GetUserIDByPersonID(_ context.Context, personID int) (*int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.PersonID != nil && *u.PersonID == personID {
			id := u.ID
			return &id, nil
		}
	}
	return nil, nil
}

func (s *MockStore) RecordLoginFailure(_ context.Context, userID int) error {
	return s.update(userID, func(u *User) {
		u.FailedLoginCount++
		if u.FailedLoginCount >= maxFailedLogins {
			u.FailedLoginCount = 0
			until := time.Now().Add(lockoutDuration)
			u.LockedUntil = &until
		}
	})
}

func (s *MockStore) RecordLoginSuccess(_ context.Context, userID int) error {
	return s.update(userID, func(u *User) {
		u.FailedLoginCount = 0
		u.LockedUntil = nil
	})
}

func (s *MockStore) update(userID int, apply func(*User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	apply(user)
	user.UpdatedAt = time.Now()
	return nil
}

// MarkConfirmed flips the confirmed flag directly, bypassing the provider
// token. Test helper.
func (s *MockStore) MarkConfirmed(userID int) error {
	return s.update(userID, func(u *User) { u.EmailConfirmed = true })
}

// Lock marks the user locked out until the given time. Test helper.
func (s *MockStore) Lock(userID int, until time.Time) error {
	return s.update(userID, func(u *User) { u.LockedUntil = &until })
}
