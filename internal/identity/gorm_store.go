package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/andrzej-wegierski/identiverse-backend/internal/password"
)

const uniqueViolation = "23505"

type gormStore struct {
	db     *gorm.DB
	hasher *password.Hasher
}

func NewStore(db *gorm.DB, hasher *password.Hasher) Store {
	return &gormStore{db: db, hasher: hasher}
}

func (s *gormStore) FindByID(ctx context.Context, id int) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.findWhere(ctx, "LOWER(username) = LOWER(?)", username)
}

func (s *gormStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findWhere(ctx, "LOWER(email) = LOWER(?)", email)
}

func (s *gormStore) findWhere(ctx context.Context, query string, arg interface{}) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) Create(ctx context.Context, user *User) error {
	if user.SecurityStamp == "" {
		user.SecurityStamp = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}

	err := s.db.WithContext(ctx).Create(user).Error
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "idx_users_username":
			return ErrDuplicateUsername
		case "idx_users_email":
			return ErrDuplicateEmail
		}
	}
	return err
}

func (s *gormStore) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "LOWER(username) = LOWER(?)", username)
}

func (s *gormStore) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "LOWER(email) = LOWER(?)", email)
}

func (s *gormStore) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *gormStore) GetRoles(ctx context.Context, userID int) ([]string, error) {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return []string{user.Role}, nil
}

func (s *gormStore) AddToRole(ctx context.Context, userID int, role string) error {
	return s.updateColumns(ctx, userID, map[string]interface{}{"role": role})
}

func (s *gormStore) GenerateEmailConfirmationToken(ctx context.Context, userID int) (string, error) {
	token := uuid.NewString()
	expires := time.Now().Add(confirmTokenTTL)
	err := s.updateColumns(ctx, userID, map[string]interface{}{
		"confirm_token":            token,
		"confirm_token_expires_at": expires,
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *gormStore) ConfirmEmail(ctx context.Context, userID int, providerToken string) error {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !providerTokenValid(user.ConfirmToken, user.ConfirmTokenExpiresAt, providerToken) {
		return ErrInvalidToken
	}

	return s.updateColumns(ctx, userID, map[string]interface{}{
		"email_confirmed":          true,
		"confirm_token":            nil,
		"confirm_token_expires_at": nil,
	})
}

func (s *gormStore) GeneratePasswordResetToken(ctx context.Context, userID int) (string, error) {
	token := uuid.NewString()
	expires := time.Now().Add(resetTokenTTL)
	err := s.updateColumns(ctx, userID, map[string]interface{}{
		"reset_token":            token,
		"reset_token_expires_at": expires,
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *gormStore) ResetPassword(ctx context.Context, userID int, providerToken, newPassword string) error {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !providerTokenValid(user.ResetToken, user.ResetTokenExpiresAt, providerToken) {
		return ErrInvalidToken
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		return err
	}

	return s.updateColumns(ctx, userID, map[string]interface{}{
		"password_hash":          s.hasher.Hash(newPassword, salt),
		"password_salt":          salt,
		"reset_token":            nil,
		"reset_token_expires_at": nil,
		"security_stamp":         uuid.NewString(),
		"failed_login_count":     0,
		"locked_until":           nil,
	})
}

func (s *gormStore) ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(currentPassword, user.PasswordSalt, user.PasswordHash) {
		return ErrPasswordMismatch
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		return err
	}

	return s.updateColumns(ctx, userID, map[string]interface{}{
		"password_hash": s.hasher.Hash(newPassword, salt),
		"password_salt": salt,
	})
}

func (s *gormStore) UpdateSecurityStamp(ctx context.Context, userID int) error {
	return s.updateColumns(ctx, userID, map[string]interface{}{"security_stamp": uuid.NewString()})
}

func (s *gormStore) SetPersonLink(ctx context.Context, userID, personID int) error {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.PersonID != nil {
		return ErrPersonLinked
	}
	return s.updateColumns(ctx, userID, map[string]interface{}{"person_id": personID})
}

func (s *gormStore) GetUserIDByPersonID(ctx context.Context, personID int) (*int, error) {
	var user User
	err := s.db.WithContext(ctx).Select("id").Where("person_id = ?", personID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user.ID, nil
}

func (s *gormStore) RecordLoginFailure(ctx context.Context, userID int) error {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	count := user.FailedLoginCount + 1
	updates := map[string]interface{}{"failed_login_count": count}
	if count >= maxFailedLogins {
		updates["failed_login_count"] = 0
		updates["locked_until"] = time.Now().Add(lockoutDuration)
	}
	return s.updateColumns(ctx, userID, updates)
}

func (s *gormStore) RecordLoginSuccess(ctx context.Context, userID int) error {
	return s.updateColumns(ctx, userID, map[string]interface{}{
		"failed_login_count": 0,
		"locked_until":       nil,
	})
}

func (s *gormStore) updateColumns(ctx context.Context, userID int, updates map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func providerTokenValid(stored *string, expiresAt *time.Time, presented string) bool {
	if stored == nil || presented == "" || *stored != presented {
		return false
	}
	return expiresAt != nil && time.Now().Before(*expiresAt)
}
