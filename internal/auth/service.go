package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/andrzej-wegierski/identiverse-backend/internal/apperrors"
	"github.com/andrzej-wegierski/identiverse-backend/internal/config"
	"github.com/andrzej-wegierski/identiverse-backend/internal/email"
	"github.com/andrzej-wegierski/identiverse-backend/internal/identity"
	"github.com/andrzej-wegierski/identiverse-backend/internal/password"
	"github.com/andrzej-wegierski/identiverse-backend/internal/throttle"
	"github.com/andrzej-wegierski/identiverse-backend/internal/token"
)

// AuthResponse carries the session token issued for a user together with
// its expiry and the user view embedded in it.
type AuthResponse struct {
	AccessToken string        `json:"accessToken"`
	Expires     time.Time     `json:"expires"`
	User        identity.View `json:"user"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	PersonID *int   `json:"personId,omitempty"`
}

type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// Service composes the credential store, password hasher, throttles, token
// issuer and email sender into the authentication flows.
type Service struct {
	config        *config.AuthConfig
	log           *zap.Logger
	store         identity.Store
	hasher        *password.Hasher
	issuer        *token.Issuer
	loginThrottle *throttle.Throttle
	emailThrottle *throttle.Throttle
	sender        email.Sender
	links         *email.Links
}

type ServiceParams struct {
	Config        *config.AuthConfig
	Logger        *zap.Logger
	Store         identity.Store
	Hasher        *password.Hasher
	Issuer        *token.Issuer
	LoginThrottle *throttle.Throttle
	EmailThrottle *throttle.Throttle
	Sender        email.Sender
	Links         *email.Links
}

func NewService(p ServiceParams) *Service {
	return &Service{
		config:        p.Config,
		log:           p.Logger,
		store:         p.Store,
		hasher:        p.Hasher,
		issuer:        p.Issuer,
		loginThrottle: p.LoginThrottle,
		emailThrottle: p.EmailThrottle,
		sender:        p.Sender,
		links:         p.Links,
	}
}

// Register creates a credential record, emails a confirmation link and
// issues a session token immediately. Login stays blocked until the email
// is confirmed; registration itself is not.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		return nil, err
	}

	user := &identity.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: s.hasher.Hash(req.Password, salt),
		PasswordSalt: salt,
		PersonID:     req.PersonID,
	}

	// Uniqueness is enforced by the store's own constraints, not a
	// pre-check, so concurrent registrations cannot race past it.
	if err := s.store.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, identity.ErrDuplicateUsername):
			return nil, apperrors.Conflict("Username already exists")
		case errors.Is(err, identity.ErrDuplicateEmail):
			return nil, apperrors.Conflict("Email already exists")
		default:
			return nil, err
		}
	}

	if err := s.store.AddToRole(ctx, user.ID, identity.RoleUser); err != nil {
		return nil, err
	}
	user.Role = identity.RoleUser

	if err := s.sendConfirmationEmail(ctx, user); err != nil {
		if s.config.FailRegistrationOnEmailError {
			return nil, err
		}
		s.log.Error("failed to send confirmation email",
			zap.Int("user_id", user.ID),
			zap.Error(err))
	}

	return s.createAuthResponse(user)
}

// Login authenticates by username or email. Failures for unknown accounts
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	key := req.UsernameOrEmail
	if !s.loginThrottle.IsAllowed(key) {
		return nil, apperrors.TooManyRequests("Too many login attempts. Please try again later.")
	}

	user, err := s.store.FindByUsername(ctx, req.UsernameOrEmail)
	if errors.Is(err, identity.ErrUserNotFound) {
		user, err = s.store.FindByEmail(ctx, req.UsernameOrEmail)
	}
	if errors.Is(err, identity.ErrUserNotFound) {
		s.loginThrottle.RegisterAttempt(key)
		return nil, apperrors.Unauthorized("Invalid username or password")
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordSalt, user.PasswordHash) {
		if err := s.store.RecordLoginFailure(ctx, user.ID); err != nil {
			s.log.Error("failed to record login failure", zap.Error(err))
		}
		s.loginThrottle.RegisterAttempt(key)
		return nil, apperrors.Unauthorized("Invalid username or password")
	}

	if user.IsLockedOut(time.Now()) {
		return nil, apperrors.Forbidden("User is locked due to multiple failed login attempts.")
	}

	if !user.EmailConfirmed {
		s.loginThrottle.RegisterAttempt(key)
		return nil, apperrors.EmailNotConfirmed("Email is not confirmed")
	}

	if err := s.store.RecordLoginSuccess(ctx, user.ID); err != nil {
		s.log.Error("failed to record login success", zap.Error(err))
	}
	s.loginThrottle.RegisterSuccess(key)

	return s.createAuthResponse(user)
}

// ForgotPassword dispatches a reset link when the account exists and is
// confirmed, and succeeds silently otherwise so callers cannot probe for
// accounts.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	if !s.emailThrottle.IsAllowed(emailAddr) {
		return apperrors.TooManyRequests("Too many requests. Please try again later.")
	}
	s.emailThrottle.RegisterAttempt(emailAddr)

	user, err := s.store.FindByEmail(ctx, emailAddr)
	if errors.Is(err, identity.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !user.EmailConfirmed {
		return nil
	}

	raw, err := s.store.GeneratePasswordResetToken(ctx, user.ID)
	if err != nil {
		return err
	}

	link := s.links.ResetPassword(user.Email, token.EncodeProviderToken(raw))
	if err := s.sender.Send(ctx, user.Email, "Reset Password",
		"You can reset your password using this link: "+link); err != nil {
		s.log.Error("failed to send password reset email",
			zap.Int("user_id", user.ID),
			zap.Error(err))
	}
	return nil
}

// ResetPassword applies a new password using an emailed reset token. Every
// failure mode maps to a generic validation error.
func (s *Service) ResetPassword(ctx context.Context, emailAddr, encodedToken, newPassword string) error {
	raw, err := token.DecodeProviderToken(encodedToken)
	if err != nil {
		return err
	}

	user, err := s.store.FindByEmail(ctx, emailAddr)
	if errors.Is(err, identity.ErrUserNotFound) {
		return apperrors.Validation("Invalid request")
	}
	if err != nil {
		return err
	}

	if err := ValidatePassword(newPassword); err != nil {
		return apperrors.Validation("Failed to reset password.")
	}

	if err := s.store.ResetPassword(ctx, user.ID, raw, newPassword); err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return apperrors.Validation("Failed to reset password.")
		}
		return err
	}
	return nil
}

// ResendConfirmationEmail re-sends the confirmation link. Unlike
// ForgotPassword this flow is loud about an already confirmed email; a
// confirmed account's state is not considered sensitive to disclose.
func (s *Service) ResendConfirmationEmail(ctx context.Context, emailAddr string) error {
	if !s.emailThrottle.IsAllowed(emailAddr) {
		return apperrors.TooManyRequests("Too many requests. Please try again later.")
	}
	s.emailThrottle.RegisterAttempt(emailAddr)

	user, err := s.store.FindByEmail(ctx, emailAddr)
	if errors.Is(err, identity.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.EmailConfirmed {
		return apperrors.Conflict("Email is already confirmed")
	}

	return s.sendConfirmationEmail(ctx, user)
}

// ConfirmEmail validates an emailed confirmation token. Returns false when
// the email was already confirmed, true when this call confirmed it.
func (s *Service) ConfirmEmail(ctx context.Context, emailAddr, encodedToken string) (bool, error) {
	raw, err := token.DecodeProviderToken(encodedToken)
	if err != nil {
		return false, err
	}

	user, err := s.store.FindByEmail(ctx, emailAddr)
	if errors.Is(err, identity.ErrUserNotFound) {
		return false, apperrors.Validation("Invalid request")
	}
	if err != nil {
		return false, err
	}
	if user.EmailConfirmed {
		return false, nil
	}

	if err := s.store.ConfirmEmail(ctx, user.ID, raw); err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return false, apperrors.Validation("Failed to confirm email")
		}
		return false, err
	}
	return true, nil
}

// ChangePassword rotates the password for an authenticated user and
// refreshes the security stamp so stale authorization state is rejected.
func (s *Service) ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	user, err := s.store.FindByID(ctx, userID)
	if errors.Is(err, identity.ErrUserNotFound) {
		return apperrors.Unauthorized("User not found")
	}
	if err != nil {
		return err
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	if err := s.store.ChangePassword(ctx, user.ID, currentPassword, newPassword); err != nil {
		if errors.Is(err, identity.ErrPasswordMismatch) {
			return apperrors.Unauthorized("Invalid current password")
		}
		return apperrors.Validation("Failed to change password")
	}

	return s.store.UpdateSecurityStamp(ctx, user.ID)
}

func (s *Service) sendConfirmationEmail(ctx context.Context, user *identity.User) error {
	raw, err := s.store.GenerateEmailConfirmationToken(ctx, user.ID)
	if err != nil {
		return err
	}

	link := s.links.ConfirmEmail(user.Email, token.EncodeProviderToken(raw))
	return s.sender.Send(ctx, user.Email, "Confirm your email",
		"Please confirm your account using this link: "+link)
}

func (s *Service) createAuthResponse(user *identity.User) (*AuthResponse, error) {
	accessToken, expires, err := s.issuer.Issue(user.ID, user.Username, user.Role, user.PersonID, time.Now())
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		AccessToken: accessToken,
		Expires:     expires,
		User:        user.View(),
	}, nil
}
