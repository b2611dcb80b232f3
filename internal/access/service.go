package access

import (
	"context"
	"strings"

	"github.com/andrzej-wegierski/identiverse-backend/internal/apperrors"
	"github.com/andrzej-wegierski/identiverse-backend/internal/identity"
)

// Caller is the ambient identity of the request being authorized.
type Caller struct {
	UserID          int
	Role            string
	IsAuthenticated bool
}

func (c Caller) IsAdmin() bool {
	return strings.EqualFold(c.Role, identity.RoleAdmin)
}

// ProfileOwnership resolves the person owning a profile. Implemented by the
// identity-profile repository; declared here to keep the ownership walk an
// explicit pair of lookups instead of entity back-pointers.
type ProfileOwnership interface {
	GetPersonIDByProfileID(ctx context.Context, profileID int) (*int, error)
}

// Service decides whether a caller may touch a person or identity profile.
// It is the sole enforcement point; the store has no row-level security.
type Service struct {
	identity *identity.Service
	profiles ProfileOwnership
}

func NewService(identitySvc *identity.Service, profiles ProfileOwnership) *Service {
	return &Service{identity: identitySvc, profiles: profiles}
}

// CanAccessPerson allows admins unconditionally and owners of the person;
// everyone else is rejected.
func (s *Service) CanAccessPerson(ctx context.Context, caller Caller, personID int) error {
	if !caller.IsAuthenticated {
		return apperrors.Unauthorized("User is not authenticated")
	}
	if caller.IsAdmin() {
		return nil
	}

	userID, err := s.identity.GetUserIDByPersonID(ctx, personID)
	if err != nil {
		return err
	}
	if userID == nil || *userID != caller.UserID {
		return apperrors.Forbidden("User has no access to this person")
	}
	return nil
}

// EnsureCanAccessProfile walks profile -> person -> owning user and
// compares the owner to the caller.
func (s *Service) EnsureCanAccessProfile(ctx context.Context, caller Caller, profileID int) error {
	if !caller.IsAuthenticated {
		return apperrors.Unauthorized("User is not authenticated")
	}
	if caller.IsAdmin() {
		return nil
	}

	personID, err := s.profiles.GetPersonIDByProfileID(ctx, profileID)
	if err != nil {
		return err
	}
	if personID == nil {
		return apperrors.NotFound("Profile not found")
	}

	userID, err := s.identity.GetUserIDByPersonID(ctx, *personID)
	if err != nil {
		return err
	}
	if userID == nil || *userID != caller.UserID {
		return apperrors.Forbidden("User has no access to this identity profile")
	}
	return nil
}
