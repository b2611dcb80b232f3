package person

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/andrzej-wegierski/identiverse-backend/internal/access"
	"github.com/andrzej-wegierski/identiverse-backend/internal/apperrors"
	"github.com/andrzej-wegierski/identiverse-backend/internal/identity"
)

// Service owns person CRUD. Every read or mutation of a specific person
// passes through the access-control service first.
type Service struct {
	repo     Repository
	identity *identity.Service
	access   *access.Service
	log      *zap.Logger
}

func NewService(repo Repository, identitySvc *identity.Service, accessSvc *access.Service, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		identity: identitySvc,
		access:   accessSvc,
		log:      log,
	}
}

// List returns all persons. Admin-only; there is no ownership scope that
// makes a full listing meaningful for a regular user.
func (s *Service) List(ctx context.Context, caller access.Caller) ([]Person, error) {
	if !caller.IsAuthenticated {
		return nil, apperrors.Unauthorized("User is not authenticated")
	}
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("User has no access to the person list")
	}
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, caller access.Caller, id int) (*Person, error) {
	if err := s.access.CanAccessPerson(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Person, error) {
	created, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info("person created", zap.Int("person_id", created.ID))
	return created, nil
}

// CreateForCurrentUser creates a person and links it to the calling user.
// A user may own at most one person; a second create is a conflict.
func (s *Service) CreateForCurrentUser(ctx context.Context, caller access.Caller, req CreateRequest) (*Person, error) {
	if !caller.IsAuthenticated {
		return nil, apperrors.Unauthorized("User is not authenticated")
	}

	user, err := s.identity.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.log.Warn("person create attempted for unknown user", zap.Int("user_id", caller.UserID))
		return nil, apperrors.NotFound("User not found")
	}
	if user.PersonID != nil {
		return nil, apperrors.Conflict("Person already exists for this user. Update instead.")
	}

	created, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	linked, err := s.identity.LinkPersonToUser(ctx, user.ID, created.ID)
	if err != nil {
		return nil, err
	}
	if !linked {
		s.log.Error("failed to link user to created person",
			zap.Int("user_id", user.ID),
			zap.Int("person_id", created.ID))
		return nil, fmt.Errorf("failed to link user %d to created person %d", user.ID, created.ID)
	}

	s.log.Info("person created and linked",
		zap.Int("person_id", created.ID),
		zap.Int("user_id", user.ID))
	return created, nil
}

func (s *Service) Update(ctx context.Context, caller access.Caller, id int, req UpdateRequest) (*Person, error) {
	if err := s.access.CanAccessPerson(ctx, caller, id); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		s.log.Info("person updated", zap.Int("person_id", id))
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, caller access.Caller, id int) (bool, error) {
	if err := s.access.CanAccessPerson(ctx, caller, id); err != nil {
		return false, err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info("person deleted", zap.Int("person_id", id))
	}
	return deleted, nil
}
