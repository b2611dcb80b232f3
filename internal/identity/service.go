package identity

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Service exposes the identity lookups the rest of the application needs
// without handing out the full credential store.
type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// GetUserByID returns the user view for id, or nil when no such user exists.
func (s *Service) GetUserByID(ctx context.Context, id int) (*View, error) {
	user, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// LinkPersonToUser sets the user's person link. The link is set at most
// once; a second attempt reports false without touching the record.
func (s *Service) LinkPersonToUser(ctx context.Context, userID, personID int) (bool, error) {
	err := s.store.SetPersonLink(ctx, userID, personID)
	if errors.Is(err, ErrPersonLinked) || errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.log.Info("person linked to user", zap.Int("user_id", userID), zap.Int("person_id", personID))
	return true, nil
}

// GetUserIDByPersonID resolves the owning user of a person, if any.
func (s *Service) GetUserIDByPersonID(ctx context.Context, personID int) (*int, error) {
	return s.store.GetUserIDByPersonID(ctx, personID)
}
