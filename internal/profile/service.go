package profile

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/andrzej-wegierski/identiverse-backend/internal/access"
)

// Service owns identity-profile CRUD and the default-profile selection and
// swap logic. Authorization is delegated to the access-control service
// before every operation.
type Service struct {
	repo   Repository
	access *access.Service
	log    *zap.Logger
}

func NewService(repo Repository, accessSvc *access.Service, log *zap.Logger) *Service {
	return &Service{repo: repo, access: accessSvc, log: log}
}

func (s *Service) ListByPerson(ctx context.Context, caller access.Caller, personID int) ([]IdentityProfile, error) {
	if err := s.access.CanAccessPerson(ctx, caller, personID); err != nil {
		return nil, err
	}
	return s.repo.ListByPerson(ctx, personID)
}

func (s *Service) GetByID(ctx context.Context, caller access.Caller, id int) (*IdentityProfile, error) {
	if err := s.access.EnsureCanAccessProfile(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, caller access.Caller, personID int, req CreateRequest) (*IdentityProfile, error) {
	if err := s.access.CanAccessPerson(ctx, caller, personID); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, personID, req)
	if err != nil {
		return nil, err
	}
	s.log.Info("identity profile created",
		zap.Int("profile_id", created.ID),
		zap.Int("person_id", personID))
	return created, nil
}

func (s *Service) Update(ctx context.Context, caller access.Caller, id int, req UpdateRequest) (*IdentityProfile, error) {
	if err := s.access.EnsureCanAccessProfile(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, caller access.Caller, id int) (bool, error) {
	if err := s.access.EnsureCanAccessProfile(ctx, caller, id); err != nil {
		return false, err
	}
	return s.repo.Delete(ctx, id)
}

// GetPreferredProfile picks the profile to present for a (person, context)
// pair. Among flagged defaults the lowest id wins, so a duplicate-default
// invariant violation degrades predictably instead of erroring; with no
// default the lexicographically smallest display name wins, tie-broken by
// lowest id.
func (s *Service) GetPreferredProfile(ctx context.Context, caller access.Caller, personID int, profileContext Context) (*IdentityProfile, error) {
	if err := s.access.CanAccessPerson(ctx, caller, personID); err != nil {
		return nil, err
	}

	profiles, err := s.repo.ListByPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	return PreferredOf(profiles, profileContext), nil
}

// PreferredOf applies the preferred-profile selection rules to an
// already-loaded profile list.
func PreferredOf(profiles []IdentityProfile, profileContext Context) *IdentityProfile {
	var sameContext []IdentityProfile
	for _, p := range profiles {
		if p.Context == profileContext {
			sameContext = append(sameContext, p)
		}
	}
	if len(sameContext) == 0 {
		return nil
	}

	var defaults []IdentityProfile
	for _, p := range sameContext {
		if p.IsDefaultForContext {
			defaults = append(defaults, p)
		}
	}
	if len(defaults) > 0 {
		best := defaults[0]
		for _, p := range defaults[1:] {
			if p.ID < best.ID {
				best = p
			}
		}
		return &best
	}

	sort.Slice(sameContext, func(i, j int) bool {
		if sameContext[i].DisplayName != sameContext[j].DisplayName {
			return sameContext[i].DisplayName < sameContext[j].DisplayName
		}
		return sameContext[i].ID < sameContext[j].ID
	})
	return &sameContext[0]
}

// SetDefaultProfile flags a profile as the default for its context. The
// profile must belong to personID; a profile of another person reports
// "not found" rather than leaking its existence.
func (s *Service) SetDefaultProfile(ctx context.Context, caller access.Caller, personID, profileID int) (bool, error) {
	if err := s.access.CanAccessPerson(ctx, caller, personID); err != nil {
		return false, err
	}

	target, err := s.repo.GetByID(ctx, profileID)
	if err != nil {
		return false, err
	}
	if target == nil || target.PersonID != personID {
		return false, nil
	}

	ok, err := s.repo.SetAsDefault(ctx, profileID)
	if err != nil {
		return false, err
	}
	if ok {
		s.log.Info("default profile set",
			zap.Int("profile_id", profileID),
			zap.Int("person_id", personID),
			zap.String("context", string(target.Context)))
	}
	return ok, nil
}

// UnsetDefaultProfile clears the default flag, leaving the context with no
// default.
func (s *Service) UnsetDefaultProfile(ctx context.Context, caller access.Caller, personID, profileID int) (bool, error) {
	if err := s.access.CanAccessPerson(ctx, caller, personID); err != nil {
		return false, err
	}

	target, err := s.repo.GetByID(ctx, profileID)
	if err != nil {
		return false, err
	}
	if target == nil || target.PersonID != personID {
		return false, nil
	}

	return s.repo.UnsetDefault(ctx, profileID)
}
