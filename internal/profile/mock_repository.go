package profile

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockRepository is an in-memory Repository used by tests. SetAsDefault
// holds the lock for the whole swap, mirroring the transactional gorm
// implementation.
type MockRepository struct {
	mu       sync.Mutex
	profiles map[int]*IdentityProfile
	nextID   int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		profiles: make(map[int]*IdentityProfile),
		nextID:   1,
	}
}

func (r *MockRepository) ListByPerson(_ context.Context, personID int) ([]IdentityProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []IdentityProfile
	for _, p := range r.profiles {
		if p.PersonID == personID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Context != out[j].Context {
			return out[i].Context < out[j].Context
		}
		if out[i].IsDefaultForContext != out[j].IsDefaultForContext {
			return out[i].IsDefaultForContext
		}
		return out[i].DisplayName < out[j].DisplayName
	})
	return out, nil
}

func (r *MockRepository) GetByID(_ context.Context, id int) (*IdentityProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (r *MockRepository) Create(_ context.Context, personID int, req CreateRequest) (*IdentityProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	p := &IdentityProfile{
		ID:          r.nextID,
		PersonID:    personID,
		DisplayName: req.DisplayName,
		Context:     req.Context,
		BirthDate:   req.BirthDate,
		Title:       req.Title,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.nextID++
	r.profiles[p.ID] = p

	clone := *p
	return &clone, nil
}

func (r *MockRepository) Update(_ context.Context, id int, req UpdateRequest) (*IdentityProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}

	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.BirthDate != nil {
		p.BirthDate = req.BirthDate
	}
	if req.Title != nil {
		p.Title = req.Title
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.Phone != nil {
		p.Phone = req.Phone
	}
	if req.Address != nil {
		p.Address = req.Address
	}
	p.UpdatedAt = time.Now()

	clone := *p
	return &clone, nil
}

func (r *MockRepository) Delete(_ context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[id]; !ok {
		return false, nil
	}
	delete(r.profiles, id)
	return true, nil
}

func (r *MockRepository) GetPersonIDByProfileID(_ context.Context, profileID int) (*int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[profileID]
	if !ok {
		return nil, nil
	}
	personID := p.PersonID
	return &personID, nil
}

func (r *MockRepository) SetAsDefault(_ context.Context, profileID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.profiles[profileID]
	if !ok {
		return false, nil
	}

	now := time.Now()
	for _, p := range r.profiles {
		if p.ID != target.ID && p.PersonID == target.PersonID &&
			p.Context == target.Context && p.IsDefaultForContext {
			p.IsDefaultForContext = false
			p.UpdatedAt = now
		}
	}
	target.IsDefaultForContext = true
	target.UpdatedAt = now
	return true, nil
}

func (r *MockRepository) UnsetDefault(_ context.Context, profileID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[profileID]
	if !ok {
		return false, nil
	}
	p.IsDefaultForContext = false
	p.UpdatedAt = time.Now()
	return true, nil
}
