package person

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockRepository is an in-memory Repository used by tests.
type MockRepository struct {
	mu      sync.Mutex
	persons map[int]*Person
	nextID  int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		persons: make(map[int]*Person),
		nextID:  1,
	}
}

func (r *MockRepository) List(_ context.Context) ([]Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Person, 0, len(r.persons))
	for _, p := range r.persons {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MockRepository) GetByID(_ context.Context, id int) (*Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.persons[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (r *MockRepository) Create(_ context.Context, req CreateRequest) (*Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	p := &Person{
		ID:            r.nextID,
		ExternalID:    uuid.New(),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PreferredName: req.PreferredName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.nextID++
	r.persons[p.ID] = p

	clone := *p
	return &clone, nil
}

func (r *MockRepository) Update(_ context.Context, id int, req UpdateRequest) (*Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.persons[id]
	if !ok {
		return nil, nil
	}

	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.PreferredName != nil {
		p.PreferredName = req.PreferredName
	}
	p.UpdatedAt = time.Now()

	clone := *p
	return &clone, nil
}

func (r *MockRepository) Delete(_ context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.persons[id]; !ok {
		return false, nil
	}
	delete(r.persons, id)
	return true, nil
}
