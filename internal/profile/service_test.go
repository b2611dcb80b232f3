package profile

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/andrzej-wegierski/identiverse-backend/internal/access"
	"github.com/andrzej-wegierski/identiverse-backend/internal/apperrors"
	"github.com/andrzej-wegierski/identiverse-backend/internal/identity"
	"github.com/andrzej-wegierski/identiverse-backend/internal/password"
)

type testEnv struct {
	service *Service
	repo    *MockRepository
	owner   access.Caller
	other   access.Caller
	admin   access.Caller
}

// newTestEnv wires the profile service over in-memory stores. The owner
// caller is linked to person 10; the other caller owns nothing.
func newTestEnv(t *testing.T) *testEnv {
	log := zaptest.NewLogger(t)
	store := identity.NewMockStore(password.NewHasher(password.Config{}))
	ctx := context.Background()

	ownerUser := &identity.User{Username: "owner", Email: "owner@example.com"}
	require.NoError(t, store.Create(ctx, ownerUser))
	require.NoError(t, store.SetPersonLink(ctx, ownerUser.ID, 10))

	otherUser := &identity.User{Username: "other", Email: "other@example.com"}
	require.NoError(t, store.Create(ctx, otherUser))

	repo := NewMockRepository()
	accessSvc := access.NewService(identity.NewService(store, log), repo)

	return &testEnv{
		service: NewService(repo, accessSvc, log),
		repo:    repo,
		owner:   access.Caller{UserID: ownerUser.ID, Role: identity.RoleUser, IsAuthenticated: true},
		other:   access.Caller{UserID: otherUser.ID, Role: identity.RoleUser, IsAuthenticated: true},
		admin:   access.Caller{UserID: 999, Role: identity.RoleAdmin, IsAuthenticated: true},
	}
}

func (e *testEnv) createProfile(t *testing.T, personID int, name string, profileContext Context) *IdentityProfile {
	created, err := e.repo.Create(context.Background(), personID, CreateRequest{
		DisplayName: name,
		Context:     profileContext,
	})
	require.NoError(t, err)
	return created
}

func TestService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.service.Create(ctx, env.owner, 10, CreateRequest{
		DisplayName: "Andrzej W.",
		Context:     ContextWork,
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	got, err := env.service.GetByID(ctx, env.owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Andrzej W.", got.DisplayName)

	newName := "A. Wegierski"
	updated, err := env.service.Update(ctx, env.owner, created.ID, UpdateRequest{DisplayName: &newName})
	require.NoError(t, err)
	assert.Equal(t, "A. Wegierski", updated.DisplayName)

	listed, err := env.service.ListByPerson(ctx, env.owner, 10)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	deleted, err := env.service.Delete(ctx, env.owner, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	listed, err = env.service.ListByPerson(ctx, env.owner, 10)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestService_AccessEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := env.createProfile(t, 10, "Owner profile", ContextSocial)

	t.Run("stranger cannot list", func(t *testing.T) {
		_, err := env.service.ListByPerson(ctx, env.other, 10)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("stranger cannot read a profile", func(t *testing.T) {
		_, err := env.service.GetByID(ctx, env.other, created.ID)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("missing profile reads as not found", func(t *testing.T) {
		_, err := env.service.GetByID(ctx, env.owner, 404)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("admin bypasses ownership", func(t *testing.T) {
		got, err := env.service.GetByID(ctx, env.admin, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("unauthenticated caller", func(t *testing.T) {
		_, err := env.service.ListByPerson(ctx, access.Caller{}, 10)
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	})
}

func TestPreferredOf(t *testing.T) {
	tests := []struct {
		name     string
		profiles []IdentityProfile
		context  Context
		wantID   int
		wantNil  bool
	}{
		{
			name:    "no profiles",
			context: ContextWork,
			wantNil: true,
		},
		{
			name: "no profile in the requested context",
			profiles: []IdentityProfile{
				{ID: 1, Context: ContextSocial, DisplayName: "A"},
			},
			context: ContextWork,
			wantNil: true,
		},
		{
			name: "single default wins over name order",
			profiles: []IdentityProfile{
				{ID: 1, Context: ContextWork, DisplayName: "Aardvark"},
				{ID: 2, Context: ContextWork, DisplayName: "Zebra", IsDefaultForContext: true},
			},
			context: ContextWork,
			wantID:  2,
		},
		{
			name: "lowest id wins among duplicate defaults",
			profiles: []IdentityProfile{
				{ID: 10, Context: ContextWork, DisplayName: "A", IsDefaultForContext: true},
				{ID: 5, Context: ContextWork, DisplayName: "B", IsDefaultForContext: true},
			},
			context: ContextWork,
			wantID:  5,
		},
		{
			name: "no default falls back to display name order",
			profiles: []IdentityProfile{
				{ID: 2, Context: ContextWork, DisplayName: "Bravo"},
				{ID: 1, Context: ContextWork, DisplayName: "Alpha"},
				{ID: 3, Context: ContextWork, DisplayName: "Bravo"},
			},
			context: ContextWork,
			wantID:  1,
		},
		{
			name: "equal display names tie-break by lowest id",
			profiles: []IdentityProfile{
				{ID: 3, Context: ContextWork, DisplayName: "Same"},
				{ID: 2, Context: ContextWork, DisplayName: "Same"},
			},
			context: ContextWork,
			wantID:  2,
		},
		{
			name: "other contexts are ignored",
			profiles: []IdentityProfile{
				{ID: 1, Context: ContextSocial, DisplayName: "A", IsDefaultForContext: true},
				{ID: 2, Context: ContextWork, DisplayName: "B"},
			},
			context: ContextWork,
			wantID:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PreferredOf(tt.profiles, tt.context)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestService_GetPreferredProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createProfile(t, 10, "Casual", ContextSocial)
	flagged := env.createProfile(t, 10, "Formal", ContextSocial)

	ok, err := env.service.SetDefaultProfile(ctx, env.owner, 10, flagged.ID)
	require.NoError(t, err)
	require.True(t, ok)

	preferred, err := env.service.GetPreferredProfile(ctx, env.owner, 10, ContextSocial)
	require.NoError(t, err)
	require.NotNil(t, preferred)
	assert.Equal(t, flagged.ID, preferred.ID)

	_, err = env.service.GetPreferredProfile(ctx, env.other, 10, ContextSocial)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestService_SetDefaultProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.createProfile(t, 10, "First", ContextWork)
	second := env.createProfile(t, 10, "Second", ContextWork)
	otherContext := env.createProfile(t, 10, "Gamer tag", ContextGaming)
	foreign := env.createProfile(t, 20, "Someone else", ContextWork)

	countDefaults := func(personID int, profileContext Context) (int, int) {
		profiles, err := env.repo.ListByPerson(ctx, personID)
		require.NoError(t, err)
		n, lastID := 0, 0
		for _, p := range profiles {
			if p.Context == profileContext && p.IsDefaultForContext {
				n++
				lastID = p.ID
			}
		}
		return n, lastID
	}

	t.Run("swap keeps a single default", func(t *testing.T) {
		ok, err := env.service.SetDefaultProfile(ctx, env.owner, 10, first.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = env.service.SetDefaultProfile(ctx, env.owner, 10, second.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		n, id := countDefaults(10, ContextWork)
		assert.Equal(t, 1, n)
		assert.Equal(t, second.ID, id)
	})

	t.Run("other contexts are untouched by the swap", func(t *testing.T) {
		ok, err := env.service.SetDefaultProfile(ctx, env.owner, 10, otherContext.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		n, _ := countDefaults(10, ContextWork)
		assert.Equal(t, 1, n)
	})

	t.Run("missing profile reports false", func(t *testing.T) {
		ok, err := env.service.SetDefaultProfile(ctx, env.owner, 10, 404)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("another person's profile reports false", func(t *testing.T) {
		ok, err := env.service.SetDefaultProfile(ctx, env.admin, 10, foreign.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := env.repo.GetByID(ctx, foreign.ID)
		require.NoError(t, err)
		assert.False(t, got.IsDefaultForContext)
	})

	t.Run("stranger is rejected before any lookup", func(t *testing.T) {
		_, err := env.service.SetDefaultProfile(ctx, env.other, 10, first.ID)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})
}

func TestService_SetDefaultProfile_ConcurrentSwaps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var ids []int
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		ids = append(ids, env.createProfile(t, 10, name, ContextWork).ID)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(profileID int) {
			defer wg.Done()
			_, err := env.service.SetDefaultProfile(ctx, env.owner, 10, profileID)
			assert.NoError(t, err)
		}(ids[i%len(ids)])
	}
	wg.Wait()

	profiles, err := env.repo.ListByPerson(ctx, 10)
	require.NoError(t, err)

	defaults := 0
	for _, p := range profiles {
		if p.IsDefaultForContext {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestService_UnsetDefaultProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := env.createProfile(t, 10, "Only one", ContextLegal)
	ok, err := env.service.SetDefaultProfile(ctx, env.owner, 10, p.ID)
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("clears the flag", func(t *testing.T) {
		ok, err := env.service.UnsetDefaultProfile(ctx, env.owner, 10, p.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := env.repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, got.IsDefaultForContext)

		// The context is allowed to have no default at all.
		preferred, err := env.service.GetPreferredProfile(ctx, env.owner, 10, ContextLegal)
		require.NoError(t, err)
		require.NotNil(t, preferred)
		assert.Equal(t, p.ID, preferred.ID)
	})

	t.Run("missing profile reports false", func(t *testing.T) {
		ok, err := env.service.UnsetDefaultProfile(ctx, env.owner, 10, 404)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
