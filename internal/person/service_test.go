package person

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/andrzej-wegierski/identiverse-backend/internal/access"
	"github.com/andrzej-wegierski/identiverse-backend/internal/apperrors"
	"github.com/andrzej-wegierski/identiverse-backend/internal/identity"
	"github.com/andrzej-wegierski/identiverse-backend/internal/password"
)

type noOwnership struct{}

func (noOwnership) GetPersonIDByProfileID(context.Context, int) (*int, error) {
	return nil, nil
}

type testEnv struct {
	service *Service
	store   *identity.MockStore
	repo    *MockRepository
	admin   access.Caller
}

func newTestEnv(t *testing.T) *testEnv {
	log := zaptest.NewLogger(t)
	store := identity.NewMockStore(password.NewHasher(password.Config{}))
	identitySvc := identity.NewService(store, log)
	repo := NewMockRepository()

	return &testEnv{
		service: NewService(repo, identitySvc, access.NewService(identitySvc, noOwnership{}), log),
		store:   store,
		repo:    repo,
		admin:   access.Caller{UserID: 999, Role: identity.RoleAdmin, IsAuthenticated: true},
	}
}

func (e *testEnv) newUser(t *testing.T, username string) access.Caller {
	user := &identity.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, e.store.Create(context.Background(), user))
	return access.Caller{UserID: user.ID, Role: identity.RoleUser, IsAuthenticated: true}
}

func TestService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	_, err := env.repo.Create(ctx, CreateRequest{FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)

	t.Run("unauthenticated caller", func(t *testing.T) {
		_, err := env.service.List(ctx, access.Caller{})
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	})

	t.Run("regular user is rejected", func(t *testing.T) {
		_, err := env.service.List(ctx, user)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
		assert.EqualError(t, err, "User has no access to the person list")
	})

	t.Run("admin lists everyone", func(t *testing.T) {
		persons, err := env.service.List(ctx, env.admin)
		require.NoError(t, err)
		assert.Len(t, persons, 1)
	})
}

func TestService_CreateForCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	caller := env.newUser(t, "alice")

	req := CreateRequest{FirstName: "Ada", LastName: "Lovelace"}

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.service.CreateForCurrentUser(ctx,
			access.Caller{UserID: 9999, Role: identity.RoleUser, IsAuthenticated: true}, req)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
		assert.EqualError(t, err, "User not found")
	})

	t.Run("creates and links", func(t *testing.T) {
		created, err := env.service.CreateForCurrentUser(ctx, caller, req)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.NotEqual(t, 0, created.ID)
		assert.NotEmpty(t, created.ExternalID)

		userID, err := env.store.GetUserIDByPersonID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, userID)
		assert.Equal(t, caller.UserID, *userID)

		// The owner can now read their own person.
		got, err := env.service.GetByID(ctx, caller, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", got.FirstName)
	})

	t.Run("second create is a conflict", func(t *testing.T) {
		_, err := env.service.CreateForCurrentUser(ctx, caller, req)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
		assert.EqualError(t, err, "Person already exists for this user. Update instead.")
	})
}

func TestService_OwnershipScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.newUser(t, "alice")
	stranger := env.newUser(t, "bob")

	created, err := env.service.CreateForCurrentUser(ctx, owner, CreateRequest{
		FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(t, err)

	t.Run("stranger cannot read", func(t *testing.T) {
		_, err := env.service.GetByID(ctx, stranger, created.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
		assert.EqualError(t, err, "User has no access to this person")
	})

	t.Run("stranger cannot update or delete", func(t *testing.T) {
		newName := "Eve"
		_, err := env.service.Update(ctx, stranger, created.ID, UpdateRequest{FirstName: &newName})
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

		_, err = env.service.Delete(ctx, stranger, created.ID)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("owner updates their person", func(t *testing.T) {
		preferred := "Countess"
		updated, err := env.service.Update(ctx, owner, created.ID, UpdateRequest{PreferredName: &preferred})
		require.NoError(t, err)
		require.NotNil(t, updated)
		require.NotNil(t, updated.PreferredName)
		assert.Equal(t, "Countess", *updated.PreferredName)
	})

	t.Run("admin deletes any person", func(t *testing.T) {
		deleted, err := env.service.Delete(ctx, env.admin, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		got, err := env.service.GetByID(ctx, env.admin, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
