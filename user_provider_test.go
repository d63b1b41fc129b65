package register_test

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-register"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserStore implements register.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*register.User, error) {
	args := m.Called(ctx, email)
	return userArg(args, 0), args.Error(1)
}

func activatedUser(t *testing.T, password string) *register.User {
	t.Helper()

	hash, err := register.HashPassword(password)
	require.NoError(t, err)

	return &register.User{
		ID:           uuid.New(),
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@example.com",
		PasswordHash: hash,
		Activated:    true,
		Roles:        []*register.Role{{Name: "USER"}},
	}
}

func TestUserProvider_VerifyIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("returns identity for valid credentials", func(t *testing.T) {
		user := activatedUser(t, "Sup3rSecret")

		store := &MockUserStore{}
		store.On("GetByEmail", ctx, "jane@example.com").Return(user, nil).Once()

		provider := register.NewUserProvider(store)

		identity, err := provider.VerifyIdentity(ctx, "jane@example.com", "Sup3rSecret")

		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), identity.ID())
		assert.Equal(t, "jane@example.com", identity.Email())
		assert.Equal(t, "Jane Doe", identity.FullName())
		assert.Equal(t, []string{"USER"}, identity.Roles())

		store.AssertExpectations(t)
	})

	t.Run("unknown email reports invalid credentials", func(t *testing.T) {
		store := &MockUserStore{}
		store.On("GetByEmail", ctx, "nobody@example.com").
			Return(nil, repository.NewRecordNotFound()).Once()

		provider := register.NewUserProvider(store)

		identity, err := provider.VerifyIdentity(ctx, "nobody@example.com", "Sup3rSecret")

		assert.Nil(t, identity)
		assert.ErrorIs(t, err, register.ErrMismatchedHashAndPassword)

		store.AssertExpectations(t)
	})

	t.Run("wrong password reports the same invalid credentials error", func(t *testing.T) {
		user := activatedUser(t, "Sup3rSecret")

		store := &MockUserStore{}
		store.On("GetByEmail", ctx, "jane@example.com").Return(user, nil).Once()

		provider := register.NewUserProvider(store)

		identity, err := provider.VerifyIdentity(ctx, "jane@example.com", "wrong-password")

		assert.Nil(t, identity)
		assert.ErrorIs(t, err, register.ErrMismatchedHashAndPassword)

		store.AssertExpectations(t)
	})

	t.Run("locked account is rejected", func(t *testing.T) {
		user := activatedUser(t, "Sup3rSecret")
		user.Locked = true

		store := &MockUserStore{}
		store.On("GetByEmail", ctx, "jane@example.com").Return(user, nil).Once()

		provider := register.NewUserProvider(store)

		identity, err := provider.VerifyIdentity(ctx, "jane@example.com", "Sup3rSecret")

		assert.Nil(t, identity)
		assert.ErrorIs(t, err, register.ErrAccountLocked)

		store.AssertExpectations(t)
	})

	t.Run("deactivated account is rejected", func(t *testing.T) {
		user := activatedUser(t, "Sup3rSecret")
		user.Activated = false

		store := &MockUserStore{}
		store.On("GetByEmail", ctx, "jane@example.com").Return(user, nil).Once()

		provider := register.NewUserProvider(store)

		identity, err := provider.VerifyIdentity(ctx, "jane@example.com", "Sup3rSecret")

		assert.Nil(t, identity)
		assert.ErrorIs(t, err, register.ErrAccountNotActivated)

		store.AssertExpectations(t)
	})

	t.Run("store failures surface as internal errors", func(t *testing.T) {
		store := &MockUserStore{}
		store.On("GetByEmail", ctx, "jane@example.com").
			Return(nil, errors.New("connection refused")).Once()

		provider := register.NewUserProvider(store)

		identity, err := provider.VerifyIdentity(ctx, "jane@example.com", "Sup3rSecret")

		assert.Nil(t, identity)
		require.Error(t, err)
		assert.NotErrorIs(t, err, register.ErrMismatchedHashAndPassword)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, goerrors.CategoryInternal, richErr.Category)

		store.AssertExpectations(t)
	})
}

func TestUserProvider_FindIdentityByIdentifier(t *testing.T) {
	ctx := context.Background()

	t.Run("returns identity without checking password", func(t *testing.T) {
		user := activatedUser(t, "Sup3rSecret")

		store := &MockUserStore{}
		store.On("GetByEmail", ctx, "jane@example.com").Return(user, nil).Once()

		provider := register.NewUserProvider(store)

		identity, err := provider.FindIdentityByIdentifier(ctx, "jane@example.com")

		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", identity.Email())

		store.AssertExpectations(t)
	})

	t.Run("unknown identifier reports identity not found", func(t *testing.T) {
		store := &MockUserStore{}
		store.On("GetByEmail", ctx, "nobody@example.com").
			Return(nil, repository.NewRecordNotFound()).Once()

		provider := register.NewUserProvider(store)

		identity, err := provider.FindIdentityByIdentifier(ctx, "nobody@example.com")

		assert.Nil(t, identity)
		assert.ErrorIs(t, err, register.ErrIdentityNotFound)

		store.AssertExpectations(t)
	})
}

func TestHashPassword(t *testing.T) {
	t.Run("hashes and verifies", func(t *testing.T) {
		hash, err := register.HashPassword("Sup3rSecret")

		require.NoError(t, err)
		assert.NotEqual(t, "Sup3rSecret", hash)
		assert.NoError(t, register.ComparePasswordAndHash("Sup3rSecret", hash))
		assert.ErrorIs(t, register.ComparePasswordAndHash("other", hash), register.ErrMismatchedHashAndPassword)
	})

	t.Run("rejects empty passwords", func(t *testing.T) {
		hash, err := register.HashPassword("")

		assert.Empty(t, hash)
		assert.ErrorIs(t, err, register.ErrNoEmptyString)
	})
}
