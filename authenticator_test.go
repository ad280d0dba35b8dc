package contacts_test

import (
	"context"
	"testing"
	"time"

	contacts "github.com/goliatone/go-contacts"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func confirmedUser(email, password string) *contacts.User {
	hash, err := contacts.HashPassword(password)
	if err != nil {
		panic(err)
	}
	return &contacts.User{
		ID:           uuid.New(),
		Username:     "tester",
		Email:        email,
		PasswordHash: hash,
		Confirmed:    true,
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful login", func(t *testing.T) {
		store := new(MockUserStore)
		user := confirmedUser("user@example.com", "password123")

		store.On("GetByEmail", ctx, "user@example.com").Return(user, nil)
		store.On("UpdateRefreshToken", ctx, user, mock.Anything).Return(nil)

		auther := contacts.NewAuthenticator(store, newMockConfig())

		pair, err := auther.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)
		require.NotNil(t, pair)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, "bearer", pair.TokenType)

		claims, err := auther.TokenService().Validate(pair.AccessToken, contacts.ScopeAccess)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", claims.Subject())

		claims, err = auther.TokenService().Validate(pair.RefreshToken, contacts.ScopeRefresh)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", claims.Subject())

		store.AssertCalled(t, "UpdateRefreshToken", ctx, user, mock.Anything)
	})

	t.Run("Unknown email", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("GetByEmail", ctx, "nobody@example.com").
			Return(nil, repository.NewRecordNotFound())

		auther := contacts.NewAuthenticator(store, newMockConfig())

		pair, err := auther.Login(ctx, "nobody@example.com", "password123")
		assert.ErrorIs(t, err, contacts.ErrInvalidEmail)
		assert.Nil(t, pair)
	})

	t.Run("Email not confirmed", func(t *testing.T) {
		store := new(MockUserStore)
		user := confirmedUser("user@example.com", "password123")
		user.Confirmed = false

		store.On("GetByEmail", ctx, "user@example.com").Return(user, nil)

		auther := contacts.NewAuthenticator(store, newMockConfig())

		pair, err := auther.Login(ctx, "user@example.com", "password123")
		assert.ErrorIs(t, err, contacts.ErrEmailNotConfirmed)
		assert.Nil(t, pair)
	})

	t.Run("Wrong password", func(t *testing.T) {
		store := new(MockUserStore)
		user := confirmedUser("user@example.com", "password123")

		store.On("GetByEmail", ctx, "user@example.com").Return(user, nil)

		auther := contacts.NewAuthenticator(store, newMockConfig())

		pair, err := auther.Login(ctx, "user@example.com", "not-the-password")
		assert.ErrorIs(t, err, contacts.ErrInvalidPassword)
		assert.Nil(t, pair)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	login := func(t *testing.T, store *MockUserStore, user *contacts.User) (*contacts.Auther, *contacts.TokenPair) {
		t.Helper()

		store.On("GetByEmail", ctx, user.Email).Return(user, nil)
		store.On("UpdateRefreshToken", ctx, user, mock.Anything).
			Run(func(args mock.Arguments) {
				user.RefreshToken = args.Get(2).(*string)
			}).Return(nil)

		auther := contacts.NewAuthenticator(store, newMockConfig())

		pair, err := auther.Login(ctx, user.Email, "password123")
		require.NoError(t, err)
		return auther, pair
	}

	t.Run("Rotation issues new pair and stores new token", func(t *testing.T) {
		store := new(MockUserStore)
		user := confirmedUser("user@example.com", "password123")

		auther, pair := login(t, store, user)
		require.NotNil(t, user.RefreshToken)
		assert.Equal(t, pair.RefreshToken, *user.RefreshToken)

		next, err := auther.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, next.AccessToken)
		assert.NotEmpty(t, next.RefreshToken)
		assert.Equal(t, next.RefreshToken, *user.RefreshToken)
	})

	t.Run("Spent token revokes the session", func(t *testing.T) {
		store := new(MockUserStore)
		user := confirmedUser("user@example.com", "password123")

		auther, pair := login(t, store, user)

		// first rotation succeeds, the original token is now stale
		_, err := auther.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		_, err = auther.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, contacts.ErrRefreshTokenRevoked)
		assert.Nil(t, user.RefreshToken)

		// with the stored token cleared even the latest one is dead
		_, err = auther.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, contacts.ErrRefreshTokenRevoked)
	})

	t.Run("Access token cannot refresh", func(t *testing.T) {
		store := new(MockUserStore)
		user := confirmedUser("user@example.com", "password123")

		auther, pair := login(t, store, user)

		_, err := auther.Refresh(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, contacts.ErrWrongScope)
	})

	t.Run("Expired refresh token", func(t *testing.T) {
		store := new(MockUserStore)
		user := confirmedUser("user@example.com", "password123")

		auther, _ := login(t, store, user)

		stale, err := auther.TokenService().IssueAt(
			user.Email, contacts.ScopeRefresh, time.Now().Add(-48*time.Hour), time.Hour)
		require.NoError(t, err)

		_, err = auther.Refresh(ctx, stale)
		assert.ErrorIs(t, err, contacts.ErrTokenExpired)
	})

	t.Run("Tampered refresh token", func(t *testing.T) {
		store := new(MockUserStore)
		user := confirmedUser("user@example.com", "password123")

		auther, pair := login(t, store, user)

		_, err := auther.Refresh(ctx, pair.RefreshToken+"x")
		assert.Error(t, err)
	})
}
