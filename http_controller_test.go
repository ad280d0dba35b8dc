package contacts_test

import (
	"context"
	"testing"

	contacts "github.com/goliatone/go-contacts"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) Login(ctx context.Context, email, password string) (*contacts.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if pair := args.Get(0); pair != nil {
		return pair.(*contacts.TokenPair), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionManager) Refresh(ctx context.Context, refreshToken string) (*contacts.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if pair := args.Get(0); pair != nil {
		return pair.(*contacts.TokenPair), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRefreshBearerHeaderParsing(t *testing.T) {
	pair := &contacts.TokenPair{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
		TokenType:    "bearer",
	}

	tests := []struct {
		name      string
		header    string
		wantToken string
	}{
		{"canonical scheme", "Bearer raw-refresh-token", "raw-refresh-token"},
		{"lowercase scheme", "bearer raw-refresh-token", "raw-refresh-token"},
		{"surrounding whitespace", "Bearer   raw-refresh-token  ", "raw-refresh-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auther := new(MockSessionManager)
			auther.On("Refresh", mock.Anything, tt.wantToken).Return(pair, nil)

			controller := &contacts.AuthController{Auther: auther}

			ctx := router.NewMockContext()
			ctx.HeadersM[router.HeaderAuthorization] = tt.header
			ctx.On("GetString", router.HeaderAuthorization, "").Return(tt.header)
			ctx.On("Context").Return(context.Background())
			ctx.On("JSON", router.StatusOK, pair).Return(nil)

			require.NoError(t, controller.Refresh(ctx))
			auther.AssertExpectations(t)
		})
	}
}

func TestRefreshRejectsMalformedAuthorizationHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no separator after scheme", "BearerXraw-refresh-token"},
		{"scheme only", "Bearer "},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auther := new(MockSessionManager)
			controller := &contacts.AuthController{Auther: auther}

			ctx := router.NewMockContext()
			ctx.HeadersM[router.HeaderAuthorization] = tt.header
			ctx.On("GetString", router.HeaderAuthorization, "").Return(tt.header)
			ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Return(nil)

			require.NoError(t, controller.Refresh(ctx))

			auther.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
			ctx.AssertCalled(t, "JSON", router.StatusUnauthorized, mock.Anything)
			assert.False(t, ctx.NextCalled)
		})
	}
}
