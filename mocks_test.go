package contacts_test

import (
	"context"
	"time"

	contacts "github.com/goliatone/go-contacts"
	"github.com/stretchr/testify/mock"
)

// MockConfig implements contacts.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetSigningMethod() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetIssuer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAudience() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockConfig) GetContextKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenLookup() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAuthScheme() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAccessTokenTTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockConfig) GetRefreshTokenTTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockConfig) GetConfirmationTokenTTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockConfig) GetPasswordHashCost() int {
	args := m.Called()
	return args.Int(0)
}

func newMockConfig() *MockConfig {
	mockConfig := new(MockConfig)
	mockConfig.On("GetSigningKey").Return("test-signing-key")
	mockConfig.On("GetSigningMethod").Return("HS256")
	mockConfig.On("GetIssuer").Return("test-issuer")
	mockConfig.On("GetAudience").Return([]string{"test:audience"})
	mockConfig.On("GetContextKey").Return("claims")
	mockConfig.On("GetTokenLookup").Return("")
	mockConfig.On("GetAuthScheme").Return("Bearer")
	mockConfig.On("GetAccessTokenTTL").Return(time.Hour)
	mockConfig.On("GetRefreshTokenTTL").Return(7 * 24 * time.Hour)
	mockConfig.On("GetConfirmationTokenTTL").Return(7 * 24 * time.Hour)
	mockConfig.On("GetPasswordHashCost").Return(4)
	return mockConfig
}

// MockUserStore implements contacts.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*contacts.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contacts.User), args.Error(1)
}

func (m *MockUserStore) UpdateRefreshToken(ctx context.Context, user *contacts.User, token *string) error {
	args := m.Called(ctx, user, token)
	return args.Error(0)
}

// MockMailer implements contacts.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendConfirmation(ctx context.Context, email, username, confirmURL string) error {
	args := m.Called(ctx, email, username, confirmURL)
	return args.Error(0)
}
