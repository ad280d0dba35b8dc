package contacts

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
)

// UserStore is the slice of the user repository the session layer needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateRefreshToken(ctx context.Context, user *User, token *string) error
}

// Auther drives credential logins and refresh token rotation. Each user
// carries at most one live refresh token; issuing a new one invalidates
// whatever was stored before.
type Auther struct {
	store        UserStore
	hasher       PasswordAuthenticator
	tokenService *TokenService
	accessTTL    time.Duration
	refreshTTL   time.Duration
	logger       Logger
}

var _ SessionManager = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store UserStore, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetSigningMethod(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		store:        store,
		hasher:       NewHasher(opts.GetPasswordHashCost()),
		tokenService: tokenService,
		accessTTL:    opts.GetAccessTokenTTL(),
		refreshTTL:   opts.GetRefreshTokenTTL(),
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService.logger = logger
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() *TokenService {
	return s.tokenService
}

// Login checks credentials and returns a fresh token pair. The distinct
// failure errors are for the login route only; anything behind the bearer
// middleware collapses to ErrUnauthorized.
func (s *Auther) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Warn("Login unknown email", "email", email)
			return nil, ErrInvalidEmail
		}
		s.logger.Error("Login lookup error", "error", err)
		return nil, err
	}

	if !user.Confirmed {
		s.logger.Warn("Login email not confirmed", "email", email)
		return nil, ErrEmailNotConfirmed
	}

	if err := s.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Warn("Login password mismatch", "email", email)
		return nil, ErrInvalidPassword
	}

	return s.issuePair(ctx, user)
}

// Refresh validates the presented refresh token and rotates it. A token
// that verifies but does not match the stored value means the session was
// revoked or the token was already spent; the stored token is cleared so
// the whole chain dies.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenService.Validate(refreshToken, ScopeRefresh)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", "error", err)
		return nil, err
	}

	user, err := s.store.GetByEmail(ctx, claims.Subject())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidEmail
		}
		s.logger.Error("Refresh lookup error", "error", err)
		return nil, err
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		if err := s.store.UpdateRefreshToken(ctx, user, nil); err != nil {
			s.logger.Error("Refresh failed to clear stored token", "error", err)
			return nil, err
		}
		s.logger.Warn("Refresh token mismatch, session revoked", "email", user.Email)
		return nil, ErrRefreshTokenRevoked
	}

	return s.issuePair(ctx, user)
}

func (s *Auther) issuePair(ctx context.Context, user *User) (*TokenPair, error) {
	access, err := s.tokenService.Issue(user.Email, ScopeAccess, s.accessTTL)
	if err != nil {
		s.logger.Error("issue access token", "error", err)
		return nil, err
	}

	refresh, err := s.tokenService.Issue(user.Email, ScopeRefresh, s.refreshTTL)
	if err != nil {
		s.logger.Error("issue refresh token", "error", err)
		return nil, err
	}

	if err := s.store.UpdateRefreshToken(ctx, user, &refresh); err != nil {
		s.logger.Error("persist refresh token", "error", err)
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
