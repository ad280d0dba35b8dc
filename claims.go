package contacts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenScope restricts which operation class may consume a token. The scope
// travels inside the signed payload, never inferred from the endpoint that
// received the token, so an access token can never stand in for a refresh
// token or vice versa.
type TokenScope = string

const (
	// ScopeAccess authorizes protected API requests.
	ScopeAccess TokenScope = "access"
	// ScopeRefresh authorizes minting a new token pair.
	ScopeRefresh TokenScope = "refresh"
)

// AuthClaims is the read surface handed to middleware and handlers.
type AuthClaims interface {
	Subject() string
	Scope() TokenScope
	Expires() time.Time
	IssuedAt() time.Time
}

// Claims is the signed claim set carried by every token this service mints.
// Confirmation tokens leave TokenScope empty; access and refresh tokens
// always carry their scope.
type Claims struct {
	jwt.RegisteredClaims
	TokenScope TokenScope `json:"scope,omitempty"`
}

var _ AuthClaims = (*Claims)(nil)

// Subject returns the subject claim, the account email.
func (c *Claims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Scope returns the token scope
func (c *Claims) Scope() TokenScope {
	return c.TokenScope
}

// Expires returns the expiration time
func (c *Claims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *Claims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
