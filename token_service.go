package contacts

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService signs and verifies the compact bearer tokens used across the
// API: short lived access tokens, long lived refresh tokens, and the email
// confirmation token. Tokens are stateless; everything a consumer needs is
// inside the signed payload.
type TokenService struct {
	signingKey []byte
	method     string
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, method, issuer string, audience jwt.ClaimStrings, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	if method == "" {
		method = jwt.SigningMethodHS256.Alg()
	}
	return &TokenService{
		signingKey: signingKey,
		method:     method,
		issuer:     issuer,
		audience:   audience,
		logger:     logger,
	}
}

// Issue produces a signed token for subject with the given scope and TTL.
func (ts *TokenService) Issue(subject string, scope TokenScope, ttl time.Duration) (string, error) {
	return ts.IssueAt(subject, scope, time.Now(), ttl)
}

// IssueAt is Issue with an explicit issuance time.
func (ts *TokenService) IssueAt(subject string, scope TokenScope, issuedAt time.Time, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject must not be empty", errors.CategoryBadInput)
	}
	if ttl <= 0 {
		return "", errors.New("token TTL must be positive", errors.CategoryBadInput)
	}

	method := jwt.GetSigningMethod(ts.method)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return "", errors.New(
			fmt.Sprintf("unsupported signing method: %s", ts.method),
			errors.CategoryInternal,
		)
	}

	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	// a unique jti keeps two tokens minted in the same second from being
	// byte identical, which would defeat refresh token rotation
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   subject,
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		TokenScope: scope,
	}

	token := jwt.NewWithClaims(method, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// Validate parses a token and requires its scope to match. Checks run in
// order: signature integrity, expiry, claim presence, scope. Each failure
// maps to exactly one of ErrBadSignature, ErrTokenExpired, ErrTokenMalformed
// or ErrWrongScope; callers decide how much of that detail to surface.
func (ts *TokenService) Validate(tokenString string, scope TokenScope) (*Claims, error) {
	claims, err := ts.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenScope != scope {
		return nil, ErrWrongScope
	}

	return claims, nil
}

// Decode parses a token checking signature and expiry only. The email
// confirmation flow redeems through here; access and refresh consumers go
// through Validate so the scope check can never be skipped.
func (ts *TokenService) Decode(tokenString string) (*Claims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		if alg, _ := t.Header["alg"].(string); alg != ts.method {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode claims")
		return nil, ErrTokenMalformed
	}

	if claims.RegisteredClaims.Subject == "" || claims.RegisteredClaims.ExpiresAt == nil {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
