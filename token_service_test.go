package contacts_test

import (
	"testing"
	"time"

	contacts "github.com/goliatone/go-contacts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(key string) *contacts.TokenService {
	return contacts.NewTokenService(
		[]byte(key),
		"HS256",
		"test-issuer",
		[]string{"test:audience"},
		nil,
	)
}

func TestIssueAndValidate(t *testing.T) {
	ts := newTestTokenService("test-signing-key")

	token, err := ts.Issue("user@example.com", contacts.ScopeAccess, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ts.Validate(token, contacts.ScopeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Subject())
	assert.Equal(t, contacts.ScopeAccess, claims.Scope())
	assert.True(t, claims.Expires().After(time.Now()))
}

func TestIssueRejectsBadInput(t *testing.T) {
	ts := newTestTokenService("test-signing-key")

	_, err := ts.Issue("", contacts.ScopeAccess, time.Hour)
	assert.Error(t, err)

	_, err = ts.Issue("user@example.com", contacts.ScopeAccess, 0)
	assert.Error(t, err)
}

func TestValidateWrongScope(t *testing.T) {
	ts := newTestTokenService("test-signing-key")

	refresh, err := ts.Issue("user@example.com", contacts.ScopeRefresh, time.Hour)
	require.NoError(t, err)

	_, err = ts.Validate(refresh, contacts.ScopeAccess)
	assert.ErrorIs(t, err, contacts.ErrWrongScope)

	access, err := ts.Issue("user@example.com", contacts.ScopeAccess, time.Hour)
	require.NoError(t, err)

	_, err = ts.Validate(access, contacts.ScopeRefresh)
	assert.ErrorIs(t, err, contacts.ErrWrongScope)
}

func TestValidateExpiredToken(t *testing.T) {
	ts := newTestTokenService("test-signing-key")

	token, err := ts.IssueAt("user@example.com", contacts.ScopeAccess, time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	_, err = ts.Validate(token, contacts.ScopeAccess)
	assert.ErrorIs(t, err, contacts.ErrTokenExpired)
	assert.True(t, contacts.IsTokenExpiredError(err))
}

func TestValidateExpiryBoundary(t *testing.T) {
	ts := newTestTokenService("test-signing-key")

	t.Run("accepted just before expiry", func(t *testing.T) {
		token, err := ts.IssueAt("user@example.com", contacts.ScopeAccess, time.Now().Add(-59*time.Second), time.Minute)
		require.NoError(t, err)

		claims, err := ts.Validate(token, contacts.ScopeAccess)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", claims.Subject())
	})

	t.Run("rejected just after expiry", func(t *testing.T) {
		token, err := ts.IssueAt("user@example.com", contacts.ScopeAccess, time.Now().Add(-61*time.Second), time.Minute)
		require.NoError(t, err)

		_, err = ts.Validate(token, contacts.ScopeAccess)
		assert.ErrorIs(t, err, contacts.ErrTokenExpired)
	})
}

func TestValidateBadSignature(t *testing.T) {
	issuer := newTestTokenService("test-signing-key")
	verifier := newTestTokenService("a-different-key")

	token, err := issuer.Issue("user@example.com", contacts.ScopeAccess, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Validate(token, contacts.ScopeAccess)
	assert.ErrorIs(t, err, contacts.ErrBadSignature)
}

func TestValidateMalformedToken(t *testing.T) {
	ts := newTestTokenService("test-signing-key")

	for _, raw := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		_, err := ts.Validate(raw, contacts.ScopeAccess)
		assert.ErrorIs(t, err, contacts.ErrTokenMalformed)
		assert.True(t, contacts.IsMalformedError(err))
	}
}

func TestDecodeSkipsScopeCheck(t *testing.T) {
	ts := newTestTokenService("test-signing-key")

	// a token with no scope claim decodes fine but can never validate
	token, err := ts.Issue("user@example.com", "", time.Hour)
	require.NoError(t, err)

	claims, err := ts.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Subject())
	assert.Empty(t, claims.Scope())

	_, err = ts.Validate(token, contacts.ScopeAccess)
	assert.ErrorIs(t, err, contacts.ErrWrongScope)

	_, err = ts.Validate(token, contacts.ScopeRefresh)
	assert.ErrorIs(t, err, contacts.ErrWrongScope)
}

func TestValidateIssuerMismatch(t *testing.T) {
	issuer := contacts.NewTokenService([]byte("test-signing-key"), "HS256", "other-issuer", nil, nil)
	verifier := newTestTokenService("test-signing-key")

	token, err := issuer.Issue("user@example.com", contacts.ScopeAccess, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Validate(token, contacts.ScopeAccess)
	assert.Error(t, err)
}
