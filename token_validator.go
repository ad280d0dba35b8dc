package contacts

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// NewAccessTokenValidator binds a TokenService to the access scope. Request
// middleware goes through this so refresh and confirmation tokens can never
// authenticate an API call.
func NewAccessTokenValidator(ts *TokenService) TokenValidatorFunc {
	return func(tokenString string) (AuthClaims, error) {
		claims, err := ts.Validate(tokenString, ScopeAccess)
		if err != nil {
			return nil, err
		}
		return claims, nil
	}
}
