package contacts

import (
	"context"

	"github.com/goliatone/go-contacts/middleware/jwtware"
	"github.com/goliatone/go-router"
)

// jwtwareValidatorAdapter bridges the package validator to the jwtware one.
type jwtwareValidatorAdapter struct {
	validator TokenValidator
}

func (a jwtwareValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ContextEnricherAdapter stores validated claims in the standard context for
// downstream handlers that only see a context.Context.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}
	return WithClaimsContext(c, authClaims)
}

// Protected builds the bearer token middleware for API routes. Tokens must
// carry the access scope and resolve to a live account through store.
func Protected(ts *TokenService, store UserStore, opts Config) router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{
			JWTAlg: opts.GetSigningMethod(),
			Key:    []byte(opts.GetSigningKey()),
		},
		ContextKey:     opts.GetContextKey(),
		TokenLookup:    opts.GetTokenLookup(),
		AuthScheme:     opts.GetAuthScheme(),
		TokenValidator: jwtwareValidatorAdapter{validator: NewAccessTokenValidator(ts)},
		UserResolver: func(ctx context.Context, subject string) (any, error) {
			user, err := store.GetByEmail(ctx, subject)
			if err != nil {
				return nil, err
			}
			return user, nil
		},
		ContextEnricher: ContextEnricherAdapter,
	})
}
