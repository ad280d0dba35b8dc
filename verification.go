package contacts

import (
	"time"
)

// Verifier issues and redeems email confirmation tokens. Confirmation
// tokens carry no scope claim so they can never pass an access or refresh
// scope check.
type Verifier struct {
	tokenService *TokenService
	ttl          time.Duration
	logger       Logger
}

func NewVerifier(tokenService *TokenService, ttl time.Duration) *Verifier {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &Verifier{
		tokenService: tokenService,
		ttl:          ttl,
		logger:       defLogger{},
	}
}

func (v *Verifier) WithLogger(logger Logger) *Verifier {
	v.logger = logger
	return v
}

// IssueConfirmation creates a confirmation token bound to email.
func (v *Verifier) IssueConfirmation(email string) (string, error) {
	return v.tokenService.Issue(email, "", v.ttl)
}

// Redeem returns the email a confirmation token was issued for. Only
// signature and expiry are checked; redeeming twice is fine, the confirm
// step downstream is a no-op for an already confirmed account.
func (v *Verifier) Redeem(raw string) (string, error) {
	claims, err := v.tokenService.Decode(raw)
	if err != nil {
		v.logger.Warn("confirmation token rejected", "error", err)
		return "", err
	}

	return claims.Subject(), nil
}
